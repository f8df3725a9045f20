package engine

import (
	"testing"

	"NewsBroadcaster/internal/domain"
)

func TestMaskEmail(t *testing.T) {
	t.Parallel()

	got := MaskText("contact ceo@company.com for details")
	want := "contact ceo***@company.com for details"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestMaskShortLocalPart(t *testing.T) {
	t.Parallel()

	got := MaskText("ab@x.com")
	if got != "ab***@x.com" {
		t.Fatalf("unexpected mask: %q", got)
	}
}

func TestMaskPhoneNumber(t *testing.T) {
	t.Parallel()

	got := MaskText("联系电话13812345678，随时来电")
	want := "联系电话138****，随时来电"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestMaskIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"ceo@company.com",
		"ab@x.com wrote to ops-team@internal.example.org",
		"call 13812345678 now",
		"plain text without anything sensitive",
	}
	for _, input := range inputs {
		once := MaskText(input)
		twice := MaskText(once)
		if once != twice {
			t.Fatalf("masking %q is not idempotent: %q != %q", input, once, twice)
		}
	}
}

func TestMaskItemCoversAllTextFields(t *testing.T) {
	t.Parallel()

	item := Mask(domain.NormalizedItem{
		Headline: "Reply to boss@corp.io",
		Body:     "Forwarded from helper@corp.io",
		Identity: "boss@corp.io",
	})

	if item.Headline != "Reply to bos***@corp.io" {
		t.Fatalf("headline not masked: %q", item.Headline)
	}
	if item.Body != "Forwarded from hel***@corp.io" {
		t.Fatalf("body not masked: %q", item.Body)
	}
	if item.Identity != "bos***@corp.io" {
		t.Fatalf("identity not masked: %q", item.Identity)
	}
}
