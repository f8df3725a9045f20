package engine

import (
	"regexp"

	"NewsBroadcaster/internal/domain"
)

const maskedLocalRunes = 3

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phonePattern = regexp.MustCompile(`[0-9]{7,}`)
)

// Mask redacts addresses and phone numbers in every text field of an item.
// Masking runs before dedup so similarity always compares redacted text.
func Mask(item domain.NormalizedItem) domain.NormalizedItem {
	item.Headline = MaskText(item.Headline)
	item.Body = MaskText(item.Body)
	item.Identity = MaskText(item.Identity)
	return item
}

// MaskText rewrites local@domain to loc***@domain (at most the first three
// runes of the local part) and long digit runs to their first three digits
// plus ****. The operation is idempotent: a masked local part contains '*',
// which neither pattern can match again.
func MaskText(s string) string {
	s = emailPattern.ReplaceAllStringFunc(s, func(match string) string {
		at := -1
		for i, r := range match {
			if r == '@' {
				at = i
				break
			}
		}
		local, domainPart := match[:at], match[at:]
		keep := local
		if len(keep) > maskedLocalRunes {
			keep = keep[:maskedLocalRunes]
		}
		return keep + "***" + domainPart
	})
	return phonePattern.ReplaceAllStringFunc(s, func(match string) string {
		return match[:3] + "****"
	})
}
