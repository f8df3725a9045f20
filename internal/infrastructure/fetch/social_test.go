package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"NewsBroadcaster/internal/feeds"
)

func TestSocialFetcherResolvesAccountAndPosts(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/users/by/username/founderA", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("unexpected authorization header: %q", got)
		}
		_, _ = w.Write([]byte(`{"data": {"id": "42", "username": "founderA"}}`))
	})
	mux.HandleFunc("/users/42/tweets", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": [
			{"text": "We just shipped the release.", "created_at": "2026-03-10T07:00:00Z",
			 "public_metrics": {"like_count": 120, "retweet_count": 30}}
		]}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	fetcher := NewSocialFetcher(server.Client(), "test-token", nil)
	items, err := fetcher.Fetch(context.Background(), feeds.Request{
		Endpoints: []feeds.Endpoint{{Name: "founderA"}},
		Options:   map[string]string{"apiBase": server.URL},
	})
	if err != nil {
		t.Fatalf("fetch error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 post, got %d", len(items))
	}
	if items[0]["author"] != "founderA" {
		t.Fatalf("unexpected author: %v", items[0]["author"])
	}
	if items[0]["created_at"] != "2026-03-10T07:00:00Z" {
		t.Fatalf("unexpected timestamp: %v", items[0]["created_at"])
	}

	engagement, ok := items[0]["engagement"].(map[string]any)
	if !ok {
		t.Fatalf("engagement missing: %+v", items[0])
	}
	if engagement["likes"] != float64(120) || engagement["retweets"] != float64(30) {
		t.Fatalf("unexpected engagement: %+v", engagement)
	}
}

func TestSocialFetcherSkipsUnresolvableAccount(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/users/by/username/ghost", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": {}}`))
	})
	mux.HandleFunc("/users/by/username/founderA", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": {"id": "42", "username": "founderA"}}`))
	})
	mux.HandleFunc("/users/42/tweets", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": [{"text": "hello", "created_at": "2026-03-10T07:00:00Z"}]}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	fetcher := NewSocialFetcher(server.Client(), "test-token", nil)
	items, err := fetcher.Fetch(context.Background(), feeds.Request{
		Endpoints: []feeds.Endpoint{{Name: "ghost"}, {Name: "founderA"}},
		Options:   map[string]string{"apiBase": server.URL},
	})
	if err != nil {
		t.Fatalf("fetch error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected posts from the resolvable account only, got %d", len(items))
	}
}

func TestSocialFetcherWithoutToken(t *testing.T) {
	t.Parallel()

	fetcher := NewSocialFetcher(nil, "", nil)
	items, err := fetcher.Fetch(context.Background(), feeds.Request{
		Endpoints: []feeds.Endpoint{{Name: "founderA"}},
	})
	if err != nil {
		t.Fatalf("fetch error: %v", err)
	}
	if items != nil {
		t.Fatalf("missing token should yield no items, got %+v", items)
	}
}
