package youtube

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"ytscribe/cache"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	client := NewClient(srv.Client(), Config{
		BaseURL: srv.URL,
		Cache:   cache.New(time.Minute, 100),
	}, log)
	return client, srv
}

func TestListVideosPaginates(t *testing.T) {
	var calls atomic.Int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("missing api key in query")
		}

		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("pageToken") {
		case "":
			fmt.Fprint(w, `{
				"nextPageToken": "page2",
				"items": [
					{"id": {"videoId": "vid1"}, "snippet": {"title": "First", "publishedAt": "2022-01-01T00:00:00Z"}},
					{"id": {}, "snippet": {"title": "Not a video"}}
				]
			}`)
		case "page2":
			fmt.Fprint(w, `{
				"items": [
					{"id": {"videoId": "vid2"}, "snippet": {"title": "Second", "publishedAt": "2022-01-02T00:00:00Z"}}
				]
			}`)
		default:
			t.Errorf("unexpected page token %s", r.URL.Query().Get("pageToken"))
		}
	})

	client, _ := newTestClient(t, handler)

	videos, err := client.ListVideos(context.Background(), "test-key", "UC123")
	if err != nil {
		t.Fatalf("ListVideos() error = %v", err)
	}

	if len(videos) != 2 {
		t.Fatalf("expected 2 videos, got %d", len(videos))
	}
	if videos[0].ID != "vid1" || videos[1].ID != "vid2" {
		t.Errorf("unexpected order: %s, %s", videos[0].ID, videos[1].ID)
	}
	if videos[1].Index != 1 {
		t.Errorf("expected listing index 1, got %d", videos[1].Index)
	}
	if videos[0].Link != "https://www.youtube.com/watch?v=vid1" {
		t.Errorf("unexpected link %s", videos[0].Link)
	}

	// Second call must come from the memoization cache.
	before := calls.Load()
	if _, err := client.ListVideos(context.Background(), "test-key", "UC123"); err != nil {
		t.Fatalf("cached ListVideos() error = %v", err)
	}
	if calls.Load() != before {
		t.Errorf("expected no additional API calls, got %d more", calls.Load()-before)
	}
}

func TestVideoDetailsChunksAndCaches(t *testing.T) {
	var calls atomic.Int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"items": [
				{"id": "vid1", "statistics": {"viewCount": "1000"}, "contentDetails": {"duration": "PT5M"}}
			]
		}`)
	})

	client, _ := newTestClient(t, handler)

	details, err := client.VideoDetails(context.Background(), "test-key", []string{"vid1"})
	if err != nil {
		t.Fatalf("VideoDetails() error = %v", err)
	}

	d, ok := details["vid1"]
	if !ok {
		t.Fatal("missing details for vid1")
	}
	if d.ViewCount != "1000" {
		t.Errorf("ViewCount = %s, want 1000", d.ViewCount)
	}
	if d.Duration != "00:05:00" {
		t.Errorf("Duration = %s, want 00:05:00", d.Duration)
	}

	// Cached: no new HTTP call for the same ID.
	before := calls.Load()
	if _, err := client.VideoDetails(context.Background(), "test-key", []string{"vid1"}); err != nil {
		t.Fatalf("cached VideoDetails() error = %v", err)
	}
	if calls.Load() != before {
		t.Error("expected details to come from cache")
	}
}

func TestResolveChannel(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("id") == "UCgood" {
			fmt.Fprint(w, `{"items": [{"snippet": {"title": "Some Channel"}, "statistics": {"videoCount": "42"}}]}`)
			return
		}
		fmt.Fprint(w, `{"items": []}`)
	})

	client, _ := newTestClient(t, handler)

	name, total, err := client.ResolveChannel(context.Background(), "k", "UCgood")
	if err != nil {
		t.Fatalf("ResolveChannel() error = %v", err)
	}
	if name != "Some Channel" || total != 42 {
		t.Errorf("got (%s, %d), want (Some Channel, 42)", name, total)
	}

	if _, _, err := client.ResolveChannel(context.Background(), "k", "UCbad"); err == nil {
		t.Error("expected error for unknown channel")
	}
}

func TestProbeRejectsBadKey(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error": {"message": "API key not valid"}}`)
	})

	client, _ := newTestClient(t, handler)

	if err := client.Probe(context.Background(), "bad-key"); err == nil {
		t.Error("expected probe failure for rejected key")
	}
}
