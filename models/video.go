package models

// Video is one unit of channel content as it moves through a job run.
// The item source creates it, the detail enricher fills in ViewCount and
// Duration, and transcript processing either attaches Transcript or routes
// the video to the no-transcript partition.
type Video struct {
	ID          string `json:"video_id"`
	Title       string `json:"title"`
	PublishedAt string `json:"published_at"`
	Link        string `json:"link"`
	ViewCount   string `json:"view_count,omitempty"`
	Duration    string `json:"duration,omitempty"`
	Transcript  string `json:"transcript,omitempty"`

	// Index is the position in the original listing order. Partition
	// membership is decided in completion order, which is nondeterministic;
	// the materializer sorts by Index so artifacts come out stable.
	Index int `json:"-"`
}

// VideoDetails carries the enrichment fields fetched per video.
type VideoDetails struct {
	ViewCount string `json:"view_count"`
	Duration  string `json:"duration"`
}
