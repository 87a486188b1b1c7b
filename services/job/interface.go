package job

import (
	"context"

	"ytscribe/models"
)

// Service owns the single active job's lifecycle: start, fan-out, progress
// accounting, cancellation, completion, and result aggregation.
type Service interface {
	// Start validates the request, resets job state, and launches the
	// asynchronous run. Rejected while another job is active.
	Start(ctx context.Context, req StartRequest) (StartResult, error)

	// Cancel requests cooperative cancellation of the active run.
	// Idempotent; a no-op when nothing is running.
	Cancel()

	// Status returns a point-in-time snapshot of the current run. Never
	// blocks, never mutates tallies.
	Status() models.Snapshot

	// FolderName reports the archive folder chosen by the most recent job.
	FolderName() string
}

type StartRequest struct {
	ChannelID  string
	APIKey     string
	FolderName string
}

type StartResult struct {
	ChannelName string
	TotalVideos int
}

type Config struct {
	// Workers bounds the transcript fan-out width.
	Workers int
}

// ItemSource enumerates a channel's videos in listing order, paginating
// internally.
type ItemSource interface {
	ListVideos(ctx context.Context, apiKey, channelID string) ([]models.Video, error)
}

// DetailEnricher returns per-video metadata for a batch of IDs.
type DetailEnricher interface {
	VideoDetails(ctx context.Context, apiKey string, ids []string) (map[string]models.VideoDetails, error)
}

// TranscriptFetcher retrieves one video's transcript. Empty text with a nil
// error means the video has no transcript, which is a normal outcome; a
// non-nil error is a fetch failure and routes the video to the
// no-transcript partition as well.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, apiKey, videoID string) (string, error)
}

// TranscriptFetcherFunc adapts a function to the TranscriptFetcher interface.
type TranscriptFetcherFunc func(ctx context.Context, apiKey, videoID string) (string, error)

func (f TranscriptFetcherFunc) Fetch(ctx context.Context, apiKey, videoID string) (string, error) {
	return f(ctx, apiKey, videoID)
}

// ChannelResolver validates credentials and resolves channel identity.
type ChannelResolver interface {
	Probe(ctx context.Context, apiKey string) error
	ResolveChannel(ctx context.Context, apiKey, channelID string) (name string, totalVideos int, err error)
}

// Materializer persists the two result partitions as artifacts. It must
// tolerate empty partitions.
type Materializer interface {
	Write(withTranscript, withoutTranscript []models.Video) error
}
