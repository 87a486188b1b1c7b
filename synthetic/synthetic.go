// Package synthetic provides deterministic stand-ins for every upstream
// collaborator, selected via TEST_MODE so the whole pipeline can run
// without live credentials.
package synthetic

import (
	"context"
	"fmt"
	"time"

	"ytscribe/models"
)

const (
	ChannelName = "Dummy Channel"
	VideoCount  = 100
)

// Provider implements the job orchestrator's upstream interfaces with
// fixed data: 100 videos, fixed per-video details, and a deterministic
// transcript per video.
type Provider struct {
	// Delay is applied per transcript fetch so progress is observable
	// while polling. Zero in tests.
	Delay time.Duration
}

func (p *Provider) Probe(ctx context.Context, apiKey string) error {
	return nil
}

func (p *Provider) ResolveChannel(ctx context.Context, apiKey, channelID string) (string, int, error) {
	return ChannelName, VideoCount, nil
}

func (p *Provider) ListVideos(ctx context.Context, apiKey, channelID string) ([]models.Video, error) {
	videos := make([]models.Video, 0, VideoCount)
	for i := 1; i <= VideoCount; i++ {
		videos = append(videos, models.Video{
			ID:          fmt.Sprintf("dummy%d", i),
			Title:       fmt.Sprintf("Dummy Video %d", i),
			PublishedAt: fmt.Sprintf("2022-%02d-%02dT00:00:00Z", (i-1)/30+1, (i-1)%30+1),
			Link:        fmt.Sprintf("https://www.youtube.com/watch?v=dummy%d", i),
			Index:       i - 1,
		})
	}
	return videos, nil
}

func (p *Provider) VideoDetails(ctx context.Context, apiKey string, ids []string) (map[string]models.VideoDetails, error) {
	details := make(map[string]models.VideoDetails, len(ids))
	for _, id := range ids {
		details[id] = models.VideoDetails{
			ViewCount: "1000",
			Duration:  "00:05:00",
		}
	}
	return details, nil
}

func (p *Provider) Fetch(ctx context.Context, apiKey, videoID string) (string, error) {
	if p.Delay > 0 {
		select {
		case <-time.After(p.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	var n int
	fmt.Sscanf(videoID, "dummy%d", &n)
	text := fmt.Sprintf("This is a dummy transcript for video %d. ", n)
	text += "It contains some sample text that varies by video number. "
	text += fmt.Sprintf("The video discusses topic %d in detail.", n%5)
	return text, nil
}
