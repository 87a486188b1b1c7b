// Package youtube implements the Data API v3 client used as the job
// orchestrator's item source, detail enricher, and channel resolver.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"ytscribe/cache"
	"ytscribe/models"
)

const (
	defaultBaseURL = "https://www.googleapis.com/youtube/v3"

	// pageSize is the API maximum for search.list and videos.list.
	pageSize = 50
)

// ErrChannelNotFound is returned when a channel lookup yields no items.
var ErrChannelNotFound = errors.New("channel not found")

type Config struct {
	BaseURL string
	Limiter *rate.Limiter
	Cache   *cache.Cache
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	cache      *cache.Cache
	log        *logrus.Entry
}

func NewClient(httpClient *http.Client, cfg Config, log *logrus.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		limiter:    cfg.Limiter,
		cache:      cfg.Cache,
		log:        log.WithField("component", "youtube"),
	}
}

// Probe issues the cheapest possible search call to verify the API key.
func (c *Client) Probe(ctx context.Context, apiKey string) error {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", "test")
	params.Set("maxResults", "1")

	var resp searchResponse
	if err := c.get(ctx, apiKey, "search", params, &resp); err != nil {
		return errors.Wrap(err, "api key probe")
	}
	return nil
}

// ResolveChannel looks up the channel's display name and declared video
// count. A well-formed response with no items means the channel ID is bad.
func (c *Client) ResolveChannel(ctx context.Context, apiKey, channelID string) (string, int, error) {
	params := url.Values{}
	params.Set("part", "snippet,statistics")
	params.Set("id", channelID)

	var resp channelsResponse
	if err := c.get(ctx, apiKey, "channels", params, &resp); err != nil {
		return "", 0, errors.Wrap(err, "channel lookup")
	}
	if len(resp.Items) == 0 {
		return "", 0, ErrChannelNotFound
	}

	item := resp.Items[0]
	total := 0
	if item.Statistics.VideoCount != "" {
		fmt.Sscanf(item.Statistics.VideoCount, "%d", &total)
	}
	return item.Snippet.Title, total, nil
}

// ListVideos fetches the channel's full video listing, following pagination
// until the API stops handing out tokens. Memoized per (channel, credential).
func (c *Client) ListVideos(ctx context.Context, apiKey, channelID string) ([]models.Video, error) {
	cacheKey := cache.Key("videos", channelID, apiKey)
	if cached, ok := c.cacheGet(cacheKey); ok {
		c.log.WithField("channel_id", channelID).Info("Using cached video listing")
		return cached.([]models.Video), nil
	}

	var videos []models.Video
	pageToken := ""
	for {
		params := url.Values{}
		params.Set("part", "snippet")
		params.Set("channelId", channelID)
		params.Set("maxResults", fmt.Sprintf("%d", pageSize))
		params.Set("order", "date")
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		var resp searchResponse
		if err := c.get(ctx, apiKey, "search", params, &resp); err != nil {
			return nil, errors.Wrap(err, "video listing")
		}

		for _, item := range resp.Items {
			if item.ID.VideoID == "" {
				continue
			}
			videos = append(videos, models.Video{
				ID:          item.ID.VideoID,
				Title:       item.Snippet.Title,
				PublishedAt: item.Snippet.PublishedAt,
				Link:        "https://www.youtube.com/watch?v=" + item.ID.VideoID,
				Index:       len(videos),
			})
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}

	c.log.WithFields(logrus.Fields{
		"channel_id": channelID,
		"count":      len(videos),
	}).Info("Fetched video listing")

	c.cacheSet(cacheKey, videos)
	return videos, nil
}

// VideoDetails fetches view count and normalized duration for the given IDs
// in chunks of pageSize. Each detail is memoized per (video, credential).
func (c *Client) VideoDetails(ctx context.Context, apiKey string, ids []string) (map[string]models.VideoDetails, error) {
	details := make(map[string]models.VideoDetails, len(ids))

	var uncached []string
	for _, id := range ids {
		key := cache.Key("details", id, apiKey)
		if cached, ok := c.cacheGet(key); ok {
			details[id] = cached.(models.VideoDetails)
			continue
		}
		uncached = append(uncached, id)
	}

	for start := 0; start < len(uncached); start += pageSize {
		end := start + pageSize
		if end > len(uncached) {
			end = len(uncached)
		}
		chunk := uncached[start:end]

		params := url.Values{}
		params.Set("part", "statistics,contentDetails")
		params.Set("id", strings.Join(chunk, ","))

		var resp videosResponse
		if err := c.get(ctx, apiKey, "videos", params, &resp); err != nil {
			return nil, errors.Wrap(err, "video details")
		}

		for _, item := range resp.Items {
			detail := models.VideoDetails{
				ViewCount: item.Statistics.ViewCount,
				Duration:  ParseISODuration(item.ContentDetails.Duration),
			}
			details[item.ID] = detail
			c.cacheSet(cache.Key("details", item.ID, apiKey), detail)
		}
	}

	return details, nil
}

func (c *Client) get(ctx context.Context, apiKey, resource string, params url.Values, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	params.Set("key", apiKey)
	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, resource, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.Errorf("%s returned HTTP %d: %s", resource, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) cacheGet(key string) (any, bool) {
	if c.cache == nil {
		return nil, false
	}
	return c.cache.Get(key)
}

func (c *Client) cacheSet(key string, value any) {
	if c.cache != nil {
		c.cache.Set(key, value)
	}
}

// Response shapes, trimmed to the fields this service reads.

type searchResponse struct {
	NextPageToken string       `json:"nextPageToken"`
	Items         []searchItem `json:"items"`
}

type searchItem struct {
	ID struct {
		VideoID string `json:"videoId"`
	} `json:"id"`
	Snippet struct {
		Title       string `json:"title"`
		PublishedAt string `json:"publishedAt"`
	} `json:"snippet"`
}

type channelsResponse struct {
	Items []struct {
		Snippet struct {
			Title string `json:"title"`
		} `json:"snippet"`
		Statistics struct {
			VideoCount string `json:"videoCount"`
		} `json:"statistics"`
	} `json:"items"`
}

type videosResponse struct {
	Items []struct {
		ID         string `json:"id"`
		Statistics struct {
			ViewCount string `json:"viewCount"`
		} `json:"statistics"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
}
