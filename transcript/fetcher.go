// Package transcript retrieves caption text for individual videos via the
// public timedtext endpoint. Absence of captions is an expected outcome and
// is reported as ErrNoTranscript, not a failure.
package transcript

import (
	"context"
	"encoding/xml"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"ytscribe/cache"
)

const defaultBaseURL = "https://video.google.com/timedtext"

// ErrNoTranscript marks videos that simply have no captions in any of the
// requested languages.
var ErrNoTranscript = errors.New("transcript not available")

// Languages tried in order, mirroring the English preference of the
// aggregation pipeline.
var defaultLanguages = []string{"en", "en-US", "en-GB"}

type Config struct {
	BaseURL   string
	Languages []string
	Cache     *cache.Cache
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	languages  []string
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
	languages := cfg.Languages
	if len(languages) == 0 {
		languages = defaultLanguages
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		languages:  languages,
		cache:      cfg.Cache,
		log:        log.WithField("component", "transcript"),
	}
}

// Fetch returns the full caption text for one video, joining segments with
// spaces. apiKey participates only in the memoization key so cached entries
// stay scoped to the credential that produced the job.
func (c *Client) Fetch(ctx context.Context, apiKey, videoID string) (string, error) {
	cacheKey := cache.Key("transcript", videoID, apiKey)
	if c.cache != nil {
		if cached, ok := c.cache.Get(cacheKey); ok {
			c.log.WithField("video_id", videoID).Debug("Using cached transcript")
			return cached.(string), nil
		}
	}

	var lastErr error
	for _, lang := range c.languages {
		text, err := c.fetchLanguage(ctx, videoID, lang)
		if err == nil && text != "" {
			if c.cache != nil {
				c.cache.Set(cacheKey, text)
			}
			return text, nil
		}
		if err != nil && !errors.Is(err, ErrNoTranscript) {
			lastErr = err
		}
	}

	if lastErr != nil {
		return "", lastErr
	}
	return "", ErrNoTranscript
}

func (c *Client) fetchLanguage(ctx context.Context, videoID, lang string) (string, error) {
	params := url.Values{}
	params.Set("v", videoID)
	params.Set("lang", lang)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "timedtext request")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", ErrNoTranscript
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errors.Errorf("timedtext returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "reading timedtext body")
	}
	// An empty body is how the endpoint reports a missing track.
	if len(strings.TrimSpace(string(body))) == 0 {
		return "", ErrNoTranscript
	}

	return joinSegments(body)
}

type timedText struct {
	XMLName xml.Name `xml:"transcript"`
	Texts   []struct {
		Content string `xml:",chardata"`
	} `xml:"text"`
}

func joinSegments(body []byte) (string, error) {
	var doc timedText
	if err := xml.Unmarshal(body, &doc); err != nil {
		return "", errors.Wrap(err, "parsing timedtext XML")
	}
	if len(doc.Texts) == 0 {
		return "", ErrNoTranscript
	}

	var sb strings.Builder
	for _, seg := range doc.Texts {
		text := strings.TrimSpace(seg.Content)
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}
