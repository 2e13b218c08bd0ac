package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Rehodra/AI-Youtube-Analyser/core/models"
)

const (
	apiBaseURL = "https://www.googleapis.com/youtube/v3"

	// maxRecentVideos bounds how many uploads we pull per channel
	maxRecentVideos = 10
)

// ErrChannelNotFound means the identifier resolved to no channel
var ErrChannelNotFound = errors.New("channel not found")

// Client fetches channel metadata from the YouTube Data API v3
type Client struct {
	apiKey string
	client *http.Client
}

// NewClient creates a new YouTube metadata client
func NewClient(apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("YouTube API key not set")
	}
	return &Client{
		apiKey: apiKey,
		client: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// FetchChannel resolves a handle or channel name to the context every
// analysis module consumes: channel stats plus the most recent uploads
func (c *Client) FetchChannel(ctx context.Context, identifier string) (*models.ChannelContext, error) {
	channel, err := c.resolveChannel(ctx, identifier)
	if err != nil {
		return nil, err
	}

	videos, err := c.fetchRecentVideos(ctx, channel.ChannelID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent videos: %w", err)
	}

	channel.Videos = videos
	channel.UploadCadence = estimateCadence(videos)
	channel.FetchedAt = time.Now()
	return channel, nil
}

func (c *Client) resolveChannel(ctx context.Context, identifier string) (*models.ChannelContext, error) {
	handle := identifier
	if !strings.HasPrefix(handle, "@") {
		handle = "@" + handle
	}

	params := url.Values{}
	params.Set("part", "snippet,statistics")
	params.Set("forHandle", handle)

	var result struct {
		Items []struct {
			ID      string `json:"id"`
			Snippet struct {
				Title       string `json:"title"`
				CustomURL   string `json:"customUrl"`
				Description string `json:"description"`
			} `json:"snippet"`
			Statistics struct {
				SubscriberCount string `json:"subscriberCount"`
				VideoCount      string `json:"videoCount"`
				ViewCount       string `json:"viewCount"`
			} `json:"statistics"`
		} `json:"items"`
	}
	if err := c.getJSON(ctx, "/channels", params, &result); err != nil {
		return nil, err
	}
	if len(result.Items) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrChannelNotFound, identifier)
	}

	item := result.Items[0]
	return &models.ChannelContext{
		ChannelID:       item.ID,
		Handle:          handle,
		Title:           item.Snippet.Title,
		SubscriberCount: parseCount(item.Statistics.SubscriberCount),
		VideoCount:      parseCount(item.Statistics.VideoCount),
		ViewCount:       parseCount(item.Statistics.ViewCount),
	}, nil
}

func (c *Client) fetchRecentVideos(ctx context.Context, channelID string) ([]models.VideoSummary, error) {
	params := url.Values{}
	params.Set("part", "id")
	params.Set("channelId", channelID)
	params.Set("order", "date")
	params.Set("type", "video")
	params.Set("maxResults", strconv.Itoa(maxRecentVideos))

	var search struct {
		Items []struct {
			ID struct {
				VideoID string `json:"videoId"`
			} `json:"id"`
		} `json:"items"`
	}
	if err := c.getJSON(ctx, "/search", params, &search); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(search.Items))
	for _, item := range search.Items {
		if item.ID.VideoID != "" {
			ids = append(ids, item.ID.VideoID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	return c.fetchVideoDetails(ctx, ids)
}

func (c *Client) fetchVideoDetails(ctx context.Context, ids []string) ([]models.VideoSummary, error) {
	params := url.Values{}
	params.Set("part", "snippet,statistics")
	params.Set("id", strings.Join(ids, ","))

	var result struct {
		Items []struct {
			ID      string `json:"id"`
			Snippet struct {
				Title       string    `json:"title"`
				Description string    `json:"description"`
				PublishedAt time.Time `json:"publishedAt"`
			} `json:"snippet"`
			Statistics struct {
				ViewCount    string `json:"viewCount"`
				LikeCount    string `json:"likeCount"`
				CommentCount string `json:"commentCount"`
			} `json:"statistics"`
		} `json:"items"`
	}
	if err := c.getJSON(ctx, "/videos", params, &result); err != nil {
		return nil, err
	}

	videos := make([]models.VideoSummary, 0, len(result.Items))
	for _, item := range result.Items {
		videos = append(videos, models.VideoSummary{
			VideoID:      item.ID,
			Title:        item.Snippet.Title,
			Description:  item.Snippet.Description,
			PublishedAt:  item.Snippet.PublishedAt,
			ViewCount:    parseCount(item.Statistics.ViewCount),
			LikeCount:    parseCount(item.Statistics.LikeCount),
			CommentCount: parseCount(item.Statistics.CommentCount),
		})
	}
	return videos, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	params.Set("key", c.apiKey)
	endpoint := apiBaseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("YouTube API returned status %d: %s", resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// estimateCadence describes the upload rhythm from recent publish dates
func estimateCadence(videos []models.VideoSummary) string {
	if len(videos) < 2 {
		return "unknown"
	}

	newest := videos[0].PublishedAt
	oldest := videos[len(videos)-1].PublishedAt
	span := newest.Sub(oldest)
	if span <= 0 {
		return "unknown"
	}

	perWeek := float64(len(videos)-1) / (span.Hours() / (24 * 7))
	switch {
	case perWeek >= 5:
		return "daily"
	case perWeek >= 1:
		return fmt.Sprintf("%.0f per week", perWeek)
	default:
		return fmt.Sprintf("%.1f per month", perWeek*4.3)
	}
}

func parseCount(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}
