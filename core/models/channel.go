package models

import "time"

// ChannelContext is the normalized channel snapshot produced once per job by
// the metadata fetch and shared read-only by all module tasks
type ChannelContext struct {
	ChannelID       string         `json:"channel_id"`
	Handle          string         `json:"handle"`
	Title           string         `json:"title"`
	SubscriberCount int64          `json:"subscriber_count"`
	VideoCount      int64          `json:"video_count"`
	ViewCount       int64          `json:"view_count"`
	UploadCadence   string         `json:"upload_cadence,omitempty"` // e.g. "2.5 videos/week"
	Videos          []VideoSummary `json:"videos"`
	FetchedAt       time.Time      `json:"fetched_at"`
}

// VideoSummary describes one recent upload used as analysis input
type VideoSummary struct {
	VideoID      string    `json:"video_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ViewCount    int64     `json:"view_count"`
	LikeCount    int64     `json:"like_count"`
	CommentCount int64     `json:"comment_count"`
	PublishedAt  time.Time `json:"published_at"`
}
