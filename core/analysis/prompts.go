package analysis

import (
	"fmt"
	"strings"

	"github.com/Rehodra/AI-Youtube-Analyser/core/models"
)

// maxVideosInPrompt bounds how many recent uploads are described to the model
const maxVideosInPrompt = 3

const promptPreamble = `You are an AI-powered YouTube intelligence suite used by professional creators and growth teams.
You do NOT give generic advice. You produce executable insights that can be shown directly in a product dashboard.
Every score, rating, or risk level MUST include reasoning. Avoid vague phrases like "could be improved".
Be decisive, confident, and specific.`

const promptOutputRules = `Return VALID JSON ONLY. No markdown, no explanations outside JSON.
Follow the schema exactly: snake_case field names, scores as numbers (not strings), arrays as shown.`

// channelBrief renders the channel context block shared by every module prompt
func channelBrief(ch *models.ChannelContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "CHANNEL: %q (handle %s)\n", ch.Title, ch.Handle)
	fmt.Fprintf(&b, "Subscribers: %d | Total videos: %d | Total views: %d\n", ch.SubscriberCount, ch.VideoCount, ch.ViewCount)
	if ch.UploadCadence != "" {
		fmt.Fprintf(&b, "Upload cadence: %s\n", ch.UploadCadence)
	}

	videos := ch.Videos
	if len(videos) > maxVideosInPrompt {
		videos = videos[:maxVideosInPrompt]
	}
	for i, v := range videos {
		desc := v.Description
		if len(desc) > 200 {
			desc = desc[:200] + "..."
		}
		fmt.Fprintf(&b, "\nVIDEO %d:\n- Title: %q\n- Description: %s\n- Views: %d | Likes: %d | Comments: %d\n",
			i+1, v.Title, desc, v.ViewCount, v.LikeCount, v.CommentCount)
	}

	return b.String()
}

// modulePrompt assembles the full prompt for one module
func modulePrompt(ch *models.ChannelContext, instructions, schema string) string {
	return fmt.Sprintf(`%s

===========================
CHANNEL VIDEO DATA
===========================
%s

===========================
TASK
===========================
%s

===========================
OUTPUT FORMAT (STRICT)
===========================
%s

JSON SCHEMA:
%s`, promptPreamble, channelBrief(ch), instructions, promptOutputRules, schema)
}
