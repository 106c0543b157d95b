package postsapi

import (
	"time"

	"quill/cmd/internal/posts"
)

type createRequest struct {
	Title string    `json:"title"`
	Body  string    `json:"body"`
	Tags  *[]string `json:"tags"`
}

// updateRequest is a partial update; absent fields are left unchanged.
type updateRequest struct {
	Title *string   `json:"title"`
	Body  *string   `json:"body"`
	Tags  *[]string `json:"tags"`
}

type postResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Tags      []string  `json:"tags"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

func toPostResponse(p posts.Post) postResponse {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return postResponse{
		ID:        p.ID,
		Title:     p.Title,
		Body:      p.Body,
		Tags:      tags,
		OwnerID:   p.OwnerID,
		CreatedAt: p.CreatedAt,
	}
}

// feedMessage is the wire shape of one stream event.
type feedMessage struct {
	Type string       `json:"type"`
	Post postResponse `json:"post"`
}

func toFeedMessage(ev posts.Event) feedMessage {
	return feedMessage{
		Type: string(ev.Type),
		Post: toPostResponse(ev.Post),
	}
}
