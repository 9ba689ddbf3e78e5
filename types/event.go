package types

import "time"

// Event types published on the activity channels.
const (
	EventPostCreated    = "post.created"
	EventPostUpdated    = "post.updated"
	EventPostDeleted    = "post.deleted"
	EventCommentCreated = "comment.created"
)

// Channels the events are published on.
const (
	ChannelPosts    = "blog.posts"
	ChannelComments = "blog.comments"
)

// PostEvent is the payload published when a post is created, updated
// or deleted.
type PostEvent struct {
	Type       string    `json:"type"`
	PostID     int       `json:"post_id"`
	Title      string    `json:"title"`
	AuthorID   int       `json:"author_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// CommentEvent is the payload published when a comment is submitted.
type CommentEvent struct {
	Type       string    `json:"type"`
	CommentID  int       `json:"comment_id"`
	PostID     int       `json:"post_id"`
	AuthorID   int       `json:"author_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
