package types

import "time"

// Comment represents a reader comment on a post. Comments are never
// edited or deleted on their own; they go away with their post.
type Comment struct {
	// ID is the unique identifier of the comment.
	ID int `json:"id" db:"id"`

	// PostID references the post the comment was left on.
	PostID int `json:"post_id" db:"post_id"`

	// AuthorID references the user who wrote the comment.
	AuthorID int `json:"author_id" db:"author_id"`

	// AuthorName and AuthorEmail are joined from the users table for
	// rendering the comment byline and gravatar.
	AuthorName  string `json:"author_name" db:"-"`
	AuthorEmail string `json:"-" db:"-"`

	// Body is the comment text.
	Body string `json:"body" db:"body"`

	// CreatedAt is the timestamp at which the comment was submitted.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// AvatarURL returns the gravatar URL for the comment author.
func (c Comment) AvatarURL(size int) string {
	return User{Email: c.AuthorEmail}.AvatarURL(size)
}
