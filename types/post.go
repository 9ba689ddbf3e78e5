package types

import "time"

// Post represents a published blog post.
type Post struct {
	// ID is the unique identifier of the post.
	ID int `json:"id" db:"id"`

	// AuthorID references the user who authored the post. A post has
	// exactly one author, bound at creation and immutable afterwards.
	AuthorID int `json:"author_id" db:"author_id"`

	// AuthorName is the author's display name, joined from the users
	// table for rendering. It is not a column of blog_posts.
	AuthorName string `json:"author_name" db:"-"`

	// Title is the unique headline of the post.
	Title string `json:"title" db:"title"`

	// Subtitle is the secondary headline shown under the title.
	Subtitle string `json:"subtitle" db:"subtitle"`

	// Date is the human-readable publication date ("January 02, 2006"),
	// stamped server-side at creation and immutable afterwards.
	Date string `json:"date" db:"date"`

	// Body is the full text of the post.
	Body string `json:"body" db:"body"`

	// ImgURL is the URL of the post's header image.
	ImgURL string `json:"img_url" db:"img_url"`

	// CreatedAt is the timestamp at which the post was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PostFields carries the four editable content fields of a post.
// Author and date are deliberately absent: they never change after creation.
type PostFields struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Body     string `json:"body"`
	ImgURL   string `json:"img_url"`
}
