package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/chiasentiment/Samsonsblog/types"
)

// CommentRepository handles persistence for comments. Comments are
// append-only: no updates, and deletion happens only through the post
// cascade.
type CommentRepository struct {
	db *sql.DB
}

func NewCommentRepository(db *sql.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, comment types.Comment) (types.Comment, error) {
	comment.CreatedAt = time.Now()

	const query = `
		INSERT INTO comments (author_id, post_id, body, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		comment.AuthorID,
		comment.PostID,
		comment.Body,
		comment.CreatedAt,
	).Scan(&comment.ID); err != nil {
		if isForeignKeyViolation(err) {
			return types.Comment{}, ErrNotFound
		}
		return types.Comment{}, err
	}
	return comment, nil
}

// ListByPost returns the post's comments in insertion order.
func (r *CommentRepository) ListByPost(ctx context.Context, postID int) ([]types.Comment, error) {
	const query = `
		SELECT c.id, c.post_id, c.author_id, u.name, u.email, c.body, c.created_at
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.post_id = $1
		ORDER BY c.id`
	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := make([]types.Comment, 0)
	for rows.Next() {
		var comment types.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.PostID,
			&comment.AuthorID,
			&comment.AuthorName,
			&comment.AuthorEmail,
			&comment.Body,
			&comment.CreatedAt,
		); err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return comments, nil
}
