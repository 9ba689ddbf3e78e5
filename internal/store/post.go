package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/chiasentiment/Samsonsblog/types"
)

// PostRepository handles persistence for blog posts.
type PostRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) List(ctx context.Context) ([]types.Post, error) {
	const query = `
		SELECT p.id, p.author_id, u.name, p.title, p.subtitle, p.date, p.body, p.img_url, p.created_at
		FROM blog_posts p
		JOIN users u ON u.id = p.author_id
		ORDER BY p.id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := make([]types.Post, 0)
	for rows.Next() {
		var post types.Post
		if err := rows.Scan(
			&post.ID,
			&post.AuthorID,
			&post.AuthorName,
			&post.Title,
			&post.Subtitle,
			&post.Date,
			&post.Body,
			&post.ImgURL,
			&post.CreatedAt,
		); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return posts, nil
}

func (r *PostRepository) Get(ctx context.Context, id int) (types.Post, error) {
	const query = `
		SELECT p.id, p.author_id, u.name, p.title, p.subtitle, p.date, p.body, p.img_url, p.created_at
		FROM blog_posts p
		JOIN users u ON u.id = p.author_id
		WHERE p.id = $1`
	var post types.Post
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&post.ID,
		&post.AuthorID,
		&post.AuthorName,
		&post.Title,
		&post.Subtitle,
		&post.Date,
		&post.Body,
		&post.ImgURL,
		&post.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Post{}, ErrNotFound
		}
		return types.Post{}, err
	}
	return post, nil
}

func (r *PostRepository) Create(ctx context.Context, post types.Post) (types.Post, error) {
	post.CreatedAt = time.Now()

	const query = `
		INSERT INTO blog_posts (author_id, title, subtitle, date, body, img_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		post.AuthorID,
		post.Title,
		post.Subtitle,
		post.Date,
		post.Body,
		post.ImgURL,
		post.CreatedAt,
	).Scan(&post.ID); err != nil {
		if isUniqueViolation(err) {
			return types.Post{}, ErrDuplicateTitle
		}
		return types.Post{}, err
	}

	return post, nil
}

// Update writes the four editable fields. Author, date and creation
// time are never touched here.
func (r *PostRepository) Update(ctx context.Context, post types.Post) (types.Post, error) {
	const query = `
		UPDATE blog_posts
		SET title = $1,
			subtitle = $2,
			body = $3,
			img_url = $4
		WHERE id = $5`
	result, err := r.db.ExecContext(
		ctx,
		query,
		post.Title,
		post.Subtitle,
		post.Body,
		post.ImgURL,
		post.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return types.Post{}, ErrDuplicateTitle
		}
		return types.Post{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Post{}, err
	}
	if affected == 0 {
		return types.Post{}, ErrNotFound
	}

	return post, nil
}

// Delete removes a post. Its comments go with it via the schema's
// ON DELETE CASCADE.
func (r *PostRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM blog_posts WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
