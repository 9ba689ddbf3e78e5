package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/chiasentiment/Samsonsblog/internal/policy"
	"github.com/chiasentiment/Samsonsblog/types"
)

// ErrEmptyComment is returned when a submitted comment has no body.
var ErrEmptyComment = errors.New("comment body is required")

// postDateLayout is the publication-date format stamped on new posts.
const postDateLayout = "January 02, 2006"

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	List(ctx context.Context) ([]types.Post, error)
	Get(ctx context.Context, id int) (types.Post, error)
	Create(ctx context.Context, post types.Post) (types.Post, error)
	Update(ctx context.Context, post types.Post) (types.Post, error)
	Delete(ctx context.Context, id int) error
}

// CommentRepository defines persistence operations for comments.
type CommentRepository interface {
	Create(ctx context.Context, comment types.Comment) (types.Comment, error)
	ListByPost(ctx context.Context, postID int) ([]types.Comment, error)
}

// EventPublisher publishes activity events to a broker channel.
// *mq.MQ satisfies this.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

// BlogService orchestrates post and comment use-cases. Every operation
// checks the access policy against the acting user before touching the
// stores; a failed check performs no side effect.
type BlogService struct {
	posts    PostRepository
	comments CommentRepository
	events   EventPublisher
}

// NewBlogService constructs a BlogService. events may be nil, in which
// case no activity events are published.
func NewBlogService(posts PostRepository, comments CommentRepository, events EventPublisher) *BlogService {
	return &BlogService{
		posts:    posts,
		comments: comments,
		events:   events,
	}
}

// ListPosts returns all posts in ascending id order. Requires an
// authenticated actor.
func (s *BlogService) ListPosts(ctx context.Context, actor *types.User) ([]types.Post, error) {
	if err := policy.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	return s.posts.List(ctx)
}

// GetPost returns one post and its comments in insertion order.
// Requires an authenticated actor.
func (s *BlogService) GetPost(ctx context.Context, actor *types.User, id int) (types.Post, []types.Comment, error) {
	if err := policy.RequireAuthenticated(actor); err != nil {
		return types.Post{}, nil, err
	}

	post, err := s.posts.Get(ctx, id)
	if err != nil {
		return types.Post{}, nil, err
	}

	comments, err := s.comments.ListByPost(ctx, id)
	if err != nil {
		return types.Post{}, nil, err
	}

	return post, comments, nil
}

// CreatePost publishes a new post authored by the acting admin. The
// publication date is stamped server-side; the author is bound to the
// actor.
func (s *BlogService) CreatePost(ctx context.Context, actor *types.User, fields types.PostFields) (types.Post, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return types.Post{}, err
	}

	post, err := s.posts.Create(ctx, types.Post{
		AuthorID: actor.ID,
		Title:    fields.Title,
		Subtitle: fields.Subtitle,
		Date:     time.Now().Format(postDateLayout),
		Body:     fields.Body,
		ImgURL:   fields.ImgURL,
	})
	if err != nil {
		return types.Post{}, err
	}

	s.publishPostEvent(ctx, types.EventPostCreated, post)
	return post, nil
}

// UpdatePost applies the editable fields to an existing post. Author
// and date are immutable after creation.
func (s *BlogService) UpdatePost(ctx context.Context, actor *types.User, id int, fields types.PostFields) (types.Post, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return types.Post{}, err
	}

	post, err := s.posts.Get(ctx, id)
	if err != nil {
		return types.Post{}, err
	}

	post.Title = fields.Title
	post.Subtitle = fields.Subtitle
	post.Body = fields.Body
	post.ImgURL = fields.ImgURL

	updated, err := s.posts.Update(ctx, post)
	if err != nil {
		return types.Post{}, err
	}

	s.publishPostEvent(ctx, types.EventPostUpdated, updated)
	return updated, nil
}

// DeletePost removes a post and, through the store cascade, its
// comments.
func (s *BlogService) DeletePost(ctx context.Context, actor *types.User, id int) error {
	if err := policy.RequireAdmin(actor); err != nil {
		return err
	}

	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}

	s.publishPostEvent(ctx, types.EventPostDeleted, types.Post{ID: id, AuthorID: actor.ID})
	return nil
}

// AddComment binds a new comment to the acting user and the target
// post. The post must exist and the body must be non-empty.
func (s *BlogService) AddComment(ctx context.Context, actor *types.User, postID int, body string) (types.Comment, error) {
	if err := policy.RequireAuthenticated(actor); err != nil {
		return types.Comment{}, err
	}
	if body == "" {
		return types.Comment{}, ErrEmptyComment
	}

	comment, err := s.comments.Create(ctx, types.Comment{
		PostID:   postID,
		AuthorID: actor.ID,
		Body:     body,
	})
	if err != nil {
		return types.Comment{}, err
	}

	s.publishCommentEvent(ctx, comment)
	return comment, nil
}

// Event publishing is best effort: a broker failure is logged and the
// request succeeds anyway.
func (s *BlogService) publishPostEvent(ctx context.Context, eventType string, post types.Post) {
	if s.events == nil {
		return
	}

	payload, err := json.Marshal(types.PostEvent{
		Type:       eventType,
		PostID:     post.ID,
		Title:      post.Title,
		AuthorID:   post.AuthorID,
		OccurredAt: time.Now(),
	})
	if err != nil {
		log.Printf("marshal %s event: %v", eventType, err)
		return
	}

	if _, err := s.events.Publish(ctx, types.ChannelPosts, payload, map[string]string{"type": eventType}); err != nil {
		log.Printf("publish %s event: %v", eventType, err)
	}
}

func (s *BlogService) publishCommentEvent(ctx context.Context, comment types.Comment) {
	if s.events == nil {
		return
	}

	payload, err := json.Marshal(types.CommentEvent{
		Type:       types.EventCommentCreated,
		CommentID:  comment.ID,
		PostID:     comment.PostID,
		AuthorID:   comment.AuthorID,
		OccurredAt: time.Now(),
	})
	if err != nil {
		log.Printf("marshal %s event: %v", types.EventCommentCreated, err)
		return
	}

	if _, err := s.events.Publish(ctx, types.ChannelComments, payload, map[string]string{"type": types.EventCommentCreated}); err != nil {
		log.Printf("publish %s event: %v", types.EventCommentCreated, err)
	}
}
