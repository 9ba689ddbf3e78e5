package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/chiasentiment/Samsonsblog/internal/policy"
	"github.com/chiasentiment/Samsonsblog/internal/services"
	"github.com/chiasentiment/Samsonsblog/internal/store"
	"github.com/chiasentiment/Samsonsblog/internal/web"
	"github.com/chiasentiment/Samsonsblog/types"
	"github.com/go-chi/chi/v5"
)

// BlogHandler serves the post and comment pages.
type BlogHandler struct {
	blog   *services.BlogService
	render *web.Renderer
}

// NewBlogHandler constructs a BlogHandler with the provided dependencies.
func NewBlogHandler(blog *services.BlogService, render *web.Renderer) *BlogHandler {
	return &BlogHandler{
		blog:   blog,
		render: render,
	}
}

// BlogRouter registers the blog routes on the given router.
func BlogRouter(r chi.Router, blog *services.BlogService, render *web.Renderer) {
	handler := NewBlogHandler(blog, render)

	r.Get("/", handler.Index)
	r.Get("/about", handler.About)
	r.Get("/contact", handler.Contact)
	r.Route("/post/{postID}", func(r chi.Router) {
		r.Get("/", handler.ShowPost)
		r.Post("/", handler.SubmitComment)
	})
	r.Get("/new-post", handler.ShowNewPost)
	r.Post("/new-post", handler.CreatePost)
	r.Route("/edit-post/{postID}", func(r chi.Router) {
		r.Get("/", handler.ShowEditPost)
		r.Post("/", handler.UpdatePost)
	})
	r.Get("/delete/{postID}", handler.DeletePost)
	r.Post("/delete/{postID}", handler.DeletePost)
}

// PostForm is the typed request for creating or editing a post. All
// four content fields are mandatory.
type PostForm struct {
	Title    string `validate:"required"`
	Subtitle string `validate:"required"`
	Body     string `validate:"required"`
	ImgURL   string `validate:"required"`
}

// CommentForm is the typed request for submitting a comment.
type CommentForm struct {
	Body string `validate:"required"`
}

// Index lists all posts, oldest first.
func (h *BlogHandler) Index(w http.ResponseWriter, r *http.Request) {
	posts, err := h.blog.ListPosts(r.Context(), CurrentActor(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}

	data := newPageData(w, r, "Home")
	data.Posts = posts
	if err := h.render.Render(w, http.StatusOK, "index", data); err != nil {
		log.Printf("render index: %v", err)
	}
}

// ShowPost renders one post with its comments and the comment form.
func (h *BlogHandler) ShowPost(w http.ResponseWriter, r *http.Request) {
	id, err := parsePostID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	post, comments, err := h.blog.GetPost(r.Context(), CurrentActor(r.Context()), id)
	if err != nil {
		handleError(w, r, err)
		return
	}

	data := newPageData(w, r, post.Title)
	data.Post = post
	data.Comments = comments
	if err := h.render.Render(w, http.StatusOK, "post", data); err != nil {
		log.Printf("render post: %v", err)
	}
}

// SubmitComment appends a comment to the post and returns to it.
func (h *BlogHandler) SubmitComment(w http.ResponseWriter, r *http.Request) {
	id, err := parsePostID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	form := CommentForm{Body: strings.TrimSpace(r.PostFormValue("body"))}
	if err := validate.Struct(form); err != nil {
		setFlash(w, "Comment cannot be empty.")
		http.Redirect(w, r, fmt.Sprintf("/post/%d", id), http.StatusSeeOther)
		return
	}

	if _, err := h.blog.AddComment(r.Context(), CurrentActor(r.Context()), id, form.Body); err != nil {
		if errors.Is(err, services.ErrEmptyComment) {
			setFlash(w, "Comment cannot be empty.")
			http.Redirect(w, r, fmt.Sprintf("/post/%d", id), http.StatusSeeOther)
			return
		}
		handleError(w, r, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/post/%d", id), http.StatusSeeOther)
}

// ShowNewPost renders the empty post editor. Admin only.
func (h *BlogHandler) ShowNewPost(w http.ResponseWriter, r *http.Request) {
	if err := policy.RequireAdmin(CurrentActor(r.Context())); err != nil {
		handleError(w, r, err)
		return
	}

	data := newPageData(w, r, "New Post")
	data.FormAction = "/new-post"
	if err := h.render.Render(w, http.StatusOK, "make-post", data); err != nil {
		log.Printf("render make-post: %v", err)
	}
}

// CreatePost publishes a new post authored by the admin.
func (h *BlogHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	fields, ok := h.parsePostForm(w, r, "/new-post")
	if !ok {
		return
	}

	post, err := h.blog.CreatePost(r.Context(), CurrentActor(r.Context()), fields)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateTitle) {
			setFlash(w, "A post with that title already exists.")
			http.Redirect(w, r, "/new-post", http.StatusSeeOther)
			return
		}
		handleError(w, r, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/post/%d", post.ID), http.StatusSeeOther)
}

// ShowEditPost renders the editor pre-populated with the post's current
// fields. Admin only.
func (h *BlogHandler) ShowEditPost(w http.ResponseWriter, r *http.Request) {
	actor := CurrentActor(r.Context())
	if err := policy.RequireAdmin(actor); err != nil {
		handleError(w, r, err)
		return
	}

	id, err := parsePostID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	post, _, err := h.blog.GetPost(r.Context(), actor, id)
	if err != nil {
		handleError(w, r, err)
		return
	}

	data := newPageData(w, r, "Edit Post")
	data.IsEdit = true
	data.FormAction = fmt.Sprintf("/edit-post/%d", post.ID)
	data.Fields = types.PostFields{
		Title:    post.Title,
		Subtitle: post.Subtitle,
		Body:     post.Body,
		ImgURL:   post.ImgURL,
	}
	if err := h.render.Render(w, http.StatusOK, "make-post", data); err != nil {
		log.Printf("render make-post: %v", err)
	}
}

// UpdatePost applies the edited fields. Author and date stay as they
// were at creation.
func (h *BlogHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, err := parsePostID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	editPath := fmt.Sprintf("/edit-post/%d", id)
	fields, ok := h.parsePostForm(w, r, editPath)
	if !ok {
		return
	}

	post, err := h.blog.UpdatePost(r.Context(), CurrentActor(r.Context()), id, fields)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateTitle) {
			setFlash(w, "A post with that title already exists.")
			http.Redirect(w, r, editPath, http.StatusSeeOther)
			return
		}
		handleError(w, r, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/post/%d", post.ID), http.StatusSeeOther)
}

// DeletePost removes the post and its comments, then returns home.
func (h *BlogHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := parsePostID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := h.blog.DeletePost(r.Context(), CurrentActor(r.Context()), id); err != nil {
		handleError(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *BlogHandler) About(w http.ResponseWriter, r *http.Request) {
	data := newPageData(w, r, "About")
	if err := h.render.Render(w, http.StatusOK, "about", data); err != nil {
		log.Printf("render about: %v", err)
	}
}

func (h *BlogHandler) Contact(w http.ResponseWriter, r *http.Request) {
	data := newPageData(w, r, "Contact")
	if err := h.render.Render(w, http.StatusOK, "contact", data); err != nil {
		log.Printf("render contact: %v", err)
	}
}

// parsePostForm parses and validates the four mandatory post fields.
// On a validation failure the client is redirected back to retryPath
// with a flash and false is returned.
func (h *BlogHandler) parsePostForm(w http.ResponseWriter, r *http.Request, retryPath string) (types.PostFields, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return types.PostFields{}, false
	}

	form := PostForm{
		Title:    strings.TrimSpace(r.PostFormValue("title")),
		Subtitle: strings.TrimSpace(r.PostFormValue("subtitle")),
		Body:     strings.TrimSpace(r.PostFormValue("body")),
		ImgURL:   strings.TrimSpace(r.PostFormValue("img_url")),
	}
	if err := validate.Struct(form); err != nil {
		setFlash(w, "Title, subtitle, image URL and body are all required.")
		http.Redirect(w, r, retryPath, http.StatusSeeOther)
		return types.PostFields{}, false
	}

	return types.PostFields{
		Title:    form.Title,
		Subtitle: form.Subtitle,
		Body:     form.Body,
		ImgURL:   form.ImgURL,
	}, true
}
