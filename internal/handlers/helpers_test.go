package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/chiasentiment/Samsonsblog/internal/services"
	"github.com/chiasentiment/Samsonsblog/internal/session"
	"github.com/chiasentiment/Samsonsblog/internal/storage"
	"github.com/chiasentiment/Samsonsblog/internal/store"
	"github.com/chiasentiment/Samsonsblog/internal/web"
	"github.com/chiasentiment/Samsonsblog/types"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

// In-memory repositories backing the handler tests. They mirror the
// Postgres store's duplicate and foreign-key semantics.

type fakeUserRepo struct {
	nextID int
	users  map[int]types.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: make(map[int]types.User)}
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (types.User, error) {
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	if _, err := r.GetByEmail(context.Background(), user.Email); err == nil {
		return types.User{}, store.ErrDuplicateEmail
	}
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = user
	return user, nil
}

type fakePostRepo struct {
	nextID int
	posts  map[int]types.Post
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{nextID: 1, posts: make(map[int]types.Post)}
}

func (r *fakePostRepo) List(_ context.Context) ([]types.Post, error) {
	posts := make([]types.Post, 0, len(r.posts))
	for _, post := range r.posts {
		posts = append(posts, post)
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID < posts[j].ID })
	return posts, nil
}

func (r *fakePostRepo) Get(_ context.Context, id int) (types.Post, error) {
	post, ok := r.posts[id]
	if !ok {
		return types.Post{}, store.ErrNotFound
	}
	return post, nil
}

func (r *fakePostRepo) Create(_ context.Context, post types.Post) (types.Post, error) {
	for _, existing := range r.posts {
		if existing.Title == post.Title {
			return types.Post{}, store.ErrDuplicateTitle
		}
	}
	post.ID = r.nextID
	r.nextID++
	post.CreatedAt = time.Now()
	r.posts[post.ID] = post
	return post, nil
}

func (r *fakePostRepo) Update(_ context.Context, post types.Post) (types.Post, error) {
	existing, ok := r.posts[post.ID]
	if !ok {
		return types.Post{}, store.ErrNotFound
	}
	existing.Title = post.Title
	existing.Subtitle = post.Subtitle
	existing.Body = post.Body
	existing.ImgURL = post.ImgURL
	r.posts[post.ID] = existing
	return existing, nil
}

func (r *fakePostRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.posts[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.posts, id)
	return nil
}

type fakeCommentRepo struct {
	nextID   int
	comments []types.Comment
	posts    *fakePostRepo
}

func newFakeCommentRepo(posts *fakePostRepo) *fakeCommentRepo {
	return &fakeCommentRepo{nextID: 1, posts: posts}
}

func (r *fakeCommentRepo) Create(_ context.Context, comment types.Comment) (types.Comment, error) {
	if _, ok := r.posts.posts[comment.PostID]; !ok {
		return types.Comment{}, store.ErrNotFound
	}
	comment.ID = r.nextID
	r.nextID++
	comment.CreatedAt = time.Now()
	r.comments = append(r.comments, comment)
	return comment, nil
}

func (r *fakeCommentRepo) ListByPost(_ context.Context, postID int) ([]types.Comment, error) {
	result := make([]types.Comment, 0)
	for _, comment := range r.comments {
		if comment.PostID == postID {
			result = append(result, comment)
		}
	}
	return result, nil
}

// fakeObjectStorage keeps uploaded objects in memory.
type fakeObjectStorage struct {
	objects      map[string][]byte
	contentTypes map[string]string
}

func newFakeObjectStorage() *fakeObjectStorage {
	return &fakeObjectStorage{
		objects:      make(map[string][]byte),
		contentTypes: make(map[string]string),
	}
}

func (s *fakeObjectStorage) EnsureBucket(_ context.Context) error { return nil }

func (s *fakeObjectStorage) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.objects[key] = data
	s.contentTypes[key] = contentType
	return nil
}

func (s *fakeObjectStorage) Get(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := s.objects[key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

type testEnv struct {
	router   *chi.Mux
	users    *fakeUserRepo
	posts    *fakePostRepo
	comments *fakeCommentRepo
	images   *fakeObjectStorage
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	render, err := web.NewRenderer()
	require.NoError(t, err)

	users := newFakeUserRepo()
	posts := newFakePostRepo()
	comments := newFakeCommentRepo(posts)
	images := newFakeObjectStorage()

	userService := services.NewUserService(users)
	blogService := services.NewBlogService(posts, comments, nil)
	sessions := session.NewManager("test-secret")

	router := chi.NewRouter()
	router.Use(WithActor(sessions, userService))
	AuthRouter(router, userService, sessions, render)
	BlogRouter(router, blogService, render)
	ImageRouter(router, storage.NewImageStore(images))

	return &testEnv{
		router:   router,
		users:    users,
		posts:    posts,
		comments: comments,
		images:   images,
	}
}

func (e *testEnv) do(method, target string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	recorder := httptest.NewRecorder()
	e.router.ServeHTTP(recorder, req)
	return recorder
}

// register creates an account and returns the session cookie for
// follow-up requests.
func (e *testEnv) register(t *testing.T, email, name string) []*http.Cookie {
	t.Helper()

	recorder := e.do(http.MethodPost, "/register", url.Values{
		"name":     {name},
		"email":    {email},
		"password": {"password1"},
	}, nil)
	require.Equal(t, http.StatusSeeOther, recorder.Code)
	require.Equal(t, "/", recorder.Result().Header.Get("Location"))

	cookies := sessionCookies(recorder)
	require.NotEmpty(t, cookies)
	return cookies
}

func sessionCookies(recorder *httptest.ResponseRecorder) []*http.Cookie {
	var result []*http.Cookie
	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == session.CookieName && cookie.Value != "" {
			result = append(result, cookie)
		}
	}
	return result
}

func postFormValues(title string) url.Values {
	return url.Values{
		"title":    {title},
		"subtitle": {"A subtitle"},
		"img_url":  {"https://example.com/img.png"},
		"body":     {"Some body text"},
	}
}
