package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/chiasentiment/Samsonsblog/internal/policy"
	"github.com/chiasentiment/Samsonsblog/internal/store"
	"github.com/chiasentiment/Samsonsblog/types"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const flashCookieName = "samsonsblog_flash"

var validate = validator.New()

// ErrorResponse is the JSON error body for the non-HTML endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}

// pageData is the template payload shared by every rendered page.
type pageData struct {
	Title         string
	Authenticated bool
	Admin         bool
	UserName      string
	Flash         string

	Posts      []types.Post
	Post       types.Post
	Comments   []types.Comment
	Fields     types.PostFields
	IsEdit     bool
	FormAction string
}

// newPageData fills the ambient fields every template needs: actor
// state (re-derived from the request, never cached) and any pending
// flash message.
func newPageData(w http.ResponseWriter, r *http.Request, title string) pageData {
	actor := CurrentActor(r.Context())
	data := pageData{
		Title:         title,
		Authenticated: actor != nil,
		Admin:         policy.IsAdmin(actor),
		Flash:         popFlash(w, r),
	}
	if actor != nil {
		data.UserName = actor.Name
	}
	return data
}

// setFlash queues a one-shot message for the next rendered page.
func setFlash(w http.ResponseWriter, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    url.QueryEscape(message),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func popFlash(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	message, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return ""
	}
	return message
}

// handleError translates the error taxonomy at the request boundary:
// anonymous actors are sent to the login page, non-admins get 403,
// missing records get 404, everything else is a 500.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, policy.ErrUnauthenticated):
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	case errors.Is(err, policy.ErrForbidden):
		http.Error(w, "unauthorized", http.StatusForbidden)
	case errors.Is(err, store.ErrNotFound):
		http.NotFound(w, r)
	default:
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func parsePostID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "postID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.New("invalid post id")
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
