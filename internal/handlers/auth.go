package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/chiasentiment/Samsonsblog/internal/services"
	"github.com/chiasentiment/Samsonsblog/internal/session"
	"github.com/chiasentiment/Samsonsblog/internal/store"
	"github.com/chiasentiment/Samsonsblog/internal/web"
	"github.com/go-chi/chi/v5"
)

// AuthHandler serves the register, login and logout pages.
type AuthHandler struct {
	users    *services.UserService
	sessions *session.Manager
	render   *web.Renderer
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(users *services.UserService, sessions *session.Manager, render *web.Renderer) *AuthHandler {
	return &AuthHandler{
		users:    users,
		sessions: sessions,
		render:   render,
	}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, users *services.UserService, sessions *session.Manager, render *web.Renderer) {
	handler := NewAuthHandler(users, sessions, render)

	r.Get("/register", handler.ShowRegister)
	r.Post("/register", handler.Register)
	r.Get("/login", handler.ShowLogin)
	r.Post("/login", handler.Login)
	r.Get("/logout", handler.Logout)
}

// RegisterForm is the typed request for account registration.
type RegisterForm struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
}

// LoginForm is the typed request for credential login.
type LoginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

func (h *AuthHandler) ShowRegister(w http.ResponseWriter, r *http.Request) {
	data := newPageData(w, r, "Register")
	if err := h.render.Render(w, http.StatusOK, "register", data); err != nil {
		log.Printf("render register: %v", err)
	}
}

// Register creates the account and immediately establishes a session
// for it. A duplicate email is sent to the login page instead.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	form := RegisterForm{
		Name:     strings.TrimSpace(r.PostFormValue("name")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	if err := validate.Struct(form); err != nil {
		setFlash(w, "Please fill in a name, a valid email and a password of at least 8 characters.")
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	}

	user, err := h.users.Register(r.Context(), form.Email, form.Password, form.Name)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			setFlash(w, "User already registered. Please log in instead.")
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if err := h.sessions.Establish(w, user.ID); err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	data := newPageData(w, r, "Log In")
	if err := h.render.Render(w, http.StatusOK, "login", data); err != nil {
		log.Printf("render login: %v", err)
	}
}

// Login verifies the credentials and establishes a session. Failed
// attempts leave the client anonymous and surface a flash message.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	form := LoginForm{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	if err := validate.Struct(form); err != nil {
		setFlash(w, "Please enter your email and password.")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	user, err := h.users.Authenticate(r.Context(), form.Email, form.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			setFlash(w, "User email not found. Please register.")
		case errors.Is(err, services.ErrInvalidCredentials):
			setFlash(w, "Incorrect password. Please try again.")
		default:
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := h.sessions.Establish(w, user.ID); err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout clears the session and returns the client to the login page.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if CurrentActor(r.Context()) == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	h.sessions.Clear(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
