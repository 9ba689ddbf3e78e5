package services

import (
	"context"
	"errors"

	"github.com/chiasentiment/Samsonsblog/internal/store"
	"github.com/chiasentiment/Samsonsblog/types"
	"golang.org/x/crypto/bcrypt"
)

// ErrUserNotFound is returned on login when the email is not registered.
var ErrUserNotFound = errors.New("user email not found")

// ErrInvalidCredentials is returned on login when the password does not
// match the stored hash.
var ErrInvalidCredentials = errors.New("incorrect password")

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
}

// UserService encapsulates identity use-cases: registration and
// credential verification.
type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

// Register creates an account for the given credentials. The plaintext
// password is hashed here and never stored. A duplicate email fails
// with store.ErrDuplicateEmail.
func (s *UserService) Register(ctx context.Context, email, password, name string) (types.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return types.User{}, err
	}

	return s.repo.Create(ctx, types.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hashed),
	})
}

// Authenticate verifies the credentials and returns the matching user.
// An unknown email fails with ErrUserNotFound, a wrong password with
// ErrInvalidCredentials. Nothing is mutated either way.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (types.User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrUserNotFound
		}
		return types.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return types.User{}, ErrInvalidCredentials
	}

	return user, nil
}
