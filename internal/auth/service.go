package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"noteeasy/internal/identity"
)

const bcryptCost = 10

var (
	ErrEmailTaken     = errors.New("email already registered")
	ErrBadCredentials = errors.New("invalid email or password")
)

// UserStore is the persistence surface the service drives. *Repo
// implements it.
type UserStore interface {
	Insert(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
}

type Service struct {
	store    UserStore
	tokens   *identity.TokenManager
	validate *validator.Validate
}

func NewService(store UserStore, tokens *identity.TokenManager) *Service {
	return &Service{
		store:    store,
		tokens:   tokens,
		validate: validator.New(),
	}
}

// Register creates a user and issues a session token for it.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("invalid registration: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
	}
	if err := s.store.Insert(ctx, user); err != nil {
		return nil, err
	}

	return s.session(user)
}

// Login verifies credentials and issues a session token.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if err := s.validate.Struct(in); err != nil {
		return nil, ErrBadCredentials
	}

	user, err := s.store.FindByEmail(ctx, in.Email)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		return nil, ErrBadCredentials
	}

	return s.session(user)
}

func (s *Service) session(user *User) (*Session, error) {
	token, err := s.tokens.Generate(identity.Identity{
		UID:   user.ID.Hex(),
		Email: user.Email,
		Name:  user.Username,
	})
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Session{Token: token, User: user}, nil
}
