package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"noteeasy/internal/identity"
)

type memUsers struct {
	byEmail map[string]*User
}

func newMemUsers() *memUsers {
	return &memUsers{byEmail: map[string]*User{}}
}

func (m *memUsers) Insert(_ context.Context, u *User) error {
	if _, ok := m.byEmail[u.Email]; ok {
		return ErrEmailTaken
	}
	u.ID = primitive.NewObjectID()
	u.CreatedAt = time.Now().UTC()
	clone := *u
	m.byEmail[u.Email] = &clone
	return nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func newTestService(store UserStore) (*Service, *identity.TokenManager) {
	tm := identity.NewTokenManager("test-secret", time.Hour)
	return NewService(store, tm), tm
}

func TestService_Register(t *testing.T) {
	store := newMemUsers()
	svc, tm := newTestService(store)

	session, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    "Alice@Example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)
	require.Equal(t, "alice", session.User.Username)
	require.Equal(t, "alice@example.com", session.User.Email, "email is normalized")
	require.False(t, session.User.CreatedAt.IsZero())

	// password is stored hashed, never verbatim
	stored := store.byEmail["alice@example.com"]
	require.NotEqual(t, "hunter22", stored.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("hunter22")))

	// the issued token carries the user's identity
	id, err := tm.Parse(session.Token)
	require.NoError(t, err)
	require.Equal(t, session.User.ID.Hex(), id.UID)
	require.Equal(t, "alice", id.Name)
}

func TestService_Register_Invalid(t *testing.T) {
	svc, _ := newTestService(newMemUsers())

	cases := []RegisterInput{
		{Username: "", Email: "a@b.c", Password: "hunter22"},
		{Username: "alice", Email: "not-an-email", Password: "hunter22"},
		{Username: "alice", Email: "a@b.c", Password: "short"},
	}
	for _, in := range cases {
		_, err := svc.Register(context.Background(), in)
		require.Error(t, err)
	}
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService(newMemUsers())

	in := RegisterInput{Username: "alice", Email: "a@b.c", Password: "hunter22"}
	_, err := svc.Register(context.Background(), in)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), in)
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestService_Login(t *testing.T) {
	svc, tm := newTestService(newMemUsers())

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice", Email: "a@b.c", Password: "hunter22",
	})
	require.NoError(t, err)

	session, err := svc.Login(context.Background(), LoginInput{Email: "a@b.c", Password: "hunter22"})
	require.NoError(t, err)
	id, err := tm.Parse(session.Token)
	require.NoError(t, err)
	require.Equal(t, "a@b.c", id.Email)

	_, err = svc.Login(context.Background(), LoginInput{Email: "a@b.c", Password: "wrong"})
	require.ErrorIs(t, err, ErrBadCredentials)

	_, err = svc.Login(context.Background(), LoginInput{Email: "nobody@b.c", Password: "hunter22"})
	require.ErrorIs(t, err, ErrBadCredentials)
}
