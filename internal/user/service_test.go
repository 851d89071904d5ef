package user_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/lancehub/lancehub/internal/profile"
	"github.com/lancehub/lancehub/internal/user"
)

func newService(t *testing.T) (*user.Service, *user.MockRepository, *user.MockProfileCreator) {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := user.NewMockRepository(ctrl)
	profiles := user.NewMockProfileCreator(ctrl)

	return user.NewService(repo, profiles), repo, profiles
}

func TestService_Register(t *testing.T) {
	params := user.RegisterParams{
		Username: "asha",
		Email:    "asha@example.com",
		Password: "s3cret-pass",
	}

	t.Run("CreatesAccountAndProfile", func(t *testing.T) {
		svc, repo, profiles := newService(t)

		var created *user.User

		repo.EXPECT().
			CreateUser(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, u *user.User) error {
				assert.Equal(t, "asha", u.Username)
				assert.NotEqual(t, "s3cret-pass", u.PasswordHash)

				created = u

				return nil
			})
		profiles.EXPECT().
			CreateForUser(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, userID uuid.UUID) (*profile.Profile, error) {
				assert.Equal(t, created.ID, userID)

				return &profile.Profile{UserID: created.ID}, nil
			})

		u, err := svc.Register(context.Background(), params)
		require.NoError(t, err)

		// The stored hash must verify against the original password.
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret-pass")))
	})

	t.Run("ProfileFailureRemovesAccount", func(t *testing.T) {
		svc, repo, profiles := newService(t)

		var createdID uuid.UUID

		repo.EXPECT().
			CreateUser(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, u *user.User) error {
				createdID = u.ID
				return nil
			})
		profiles.EXPECT().
			CreateForUser(gomock.Any(), gomock.Any()).
			Return(nil, errors.New("insert failed"))
		repo.EXPECT().
			DeleteUser(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, id uuid.UUID) error {
				assert.Equal(t, createdID, id)
				return nil
			})

		_, err := svc.Register(context.Background(), params)
		assert.Error(t, err)
	})

	t.Run("UsernameTaken", func(t *testing.T) {
		svc, repo, _ := newService(t)

		repo.EXPECT().
			CreateUser(gomock.Any(), gomock.Any()).
			Return(user.ErrUsernameTaken)

		_, err := svc.Register(context.Background(), params)
		assert.ErrorIs(t, err, user.ErrUsernameTaken)
	})
}

func TestService_Authenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)

	stored := &user.User{Username: "asha", PasswordHash: string(hash)}

	t.Run("Success", func(t *testing.T) {
		svc, repo, _ := newService(t)

		repo.EXPECT().
			GetUserByUsername(gomock.Any(), "asha").
			Return(stored, nil)

		u, err := svc.Authenticate(context.Background(), "asha", "s3cret-pass")
		require.NoError(t, err)
		assert.Equal(t, "asha", u.Username)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		svc, repo, _ := newService(t)

		repo.EXPECT().
			GetUserByUsername(gomock.Any(), "asha").
			Return(stored, nil)

		_, err := svc.Authenticate(context.Background(), "asha", "wrong")
		assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	})

	t.Run("UnknownUserLooksLikeBadCredentials", func(t *testing.T) {
		svc, repo, _ := newService(t)

		repo.EXPECT().
			GetUserByUsername(gomock.Any(), "nobody").
			Return(nil, user.ErrNotFound)

		_, err := svc.Authenticate(context.Background(), "nobody", "s3cret-pass")
		assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	})
}
