package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/plan-connect/internal/lib/apperr"
	"github.com/magabrotheeeer/plan-connect/internal/lib/jwt"
	"github.com/magabrotheeeer/plan-connect/internal/lib/password"
	"github.com/magabrotheeeer/plan-connect/internal/models"
)

type UsersMock struct{ mock.Mock }

func (m *UsersMock) RegisterUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}
func (m *UsersMock) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func newMaker() jwt.Maker {
	return jwt.NewMaker("test-secret", time.Hour)
}

func TestAuthService_Register(t *testing.T) {
	t.Run("default role is customer", func(t *testing.T) {
		users := new(UsersMock)
		users.On("RegisterUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
			return u.Role == models.RoleCustomer && u.Active && u.PasswordHash != "secret-pass"
		})).Return("new-uid", nil).Once()

		svc := NewAuthService(users, newMaker())
		uid, err := svc.Register(context.Background(), models.DummyRegister{
			Email:    "user@example.com",
			Username: "user1",
			Password: "secret-pass",
		})

		require.NoError(t, err)
		assert.Equal(t, "new-uid", uid)
		users.AssertExpectations(t)
	})

	t.Run("explicit advisor role kept", func(t *testing.T) {
		users := new(UsersMock)
		users.On("RegisterUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
			return u.Role == models.RoleAdvisor
		})).Return("advisor-uid", nil).Once()

		svc := NewAuthService(users, newMaker())
		_, err := svc.Register(context.Background(), models.DummyRegister{
			Email:    "advisor@example.com",
			Username: "advisor1",
			Password: "secret-pass",
			Role:     models.RoleAdvisor,
		})

		require.NoError(t, err)
	})
}

func TestAuthService_Login(t *testing.T) {
	hash, err := password.GetHash("secret-pass")
	require.NoError(t, err)

	user := &models.User{
		UID:          "uid-1",
		Username:     "user1",
		PasswordHash: hash,
		Role:         models.RoleCustomer,
	}

	t.Run("success login returns parseable token", func(t *testing.T) {
		users := new(UsersMock)
		users.On("GetUserByUsername", mock.Anything, "user1").Return(user, nil).Once()

		svc := NewAuthService(users, newMaker())
		token, role, err := svc.Login(context.Background(), "user1", "secret-pass")

		require.NoError(t, err)
		assert.Equal(t, models.RoleCustomer, role)

		parsed, err := svc.ValidateToken(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, "uid-1", parsed.UID)
		assert.Equal(t, "user1", parsed.Username)
	})

	t.Run("wrong password", func(t *testing.T) {
		users := new(UsersMock)
		users.On("GetUserByUsername", mock.Anything, "user1").Return(user, nil).Once()

		svc := NewAuthService(users, newMaker())
		_, _, err := svc.Login(context.Background(), "user1", "wrong-pass")

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		users := new(UsersMock)
		users.On("GetUserByUsername", mock.Anything, "ghost").Return(nil, apperr.ErrNotFound).Once()

		svc := NewAuthService(users, newMaker())
		_, _, err := svc.Login(context.Background(), "ghost", "secret-pass")

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthService_ValidateToken(t *testing.T) {
	t.Run("garbage token rejected", func(t *testing.T) {
		svc := NewAuthService(new(UsersMock), newMaker())
		_, err := svc.ValidateToken(context.Background(), "not-a-token")
		assert.Error(t, err)
	})

	t.Run("token from another secret rejected", func(t *testing.T) {
		other := jwt.NewMaker("other-secret", time.Hour)
		token, err := other.GenerateToken("user1", models.RoleCustomer, "uid-1")
		require.NoError(t, err)

		svc := NewAuthService(new(UsersMock), newMaker())
		_, err = svc.ValidateToken(context.Background(), token)
		assert.Error(t, err)
	})
}
