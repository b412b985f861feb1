package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"trailhead/internal/config"
	"trailhead/internal/utils/crypto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

var silentLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

var testCfg = config.Config{
	BcryptCost:        10,
	JWTSecret:         "super-secret-jwt-key-at-least-32-chars",
	JWTExpiryMinutes:  90,
	ResetTokenMinutes: 10,
	PublicBaseURL:     "http://localhost:8080",
}

// MockUsersRepo is a mock implementation of UsersRepo
type MockUsersRepo struct {
	mock.Mock
}

func (m *MockUsersRepo) Create(ctx context.Context, user *User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUsersRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUsersRepo) FindByID(ctx context.Context, id bson.ObjectID) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUsersRepo) FindByResetHash(ctx context.Context, hash string) (*User, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUsersRepo) SetResetToken(ctx context.Context, id bson.ObjectID, hash string, expires time.Time) error {
	args := m.Called(ctx, id, hash, expires)
	return args.Error(0)
}

func (m *MockUsersRepo) ClearResetToken(ctx context.Context, id bson.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUsersRepo) UpdatePassword(ctx context.Context, id bson.ObjectID, passwordHash string, changedAt time.Time) error {
	args := m.Called(ctx, id, passwordHash, changedAt)
	return args.Error(0)
}

func (m *MockUsersRepo) ResetPassword(ctx context.Context, id bson.ObjectID, passwordHash string, changedAt time.Time) error {
	args := m.Called(ctx, id, passwordHash, changedAt)
	return args.Error(0)
}

// MockMailer is a mock implementation of Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendPasswordReset(ctx context.Context, to, name, resetURL string) error {
	args := m.Called(ctx, to, name, resetURL)
	return args.Error(0)
}

func newTestService(repo *MockUsersRepo, mail *MockMailer) *Service {
	if mail == nil {
		mail = new(MockMailer)
	}
	return NewService(repo, NewTokenService(testCfg), mail, testCfg, silentLogger)
}

func hashFor(t *testing.T, password string) string {
	t.Helper()
	hash, err := crypto.HashPassword(password, testCfg.BcryptCost)
	require.NoError(t, err)
	return hash
}

func TestService_SignUp(t *testing.T) {
	tests := []struct {
		name    string
		req     SignUpRequest
		setup   func(*MockUsersRepo)
		wantErr error
	}{
		{
			name: "successful signup",
			req: SignUpRequest{
				Name:            "Ann Trekker",
				Email:           "  Ann@Example.COM ",
				Password:        "Password123",
				PasswordConfirm: "Password123",
			},
			setup: func(repo *MockUsersRepo) {
				repo.On("Create", mock.Anything, mock.AnythingOfType("*auth.User")).Return(nil)
			},
		},
		{
			name: "duplicate email",
			req: SignUpRequest{
				Name:            "Ann Trekker",
				Email:           "ann@example.com",
				Password:        "Password123",
				PasswordConfirm: "Password123",
			},
			setup: func(repo *MockUsersRepo) {
				repo.On("Create", mock.Anything, mock.AnythingOfType("*auth.User")).Return(ErrDuplicate)
			},
			wantErr: ErrDuplicate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUsersRepo)
			tt.setup(repo)

			service := newTestService(repo, nil)
			resp, err := service.SignUp(context.Background(), tt.req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, resp)
			} else {
				require.NoError(t, err)
				require.NotNil(t, resp)
				assert.NotEmpty(t, resp.Token)
				assert.Equal(t, "ann@example.com", resp.User.Email)
				assert.Equal(t, RoleUser, resp.User.Role)
				assert.True(t, resp.User.Active)
				assert.NotEmpty(t, resp.User.PasswordHash)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestService_SignUp_NeverStoresPlaintext(t *testing.T) {
	repo := new(MockUsersRepo)
	var created *User
	repo.On("Create", mock.Anything, mock.AnythingOfType("*auth.User")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*User)
		}).Return(nil)

	service := newTestService(repo, nil)
	_, err := service.SignUp(context.Background(), SignUpRequest{
		Name:            "Ann",
		Email:           "ann@example.com",
		Password:        "Password123",
		PasswordConfirm: "Password123",
	})
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.NotEqual(t, "Password123", created.PasswordHash)
	assert.NoError(t, crypto.CheckPassword("Password123", created.PasswordHash))
}

func TestService_LogIn(t *testing.T) {
	userID := bson.NewObjectID()
	hash := hashFor(t, "Password123")

	tests := []struct {
		name    string
		req     LogInRequest
		setup   func(*MockUsersRepo)
		wantErr error
	}{
		{
			name: "successful login",
			req:  LogInRequest{Email: "ann@example.com", Password: "Password123"},
			setup: func(repo *MockUsersRepo) {
				repo.On("FindByEmail", mock.Anything, "ann@example.com").
					Return(&User{ID: userID, Email: "ann@example.com", PasswordHash: hash}, nil)
			},
		},
		{
			name: "unknown email",
			req:  LogInRequest{Email: "ghost@example.com", Password: "Password123"},
			setup: func(repo *MockUsersRepo) {
				repo.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, ErrUserNotFound)
			},
			wantErr: ErrUserNotFound,
		},
		{
			name: "wrong password",
			req:  LogInRequest{Email: "ann@example.com", Password: "WrongPassword"},
			setup: func(repo *MockUsersRepo) {
				repo.On("FindByEmail", mock.Anything, "ann@example.com").
					Return(&User{ID: userID, Email: "ann@example.com", PasswordHash: hash}, nil)
			},
			wantErr: ErrIncorrectPassword,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUsersRepo)
			tt.setup(repo)

			service := newTestService(repo, nil)
			resp, err := service.LogIn(context.Background(), tt.req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, resp)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, resp.Token)
				assert.Nil(t, resp.User, "login exposes only the token")
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestService_UpdatePassword(t *testing.T) {
	userID := bson.NewObjectID()
	hash := hashFor(t, "OldPassword1")

	t.Run("wrong old password", func(t *testing.T) {
		repo := new(MockUsersRepo)
		repo.On("FindByID", mock.Anything, userID).
			Return(&User{ID: userID, PasswordHash: hash}, nil)

		service := newTestService(repo, nil)
		resp, err := service.UpdatePassword(context.Background(), userID, UpdatePasswordRequest{
			OldPassword:        "NotTheOldOne",
			NewPassword:        "NewPassword1",
			NewPasswordConfirm: "NewPassword1",
		})
		assert.ErrorIs(t, err, ErrIncorrectPassword)
		assert.Nil(t, resp)
		repo.AssertExpectations(t)
	})

	t.Run("successful rotation stamps change in the past", func(t *testing.T) {
		repo := new(MockUsersRepo)
		repo.On("FindByID", mock.Anything, userID).
			Return(&User{ID: userID, PasswordHash: hash}, nil)

		var changedAt time.Time
		repo.On("UpdatePassword", mock.Anything, userID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
			Run(func(args mock.Arguments) {
				changedAt = args.Get(3).(time.Time)
			}).Return(nil)

		before := time.Now()
		service := newTestService(repo, nil)
		resp, err := service.UpdatePassword(context.Background(), userID, UpdatePasswordRequest{
			OldPassword:        "OldPassword1",
			NewPassword:        "NewPassword1",
			NewPasswordConfirm: "NewPassword1",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.True(t, changedAt.Before(before), "timestamp is backdated to cover clock skew")
		repo.AssertExpectations(t)
	})

	t.Run("repo failure surfaces as generic error", func(t *testing.T) {
		repo := new(MockUsersRepo)
		repo.On("FindByID", mock.Anything, userID).
			Return(&User{ID: userID, PasswordHash: hash}, nil)
		repo.On("UpdatePassword", mock.Anything, userID, mock.Anything, mock.Anything).
			Return(errors.New("write failed"))

		service := newTestService(repo, nil)
		_, err := service.UpdatePassword(context.Background(), userID, UpdatePasswordRequest{
			OldPassword:        "OldPassword1",
			NewPassword:        "NewPassword1",
			NewPasswordConfirm: "NewPassword1",
		})
		require.Error(t, err)
		assert.NotContains(t, err.Error(), "write failed")
	})
}
