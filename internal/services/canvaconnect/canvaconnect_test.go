package canvaconnect

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/template-marketplace/internal/canva"
	"github.com/magabrotheeeer/template-marketplace/internal/errs"
	"github.com/magabrotheeeer/template-marketplace/internal/models"
)

type UsersMock struct{ mock.Mock }

func (m *UsersMock) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *UsersMock) SaveCanvaCredentials(ctx context.Context, userUID string, creds models.CanvaCredentials) error {
	args := m.Called(ctx, userUID, creds)
	return args.Error(0)
}
func (m *UsersMock) UpdateCanvaTokens(ctx context.Context, userUID, accessToken, refreshToken string) error {
	args := m.Called(ctx, userUID, accessToken, refreshToken)
	return args.Error(0)
}
func (m *UsersMock) ClearCanvaCredentials(ctx context.Context, userUID string) error {
	args := m.Called(ctx, userUID)
	return args.Error(0)
}

type VerifiersMock struct{ mock.Mock }

func (m *VerifiersMock) Put(ctx context.Context, userUID, verifier string) error {
	args := m.Called(ctx, userUID, verifier)
	return args.Error(0)
}
func (m *VerifiersMock) Take(ctx context.Context, userUID string) (string, error) {
	args := m.Called(ctx, userUID)
	return args.String(0), args.Error(1)
}

type ClientMock struct{ mock.Mock }

func (m *ClientMock) AuthCodeURL(state, challenge string) string {
	args := m.Called(state, challenge)
	return args.String(0)
}
func (m *ClientMock) ExchangeCode(ctx context.Context, code, verifier string) (*canva.Tokens, error) {
	args := m.Called(ctx, code, verifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*canva.Tokens), args.Error(1)
}
func (m *ClientMock) RefreshTokens(ctx context.Context, refreshToken string) (*canva.Tokens, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*canva.Tokens), args.Error(1)
}
func (m *ClientMock) GetUserProfile(ctx context.Context, accessToken string) (*canva.Profile, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*canva.Profile), args.Error(1)
}
func (m *ClientMock) ListTemplates(ctx context.Context, accessToken string, limit int, search string) (*canva.Listing, error) {
	args := m.Called(ctx, accessToken, limit, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*canva.Listing), args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newService(users *UsersMock, verifiers *VerifiersMock, client *ClientMock) *Service {
	return New(users, verifiers, client, discardLogger())
}

func TestInitiate(t *testing.T) {
	t.Run("Успешный старт потока", func(t *testing.T) {
		users := new(UsersMock)
		verifiers := new(VerifiersMock)
		client := new(ClientMock)
		users.On("GetUser", mock.Anything, "user-1").
			Return(&models.User{UID: "user-1", TeamAccess: true}, nil)
		verifiers.On("Put", mock.Anything, "user-1", mock.AnythingOfType("string")).Return(nil)
		client.On("AuthCodeURL", "user-1", mock.AnythingOfType("string")).
			Return("https://www.canva.com/api/oauth/authorize?x=1")

		url, err := newService(users, verifiers, client).Initiate(context.Background(), "user-1")

		assert.NoError(t, err)
		assert.True(t, strings.HasPrefix(url, "https://www.canva.com/"))
		verifiers.AssertExpectations(t)
	})

	t.Run("Без командного доступа подключение запрещено", func(t *testing.T) {
		users := new(UsersMock)
		verifiers := new(VerifiersMock)
		client := new(ClientMock)
		users.On("GetUser", mock.Anything, "user-1").
			Return(&models.User{UID: "user-1", TeamAccess: false}, nil)

		_, err := newService(users, verifiers, client).Initiate(context.Background(), "user-1")

		assert.ErrorIs(t, err, errs.ErrPermissionDenied)
		verifiers.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCallback(t *testing.T) {
	t.Run("Успешное подключение", func(t *testing.T) {
		users := new(UsersMock)
		verifiers := new(VerifiersMock)
		client := new(ClientMock)
		verifiers.On("Take", mock.Anything, "user-1").Return("verifier-value", nil)
		client.On("ExchangeCode", mock.Anything, "auth-code", "verifier-value").
			Return(&canva.Tokens{AccessToken: "at", RefreshToken: "rt", Scopes: []string{"design:content:read"}}, nil)
		client.On("GetUserProfile", mock.Anything, "at").
			Return(&canva.Profile{ID: "canva-777"}, nil)
		users.On("SaveCanvaCredentials", mock.Anything, "user-1", models.CanvaCredentials{
			AccessToken:  "at",
			RefreshToken: "rt",
			CanvaUserID:  "canva-777",
			Scopes:       []string{"design:content:read"},
		}).Return(nil)

		err := newService(users, verifiers, client).Callback(context.Background(), "user-1", "auth-code", "")

		assert.NoError(t, err)
		users.AssertExpectations(t)
	})

	t.Run("Провайдер вернул ошибку", func(t *testing.T) {
		err := newService(new(UsersMock), new(VerifiersMock), new(ClientMock)).
			Callback(context.Background(), "user-1", "auth-code", "access_denied")
		assert.ErrorIs(t, err, errs.ErrOAuthDenied)
	})

	t.Run("Отсутствует код авторизации", func(t *testing.T) {
		err := newService(new(UsersMock), new(VerifiersMock), new(ClientMock)).
			Callback(context.Background(), "user-1", "", "")
		assert.ErrorIs(t, err, errs.ErrMissingParameters)
	})

	t.Run("Верификатор не найден, пользователь не изменён", func(t *testing.T) {
		users := new(UsersMock)
		verifiers := new(VerifiersMock)
		client := new(ClientMock)
		verifiers.On("Take", mock.Anything, "user-1").Return("", nil)

		err := newService(users, verifiers, client).
			Callback(context.Background(), "user-1", "auth-code", "")

		assert.ErrorIs(t, err, errs.ErrVerifierNotFound)
		users.AssertNotCalled(t, "SaveCanvaCredentials", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Повторный callback после успешного", func(t *testing.T) {
		users := new(UsersMock)
		verifiers := new(VerifiersMock)
		client := new(ClientMock)
		// Верификатор одноразовый: после первого Take слот пуст
		verifiers.On("Take", mock.Anything, "user-1").Return("", nil)

		err := newService(users, verifiers, client).
			Callback(context.Background(), "user-1", "auth-code", "")

		assert.ErrorIs(t, err, errs.ErrVerifierNotFound)
	})
}

func TestValidateAndRefresh(t *testing.T) {
	connected := func() *models.User {
		return &models.User{
			UID:               "user-1",
			CanvaConnected:    true,
			CanvaAccessToken:  "old-at",
			CanvaRefreshToken: "rt",
		}
	}

	t.Run("Токен действителен", func(t *testing.T) {
		users := new(UsersMock)
		client := new(ClientMock)
		users.On("GetUser", mock.Anything, "user-1").Return(connected(), nil)
		client.On("GetUserProfile", mock.Anything, "old-at").
			Return(&canva.Profile{ID: "canva-777"}, nil)

		token, err := newService(users, new(VerifiersMock), client).
			ValidateAndRefresh(context.Background(), "user-1")

		assert.NoError(t, err)
		assert.Equal(t, "old-at", token)
	})

	t.Run("Токен истёк, refresh успешен", func(t *testing.T) {
		users := new(UsersMock)
		client := new(ClientMock)
		users.On("GetUser", mock.Anything, "user-1").Return(connected(), nil)
		client.On("GetUserProfile", mock.Anything, "old-at").
			Return(nil, errs.External("canva", errs.ErrUnauthorized, "token expired", nil))
		client.On("RefreshTokens", mock.Anything, "rt").
			Return(&canva.Tokens{AccessToken: "new-at", RefreshToken: "new-rt"}, nil)
		users.On("UpdateCanvaTokens", mock.Anything, "user-1", "new-at", "new-rt").Return(nil)

		token, err := newService(users, new(VerifiersMock), client).
			ValidateAndRefresh(context.Background(), "user-1")

		assert.NoError(t, err)
		assert.Equal(t, "new-at", token)
		users.AssertExpectations(t)
	})

	t.Run("Refresh не удался, учетные данные сброшены", func(t *testing.T) {
		users := new(UsersMock)
		client := new(ClientMock)
		users.On("GetUser", mock.Anything, "user-1").Return(connected(), nil)
		client.On("GetUserProfile", mock.Anything, "old-at").
			Return(nil, errs.External("canva", errs.ErrUnauthorized, "token expired", nil))
		client.On("RefreshTokens", mock.Anything, "rt").
			Return(nil, errs.External("canva", errs.ErrUnauthorized, "refresh token revoked", nil))
		users.On("ClearCanvaCredentials", mock.Anything, "user-1").Return(nil)

		_, err := newService(users, new(VerifiersMock), client).
			ValidateAndRefresh(context.Background(), "user-1")

		assert.ErrorIs(t, err, errs.ErrReauthRequired)
		users.AssertCalled(t, "ClearCanvaCredentials", mock.Anything, "user-1")
	})

	t.Run("Нет refresh-токена", func(t *testing.T) {
		users := new(UsersMock)
		client := new(ClientMock)
		user := connected()
		user.CanvaRefreshToken = ""
		users.On("GetUser", mock.Anything, "user-1").Return(user, nil)
		client.On("GetUserProfile", mock.Anything, "old-at").
			Return(nil, errs.External("canva", errs.ErrUnauthorized, "token expired", nil))
		users.On("ClearCanvaCredentials", mock.Anything, "user-1").Return(nil)

		_, err := newService(users, new(VerifiersMock), client).
			ValidateAndRefresh(context.Background(), "user-1")

		assert.ErrorIs(t, err, errs.ErrReauthRequired)
	})

	t.Run("Пользователь не подключён", func(t *testing.T) {
		users := new(UsersMock)
		users.On("GetUser", mock.Anything, "user-1").
			Return(&models.User{UID: "user-1"}, nil)

		_, err := newService(users, new(VerifiersMock), new(ClientMock)).
			ValidateAndRefresh(context.Background(), "user-1")

		assert.ErrorIs(t, err, errs.ErrReauthRequired)
	})
}
