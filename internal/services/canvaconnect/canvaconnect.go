// Package canvaconnect управляет жизненным циклом OAuth-подключения
// пользователя к Canva: старт PKCE-потока, обработка callback и каскад
// проверки-обновления токенов перед действиями редактирования.
package canvaconnect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/template-marketplace/internal/canva"
	"github.com/magabrotheeeer/template-marketplace/internal/errs"
	"github.com/magabrotheeeer/template-marketplace/internal/lib/pkce"
	"github.com/magabrotheeeer/template-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/template-marketplace/internal/models"
)

// UserRepository определяет методы хранилища для OAuth-полей пользователя.
type UserRepository interface {
	// GetUser возвращает пользователя по UID.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	// SaveCanvaCredentials сохраняет токены, внешний ID и scope-ы одним обновлением.
	SaveCanvaCredentials(ctx context.Context, userUID string, creds models.CanvaCredentials) error
	// UpdateCanvaTokens атомарно обновляет пару токенов.
	UpdateCanvaTokens(ctx context.Context, userUID, accessToken, refreshToken string) error
	// ClearCanvaCredentials сбрасывает все OAuth-поля пользователя.
	ClearCanvaCredentials(ctx context.Context, userUID string) error
}

// VerifierStore хранит PKCE-верификаторы между началом потока и callback-ом.
type VerifierStore interface {
	// Put сохраняет верификатор пользователя.
	Put(ctx context.Context, userUID, verifier string) error
	// Take извлекает и удаляет верификатор, пустая строка — не найден.
	Take(ctx context.Context, userUID string) (string, error)
}

// OAuthClient определяет методы обёртки над Canva Connect API.
type OAuthClient interface {
	// AuthCodeURL строит URL авторизации с PKCE-challenge.
	AuthCodeURL(state, challenge string) string
	// ExchangeCode обменивает код авторизации на пару токенов.
	ExchangeCode(ctx context.Context, code, verifier string) (*canva.Tokens, error)
	// RefreshTokens обновляет пару токенов по refresh-токену.
	RefreshTokens(ctx context.Context, refreshToken string) (*canva.Tokens, error)
	// GetUserProfile возвращает профиль владельца токена.
	GetUserProfile(ctx context.Context, accessToken string) (*canva.Profile, error)
	// ListTemplates возвращает brand-шаблоны с fallback на список дизайнов.
	ListTemplates(ctx context.Context, accessToken string, limit int, search string) (*canva.Listing, error)
}

// ConnectionStatus сводка состояния подключения для клиента.
type ConnectionStatus struct {
	Connected   bool     `json:"connected"`
	CanvaUserID string   `json:"canva_user_id,omitempty"`
	Scopes      []string `json:"scopes,omitempty"`
}

// Service реализует бизнес-логику OAuth-подключения.
type Service struct {
	users     UserRepository
	verifiers VerifierStore
	client    OAuthClient
	log       *slog.Logger
}

// New создает новый экземпляр Service.
func New(users UserRepository, verifiers VerifierStore, client OAuthClient, log *slog.Logger) *Service {
	return &Service{users: users, verifiers: verifiers, client: client, log: log}
}

// Initiate начинает PKCE-поток: генерирует верификатор, сохраняет его
// в одноместный слот пользователя и возвращает URL авторизации.
// Повторный вызов перезаписывает слот, обесценивая предыдущий URL.
// Требует выданного командного доступа: без него подключение запрещено.
func (s *Service) Initiate(ctx context.Context, userUID string) (string, error) {
	const op = "services.canvaconnect.Initiate"

	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if !user.TeamAccess {
		return "", fmt.Errorf("%s: %w", op, errs.ErrPermissionDenied)
	}

	verifier, err := pkce.NewVerifier()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := s.verifiers.Put(ctx, userUID, verifier); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	url := s.client.AuthCodeURL(userUID, pkce.ChallengeS256(verifier))
	s.log.Info("oauth flow initiated", slog.String("user_uid", userUID))
	return url, nil
}

// Callback завершает PKCE-поток: обменивает код на токены, запрашивает
// профиль и сохраняет учетные данные. Верификатор одноразовый — повторный
// callback с тем же state завершается ErrVerifierNotFound.
func (s *Service) Callback(ctx context.Context, userUID, code, oauthError string) error {
	const op = "services.canvaconnect.Callback"

	if oauthError != "" {
		return fmt.Errorf("%s: %w: %s", op, errs.ErrOAuthDenied, oauthError)
	}
	if code == "" || userUID == "" {
		return fmt.Errorf("%s: %w", op, errs.ErrMissingParameters)
	}

	verifier, err := s.verifiers.Take(ctx, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if verifier == "" {
		return fmt.Errorf("%s: %w", op, errs.ErrVerifierNotFound)
	}

	tokens, err := s.client.ExchangeCode(ctx, code, verifier)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	profile, err := s.client.GetUserProfile(ctx, tokens.AccessToken)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	creds := models.CanvaCredentials{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		CanvaUserID:  profile.ID,
		Scopes:       tokens.Scopes,
	}
	if err := s.users.SaveCanvaCredentials(ctx, userUID, creds); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("canva account connected",
		slog.String("user_uid", userUID),
		slog.String("canva_user_id", profile.ID))
	return nil
}

// ValidateAndRefresh проверяет работоспособность токена перед действием
// редактирования. Каскад строго упорядочен: проба профилем, затем refresh
// при наличии refresh-токена, затем разрушительный сброс учетных данных.
// Возвращает актуальный access-токен.
func (s *Service) ValidateAndRefresh(ctx context.Context, userUID string) (string, error) {
	const op = "services.canvaconnect.ValidateAndRefresh"

	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if !user.CanvaConnected || user.CanvaAccessToken == "" {
		return "", fmt.Errorf("%s: %w", op, errs.ErrReauthRequired)
	}

	if _, err := s.client.GetUserProfile(ctx, user.CanvaAccessToken); err == nil {
		return user.CanvaAccessToken, nil
	} else if !errors.Is(err, errs.ErrUnauthorized) {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if user.CanvaRefreshToken == "" {
		s.reset(ctx, userUID)
		return "", fmt.Errorf("%s: %w", op, errs.ErrReauthRequired)
	}

	tokens, err := s.client.RefreshTokens(ctx, user.CanvaRefreshToken)
	if err != nil {
		s.log.Warn("token refresh failed, clearing credentials",
			slog.String("user_uid", userUID), sl.Err(err))
		s.reset(ctx, userUID)
		return "", fmt.Errorf("%s: %w", op, errs.ErrReauthRequired)
	}

	if err := s.users.UpdateCanvaTokens(ctx, userUID, tokens.AccessToken, tokens.RefreshToken); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("canva tokens refreshed", slog.String("user_uid", userUID))
	return tokens.AccessToken, nil
}

// Status возвращает сводку состояния подключения пользователя.
func (s *Service) Status(ctx context.Context, userUID string) (*ConnectionStatus, error) {
	const op = "services.canvaconnect.Status"

	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	status := &ConnectionStatus{Connected: user.CanvaConnected}
	if user.CanvaConnected {
		status.CanvaUserID = user.CanvaUserID
		status.Scopes = user.CanvaScopes
	}
	return status, nil
}

// ListDesigns возвращает дизайны пользователя из Canva, предварительно
// прогнав каскад проверки токена.
func (s *Service) ListDesigns(ctx context.Context, userUID string, limit int, search string) (*canva.Listing, error) {
	const op = "services.canvaconnect.ListDesigns"

	accessToken, err := s.ValidateAndRefresh(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	listing, err := s.client.ListTemplates(ctx, accessToken, limit, search)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return listing, nil
}

func (s *Service) reset(ctx context.Context, userUID string) {
	if err := s.users.ClearCanvaCredentials(ctx, userUID); err != nil {
		s.log.Error("failed to clear canva credentials",
			slog.String("user_uid", userUID), sl.Err(err))
	}
}
