package canva

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/magabrotheeeer/template-marketplace/internal/config"
	"github.com/magabrotheeeer/template-marketplace/internal/errs"
	"github.com/magabrotheeeer/template-marketplace/internal/lib/sl"
)

const serviceName = "canva"

// Client клиент внешнего API Canva. Все запросы выполняются с ограниченным
// таймаутом; ретраев нет — сбой сразу возвращается вызывающему.
type Client struct {
	oauth      *oauth2.Config
	apiURL     string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient создает клиент Canva с настройками OAuth из конфига.
func NewClient(cfg config.CanvaOAuth, log *slog.Logger) *Client {
	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://www.canva.com/api/oauth/authorize",
				TokenURL: "https://api.canva.com/rest/v1/oauth/token",
			},
		},
		apiURL:     "https://api.canva.com/rest/v1",
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log,
	}
}

// AuthCodeURL возвращает URL авторизации с PKCE-challenge (метод S256).
// state несет UID пользователя, чтобы callback мог найти verifier.
func (c *Client) AuthCodeURL(state, challenge string) string {
	return c.oauth.AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge", challenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}

// ExchangeCode меняет код авторизации на пару токенов по PKCE.
func (c *Client) ExchangeCode(ctx context.Context, code, verifier string) (*Tokens, error) {
	const op = "canva.ExchangeCode"
	tok, err := c.oauth.Exchange(c.oauthContext(ctx), code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, classifyOAuthError(err))
	}
	return tokensFromOAuth(tok), nil
}

// RefreshTokens обновляет пару токенов по refresh_token.
func (c *Client) RefreshTokens(ctx context.Context, refreshToken string) (*Tokens, error) {
	const op = "canva.RefreshTokens"
	src := c.oauth.TokenSource(c.oauthContext(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, classifyOAuthError(err))
	}
	return tokensFromOAuth(tok), nil
}

// GetUserProfile возвращает профиль владельца токена. Используется и как
// дешевая проверка валидности токена.
func (c *Client) GetUserProfile(ctx context.Context, accessToken string) (*Profile, error) {
	const op = "canva.GetUserProfile"
	var profile Profile
	if err := c.get(ctx, accessToken, "/users/me", nil, &profile); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &profile, nil
}

// ListTemplates возвращает брендовые шаблоны; при 403/404 (аккаунт без
// Enterprise) откатывается на список пользовательских дизайнов.
func (c *Client) ListTemplates(ctx context.Context, accessToken string, limit int, search string) (*Listing, error) {
	const op = "canva.ListTemplates"
	params := url.Values{"limit": {strconv.Itoa(limit)}}
	if search != "" {
		params.Set("query", search)
	}

	var resp listingResponse
	err := c.get(ctx, accessToken, "/brand-templates", params, &resp)
	if err == nil {
		return toListing(&resp), nil
	}

	var extErr *errs.ExternalError
	if isFallbackStatus(err, &extErr) {
		c.log.Info("brand templates not accessible, falling back to designs")
		return c.ListDesigns(ctx, accessToken, limit)
	}
	return nil, fmt.Errorf("%s: %w", op, err)
}

// ListDesigns возвращает список пользовательских дизайнов.
func (c *Client) ListDesigns(ctx context.Context, accessToken string, limit int) (*Listing, error) {
	const op = "canva.ListDesigns"
	params := url.Values{"limit": {strconv.Itoa(limit)}}
	var resp listingResponse
	if err := c.get(ctx, accessToken, "/designs", params, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return toListing(&resp), nil
}

// IsTeamMember проверяет, состоит ли пользователь уже в команде.
//
// Canva не предоставляет API управления командой, поэтому проверка
// best-effort: всегда сообщает "не найден", чтобы не блокировать одобрение.
// Это заглушка, а не подтвержденный отрицательный ответ.
func (c *Client) IsTeamMember(_ context.Context, _ string, userEmail string) (bool, error) {
	c.log.Info("team membership check not supported by provider, reporting not found",
		slog.String("email", userEmail))
	return false, nil
}

// ApproveTeamAccess провиженит командный доступ для пользователя.
//
// Из-за отсутствия командных API у провайдера шаг сводится к проверке
// валидности токена администратора; при успехе формируется запись об
// одобрении, а пользователь подключает собственный аккаунт отдельно.
func (c *Client) ApproveTeamAccess(ctx context.Context, adminAccessToken, userEmail, role string) (*Provisioned, error) {
	const op = "canva.ApproveTeamAccess"

	adminProfile, err := c.GetUserProfile(ctx, adminAccessToken)
	if err != nil {
		c.log.Error("failed to verify admin connection", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now()
	return &Provisioned{
		ID:         fmt.Sprintf("approval_%d", now.UnixMilli()),
		Email:      userEmail,
		Role:       role,
		Status:     "approved",
		ApprovedAt: now,
		AdminID:    adminProfile.ID,
	}, nil
}

func (c *Client) get(ctx context.Context, accessToken, path string, params url.Values, out any) error {
	reqURL := c.apiURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return errs.External(serviceName, errs.ErrUnavailable, "build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errs.External(serviceName, errs.ErrUnavailable, "request failed", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return errs.External(serviceName, kindForStatus(resp.StatusCode),
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errs.External(serviceName, errs.ErrUnavailable, "decode response", err)
	}
	return nil
}

// oauthContext подкладывает http-клиент с таймаутом в обмен токенов.
func (c *Client) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

// toListing конвертирует ответ провайдера в доменную структуру Listing.
func toListing(resp *listingResponse) *Listing {
	items := make([]DesignSummary, 0, len(resp.Items))
	for _, it := range resp.Items {
		items = append(items, DesignSummary{
			ID:           it.ID,
			Title:        it.Title,
			ThumbnailURL: it.Thumbnail.URL,
			EditURL:      it.URLs.EditURL,
			ViewURL:      it.URLs.ViewURL,
		})
	}
	return &Listing{Items: items, Continuation: resp.Continuation}
}

func tokensFromOAuth(tok *oauth2.Token) *Tokens {
	var scopes []string
	if raw, ok := tok.Extra("scope").(string); ok && raw != "" {
		scopes = strings.Fields(raw)
	}
	return &Tokens{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Scopes:       scopes,
	}
}

func classifyOAuthError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return errs.External(serviceName, kindForStatus(retrieveErr.Response.StatusCode),
			"token endpoint error", err)
	}
	return errs.External(serviceName, errs.ErrUnavailable, "token endpoint unreachable", err)
}

func kindForStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized:
		return errs.ErrUnauthorized
	case status == http.StatusForbidden:
		return errs.ErrPermissionDenied
	case status == http.StatusNotFound:
		return errs.ErrNotFound
	case status == http.StatusConflict:
		return errs.ErrAlreadyMember
	case status == http.StatusTooManyRequests:
		return errs.ErrRateLimited
	case status >= 400 && status < 500:
		return errs.ErrValidation
	default:
		return errs.ErrUnavailable
	}
}

func isFallbackStatus(err error, target **errs.ExternalError) bool {
	if !errors.As(err, target) {
		return false
	}
	kind := (*target).Kind
	return kind == errs.ErrPermissionDenied || kind == errs.ErrNotFound
}
