package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/template-marketplace/internal/models"
)

const userColumns = `uid, email, name, password_hash, role, business_type,
		      subscription_id, canva_access_token, canva_refresh_token,
		      canva_user_id, canva_connected, canva_scopes,
		      team_access, team_role, created_at, updated_at`

// RegisterUser сохраняет нового пользователя в базу данных и возвращает его UID.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"

	var newID string
	query := `INSERT INTO users (email, name, password_hash, role, business_type)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Email, user.Name, user.PasswordHash, user.Role,
		user.BusinessType).Scan(&newID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetUserByEmail возвращает пользователя по его email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"

	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, userUID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// SaveCanvaCredentials сохраняет пару токенов, внешний идентификатор и
// выданные scope-ы одним обновлением, выставляя признак подключения.
func (s *Storage) SaveCanvaCredentials(ctx context.Context, userUID string, creds models.CanvaCredentials) error {
	const op = "storage.SaveCanvaCredentials"

	scopes, err := marshalStrings(creds.Scopes)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	query := `UPDATE users
			  SET canva_access_token = $1,
			      canva_refresh_token = $2,
			      canva_user_id = $3,
			      canva_scopes = $4,
			      canva_connected = TRUE,
			      updated_at = now()
			  WHERE uid = $5`
	if _, err := s.DB.ExecContext(ctx, query,
		creds.AccessToken, creds.RefreshToken, creds.CanvaUserID, scopes, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateCanvaTokens атомарно обновляет пару токенов после refresh.
// Оба поля меняются одним UPDATE: частично обновленная пара недопустима.
func (s *Storage) UpdateCanvaTokens(ctx context.Context, userUID, accessToken, refreshToken string) error {
	const op = "storage.UpdateCanvaTokens"

	query := `UPDATE users
			  SET canva_access_token = $1,
			      canva_refresh_token = $2,
			      updated_at = now()
			  WHERE uid = $3`
	if _, err := s.DB.ExecContext(ctx, query, accessToken, refreshToken, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ClearCanvaCredentials сбрасывает все OAuth-поля пользователя одним
// обновлением. Вызывается при невосстановимом сбое токена: висящая
// нерабочая пара токенов хуже принудительного переподключения.
func (s *Storage) ClearCanvaCredentials(ctx context.Context, userUID string) error {
	const op = "storage.ClearCanvaCredentials"

	query := `UPDATE users
			  SET canva_access_token = '',
			      canva_refresh_token = '',
			      canva_user_id = '',
			      canva_scopes = '[]',
			      canva_connected = FALSE,
			      updated_at = now()
			  WHERE uid = $1`
	if _, err := s.DB.ExecContext(ctx, query, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GrantTeamAccess выставляет пользователю командный доступ и роль.
// Вызывается только после подтвержденного успеха провижининга.
func (s *Storage) GrantTeamAccess(ctx context.Context, userUID, teamRole string) error {
	const op = "storage.GrantTeamAccess"

	query := `UPDATE users
			  SET team_access = TRUE,
			      team_role = $1,
			      updated_at = now()
			  WHERE uid = $2`
	if _, err := s.DB.ExecContext(ctx, query, teamRole, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// LinkSubscription привязывает запись подписки к пользователю.
func (s *Storage) LinkSubscription(ctx context.Context, userUID, subscriptionID string) error {
	const op = "storage.LinkSubscription"

	query := `UPDATE users SET subscription_id = $1, updated_at = now() WHERE uid = $2`
	if _, err := s.DB.ExecContext(ctx, query, subscriptionID, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	var subscriptionID sql.NullString
	var teamRole sql.NullString
	var scopes []byte

	if err := row.Scan(&u.UID, &u.Email, &u.Name, &u.PasswordHash, &u.Role,
		&u.BusinessType, &subscriptionID, &u.CanvaAccessToken, &u.CanvaRefreshToken,
		&u.CanvaUserID, &u.CanvaConnected, &scopes,
		&u.TeamAccess, &teamRole, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}

	if subscriptionID.Valid {
		u.Subscription = &subscriptionID.String
	}
	if teamRole.Valid {
		u.TeamRole = teamRole.String
	}
	parsed, err := unmarshalStrings(scopes)
	if err != nil {
		return nil, err
	}
	u.CanvaScopes = parsed
	return u, nil
}
