// Package auth содержит логику бизнес-уровня для работы с пользователями
// и аутентификацией.
package auth

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/template-marketplace/internal/errs"
	"github.com/magabrotheeeer/template-marketplace/internal/lib/jwt"
	"github.com/magabrotheeeer/template-marketplace/internal/lib/password"
	"github.com/magabrotheeeer/template-marketplace/internal/models"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его UID.
	RegisterUser(ctx context.Context, user models.User) (string, error)

	// GetUserByEmail возвращает пользователя по email или ошибку, если не найден.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Service отвечает за регистрацию, авторизацию и валидацию JWT.
type Service struct {
	users    UserRepository
	jwtMaker jwt.Maker
}

// New создает новый экземпляр Service.
func New(users UserRepository, jwtMaker jwt.Maker) *Service {
	return &Service{
		users:    users,
		jwtMaker: jwtMaker,
	}
}

// Register создает нового пользователя с хэшированием пароля и дефолтной ролью USER.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (string, error) {
	const op = "services.auth.Register"

	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	user := models.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hashed,
		Role:         models.RoleUser,
	}
	uid, err := s.users.RegisterUser(ctx, user)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return uid, nil
}

// Login проверяет пароль пользователя и генерирует JWT.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (token, role string, err error) {
	const op = "services.auth.Login"

	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, errs.ErrUnauthorized)
	}
	if err := password.CompareHash(user.PasswordHash, req.Password); err != nil {
		return "", "", fmt.Errorf("%s: %w: invalid credentials", op, errs.ErrUnauthorized)
	}
	token, err = s.jwtMaker.GenerateToken(user.Email, user.Role, user.UID)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	return token, user.Role, nil
}

// ValidateToken проверяет JWT и возвращает данные пользователя из claims.
func (s *Service) ValidateToken(_ context.Context, token string) (*jwt.CustomClaims, error) {
	const op = "services.auth.ValidateToken"

	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, errs.ErrUnauthorized)
	}
	return claims, nil
}
