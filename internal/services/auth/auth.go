// Package services содержит логику бизнес-уровня для работы с пользователями и аутентификацией.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/storefront/internal/lib/apperr"
	"github.com/magabrotheeeer/storefront/internal/lib/jwt"
	"github.com/magabrotheeeer/storefront/internal/lib/password"
	"github.com/magabrotheeeer/storefront/internal/models"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его ID.
	RegisterUser(ctx context.Context, user models.User) (string, error)

	// GetUserByEmail возвращает пользователя по email или apperr.ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// AuthService отвечает за регистрацию, авторизацию и валидацию JWT.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register создает нового пользователя с ролью "user".
func (s *AuthService) Register(ctx context.Context, email, rawPassword string) (string, error) {
	return s.register(ctx, email, rawPassword, models.RoleUser)
}

func (s *AuthService) register(ctx context.Context, email, rawPassword, role string) (string, error) {
	const op = "services.auth.Register"
	email = normalizeEmail(email)
	if email == "" || rawPassword == "" {
		return "", fmt.Errorf("%s: email and password are required: %w", op, apperr.ErrValidation)
	}
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", op, apperr.ErrValidation, err)
	}
	user := models.User{
		Email:        email,
		PasswordHash: hashed,
		Role:         role,
	}
	uid, err := s.users.RegisterUser(ctx, user)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return uid, nil
}

// Login проверяет пароль пользователя и выдаёт JWT.
// Неизвестный email и неверный пароль неразличимы для клиента.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (token, role string, err error) {
	const op = "services.auth.Login"
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", "", fmt.Errorf("%s: invalid credentials: %w", op, apperr.ErrUnauthorized)
		}
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", "", fmt.Errorf("%s: invalid credentials: %w", op, apperr.ErrUnauthorized)
	}
	token, err = s.jwtMaker.GenerateToken(user.UUID, user.Email, user.Role)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	return token, user.Role, nil
}

// ValidateToken проверяет JWT и возвращает аутентифицированного пользователя.
func (s *AuthService) ValidateToken(_ context.Context, token string) (models.Principal, error) {
	const op = "services.auth.ValidateToken"
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return models.Principal{}, fmt.Errorf("%s: %w: %w", op, apperr.ErrUnauthorized, err)
	}
	if claims.UserUID == "" {
		return models.Principal{}, fmt.Errorf("%s: token without subject: %w", op, apperr.ErrUnauthorized)
	}
	return models.Principal{
		UserUID: claims.UserUID,
		Email:   claims.Email,
		Role:    claims.Role,
	}, nil
}

// EnsureAdmin создаёт администратора с указанными учётными данными, если
// пользователя с таким email ещё нет. Возвращает true, если учётная запись создана.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, rawPassword string) (bool, error) {
	const op = "services.auth.EnsureAdmin"
	_, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.register(ctx, email, rawPassword, models.RoleAdmin); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return false, nil
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}
