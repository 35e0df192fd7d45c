package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"quant_trainer/internal/domain"
	"quant_trainer/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

var jwtSecret []byte

var (
	ErrInvalidToken = errors.New("неверный токен")
	ErrUserNotFound = errors.New("пользователь не найден")
)

const tokenTTL = 30 * 24 * time.Hour

// InitJWT задает секрет подписи токенов; вызывается один раз при старте
func InitJWT(secret string) {
	jwtSecret = []byte(secret)
}

// IssueJWT выпускает токен для пользователя
func IssueJWT(userID int64) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(tokenTTL).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ParseJWT проверяет токен и возвращает id пользователя
func ParseJWT(tokenStr string) (int64, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи: %v", t.Header["alg"])
		}
		return jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	id, ok := claims["user_id"].(float64)
	if !ok {
		return 0, ErrInvalidToken
	}
	return int64(id), nil
}

// AuthService регистрирует гостей и выпускает токены
type AuthService struct {
	users *repository.UserRepository
	audit *AuditService
}

func NewAuthService(db *pgxpool.Pool, audit *AuditService) *AuthService {
	return &AuthService{
		users: repository.NewUserRepository(db),
		audit: audit,
	}
}

// RegisterGuest создает гостевой аккаунт и возвращает токен
func (s *AuthService) RegisterGuest(ctx context.Context, displayName, ip, userAgent string) (*domain.User, string, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = "Гость"
	}

	u := &domain.User{
		Username:    "guest_" + uuid.New().String()[:8],
		DisplayName: displayName,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, "", err
	}

	token, err := IssueJWT(u.ID)
	if err != nil {
		return nil, "", err
	}

	s.audit.LogWithRequest(ctx, u.ID, domain.AuditActionGuestRegister, domain.AuditCategoryAuth, ip, userAgent, nil)
	return u, token, nil
}

// GetUser возвращает профиль по id
func (s *AuthService) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}
