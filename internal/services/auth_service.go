package services

import (
	"context"
	cryptorand "crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cashwise/backend/internal/config"
	"github.com/cashwise/backend/internal/models"
	"github.com/cashwise/backend/internal/storage"
	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/argon2"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenRevoked = errors.New("token revoked")
)

// LoginRequest represents the login request payload
// @Description Login request structure
type LoginRequest struct {
	Phone    string `json:"phone" validate:"required" example:"9876543210"`           // Account phone number
	Password string `json:"password" validate:"required,min=6" example:"password123"` // Account password
}

// AuthResponse represents the authentication response
// @Description Authentication response structure
type AuthResponse struct {
	Token     string          `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."` // JWT token
	ExpiresAt time.Time       `json:"expiresAt"`
	User      *models.Account `json:"user"`
}

type AuthService struct {
	store     *storage.Store
	redis     *redis.Client
	cfg       config.AuthConfig
	validator *ValidationHelper
	now       func() time.Time
}

func NewAuthService(store *storage.Store, redisClient *redis.Client, cfg config.AuthConfig) *AuthService {
	return &AuthService{
		store:     store,
		redis:     redisClient,
		cfg:       cfg,
		validator: NewValidationHelper(),
		now:       time.Now,
	}
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(&req); err != nil {
		return nil, err
	}

	log.Printf("[AUTH] Login request for phone number: %s", req.Phone)

	if err := s.checkLoginAttempts(ctx, req.Phone); err != nil {
		return nil, err
	}

	acc, hash, err := s.store.GetCredentials(ctx, req.Phone)
	if errors.Is(err, storage.ErrNotFound) {
		log.Printf("[AUTH] User not found for phone number: %s", req.Phone)
		s.recordFailedLogin(ctx, req.Phone)
		return nil, &Error{Kind: KindUnauthorized, Code: "INVALID_CREDENTIALS", Message: "Invalid credentials"}
	}
	if err != nil {
		return nil, StorageError("get credentials", err)
	}

	if !s.VerifyPassword(req.Password, hash) {
		log.Printf("[AUTH] Invalid password for user: %s", req.Phone)
		s.recordFailedLogin(ctx, req.Phone)
		return nil, &Error{Kind: KindUnauthorized, Code: "INVALID_CREDENTIALS", Message: "Invalid credentials"}
	}
	s.clearLoginAttempts(ctx, req.Phone)

	token, expiresAt, err := s.GenerateToken(models.Actor{UserID: acc.ID, Role: acc.Role})
	if err != nil {
		return nil, StorageError("generate token", err)
	}

	log.Printf("[AUTH] Login successful for user %s", acc.ID)
	return &AuthResponse{Token: token, ExpiresAt: expiresAt, User: acc}, nil
}

// Logout blacklists the token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" || s.redis == nil {
		return nil
	}
	expiry := time.Duration(s.cfg.ExpiryHours) * time.Hour
	if err := s.redis.Set(ctx, blacklistKey(token), "1", expiry).Err(); err != nil {
		log.Printf("[AUTH] Failed to blacklist token: %v", err)
		return StorageError("blacklist token", err)
	}
	return nil
}

// Verify parses a bearer token and rejects blacklisted ones.
func (s *AuthService) Verify(ctx context.Context, token string) (models.Actor, error) {
	actor, err := s.ParseToken(token)
	if err != nil {
		return models.Actor{}, err
	}
	if s.redis != nil {
		n, err := s.redis.Exists(ctx, blacklistKey(token)).Result()
		if err != nil {
			log.Printf("[AUTH] Blacklist lookup failed: %v", err)
		} else if n > 0 {
			return models.Actor{}, ErrTokenRevoked
		}
	}
	return actor, nil
}

func (s *AuthService) GenerateToken(actor models.Actor) (string, time.Time, error) {
	expiresAt := s.now().Add(time.Duration(s.cfg.ExpiryHours) * time.Hour)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": actor.UserID,
		"role":    string(actor.Role),
		"exp":     expiresAt.Unix(),
	})

	signed, err := token.SignedString([]byte(s.cfg.SecretKey))
	return signed, expiresAt, err
}

func (s *AuthService) ParseToken(tokenString string) (models.Actor, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(s.cfg.SecretKey), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return models.Actor{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Actor{}, ErrInvalidToken
	}
	userID, _ := claims["user_id"].(string)
	role, _ := claims["role"].(string)
	if userID == "" || !models.Role(role).Valid() {
		return models.Actor{}, ErrInvalidToken
	}
	return models.Actor{UserID: userID, Role: models.Role(role)}, nil
}

func (s *AuthService) HashPassword(password string) (string, error) {
	p := s.cfg.Argon2
	salt := make([]byte, p.SaltLength)
	if _, err := cryptorand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLength)
	return fmt.Sprintf("%s$%s", base64.StdEncoding.EncodeToString(salt), base64.StdEncoding.EncodeToString(hash)), nil
}

func (s *AuthService) VerifyPassword(password, hashedPassword string) bool {
	parts := strings.Split(hashedPassword, "$")
	if len(parts) != 2 {
		return false
	}

	salt, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return false
	}

	hash, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return false
	}

	p := s.cfg.Argon2
	computedHash := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, uint32(len(hash)))
	return subtle.ConstantTimeCompare(hash, computedHash) == 1
}

// checkLoginAttempts fails once the phone has used up its failed attempts
// for the current window. Redis errors let the login through.
func (s *AuthService) checkLoginAttempts(ctx context.Context, phone string) error {
	if s.redis == nil || s.cfg.MaxLoginAttempts <= 0 {
		return nil
	}
	count, err := s.redis.Get(ctx, attemptsKey(phone)).Int()
	if err != nil && err != redis.Nil {
		log.Printf("[AUTH] Login attempt lookup failed: %v", err)
		return nil
	}
	if count >= s.cfg.MaxLoginAttempts {
		log.Printf("[AUTH] Login throttled for phone number: %s", phone)
		return &Error{Kind: KindUnauthorized, Code: "TOO_MANY_ATTEMPTS", Message: "Too many failed login attempts, try again later"}
	}
	return nil
}

func (s *AuthService) recordFailedLogin(ctx context.Context, phone string) {
	if s.redis == nil || s.cfg.MaxLoginAttempts <= 0 {
		return
	}
	key := attemptsKey(phone)
	pipe := s.redis.Pipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, s.cfg.LoginWindow)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[AUTH] Failed to record login attempt: %v", err)
	}
}

func (s *AuthService) clearLoginAttempts(ctx context.Context, phone string) {
	if s.redis == nil || s.cfg.MaxLoginAttempts <= 0 {
		return
	}
	if err := s.redis.Del(ctx, attemptsKey(phone)).Err(); err != nil {
		log.Printf("[AUTH] Failed to clear login attempts: %v", err)
	}
}

func attemptsKey(phone string) string {
	return fmt.Sprintf("auth:attempts:%s", phone)
}

func blacklistKey(token string) string {
	return fmt.Sprintf("blacklist:%s", token)
}
