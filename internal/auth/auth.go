// Package auth issues and validates the JWT bearer tokens protecting
// the admin endpoints. A single admin credential is configured through
// the environment; the password is bcrypt-hashed at load so the
// plaintext never sits in memory past startup.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const tokenIssuer = "smartwealth-advisor"

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const userIDContextKey contextKey = "userID"

// Config holds authentication configuration.
type Config struct {
	JWTSecret         string
	AdminPasswordHash string
	TokenDuration     time.Duration
}

// LoadConfigFromEnv loads auth config from environment variables.
func LoadConfigFromEnv() (Config, error) {
	secret := os.Getenv("ADMIN_JWT_SECRET")
	if secret == "" {
		secret = "change-this-secret" // Default (should be changed)
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin" // Default (should be changed)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return Config{}, fmt.Errorf("failed to hash admin password: %w", err)
	}

	return Config{
		JWTSecret:         secret,
		AdminPasswordHash: hash,
		TokenDuration:     24 * time.Hour,
	}, nil
}

// VerifyAdminPassword checks a login attempt against the configured
// admin credential.
func (c Config) VerifyAdminPassword(password string) bool {
	return CheckPassword(password, c.AdminPasswordHash)
}

// Claims represents the JWT claims.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// GenerateToken creates a new JWT token.
func GenerateToken(userID string, secret string, duration time.Duration) (string, error) {
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(duration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken validates a JWT token and returns the user ID.
func ValidateToken(tokenString string, secret string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims.UserID, nil
	}
	return "", fmt.Errorf("invalid token")
}

// HashPassword hashes a password using bcrypt.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword compares a password with a hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Middleware validates the Bearer token on protected routes and stores
// the authenticated user ID in the request context.
func Middleware(config Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "Invalid authorization header format", http.StatusUnauthorized)
				return
			}

			userID, err := ValidateToken(parts[1], config.JWTSecret)
			if err != nil {
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDContextKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserIDFromContext extracts the user ID from the request context.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	return userID, ok
}
