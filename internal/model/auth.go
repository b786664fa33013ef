package model

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Auth errors
var (
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrEmailTaken         = errors.New("user already registered")
	ErrNoSession          = errors.New("auth session missing")
)

// Metadata keys attached to an auth user at signup. The profiles trigger
// materialises them into a profile row.
const (
	MetaFullName     = "full_name"
	MetaRole         = "role"
	MetaClinicName   = "clinic_name"
	MetaPharmacyName = "pharmacy_name"
	MetaPhone        = "phone"
)

// AuthUser is the credential row owned by the auth service.
type AuthUser struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Metadata     JSONMap    `json:"user_metadata" db:"raw_user_meta_data"`
	LastSignInAt *time.Time `json:"last_sign_in_at,omitempty" db:"last_sign_in_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// User is the identity resolved from a session.
type User struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Metadata JSONMap   `json:"user_metadata,omitempty"`
}

// Session is the pair of tokens carried in cookies.
type Session struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	ExpiresAt        time.Time `json:"expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
	User             *User     `json:"user"`
}

// TokenClaims represents JWT claims
type TokenClaims struct {
	jwt.RegisteredClaims
	Email     string `json:"email"`
	TokenType string `json:"token_type"`
}

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// WalkInEmailDomain marks placeholder accounts created at the counter.
const WalkInEmailDomain = "walkin.temp"
