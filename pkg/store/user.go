package store

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"tableflip.dev/taskverse/pkg/task"
)

// PasswordCost is the bcrypt cost used for stored passwords.
const PasswordCost = 10

// User is a registered account. Password holds the bcrypt hash.
type User struct {
	ID            string         `json:"_id"`
	Name          string         `json:"name"`
	Email         string         `json:"email"`
	Password      string         `json:"password"`
	WalletAddress string         `json:"walletAddress,omitempty"`
	CreatedAt     task.Timestamp `json:"createdAt"`
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func newUser(id, name, email, hashed string, now time.Time) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", task.ErrValidation)
	}
	email = NormalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: invalid email %q", task.ErrValidation, email)
	}
	if hashed == "" {
		return nil, fmt.Errorf("%w: password hash is required", task.ErrValidation)
	}
	return &User{
		ID:        id,
		Name:      name,
		Email:     email,
		Password:  hashed,
		CreatedAt: task.Timestamp{Time: now},
	}, nil
}

// HashPassword hashes plain with bcrypt.
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("store: hash password: %w", err)
	}
	return string(b), nil
}

// CompareHash reports whether plain matches the bcrypt hash.
func CompareHash(plain, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}
