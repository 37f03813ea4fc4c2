// Package auth manages the signed-in user and the wallet bound to them.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	logger "github.com/kthomas/go-logger"

	"tableflip.dev/taskverse/pkg/logging"
	"tableflip.dev/taskverse/pkg/store"
	"tableflip.dev/taskverse/pkg/task"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// TokenTTL is the lifetime of issued tokens.
const TokenTTL = 24 * time.Hour

var (
	// ErrInvalidCredentials is returned when email and password do not match.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrInvalidToken is returned for malformed, expired or forged tokens.
	ErrInvalidToken = errors.New("auth: invalid token")
)

// Profile is the public view of a user.
type Profile struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	WalletAddress string `json:"walletAddress,omitempty"`
}

// State is a snapshot of the session.
type State struct {
	User          *Profile `json:"user,omitempty"`
	Token         string   `json:"token,omitempty"`
	Authenticated bool     `json:"authenticated"`
	Loading       bool     `json:"loading"`
	Error         string   `json:"error,omitempty"`
}

// Service holds one session.
type Service struct {
	users  store.Users
	secret []byte
	now    func() time.Time
	log    *logger.Logger

	mu    sync.Mutex
	user  *store.User
	state State
}

// Option customises a Service.
type Option func(*Service)

// WithClock overrides the clock used for token timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Service) {
		s.log = l
	}
}

// New returns a signed-out session signing tokens with secret.
func New(users store.Users, secret string, opts ...Option) *Service {
	s := &Service{
		users:  users,
		secret: []byte(secret),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = logging.Or(s.log)
	return s
}

// State returns the current session.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Service) snapshot() State {
	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

func (s *Service) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Loading = true
	s.state.Error = ""
}

func (s *Service) fail(err error) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Loading = false
	s.state.Error = err.Error()
	return s.snapshot(), err
}

func (s *Service) signIn(u *store.User) (State, error) {
	token, err := s.issue(u.ID)
	if err != nil {
		return s.fail(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
	s.state = State{
		User:          profile(u),
		Token:         token,
		Authenticated: true,
	}
	return s.snapshot(), nil
}

func profile(u *store.User) *Profile {
	return &Profile{ID: u.ID, Name: u.Name, Email: u.Email, WalletAddress: u.WalletAddress}
}

// Register creates an account and signs it in.
func (s *Service) Register(_ context.Context, name, email, password string) (State, error) {
	s.begin()
	if strings.TrimSpace(name) == "" {
		return s.fail(fmt.Errorf("%w: name is required", task.ErrValidation))
	}
	if len(password) < MinPasswordLength {
		return s.fail(fmt.Errorf("%w: password must be at least %d characters", task.ErrValidation, MinPasswordLength))
	}
	hashed, err := store.HashPassword(password)
	if err != nil {
		return s.fail(err)
	}
	u, err := s.users.CreateUser(name, store.NormalizeEmail(email), hashed)
	if err != nil {
		s.log.Debugf("auth: register %s failed; %s", store.NormalizeEmail(email), err.Error())
		return s.fail(err)
	}
	s.log.Debugf("auth: registered user %s", u.ID)
	return s.signIn(u)
}

// Login signs in with email and password.
func (s *Service) Login(ctx context.Context, email, password string) (State, error) {
	s.begin()
	u, err := s.users.FindUserByEmail(ctx, email)
	if errors.Is(err, store.ErrUserNotFound) {
		return s.fail(ErrInvalidCredentials)
	}
	if err != nil {
		return s.fail(err)
	}
	if !store.CompareHash(password, u.Password) {
		s.log.Debugf("auth: password mismatch for %s", u.ID)
		return s.fail(ErrInvalidCredentials)
	}
	return s.signIn(u)
}

// Logout forgets the session.
func (s *Service) Logout() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.state = State{}
	return s.snapshot()
}

// ConnectWallet binds address to the signed-in user. Without a session it
// does nothing.
func (s *Service) ConnectWallet(address string) (State, error) {
	return s.bindWallet(address)
}

// DisconnectWallet clears the bound wallet address.
func (s *Service) DisconnectWallet() (State, error) {
	return s.bindWallet("")
}

func (s *Service) bindWallet(address string) (State, error) {
	s.mu.Lock()
	if s.user == nil || s.user.WalletAddress == address {
		defer s.mu.Unlock()
		return s.snapshot(), nil
	}
	u := *s.user
	s.mu.Unlock()

	u.WalletAddress = address
	if err := s.users.SaveUser(&u); err != nil {
		s.log.Warningf("auth: bind wallet for %s failed; %s", u.ID, err.Error())
		return s.fail(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil || s.user.ID != u.ID {
		return s.snapshot(), nil
	}
	s.user = &u
	s.state.User = profile(&u)
	s.state.Error = ""
	return s.snapshot(), nil
}

func (s *Service) issue(userID string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return token, nil
}

// VerifyToken checks a token issued by this service and returns its user id.
func (s *Service) VerifyToken(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parser := jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Name}, SkipClaimsValidation: true}
	if _, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.ExpiresAt == nil || !s.now().Before(claims.ExpiresAt.Time) {
		return "", fmt.Errorf("%w: expired", ErrInvalidToken)
	}
	return claims.Subject, nil
}
