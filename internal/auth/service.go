package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pdv-commerce/storefront/internal/api"
	pkgerrors "github.com/pdv-commerce/storefront/pkg/errors"
	"github.com/pdv-commerce/storefront/pkg/logger"
)

// User types the marketplace distinguishes.
const (
	UserTypeCustomer = "cliente"
	UserTypeSeller   = "empresa"
)

// Service signs users in and out and answers whether a usable session
// exists. It implements api.TokenSource so the transport picks the
// bearer token up automatically.
type Service interface {
	Login(ctx context.Context, email, password string) (Session, error)
	Logout() error
	Current() (Session, bool)
	IsAuthenticated() bool
	Token() string
	UserID() int64
}

type service struct {
	client *api.Client
	store  SessionStore
	logg   *logger.Logger
	now    func() time.Time
}

func NewService(client *api.Client, store SessionStore, logg *logger.Logger) (Service, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "api client is required")
	}
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session store is required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger is required")
	}
	return &service{
		client: client,
		store:  store,
		logg:   logg,
		now:    time.Now,
	}, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"senha"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    int64  `json:"usuario_id"`
		Name  string `json:"nome"`
		Email string `json:"email"`
		Type  string `json:"tipo"`
	} `json:"usuario"`
}

func (s *service) Login(ctx context.Context, email, password string) (Session, error) {
	if email == "" || password == "" {
		return Session{}, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	var resp loginResponse
	err := s.client.Post(ctx, "/auth/login", loginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return Session{}, err
	}
	if resp.Token == "" {
		return Session{}, pkgerrors.New(pkgerrors.CodeDependency, "login response missing token")
	}

	session := Session{
		Token:    resp.Token,
		UserID:   resp.User.ID,
		Name:     resp.User.Name,
		Email:    resp.User.Email,
		UserType: resp.User.Type,
	}
	if err := s.store.Save(session); err != nil {
		return Session{}, err
	}

	s.logg.Info(s.logg.WithUserID(ctx, session.UserID), "user signed in")
	return session, nil
}

func (s *service) Logout() error {
	return s.store.Clear()
}

func (s *service) Current() (Session, bool) {
	session, ok, err := s.store.Load()
	if err != nil || !ok {
		return Session{}, false
	}
	return session, true
}

// IsAuthenticated reports whether a session with a still valid token is
// on file. Expiry is read from the token claims without verifying the
// signature; only the issuing server holds the secret.
func (s *service) IsAuthenticated() bool {
	session, ok := s.Current()
	if !ok || session.Token == "" {
		return false
	}

	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(session.Token, &claims); err != nil {
		// Opaque tokens carry no expiry we can read, treat as live.
		return true
	}
	if claims.ExpiresAt == nil {
		return true
	}
	return claims.ExpiresAt.After(s.now())
}

func (s *service) Token() string {
	session, ok := s.Current()
	if !ok {
		return ""
	}
	return session.Token
}

func (s *service) UserID() int64 {
	session, ok := s.Current()
	if !ok {
		return 0
	}
	return session.UserID
}
