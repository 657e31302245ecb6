package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pdv-commerce/storefront/internal/api"
	"github.com/pdv-commerce/storefront/pkg/config"
	pkgerrors "github.com/pdv-commerce/storefront/pkg/errors"
	"github.com/pdv-commerce/storefront/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	return logger.New(logger.Options{ServiceName: "auth-test"})
}

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func newServiceWithServer(t *testing.T, handler http.Handler) (Service, SessionStore) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store := NewMemorySessionStore()
	client, err := api.NewClient(config.APIConfig{
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
	}, nil, nil)
	if err != nil {
		t.Fatalf("api.NewClient: %v", err)
	}

	svc, err := NewService(client, store, testLogger(t))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, store
}

func TestLoginStoresSession(t *testing.T) {
	t.Parallel()

	token := signedToken(t, time.Now().Add(time.Hour))
	svc, store := newServiceWithServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		if req["email"] != "ana@example.com" || req["senha"] != "s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"Credenciais inválidas"}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"token": token,
			"usuario": map[string]any{
				"usuario_id": 12,
				"nome":       "Ana",
				"email":      "ana@example.com",
				"tipo":       UserTypeCustomer,
			},
		})
	}))

	session, err := svc.Login(context.Background(), "ana@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if session.UserID != 12 || session.UserType != UserTypeCustomer {
		t.Fatalf("unexpected session: %+v", session)
	}

	stored, ok, err := store.Load()
	if err != nil || !ok {
		t.Fatalf("session not stored: ok=%v err=%v", ok, err)
	}
	if stored.Token != token {
		t.Fatal("stored token mismatch")
	}
	if !svc.IsAuthenticated() {
		t.Fatal("expected authenticated after login")
	}
	if svc.Token() != token {
		t.Fatal("Token() mismatch")
	}
	if svc.UserID() != 12 {
		t.Fatalf("UserID() = %d, want 12", svc.UserID())
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	t.Parallel()

	svc, _ := newServiceWithServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Credenciais inválidas"}`))
	}))

	_, err := svc.Login(context.Background(), "ana@example.com", "wrong")
	if err == nil {
		t.Fatal("expected error")
	}
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.IsAuthenticated() {
		t.Fatal("must not be authenticated after failed login")
	}
}

func TestLoginValidatesInput(t *testing.T) {
	t.Parallel()

	svc, _ := newServiceWithServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("server must not be reached")
	}))

	_, err := svc.Login(context.Background(), "", "")
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestIsAuthenticatedExpiredToken(t *testing.T) {
	t.Parallel()

	store := NewMemorySessionStore()
	store.Save(Session{Token: signedToken(t, time.Now().Add(-time.Minute)), UserID: 1})

	client, err := api.NewClient(config.APIConfig{BaseURL: "http://localhost:0", Timeout: time.Second}, nil, nil)
	if err != nil {
		t.Fatalf("api.NewClient: %v", err)
	}
	svc, err := NewService(client, store, testLogger(t))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if svc.IsAuthenticated() {
		t.Fatal("expired token must not count as authenticated")
	}
}

func TestLogoutClearsSession(t *testing.T) {
	t.Parallel()

	svc, store := newServiceWithServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))

	store.Save(Session{Token: signedToken(t, time.Now().Add(time.Hour)), UserID: 3})
	if err := svc.Logout(); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, ok := svc.Current(); ok {
		t.Fatal("session must be gone after logout")
	}
}

func TestFileSessionStoreRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.json")
	store, err := NewFileSessionStore(path)
	if err != nil {
		t.Fatalf("NewFileSessionStore: %v", err)
	}

	if _, ok, err := store.Load(); err != nil || ok {
		t.Fatalf("empty store: ok=%v err=%v", ok, err)
	}

	want := Session{Token: "tok", UserID: 9, Name: "Ana", Email: "ana@example.com", UserType: UserTypeCustomer}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok, err := store.Load()
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok, _ := store.Load(); ok {
		t.Fatal("session must be gone after Clear")
	}
}
