package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/pdv-commerce/storefront/pkg/config"
	pkgerrors "github.com/pdv-commerce/storefront/pkg/errors"
)

func newTestClient(t *testing.T, handler http.Handler, token string) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(config.APIConfig{
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
	}, TokenSourceFunc(func() string { return token }), nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestGetInjectsBearerToken(t *testing.T) {
	t.Parallel()

	var gotAuth string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]string{"ok": "yes"})
	}), "abc123")

	var out map[string]string
	if err := client.Get(context.Background(), "/produtos", nil, &out); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if gotAuth != "Bearer abc123" {
		t.Fatalf("Authorization = %q, want Bearer abc123", gotAuth)
	}
	if out["ok"] != "yes" {
		t.Fatalf("unexpected body: %v", out)
	}
}

func TestGetOmitsAuthorizationWhenAnonymous(t *testing.T) {
	t.Parallel()

	var gotAuth string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}), "")

	if err := client.Get(context.Background(), "/produtos", nil, nil); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if gotAuth != "" {
		t.Fatalf("Authorization = %q, want empty", gotAuth)
	}
}

func TestGetEncodesQueryValues(t *testing.T) {
	t.Parallel()

	var gotQuery url.Values
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{}`))
	}), "")

	query := url.Values{}
	query.Set("empresa_id", "7")
	if err := client.Get(context.Background(), "/produtos", query, nil); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if gotQuery.Get("empresa_id") != "7" {
		t.Fatalf("empresa_id = %q, want 7", gotQuery.Get("empresa_id"))
	}
}

func TestErrorEnvelopeMapsToCodedError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		status   int
		body     string
		wantCode pkgerrors.Code
		wantMsg  string
	}{
		{
			name:     "not found with message",
			status:   http.StatusNotFound,
			body:     `{"message":"Produto não encontrado"}`,
			wantCode: pkgerrors.CodeNotFound,
			wantMsg:  "Produto não encontrado",
		},
		{
			name:     "unauthorized",
			status:   http.StatusUnauthorized,
			body:     `{"message":"Token inválido"}`,
			wantCode: pkgerrors.CodeUnauthorized,
			wantMsg:  "Token inválido",
		},
		{
			name:     "server error without envelope",
			status:   http.StatusInternalServerError,
			body:     `boom`,
			wantCode: pkgerrors.CodeDependency,
			wantMsg:  "GET /pedidos returned 500",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}), "")

			err := client.Get(context.Background(), "/pedidos", nil, nil)
			if err == nil {
				t.Fatal("expected error")
			}
			coded := pkgerrors.As(err)
			if coded == nil {
				t.Fatalf("error %v is not a coded error", err)
			}
			if coded.Code() != tc.wantCode {
				t.Fatalf("code = %v, want %v", coded.Code(), tc.wantCode)
			}
			if coded.Message() != tc.wantMsg {
				t.Fatalf("message = %q, want %q", coded.Message(), tc.wantMsg)
			}
		})
	}
}

func TestPostSendsJSONBody(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"pedido_id": 42}`))
	}), "tok")

	var out struct {
		PedidoID int64 `json:"pedido_id"`
	}
	err := client.Post(context.Background(), "/pedidos", map[string]any{"produto_id": 3}, &out)
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if gotBody["produto_id"] != float64(3) {
		t.Fatalf("body = %v", gotBody)
	}
	if out.PedidoID != 42 {
		t.Fatalf("pedido_id = %d, want 42", out.PedidoID)
	}
}
