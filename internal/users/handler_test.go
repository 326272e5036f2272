package users

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"resume-screener/internal/shared/auth"
	"resume-screener/internal/shared/server/middleware"
)

func newTestRouter(t *testing.T) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc, cache := newTestService(t, nil)
	issuer, err := auth.NewIssuer("test-secret", "test", time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	sessions := NewSessionRegistry(cache, nil)
	h := NewHandler(svc, sessions, issuer)

	r := gin.New()
	api := r.Group("/api/v1")
	h.RegisterPublic(api)
	h.RegisterRoutes(api.Group("", middleware.Auth(issuer, sessions)))
	return r, svc
}

func doJSON(r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func login(t *testing.T, r http.Handler, username, password string) string {
	t.Helper()
	resp := doJSON(r, http.MethodPost, "/api/v1/auth/login", "", loginRequest{Username: username, Password: password})
	if resp.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d: %s", username, resp.Code, resp.Body.String())
	}
	var body loginResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	return body.Token
}

func TestLoginMeLogout(t *testing.T) {
	r, _ := newTestRouter(t)

	bad := doJSON(r, http.MethodPost, "/api/v1/auth/login", "", loginRequest{Username: "admin", Password: "nope"})
	if bad.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", bad.Code)
	}

	token := login(t, r, "admin", "admin")
	me := doJSON(r, http.MethodGet, "/api/v1/me", token, nil)
	if me.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", me.Code)
	}
	var profile map[string]any
	_ = json.Unmarshal(me.Body.Bytes(), &profile)
	if profile["id"] != "admin" || profile["role"] != "admin" {
		t.Fatalf("unexpected profile %v", profile)
	}
	if _, ok := profile["password"]; ok {
		t.Fatalf("profile must not expose password")
	}

	if resp := doJSON(r, http.MethodPost, "/api/v1/auth/logout", token, nil); resp.Code != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", resp.Code)
	}
	if resp := doJSON(r, http.MethodGet, "/api/v1/me", token, nil); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected revoked token to be rejected, got %d", resp.Code)
	}
}

func TestUserManagementRequiresAdmin(t *testing.T) {
	r, svc := newTestRouter(t)
	adminToken := login(t, r, "admin", "admin")

	created := doJSON(r, http.MethodPost, "/api/v1/users", adminToken, NewUser{Username: "member1", Password: "pw", Position: "面试官"})
	if created.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", created.Code, created.Body.String())
	}
	dup := doJSON(r, http.MethodPost, "/api/v1/users", adminToken, NewUser{Username: "member1", Password: "pw"})
	if dup.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", dup.Code)
	}

	memberToken := login(t, r, "member1", "pw")
	if resp := doJSON(r, http.MethodGet, "/api/v1/users", memberToken, nil); resp.Code != http.StatusForbidden {
		t.Fatalf("expected member 403, got %d", resp.Code)
	}

	if resp := doJSON(r, http.MethodDelete, "/api/v1/users/admin", adminToken, nil); resp.Code != http.StatusForbidden {
		t.Fatalf("expected admin delete 403, got %d", resp.Code)
	}

	member, err := svc.Login(context.Background(), "member1", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp := doJSON(r, http.MethodDelete, "/api/v1/users/"+member.ID, adminToken, nil); resp.Code != http.StatusOK {
		t.Fatalf("expected delete 200, got %d", resp.Code)
	}
	if resp := doJSON(r, http.MethodGet, "/api/v1/me", memberToken, nil); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected deleted member's session revoked, got %d", resp.Code)
	}
}
