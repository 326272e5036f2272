package users

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
)

func TestEndpointUnconfiguredDegrades(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Any("/api/users", (&Endpoint{}).Serve)

	cases := []struct {
		method string
		status int
		body   string
	}{
		{http.MethodGet, http.StatusOK, `[]`},
		{http.MethodPost, http.StatusOK, `{"success":true}`},
		{http.MethodDelete, http.StatusOK, `{"success":true}`},
		{http.MethodPut, http.StatusMethodNotAllowed, `{"error":"Method not allowed"}`},
	}
	for _, tc := range cases {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(tc.method, "/api/users", strings.NewReader(`{}`)))
		if resp.Code != tc.status || resp.Body.String() != tc.body {
			t.Fatalf("%s: got %d %s", tc.method, resp.Code, resp.Body.String())
		}
	}
}

func TestEndpointConfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	r := gin.New()
	r.Any("/api/users", (&Endpoint{Repo: &PGRepo{DB: db}}).Serve)

	mock.ExpectExec("INSERT INTO users").
		WithArgs("7", "zhou", "pw", "member", "HR", int64(1700000000000)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	body := `{"id":"7","username":"zhou","password":"pw","role":"member","position":"HR","createdAt":1700000000000}`
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(body)))
	if resp.Code != http.StatusCreated || resp.Body.String() != `{"success":true}` {
		t.Fatalf("POST: got %d %s", resp.Code, resp.Body.String())
	}

	mock.ExpectQuery("SELECT id, username").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password", "role", "position", "created_at"}).
			AddRow("7", "zhou", "pw", "member", "HR", int64(1700000000000)))
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/users", nil))
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"createdAt":1700000000000`) {
		t.Fatalf("GET: got %d %s", resp.Code, resp.Body.String())
	}

	mock.ExpectExec("DELETE FROM users").WithArgs("7").WillReturnError(errTest("relation \"users\" does not exist"))
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodDelete, "/api/users?id=7", nil))
	if resp.Code != http.StatusInternalServerError || !strings.Contains(resp.Body.String(), "does not exist") {
		t.Fatalf("DELETE: got %d %s", resp.Code, resp.Body.String())
	}

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPut, "/api/users", nil))
	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("PUT: expected 405, got %d", resp.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

type errTest string

func (e errTest) Error() string { return string(e) }

func TestEndpointRefusesToDeleteAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	r := gin.New()
	r.Any("/api/users", (&Endpoint{Repo: &PGRepo{DB: db}}).Serve)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodDelete, "/api/users?id=admin", nil))
	if resp.Code != http.StatusForbidden || resp.Body.String() != `{"error":"`+ErrAdminUndeletable.Error()+`"}` {
		t.Fatalf("DELETE admin: got %d %s", resp.Code, resp.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected statement: %v", err)
	}
}
