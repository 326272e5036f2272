package history

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
)

func TestEndpointUnconfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Any("/api/history", (&Endpoint{}).Serve)

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(method, "/api/history", strings.NewReader(`{}`)))
		if resp.Code != http.StatusOK || resp.Body.String() != `{"success":true}` {
			t.Fatalf("%s: got %d %s", method, resp.Code, resp.Body.String())
		}
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/history", nil))
	if resp.Body.String() != `[]` {
		t.Fatalf("GET: got %s", resp.Body.String())
	}
}

func TestEndpointAssignAndDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	r := gin.New()
	r.Any("/api/history", (&Endpoint{Repo: &PGRepo{DB: db}}).Serve)

	mock.ExpectExec("UPDATE history_records").
		WithArgs("h1", "u2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM history_records").
		WithArgs("h1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPut, "/api/history", strings.NewReader(`{"id":"h1","assignedTo":"u2"}`)))
	if resp.Code != http.StatusOK {
		t.Fatalf("PUT: got %d %s", resp.Code, resp.Body.String())
	}

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodDelete, "/api/history?id=h1", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("DELETE: got %d %s", resp.Code, resp.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
