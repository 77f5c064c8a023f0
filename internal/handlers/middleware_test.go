package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AdamRogowski/LanguageLearningApp/internal/security"
	"github.com/AdamRogowski/LanguageLearningApp/internal/service"
)

func newTestMiddleware() (*Middleware, *security.TokenIssuer) {
	tokens := security.NewTokenIssuer("test-secret", time.Hour)
	auth := service.NewAuthService(nil, tokens, nil)
	return NewMiddleware(auth), tokens
}

func TestRequireAuth(t *testing.T) {
	middleware, tokens := newTestMiddleware()

	var gotUserID int64
	handler := middleware.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = userID(r)
		w.WriteHeader(http.StatusOK)
	})

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest("GET", "/api/directories", nil))
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/directories", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rec := httptest.NewRecorder()
		handler(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := tokens.Issue(42)
		if err != nil {
			t.Fatalf("Issue failed: %v", err)
		}

		req := httptest.NewRequest("GET", "/api/directories", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		if gotUserID != 42 {
			t.Errorf("context user id = %d, want 42", gotUserID)
		}
	})
}

func TestPathID(t *testing.T) {
	mux := http.NewServeMux()
	var id int64
	var idErr error
	mux.HandleFunc("GET /api/lessons/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, idErr = pathID(r, "id")
	})

	tests := []struct {
		path    string
		want    int64
		wantErr bool
	}{
		{"/api/lessons/7", 7, false},
		{"/api/lessons/0", 0, true},
		{"/api/lessons/-3", 0, true},
		{"/api/lessons/abc", 0, true},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))

		if tt.wantErr {
			if idErr == nil {
				t.Errorf("pathID(%q) should fail", tt.path)
			}
			continue
		}
		if idErr != nil {
			t.Errorf("pathID(%q) failed: %v", tt.path, idErr)
		}
		if id != tt.want {
			t.Errorf("pathID(%q) = %d, want %d", tt.path, id, tt.want)
		}
	}
}
