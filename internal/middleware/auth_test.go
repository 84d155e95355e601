package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubValidator struct {
	subject string
	err     error
}

func (s *stubValidator) Subject(token string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.subject, nil
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		validator  *stubValidator
		wantStatus int
		wantUserID string
	}{
		{
			name:       "valid token",
			header:     "Bearer good-token",
			validator:  &stubValidator{subject: "user-42"},
			wantStatus: http.StatusOK,
			wantUserID: "user-42",
		},
		{
			name:       "missing header",
			header:     "",
			validator:  &stubValidator{subject: "user-42"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong scheme",
			header:     "Basic dXNlcjpwYXNz",
			validator:  &stubValidator{subject: "user-42"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "empty bearer token",
			header:     "Bearer ",
			validator:  &stubValidator{subject: "user-42"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "invalid token",
			header:     "Bearer bad-token",
			validator:  &stubValidator{err: errors.New("invalid token")},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUserID string
			handler := RequireAuth(tt.validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUserID = GetUserID(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodPost, "/command", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantUserID != "" && gotUserID != tt.wantUserID {
				t.Errorf("user ID = %q, want %q", gotUserID, tt.wantUserID)
			}
			if rec.Code == http.StatusUnauthorized && rec.Header().Get("WWW-Authenticate") != "Bearer" {
				t.Error("expected WWW-Authenticate header on 401")
			}
		})
	}
}
