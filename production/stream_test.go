package production

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"plateful/globals"
	"plateful/middleware"

	"github.com/golang-jwt/jwt/v5"
)

func mintToken(t *testing.T, roles []string) string {
	t.Helper()
	claims := &middleware.Claims{
		Username: "staff",
		UserID:   "user-1",
		Role:     roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(globals.JwtSecret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestStreamHandlerRequiresAdminToken(t *testing.T) {
	handler := StreamHandler(NewHub(), NewRunner(nil, false, func(Summary) {}))

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"garbage token", "not-a-jwt", http.StatusUnauthorized},
		{"customer token", mintToken(t, []string{"customer"}), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/ws/production", nil)
			if tt.token != "" {
				q := r.URL.Query()
				q.Set("token", tt.token)
				r.URL.RawQuery = q.Encode()
			}
			w := httptest.NewRecorder()

			handler(w, r, nil)

			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}
