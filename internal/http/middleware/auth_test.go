package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/yungbote/neurobridge-intelligence/internal/platform/ctxutil"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/logger"
)

func sign(t *testing.T, secret, sub string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sub,
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	am := NewAuthMiddleware(logger.Nop(), "s3cret")
	r := gin.New()
	r.Use(am.RequireAuth())
	r.GET("/who", func(c *gin.Context) {
		rd := ctxutil.GetRequestData(c.Request.Context())
		c.String(http.StatusOK, rd.LearnerID)
	})

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"missing", "", http.StatusUnauthorized, ""},
		{"valid", "Bearer " + sign(t, "s3cret", "u1", time.Now().Add(time.Hour)), http.StatusOK, "u1"},
		{"wrong secret", "Bearer " + sign(t, "other", "u1", time.Now().Add(time.Hour)), http.StatusUnauthorized, ""},
		{"expired", "Bearer " + sign(t, "s3cret", "u1", time.Now().Add(-time.Hour)), http.StatusUnauthorized, ""},
		{"no subject", "Bearer " + sign(t, "s3cret", "", time.Now().Add(time.Hour)), http.StatusUnauthorized, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/who", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tc.status {
				t.Fatalf("status: want=%d got=%d", tc.status, rec.Code)
			}
			if tc.body != "" && rec.Body.String() != tc.body {
				t.Fatalf("body: want=%s got=%s", tc.body, rec.Body.String())
			}
		})
	}
}

func TestRequireAuthDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewAuthMiddleware(logger.Nop(), "").RequireAuth())
	r.GET("/open", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/open", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status: want=%d got=%d", http.StatusNoContent, rec.Code)
	}
}
