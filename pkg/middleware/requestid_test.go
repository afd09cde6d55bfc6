package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TestRequestID はRequestIDミドルウェアを検証する。
func TestRequestID(t *testing.T) {
	t.Parallel()

	t.Run("ヘッダーがない場合はUUIDが新規採番されること", func(t *testing.T) {
		t.Parallel()

		var captured string
		router := gin.New()
		router.Use(RequestID())
		router.GET("/test", func(c *gin.Context) {
			captured = GetRequestID(c)
			c.Status(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if _, err := uuid.Parse(captured); err != nil {
			t.Errorf("リクエストIDがUUIDでない: %q", captured)
		}
		if got := w.Header().Get("X-Request-ID"); got != captured {
			t.Errorf("X-Request-ID = %q, want %q", got, captured)
		}
	})

	t.Run("クライアント指定のIDが引き継がれること", func(t *testing.T) {
		t.Parallel()

		var captured string
		router := gin.New()
		router.Use(RequestID())
		router.GET("/test", func(c *gin.Context) {
			captured = GetRequestID(c)
			c.Status(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Request-ID", "client-id-001")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if captured != "client-id-001" {
			t.Errorf("リクエストID = %q, want %q", captured, "client-id-001")
		}
		if got := w.Header().Get("X-Request-ID"); got != "client-id-001" {
			t.Errorf("X-Request-ID = %q, want %q", got, "client-id-001")
		}
	})
}
