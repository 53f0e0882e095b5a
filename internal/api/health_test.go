package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestHealthEndpoints(t *testing.T) {
	cases := []struct {
		name      string
		dbPing    func() error
		path      string
		wantCode  int
	}{
		{name: "healthz always ok", dbPing: func() error { return errors.New("down") }, path: "/healthz", wantCode: http.StatusOK},
		{name: "readyz ok", dbPing: func() error { return nil }, path: "/readyz", wantCode: http.StatusOK},
		{name: "readyz degraded", dbPing: func() error { return errors.New("down") }, path: "/readyz", wantCode: http.StatusServiceUnavailable},
		{name: "readyz nil ping", dbPing: nil, path: "/readyz", wantCode: http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			r := gin.New()
			NewHealthHandler(tc.dbPing).Register(r)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))
			if w.Code != tc.wantCode {
				t.Fatalf("status %d, want %d", w.Code, tc.wantCode)
			}
		})
	}
}
