package main

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nathanael250/travooz-hms-sub004/internal/config"
	"github.com/nathanael250/travooz-hms-sub004/internal/database"
	"github.com/nathanael250/travooz-hms-sub004/internal/domain/roomfeed"
	jwtsvc "github.com/nathanael250/travooz-hms-sub004/internal/pkg/jwt"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		AppEnv:               "test",
		DatabaseURL:          "file:" + filepath.Join(t.TempDir(), "api.db") + "?_pragma=foreign_keys(1)",
		JWTSecret:            "router-test-secret",
		JWTAccessTTL:         time.Hour,
		ReferenceMaxAttempts: 5,
		MetricsEnabled:       true,
	}
}

func TestRouter(t *testing.T) {
	cfg := testConfig(t)
	log := zap.NewNop()
	db, err := database.Connect(cfg.DatabaseURL, log)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	hub := roomfeed.NewHub(log)
	r := newRouter(cfg, db, hub, hub, log)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL)
	frontDesk, err := j.GenerateToken(3, "front_desk")
	require.NoError(t, err)
	housekeeper, err := j.GenerateToken(4, "housekeeping")
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   string
		status int
	}{
		{"health", http.MethodGet, "/healthz", "", "", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", "", "", http.StatusOK},
		{"bookings need auth", http.MethodGet, "/api/v1/bookings/1", "", "", http.StatusUnauthorized},
		{"unknown booking", http.MethodGet, "/api/v1/bookings/1", frontDesk, "", http.StatusNotFound},
		{"list units", http.MethodGet, "/api/v1/units", frontDesk, "", http.StatusOK},
		{"front desk cannot set status", http.MethodPatch, "/api/v1/units/1/status", frontDesk, `{"status":"maintenance"}`, http.StatusForbidden},
		{"housekeeping reaches handler", http.MethodPatch, "/api/v1/units/1/status", housekeeper, `{"status":"maintenance"}`, http.StatusNotFound},
		{"ws needs token", http.MethodGet, "/api/v1/ws/room-status", "", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}
}
