package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/wedding-rsvp/internal/api"
	"github.com/charlesng35/wedding-rsvp/internal/auth"
	sharedtestutil "github.com/charlesng35/wedding-rsvp/internal/database/testutil"
	"github.com/charlesng35/wedding-rsvp/internal/monitoring"
	"github.com/charlesng35/wedding-rsvp/internal/monitoring/checks"
	"github.com/charlesng35/wedding-rsvp/internal/services"
	"github.com/charlesng35/wedding-rsvp/internal/store"
)

// Admin credentials wired into every Env.
const (
	AdminUsername = "couple"
	AdminPassword = "s3cret-Pass"
	AdminToken    = "authenticated"
)

// Env encapsulates a fully-wired API instance backed by an in-memory database for handler tests.
type Env struct {
	T       *testing.T
	DB      *gorm.DB
	Store   store.Store
	Service *services.RSVPService
	Router  *gin.Engine
}

// EnvOption customises NewEnv.
type EnvOption func(*envConfig)

type envConfig struct {
	store       store.Store
	serviceOpts []services.RSVPOption
}

// WithStore replaces the SQLite-backed store.
func WithStore(st store.Store) EnvOption {
	return func(cfg *envConfig) {
		cfg.store = st
	}
}

// WithServiceOptions forwards options to the RSVP service.
func WithServiceOptions(opts ...services.RSVPOption) EnvOption {
	return func(cfg *envConfig) {
		cfg.serviceOpts = append(cfg.serviceOpts, opts...)
	}
}

// NewEnv provisions a fresh handler test environment with migrations applied.
func NewEnv(t *testing.T, opts ...EnvOption) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	cfg := envConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	db := sharedtestutil.MustOpenTestDB(t, sharedtestutil.WithAutoMigrate())
	st := cfg.store
	if st == nil {
		gormStore, err := store.NewGormStore(db)
		require.NoError(t, err)
		st = gormStore
	}

	svc, err := services.NewRSVPService(st, cfg.serviceOpts...)
	require.NoError(t, err)

	health := monitoring.NewHealthManager()
	health.RegisterReadiness(checks.Store(st, 0))

	router, err := api.NewRouter(api.Options{
		Service: svc,
		Admin: auth.NewAdmin(auth.AdminConfig{
			Username: AdminUsername,
			Password: AdminPassword,
			Token:    AdminToken,
		}),
		Health:         health,
		MetricsEnabled: true,
	})
	require.NoError(t, err)

	return &Env{
		T:       t,
		DB:      db,
		Store:   st,
		Service: svc,
		Router:  router,
	}
}

// Login authenticates with the configured admin credentials and returns the token.
func (e *Env) Login() string {
	e.T.Helper()

	w := e.Request(http.MethodPost, "/api/login", map[string]string{
		"username": AdminUsername,
		"password": AdminPassword,
	}, "")
	require.Equal(e.T, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
	}
	DecodeInto(e.T, w, &resp)
	require.True(e.T, resp.Success)
	require.NotEmpty(e.T, resp.Token)
	return resp.Token
}

// ErrorBody mirrors the error envelope written by pkg/response.
type ErrorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DecodeError parses an error response from a recorder.
func DecodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var body ErrorBody
	DecodeInto(t, w, &body)
	require.False(t, body.Success, w.Body.String())
	return body
}

// DecodeInto unmarshals the response body into the provided destination.
func DecodeInto[T any](t *testing.T, w *httptest.ResponseRecorder, dest *T) {
	t.Helper()
	if dest == nil {
		t.Fatal("destination must not be nil")
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest), w.Body.String())
}

// Request executes an HTTP request against the test router, applying JSON encoding and auth headers automatically.
func (e *Env) Request(method, path string, body any, token string) *httptest.ResponseRecorder {
	e.T.Helper()

	var buf *bytes.Buffer
	switch b := body.(type) {
	case nil:
		buf = bytes.NewBuffer(nil)
	case string:
		buf = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(body)
		require.NoError(e.T, err)
		buf = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, path, buf)
	require.NoError(e.T, err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}
