package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/trafine/internal/db"
	"github.com/Skotchmaster/trafine/internal/directions"
	"github.com/Skotchmaster/trafine/internal/metrics"
	"github.com/Skotchmaster/trafine/internal/repo"
	"github.com/Skotchmaster/trafine/internal/service"
	"github.com/Skotchmaster/trafine/internal/tokens"
)

const routeBody = `{"routes":[{"distance":1234.5,"geometry":{"type":"LineString","coordinates":[[2.35,48.86],[2.29,48.86]]}}],"code":"Ok"}`

type testEnv struct {
	E        *echo.Echo
	Issuer   *tokens.Issuer
	Incident *service.IncidentService
	Provider *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	conn, err := db.Open(context.Background(), db.MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(conn) })

	issuer, err := tokens.NewIssuer([]byte("test-jwt-secret-0123456789abcdef"))
	require.NoError(t, err)

	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("access_token") != "test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Not Authorized - Invalid Token"}`))
			return
		}
		if strings.Contains(r.URL.Path, "0,0;0,0") {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"message":"No route found"}`))
			return
		}
		_, _ = w.Write([]byte(routeBody))
	}))
	t.Cleanup(provider.Close)

	r := repo.New(conn)
	m := metrics.New()
	incidents := &service.IncidentService{Repo: r, Metrics: m, PerVoter: true}

	e := echo.New()
	Register(e, &Deps{
		AuthHandler:     &AuthHTTP{Svc: &service.AuthService{Repo: r, Tokens: issuer, Metrics: m}},
		IncidentHandler: &IncidentHTTP{Svc: incidents},
		NavigationHandler: &NavigationHTTP{
			Directions: directions.NewClient(provider.URL, "test-token", 2*time.Second),
		},
		Sessions: issuer,
		DB:       conn,
		Metrics:  m,
	})

	return &testEnv{E: e, Issuer: issuer, Incident: incidents, Provider: provider}
}

func (env *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (env *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()

	rec := env.do(t, http.MethodPost, "/auth/register", map[string]string{"username": username, "password": password}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/auth/login", map[string]string{"username": username, "password": password}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[map[string]any](t, rec)["token"].(string)
}
