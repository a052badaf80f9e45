package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/jobportal/internal/logger"
)

func newTestClient(t *testing.T, baseURL string, opts Options) *Client {
	t.Helper()
	opts.BaseURL = baseURL
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	c, err := New(opts)
	require.NoError(t, err)
	return c
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestRequestShape(t *testing.T) {
	var gotMethod, gotPath, gotType, gotID string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		gotType = r.Header.Get("Content-Type")
		gotID = r.Header.Get(RequestIDHeader)
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":200,"message":"ok","data":{"id":"j1"}}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL+"/api/", Options{})
	resp, err := c.Patch(context.Background(), "jobs/j1", map[string]bool{"isBlocked": true})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "/api/jobs/j1", gotPath)
	assert.Equal(t, "application/json", gotType)
	assert.NotEmpty(t, gotID)
	assert.Equal(t, gotID, resp.RequestID)
	assert.Equal(t, true, gotBody["isBlocked"])

	var it item
	ok, err := resp.Object(&it, DataPath)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "j1", it.ID)
}

func TestSessionCookieIsCarried(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "jobPortalToken", Value: "secret", Path: "/", HttpOnly: true})
		_, _ = w.Write([]byte(`{}`))
	})
	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("jobPortalToken"); err != nil || c.Value != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	jarPath := filepath.Join(t.TempDir(), "cookies.json")
	jar, err := NewJar(jarPath)
	require.NoError(t, err)
	c := newTestClient(t, srv.URL, Options{Jar: jar})
	ctx := context.Background()

	_, err = c.Get(ctx, "/me")
	require.Error(t, err)

	_, err = c.Post(ctx, "/login", nil)
	require.NoError(t, err)
	_, err = c.Get(ctx, "/me")
	require.NoError(t, err)

	// A new process with the same jar file is still signed in.
	jar2, err := NewJar(jarPath)
	require.NoError(t, err)
	c2 := newTestClient(t, srv.URL, Options{Jar: jar2})
	_, err = c2.Get(ctx, "/me")
	require.NoError(t, err)

	require.NoError(t, c2.ForgetCredentials())
	_, err = c2.Get(ctx, "/me")
	require.Error(t, err)

	jar3, err := NewJar(jarPath)
	require.NoError(t, err)
	c3 := newTestClient(t, srv.URL, Options{Jar: jar3})
	_, err = c3.Get(ctx, "/me")
	require.Error(t, err)
}

func TestErrorStatusCarriesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":401,"message":"invalid credentials"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, Options{})
	_, err := c.Post(context.Background(), "/auth/login", map[string]string{"email": "a@x.com"})
	require.Error(t, err)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusUnauthorized, reqErr.Status)
	assert.True(t, reqErr.Unauthorized())
	assert.Equal(t, "invalid credentials", Message(err, "Invalid email or password."))
}

func TestErrorWithoutMessageUsesFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<html>oops</html>`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, Options{})
	_, err := c.Get(context.Background(), "/jobs")
	require.Error(t, err)
	assert.Equal(t, "Failed to load jobs. Please try again.", Message(err, "Failed to load jobs. Please try again."))
}

func TestErrorFieldIsAlsoAServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"already applied"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, Options{})
	_, err := c.Post(context.Background(), "/jobs/j1/apply", nil)
	assert.Equal(t, "already applied", Message(err, "fallback"))
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newTestClient(t, url, Options{})
	_, err := c.Get(context.Background(), "/auth/me")
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Zero(t, reqErr.Status)
	assert.NotNil(t, errors.Unwrap(reqErr))
	assert.Equal(t, "generic", Message(err, "generic"))
}

func TestMetricsCollector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	collector := NewCollector(reg)
	c := newTestClient(t, srv.URL, Options{Metrics: collector})
	ctx := context.Background()

	_, _ = c.Get(ctx, "/jobs")
	_, _ = c.Get(ctx, "/jobs")
	_, _ = c.Get(ctx, "/missing")

	assert.Equal(t, 2.0, testutil.ToFloat64(collector.requests.WithLabelValues("GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.requests.WithLabelValues("GET", "404")))

	rec := httptest.NewRecorder()
	MetricsHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "jobportal_gateway_requests_total")
}

func TestRateLimitHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, Options{RateLimit: 0.001})
	_, err := c.Get(context.Background(), "/jobs")
	require.NoError(t, err, "first call uses the burst")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Get(ctx, "/jobs")
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Zero(t, reqErr.Status)
}
