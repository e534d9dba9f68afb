package http

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/campus-otp/internal/application/otp"
	"github.com/campus-otp/internal/config"
	jwtinfra "github.com/campus-otp/internal/infrastructure/jwt"
	"github.com/campus-otp/internal/infrastructure/memory"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// inbox records delivered messages instead of sending them.
type inbox struct {
	mu     sync.Mutex
	bodies map[string]string
}

func (i *inbox) SendEmail(_ context.Context, to, _, body string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.bodies[to] = body
	return nil
}

var codePattern = regexp.MustCompile(`\b(\d{6})\b`)

func (i *inbox) code(t *testing.T, to string) string {
	t.Helper()
	i.mu.Lock()
	defer i.mu.Unlock()
	m := codePattern.FindStringSubmatch(i.bodies[to])
	require.Len(t, m, 2, "no code delivered to %s", to)
	return m[1]
}

func newTestServer(t *testing.T) (*httptest.Server, *inbox) {
	t.Helper()
	log, _ := logtest.NewNullLogger()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	tokens := jwtinfra.NewProviderFromKeys(key, &key.PublicKey, "campus-otp", time.Hour)

	box := &inbox{bodies: map[string]string{}}
	svc, err := otp.NewService(otp.ServiceDeps{
		Store:  memory.NewStore(),
		Mailer: box,
		Tokens: tokens,
		Logger: log,
		Policy: otp.Policy{HashCost: bcrypt.MinCost},
	})
	require.NoError(t, err)

	cfg := &config.Config{AllowedOrigins: []string{"*"}}
	srv := httptest.NewServer(NewRouter(cfg, &Deps{OTPService: svc, Verifier: tokens, Logger: log}))
	t.Cleanup(srv.Close)
	return srv, box
}

func postJSON(t *testing.T, url string, body any) (int, map[string]any) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestRouter_RequestVerifyAndInspect(t *testing.T) {
	srv, box := newTestServer(t)

	status, body := postJSON(t, srv.URL+"/v1/otp/request", map[string]string{"email": "student@sggs.ac.in"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OTP sent to student@sggs.ac.in", body["message"])

	code := box.code(t, "student@sggs.ac.in")
	status, body = postJSON(t, srv.URL+"/v1/otp/verify", map[string]string{"email": "student@sggs.ac.in", "otp": code})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	status, body = postJSON(t, srv.URL+"/v1/otp/verify", map[string]string{"email": "student@sggs.ac.in", "otp": code})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_OR_EXPIRED", body["error_code"])

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/v1/verification", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var v map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	assert.Equal(t, "student@sggs.ac.in", v["email"])
}

func TestRouter_ForeignDomainRejected(t *testing.T) {
	srv, box := newTestServer(t)

	status, body := postJSON(t, srv.URL+"/v1/otp/request", map[string]string{"email": "user@gmail.com"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "DOMAIN_REJECTED", body["error_code"])
	assert.Empty(t, box.bodies)

	status, body = postJSON(t, srv.URL+"/v1/otp/verify", map[string]string{"email": "user@gmail.com", "otp": "123456"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "DOMAIN_REJECTED", body["error_code"])
}

func TestRouter_VerificationRequiresToken(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/v1/verification")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_HealthCheck(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/v1/health-check/ping")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Content-Type"))
}
