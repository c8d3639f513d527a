package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/garnizeh/mentorship/api"
	"github.com/garnizeh/mentorship/internal/config"
	"github.com/garnizeh/mentorship/internal/mentorship"
	"github.com/garnizeh/mentorship/internal/metrics"
	"github.com/garnizeh/mentorship/pkg/models"
	"github.com/garnizeh/mentorship/pkg/repository/mock"
)

const testSecret = "testsecret"

func init() {
	api.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type testServer struct {
	router  *mux.Router
	store   *mock.Store
	svc     api.Services
	metrics *metrics.Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := mock.NewStore()
	m := metrics.New()
	if err := m.Register(metrics.NewEngagementCollector(store, store)); err != nil {
		t.Fatalf("register collector: %v", err)
	}

	svc := api.NewServices(store, mentorship.Options{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Recorder: m,
	})
	svc.Accounts = svc.Accounts.WithHashCost(bcrypt.MinCost)

	cfg := &config.Config{JWTSecret: testSecret, TokenDuration: time.Hour}
	return &testServer{
		router:  api.NewRouter(cfg, api.BuildVersion("test", "", ""), svc, m),
		store:   store,
		svc:     svc,
		metrics: m,
	}
}

// user registers an account directly through the core and returns a token.
func (s *testServer) user(t *testing.T, email string, role models.Role) (*models.User, string) {
	t.Helper()
	u, err := s.svc.Accounts.Register(context.Background(), mentorship.RegisterInput{
		Name: email, Email: email, Password: "password123", Role: role,
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	tok, err := api.IssueToken(testSecret, u, time.Hour, time.Now())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return u, tok
}

func (s *testServer) mentor(t *testing.T, name string, workload int) *models.Mentor {
	t.Helper()
	m := &models.Mentor{Name: name, JobTitle: "Engineer", Email: name + "@example.com", Workload: workload}
	if err := s.store.CreateMentor(context.Background(), m); err != nil {
		t.Fatalf("create mentor: %v", err)
	}
	return m
}

// do sends body (marshalled unless it is a string) and returns status and
// raw response.
func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		buf, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rdr = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, rdr)
	if rdr != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	res := w.Result()
	defer res.Body.Close()
	out, _ := io.ReadAll(res.Body)
	return res.StatusCode, out
}

func decode[T any](t *testing.T, b []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		t.Fatalf("unmarshal %s: %v", string(b), err)
	}
	return v
}

type problem struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

var errBoom = errors.New("boom")
