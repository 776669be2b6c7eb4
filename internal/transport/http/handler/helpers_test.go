package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"user-management-app/internal/core/auth"
	"user-management-app/internal/core/session"
	"user-management-app/internal/domain"
	"user-management-app/internal/service"
	"user-management-app/internal/transport/http/middleware"
)

// ---- in-memory user repository ----

type memRepo struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func newMemRepo() *memRepo { return &memRepo{users: map[string]domain.User{}} }

func (r *memRepo) Create(u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = *u
	return nil
}

func (r *memRepo) FindByID(id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := u
		return &cp, nil
	}
	return nil, nil
}

func (r *memRepo) FindByEmail(email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memRepo) FindByUserName(name string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.UserName == name {
			cp := u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memRepo) ListByLastLogin() ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastLoginTime.After(out[j].LastLoginTime)
	})
	return out, nil
}

func (r *memRepo) Update(u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = *u
	return nil
}

func (r *memRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func (r *memRepo) get(id string) (domain.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	return u, ok
}

func (r *memRepo) put(u domain.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = u
}

func (r *memRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

// ---- in-memory session store ----

type memStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemStore() *memStore { return &memStore{data: map[string]string{}} }

func (s *memStore) Save(_ context.Context, sid, uid string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sid] = uid
	return nil
}

func (s *memStore) Get(_ context.Context, sid string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	uid, ok := s.data[sid]
	return uid, ok, nil
}

func (s *memStore) Delete(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sid)
	return nil
}

// ---- recording mailer ----

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail error
}

type sentMail struct{ To, Subject, Body string }

func (m *fakeMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

// ---- test app ----

type testApp struct {
	engine   *gin.Engine
	repo     *memRepo
	sessions *session.Manager
	mailer   *fakeMailer
	jwter    *auth.JWTer
}

func newTestApp(t *testing.T, requireConfirmed bool) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := newMemRepo()
	jwter := &auth.JWTer{Secret: []byte("test-secret"), Issuer: "test"}
	sessions := session.NewManager(jwter, newMemStore(), "ump_session", time.Hour, 24*time.Hour, false)
	mailer := &fakeMailer{}
	log := zap.NewNop()

	r := gin.New()
	public := r.Group("")
	authed := r.Group("")
	authed.Use(middleware.AuthSession(sessions))

	NewRegisterHandler(
		service.NewRegisterService(repo), sessions, mailer, jwter, log,
		"http://localhost:8080", requireConfirmed, time.Hour,
	).MountAPI(public, authed)
	NewAuthHandler(service.NewAuthService(repo, requireConfirmed), sessions, log).MountAPI(public, authed)
	NewUserHandler(service.NewAdminService(repo), sessions, log).MountAPI(public, authed)

	return &testApp{engine: r, repo: repo, sessions: sessions, mailer: mailer, jwter: jwter}
}

func (a *testApp) seedUser(id, email string) domain.User {
	u := domain.User{
		ID:            id,
		UserName:      "user-" + id,
		Email:         email,
		PasswordHash:  "x",
		LastLoginTime: time.Now().UTC(),
	}
	a.repo.put(u)
	return u
}

// signInAs issues a real session cookie for the given user id.
func (a *testApp) signInAs(t *testing.T, uid string) *http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	require.NoError(t, a.sessions.SignIn(c, uid, false))
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func (a *testApp) do(t *testing.T, method, path string, body any, cookie *http.Cookie) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}
