package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"

	"joyeria/internal/config"
	"joyeria/internal/http/handlers"
	"joyeria/internal/mail"
	"joyeria/internal/payments"
	"joyeria/internal/repos"
	"joyeria/internal/services"
)

const (
	adminEmail = "admin@joyeria.test"
	adminPass  = "Adm1n!pass"
)

type testApp struct {
	app   *fiber.App
	db    *sqlx.DB
	deps  *handlers.Deps
	users *repos.UserRepo
	gw    *payments.SandboxGateway
	mail  *outbox
}

type outbox struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (o *outbox) Send(_ context.Context, m mail.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, m)
	return nil
}

func (o *outbox) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.sent)
}

// newTestApp wires the same middleware and routes as the server binary
// against an in-memory database.
func newTestApp(t *testing.T, lim handlers.Limits) *testApp {
	t.Helper()
	cfg := config.Config{DBDSN: ":memory:", MediaDir: "../../web/media", PublicBaseURL: "http://shop.test"}
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	userRepo := repos.NewUserRepo(db)
	if err := userRepo.EnsureAdmin(adminEmail, adminPass); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO users(id,email,name,password_hash,role) VALUES('u-ana','ana@example.com','Ana','x','USER')`); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	authSvc := services.NewAuthService(userRepo)

	gw := payments.NewSandboxGateway(cfg.PublicBaseURL)
	box := &outbox{}
	deps := handlers.NewDeps(db, cfg, authSvc, handlers.Backends{Payments: gw, Mail: box})

	app := fiber.New(fiber.Config{
		Views:        handlers.NewViews("../../web/templates"),
		ErrorHandler: handlers.ErrorHandler,
	})
	app.Server().MaxRequestBodySize = 1 << 20
	app.Use(requestid.New())
	app.Use(handlers.CSRF())
	app.Use(handlers.AttachUser(authSvc))
	handlers.Register(app, deps, authSvc, lim)

	return &testApp{app: app, db: db, deps: deps, users: userRepo, gw: gw, mail: box}
}

func (ta *testApp) do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	resp, err := ta.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	return resp
}

// csrfToken fetches a page so the CSRF middleware issues its cookie.
func (ta *testApp) csrfToken(t *testing.T) string {
	t.Helper()
	resp := ta.do(t, httptest.NewRequest("GET", "/login", nil))
	tok := extractCookie(resp, "csrf_")
	if tok == "" {
		t.Fatal("csrf token missing")
	}
	return tok
}

func newFormRequest(path string, form url.Values) *http.Request {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func (ta *testApp) postForm(t *testing.T, path, csrfTok, sid string, form url.Values) *http.Response {
	t.Helper()
	form.Set("csrf", csrfTok)
	req := newFormRequest(path, form)
	req.AddCookie(&http.Cookie{Name: "csrf_", Value: csrfTok})
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	return ta.do(t, req)
}

func (ta *testApp) sendJSON(t *testing.T, method, path, sid string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	return ta.do(t, req)
}

func (ta *testApp) get(t *testing.T, path, sid string) *http.Response {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	return ta.do(t, req)
}

func extractCookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	Fields map[string]any `json:"fields"`
}

type lockedWriter struct {
	w  *bytes.Buffer
	mu *sync.Mutex
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

// captureLogs swaps the standard logger output while fn runs and returns the
// JSON entries it wrote.
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	oldW := log.Writer()
	oldFlags := log.Flags()
	log.SetOutput(&lockedWriter{w: &buf, mu: &mu})
	log.SetFlags(0)
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func findLog(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}
