package handlers_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"joyeria/internal/http/handlers"
)

func TestAdminPasswordIsHashed(t *testing.T) {
	ta := newTestApp(t, handlers.DefaultLimits())
	var h string
	if err := ta.db.Get(&h, `SELECT password_hash FROM users WHERE id='u-admin'`); err != nil {
		t.Fatalf("select hash: %v", err)
	}
	if strings.Contains(h, adminPass) {
		t.Fatal("hash contains plaintext password")
	}
	if !strings.HasPrefix(h, "$2") {
		t.Fatalf("unexpected hash format: %s", h)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(h), []byte(adminPass)); err != nil {
		t.Fatalf("hash does not validate the configured password: %v", err)
	}
}

func TestLoginSuccessFailAndThrottle(t *testing.T) {
	lim := handlers.DefaultLimits()
	lim.Login = 2
	lim.LoginWindow = time.Minute
	ta := newTestApp(t, lim)
	csrfTok := ta.csrfToken(t)

	login := func(pass string) *http.Response {
		return ta.postForm(t, "/login", csrfTok, "", url.Values{"email": {adminEmail}, "password": {pass}})
	}

	if resp := login("Wr0ng!pass"); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad creds, got %d", resp.StatusCode)
	}

	resp := login(adminPass)
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected redirect on success, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/admin" {
		t.Fatalf("expected redirect to /admin, got %q", loc)
	}
	sid := extractCookie(resp, "sid")
	if sid == "" {
		t.Fatal("login did not issue a session cookie")
	}
	if u, err := ta.users.SessionUser(sid); err != nil || u.ID != "u-admin" {
		t.Fatalf("session not bound to admin: %v %+v", err, u)
	}

	if resp := login("Wr0ng!pass"); resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after throttle, got %d", resp.StatusCode)
	}
}

func TestLoginIsStaffOnly(t *testing.T) {
	ta := newTestApp(t, handlers.DefaultLimits())
	csrfTok := ta.csrfToken(t)
	h, err := bcrypt.GenerateFromPassword([]byte("Cl1ente!pass"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ta.db.Exec(`INSERT INTO users(id,email,name,password_hash,role) VALUES('u-cli','cli@example.com','Cli',?,'USER')`, string(h)); err != nil {
		t.Fatal(err)
	}

	var resp *http.Response
	logs := captureLogs(t, func() {
		resp = ta.postForm(t, "/login", csrfTok, "sid-cli", url.Values{"email": {"cli@example.com"}, "password": {"Cl1ente!pass"}})
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("shopper account login: want 401, got %d", resp.StatusCode)
	}
	if _, err := ta.users.SessionUser("sid-cli"); err == nil {
		t.Fatal("shopper account was bound to the session")
	}
	fail, ok := findLog(logs, "auth.login.fail")
	if !ok || fail.Fields["reason"] != "not_staff" {
		t.Fatalf("want auth.login.fail with reason not_staff, got %+v", fail)
	}
}

func TestLoginRejectsMissingCSRF(t *testing.T) {
	ta := newTestApp(t, handlers.DefaultLimits())
	form := url.Values{"email": {adminEmail}, "password": {adminPass}}
	req := newFormRequest("/login", form)
	resp := ta.do(t, req)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 without csrf token, got %d", resp.StatusCode)
	}
}

func TestLogoutUnbindsSession(t *testing.T) {
	ta := newTestApp(t, handlers.DefaultLimits())
	csrfTok := ta.csrfToken(t)
	if err := ta.users.BindSession("sid-admin", "u-admin"); err != nil {
		t.Fatal(err)
	}
	resp := ta.postForm(t, "/logout", csrfTok, "sid-admin", url.Values{})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected redirect on logout, got %d", resp.StatusCode)
	}
	if _, err := ta.users.SessionUser("sid-admin"); err == nil {
		t.Fatal("session still bound after logout")
	}
}
