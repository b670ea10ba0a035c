package handlers_test

import (
	"net/url"
	"testing"

	"joyeria/internal/http/handlers"
)

func TestAuthLogging(t *testing.T) {
	ta := newTestApp(t, handlers.DefaultLimits())
	csrfTok := ta.csrfToken(t)

	run := func(email, pass string) []logEntry {
		return captureLogs(t, func() {
			ta.postForm(t, "/login", csrfTok, "", url.Values{"email": {email}, "password": {pass}})
		})
	}

	fail, ok := findLog(run(adminEmail, "Wr0ng!pass"), "auth.login.fail")
	if !ok {
		t.Fatal("auth.login.fail log not found")
	}
	if _, ok := fail.Fields["email"]; !ok {
		t.Fatal("auth.login.fail missing email field")
	}
	if fail.Level != "warn" {
		t.Fatalf("auth.login.fail should be a warning, got %q", fail.Level)
	}

	success, ok := findLog(run(adminEmail, adminPass), "auth.login.success")
	if !ok {
		t.Fatal("auth.login.success log not found")
	}
	if _, ok := success.Fields["email"]; !ok {
		t.Fatal("auth.login.success missing email field")
	}
	if success.Level != "audit" {
		t.Fatalf("auth.login.success should be audited, got %q", success.Level)
	}
}
