package handlers_test

import (
	"testing"

	"joyeria/internal/http/handlers"
)

func TestAccessDeniedLogs(t *testing.T) {
	ta := newTestApp(t, handlers.DefaultLimits())
	csrfTok := ta.csrfToken(t)

	owner := addToCart(t, ta, csrfTok, "", "aros-perla", "", "1")
	resp := ta.postForm(t, "/checkout", csrfTok, owner, withContact(nil))
	_, oid := returnPath(t, resp.Header.Get("Location"))

	// another visitor cannot open the order
	var status int
	entries := captureLogs(t, func() {
		status = ta.get(t, "/order/"+oid, "sid-other").StatusCode
	})
	if status != 404 {
		t.Fatalf("non-owner should get 404, got %d", status)
	}
	if _, ok := findLog(entries, "access.denied.order"); !ok {
		t.Fatal("expected access.denied.order log")
	}

	// nor confirm its payment
	entries = captureLogs(t, func() {
		status = ta.get(t, "/checkout/return?order="+oid, "sid-other").StatusCode
	})
	if status != 404 {
		t.Fatalf("non-owner return should get 404, got %d", status)
	}
	if _, ok := findLog(entries, "access.denied.order"); !ok {
		t.Fatal("expected access.denied.order log on return")
	}

	// the admin can
	_ = ta.users.BindSession("sid-admin", "u-admin")
	if got := ta.get(t, "/order/"+oid, "sid-admin").StatusCode; got != 200 {
		t.Fatalf("admin should see any order, got %d", got)
	}

	_ = ta.users.BindSession("sid-user", "u-ana")
	entries = captureLogs(t, func() {
		ta.get(t, "/admin", "sid-user")
	})
	if _, ok := findLog(entries, "access.denied.admin"); !ok {
		t.Fatal("expected access.denied.admin log")
	}
}
