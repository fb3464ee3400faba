package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"mingle/internal/models"
)

func TestLandingPageRedirects(t *testing.T) {
	ts := newTestServer(t)
	ts.createAttendee(t, "Jane", "jane1", models.GenderFemale, models.InterestMale)

	// Anonymous visitors land on the join flow.
	resp := ts.request(t, httptest.NewRequest(http.MethodGet, "/", nil))
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/join" {
		t.Fatalf("expected 302 to /join, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}

	// Authenticated visitors go straight to the listing.
	token := ts.login(t, "jane1", "")
	resp = ts.request(t, authedReq(t, http.MethodGet, "/", token, nil))
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/listing" {
		t.Fatalf("expected 302 to /listing, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
}

func TestProtectedPagesRedirectAnonymousVisitors(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/gallery", "/listing", "/profile"} {
		t.Run(path, func(t *testing.T) {
			resp := ts.request(t, httptest.NewRequest(http.MethodGet, path, nil))
			_ = resp.Body.Close()
			if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/join" {
				t.Fatalf("expected 302 to /join, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
			}
		})
	}
}

func TestProtectedPagesServeAuthUser(t *testing.T) {
	ts := newTestServer(t)
	jane := ts.createAttendee(t, "Jane", "jane1", models.GenderFemale, models.InterestMale)
	token := ts.login(t, "jane1", "")

	for _, path := range []string{"/gallery", "/listing", "/profile"} {
		t.Run(path, func(t *testing.T) {
			resp := ts.request(t, authedReq(t, http.MethodGet, path, token, nil))
			var body struct {
				Page     string       `json:"page"`
				AuthUser *models.User `json:"authUser"`
			}
			decodeJSON(t, resp, &body)
			if body.AuthUser == nil || body.AuthUser.ID != jane.ID {
				t.Fatalf("expected authUser %d on %s, got %+v", jane.ID, path, body.AuthUser)
			}
		})
	}
}

func TestListingPageExposesAdminFlag(t *testing.T) {
	ts := newTestServer(t)
	ts.createAdmin(t)
	token := ts.login(t, "admin", "12345678")

	resp := ts.request(t, authedReq(t, http.MethodGet, "/listing", token, nil))
	var body struct {
		IsAdmin bool `json:"isAdmin"`
	}
	decodeJSON(t, resp, &body)
	if !body.IsAdmin {
		t.Fatal("expected isAdmin true for the admin account")
	}
}

func TestPublicPagesNeedNoSession(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/join", "/login", "/welcome"} {
		t.Run(path, func(t *testing.T) {
			resp := ts.request(t, httptest.NewRequest(http.MethodGet, path, nil))
			_ = resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("expected 200, got %d", resp.StatusCode)
			}
		})
	}
}

func TestWelcomeStepMachine(t *testing.T) {
	ts := newTestServer(t)

	// Fresh visit starts at WELCOME.
	resp := ts.request(t, httptest.NewRequest(http.MethodGet, "/welcome", nil))
	var body struct {
		Step string `json:"step"`
	}
	decodeJSON(t, resp, &body)
	if body.Step != string(stepWelcome) {
		t.Fatalf("expected WELCOME, got %q", body.Step)
	}

	// Advancing from WELCOME yields JOIN_POOL.
	resp = ts.request(t, httptest.NewRequest(http.MethodGet, "/welcome/pool-of-singles?step=WELCOME", nil))
	decodeJSON(t, resp, &body)
	if body.Step != string(stepJoinPool) {
		t.Fatalf("expected JOIN_POOL, got %q", body.Step)
	}

	// Skipping ahead bounces back to the start of the flow.
	resp = ts.request(t, httptest.NewRequest(http.MethodGet, "/welcome/pool-of-singles?step=FORM", nil))
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/welcome" {
		t.Fatalf("expected 302 to /welcome, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}

	// An unknown step restarts at WELCOME.
	resp = ts.request(t, httptest.NewRequest(http.MethodGet, "/welcome?step=GIBBERISH", nil))
	decodeJSON(t, resp, &body)
	if body.Step != string(stepWelcome) {
		t.Fatalf("expected WELCOME for unknown step, got %q", body.Step)
	}
}
