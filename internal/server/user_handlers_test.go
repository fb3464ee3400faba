package server

import (
	"net/http"
	"testing"

	"mingle/internal/models"
)

func TestJoinEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.request(t, jsonReq(t, http.MethodPost, "/api/users/", map[string]string{
		"name":     "Jane Doe",
		"image":    testPhotoBase64(t),
		"gender":   "FEMALE",
		"interest": "MALE",
		"side":     "BRIDE",
		"password": "my-chosen-password",
	}))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("join expected 201 got %d", resp.StatusCode)
	}

	var body struct {
		User              *models.User `json:"user"`
		PlaintextPassword string       `json:"plaintextPassword"`
	}
	decodeJSON(t, resp, &body)

	if body.User == nil || body.User.ID == 0 {
		t.Fatalf("expected created user, got %+v", body.User)
	}
	if body.User.Type != models.UserTypeUser {
		t.Fatalf("expected USER type, got %s", body.User.Type)
	}
	if body.PlaintextPassword != "my-chosen-password" {
		t.Fatalf("expected echoed password for auto-login, got %q", body.PlaintextPassword)
	}
	if body.User.Image == "" {
		t.Fatal("expected uploaded photo URL")
	}

	// New attendee can immediately log in.
	ts.login(t, body.User.Username, "my-chosen-password")
}

func TestJoinValidationErrors(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.request(t, jsonReq(t, http.MethodPost, "/api/users/", map[string]string{
		"name":     "Jane Doe",
		"image":    "",
		"gender":   "FEMALE",
		"interest": "MALE",
		"side":     "BRIDE",
	}))
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.StatusCode)
	}
}

func TestGetByInterestFiltersListing(t *testing.T) {
	ts := newTestServer(t)
	ts.createAdmin(t)
	ts.createAttendee(t, "Jane", "jane1", models.GenderFemale, models.InterestMale)
	ts.createAttendee(t, "Adam", "adam1", models.GenderMale, models.InterestFemale)
	ts.createAttendee(t, "Bella", "bella1", models.GenderFemale, models.InterestBoth)

	token := ts.login(t, "jane1", "")

	resp := ts.request(t, authedReq(t, http.MethodGet, "/api/users/", token, nil))
	var users []models.User
	decodeJSON(t, resp, &users)

	if len(users) != 1 || users[0].Name != "Adam" {
		t.Fatalf("expected only Adam for a MALE-interest caller, got %+v", users)
	}
}

func TestGetByInterestAdminSeesWholePool(t *testing.T) {
	ts := newTestServer(t)
	ts.createAdmin(t)
	ts.createAttendee(t, "Jane", "jane1", models.GenderFemale, models.InterestMale)
	ts.createAttendee(t, "Adam", "adam1", models.GenderMale, models.InterestFemale)

	token := ts.login(t, "admin", "12345678")

	resp := ts.request(t, authedReq(t, http.MethodGet, "/api/users/?perPage=-1", token, nil))
	var users []models.User
	decodeJSON(t, resp, &users)

	if len(users) != 2 {
		t.Fatalf("expected both attendees for admin, got %+v", users)
	}
	// Admin never appears in the listing.
	for _, u := range users {
		if u.Type == models.UserTypeAdmin {
			t.Fatalf("admin leaked into candidate listing: %+v", u)
		}
	}
}

func TestGetByInterestPagination(t *testing.T) {
	ts := newTestServer(t)
	caller := ts.createAttendee(t, "Caller", "caller1", models.GenderMale, models.InterestBoth)
	ts.createAttendee(t, "Adam", "adam1", models.GenderMale, models.InterestFemale)
	ts.createAttendee(t, "Bella", "bella1", models.GenderFemale, models.InterestMale)
	ts.createAttendee(t, "Carol", "carol1", models.GenderFemale, models.InterestMale)

	token := ts.login(t, caller.Username, "")

	resp := ts.request(t, authedReq(t, http.MethodGet, "/api/users/?page=2&perPage=2", token, nil))
	var users []models.User
	decodeJSON(t, resp, &users)

	if len(users) != 1 || users[0].Name != "Carol" {
		t.Fatalf("expected page 2 to hold Carol, got %+v", users)
	}
}

func TestMeAndUpdateMe(t *testing.T) {
	ts := newTestServer(t)
	jane := ts.createAttendee(t, "Jane", "jane1", models.GenderFemale, models.InterestMale)
	token := ts.login(t, "jane1", "")

	resp := ts.request(t, authedReq(t, http.MethodGet, "/api/users/me", token, nil))
	var me models.User
	decodeJSON(t, resp, &me)
	if me.ID != jane.ID {
		t.Fatalf("expected own record, got %+v", me)
	}

	resp = ts.request(t, authedReq(t, http.MethodPut, "/api/users/me", token, map[string]string{
		"name":     "Jane Q. Doe",
		"interest": "BOTH",
	}))
	var updated models.User
	decodeJSON(t, resp, &updated)
	if updated.Name != "Jane Q. Doe" || updated.Interest != models.InterestBoth {
		t.Fatalf("update not applied: %+v", updated)
	}
	// Untouched fields survive.
	if updated.Gender != models.GenderFemale || updated.Username != "jane1" {
		t.Fatalf("unrelated fields changed: %+v", updated)
	}
}

func TestUpdateMeRejectsBadEnum(t *testing.T) {
	ts := newTestServer(t)
	ts.createAttendee(t, "Jane", "jane1", models.GenderFemale, models.InterestMale)
	token := ts.login(t, "jane1", "")

	resp := ts.request(t, authedReq(t, http.MethodPut, "/api/users/me", token, map[string]string{
		"gender": "UNKNOWN",
	}))
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.StatusCode)
	}
}

func TestGetUserByID(t *testing.T) {
	ts := newTestServer(t)
	ts.createAttendee(t, "Jane", "jane1", models.GenderFemale, models.InterestMale)
	adam := ts.createAttendee(t, "Adam", "adam1", models.GenderMale, models.InterestFemale)
	token := ts.login(t, "jane1", "")

	resp := ts.request(t, authedReq(t, http.MethodGet, "/api/users/2", token, nil))
	var user models.User
	decodeJSON(t, resp, &user)
	if user.ID != adam.ID || user.Name != "Adam" {
		t.Fatalf("expected Adam, got %+v", user)
	}

	resp = ts.request(t, authedReq(t, http.MethodGet, "/api/users/999", token, nil))
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.StatusCode)
	}

	resp = ts.request(t, authedReq(t, http.MethodGet, "/api/users/abc", token, nil))
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric id, got %d", resp.StatusCode)
	}
}

func TestDeleteUserRequiresAdmin(t *testing.T) {
	ts := newTestServer(t)
	ts.createAttendee(t, "Jane", "jane1", models.GenderFemale, models.InterestMale)
	target := ts.createAttendee(t, "Adam", "adam1", models.GenderMale, models.InterestFemale)
	token := ts.login(t, "jane1", "")

	resp := ts.request(t, authedReq(t, http.MethodDelete, "/api/users/2", token, nil))
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin delete, got %d", resp.StatusCode)
	}

	var count int64
	ts.db.Model(&models.User{}).Where("id = ?", target.ID).Count(&count)
	if count != 1 {
		t.Fatal("target must survive a refused delete")
	}
}

func TestDeleteUserAsAdmin(t *testing.T) {
	ts := newTestServer(t)
	ts.createAdmin(t)
	target := ts.createAttendee(t, "Adam", "adam1", models.GenderMale, models.InterestFemale)
	token := ts.login(t, "admin", "12345678")

	resp := ts.request(t, authedReq(t, http.MethodDelete, "/api/users/2", token, nil))
	var deleted models.User
	decodeJSON(t, resp, &deleted)
	if deleted.ID != target.ID {
		t.Fatalf("expected deleted record echoed back, got %+v", deleted)
	}

	var count int64
	ts.db.Model(&models.User{}).Where("id = ?", target.ID).Count(&count)
	if count != 0 {
		t.Fatal("target row should be gone")
	}
}
