package accounts_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/collabhub/internal/app/features/accounts"
	"github.com/dalemusser/collabhub/internal/app/store/audit"
	userstore "github.com/dalemusser/collabhub/internal/app/store/users"
	"github.com/dalemusser/collabhub/internal/app/system/auditlog"
	"github.com/dalemusser/collabhub/internal/app/system/auth"
	"github.com/dalemusser/collabhub/internal/app/system/ratelimit"
	"github.com/dalemusser/collabhub/internal/app/system/resettoken"
	"github.com/dalemusser/collabhub/internal/domain/models"
	"github.com/dalemusser/collabhub/internal/testutil"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testSessionKey = "0123456789abcdef0123456789abcdef"

func newHandler(t *testing.T) *accounts.Handler {
	t.Helper()
	db := testutil.SetupTestDB(t)
	sm, err := auth.NewSessionManager(testSessionKey, "test-session", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	auditLog := auditlog.New(audit.New(db), zap.NewNop(), auditlog.Config{Auth: auditlog.ToDB, Collab: auditlog.ToDB})
	h := accounts.NewHandler(db, sm, resettoken.NewSigner([]byte(testSessionKey), time.Hour), nil, auditLog, true, zap.NewNop())
	h.Users = userstore.New(db).WithCost(bcrypt.MinCost)
	return h
}

func signup(t *testing.T, h *accounts.Handler, email string) (*testutil.ResponseRecorder, models.User) {
	t.Helper()
	body := map[string]any{
		"email":     email,
		"name":      "Ada Lovelace",
		"password":  "analytical-engine",
		"degree":    "BSc Mathematics",
		"regNumber": "21BCE0001",
	}
	rec := testutil.NewRecorder()
	h.HandleSignup(rec, testutil.NewJSONRequest(t, http.MethodPost, "/users/signup", body))

	var resp struct {
		User models.User `json:"user"`
	}
	if rec.Code == http.StatusCreated {
		rec.DecodeJSON(t, &resp)
	}
	return rec, resp.User
}

func TestHandleSignup(t *testing.T) {
	h := newHandler(t)

	rec, u := signup(t, h, "ada@example.com")
	rec.AssertStatus(t, http.StatusCreated)
	if u.Email != "ada@example.com" || u.FullName != "Ada Lovelace" {
		t.Errorf("unexpected user: %+v", u)
	}
	if rec.Header().Get("Set-Cookie") == "" {
		t.Error("expected a session cookie")
	}
	if got := rec.Body.String(); containsAny(got, "password_hash", "analytical-engine") {
		t.Errorf("response leaks credentials: %s", got)
	}

	rec, _ = signup(t, h, "ADA@example.com")
	rec.AssertStatus(t, http.StatusConflict)
	rec.AssertContains(t, "email_taken")
}

func TestHandleSignup_Validation(t *testing.T) {
	h := newHandler(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"bad email", map[string]any{"email": "nope", "name": "A", "password": "longenough"}},
		{"no name", map[string]any{"email": "a@example.com", "password": "longenough"}},
		{"short password", map[string]any{"email": "a@example.com", "name": "A", "password": "short"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			h.HandleSignup(rec, testutil.NewJSONRequest(t, http.MethodPost, "/users/signup", tt.body))
			rec.AssertStatus(t, http.StatusBadRequest)
		})
	}
}

func TestHandleLogin(t *testing.T) {
	h := newHandler(t)
	signup(t, h, "ada@example.com")

	login := func(pw string) *testutil.ResponseRecorder {
		rec := testutil.NewRecorder()
		h.HandleLogin(rec, testutil.NewJSONRequest(t, http.MethodPost, "/users/login",
			map[string]any{"email": "Ada@Example.com", "password": pw}))
		return rec
	}

	rec := login("wrong-password")
	rec.AssertStatus(t, http.StatusUnauthorized)
	rec.AssertContains(t, "invalid_credentials")

	rec = login("analytical-engine")
	rec.AssertStatus(t, http.StatusOK)
	if rec.Header().Get("Set-Cookie") == "" {
		t.Error("expected a session cookie")
	}
}

func TestHandleLogin_RateLimited(t *testing.T) {
	h := newHandler(t)
	h.LoginLimiter = ratelimit.New(0.001, 2)

	for i := 0; i < 2; i++ {
		rec := testutil.NewRecorder()
		h.HandleLogin(rec, testutil.NewJSONRequest(t, http.MethodPost, "/users/login",
			map[string]any{"email": "x@example.com", "password": "whatever1"}))
		rec.AssertStatus(t, http.StatusUnauthorized)
	}
	rec := testutil.NewRecorder()
	h.HandleLogin(rec, testutil.NewJSONRequest(t, http.MethodPost, "/users/login",
		map[string]any{"email": "x@example.com", "password": "whatever1"}))
	rec.AssertStatus(t, http.StatusTooManyRequests)
}

func TestHandleLogout(t *testing.T) {
	h := newHandler(t)
	rec := testutil.NewRecorder()
	h.HandleLogout(rec, testutil.NewJSONRequest(t, http.MethodPost, "/users/logout", nil))
	rec.AssertStatus(t, http.StatusOK)
}

func TestServeMe_AndUpdateProfile(t *testing.T) {
	h := newHandler(t)
	_, u := signup(t, h, "ada@example.com")

	rec := testutil.NewRecorder()
	h.ServeMe(rec, testutil.NewAuthenticatedJSONRequest(t, http.MethodGet, "/users/me", nil, u))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "ada@example.com")

	rec = testutil.NewRecorder()
	h.HandleUpdateProfile(rec, testutil.NewAuthenticatedJSONRequest(t, http.MethodPatch, "/users/me",
		map[string]any{"phone": "+1 (555) 010-9999"}, u))
	rec.AssertStatus(t, http.StatusOK)

	var resp struct {
		User models.User `json:"user"`
	}
	rec.DecodeJSON(t, &resp)
	if resp.User.Phone != "+15550109999" {
		t.Errorf("Phone: got %q", resp.User.Phone)
	}
	if resp.User.Degree != "BSc Mathematics" {
		t.Errorf("Degree should be unchanged, got %q", resp.User.Degree)
	}

	rec = testutil.NewRecorder()
	h.HandleUpdateProfile(rec, testutil.NewAuthenticatedJSONRequest(t, http.MethodPatch, "/users/me",
		map[string]any{"name": "  "}, u))
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestHandleChangePassword(t *testing.T) {
	h := newHandler(t)
	_, u := signup(t, h, "ada@example.com")

	change := func(current, next string) *testutil.ResponseRecorder {
		rec := testutil.NewRecorder()
		h.HandleChangePassword(rec, testutil.NewAuthenticatedJSONRequest(t, http.MethodPatch, "/users/me/password",
			map[string]any{"currentPassword": current, "newPassword": next}, u))
		return rec
	}

	change("wrong", "difference-engine").AssertStatus(t, http.StatusBadRequest)
	change("analytical-engine", "short").AssertStatus(t, http.StatusBadRequest)
	change("analytical-engine", "difference-engine").AssertStatus(t, http.StatusOK)
}

func TestPasswordReset(t *testing.T) {
	h := newHandler(t)
	signup(t, h, "ada@example.com")

	// Unknown emails get the same answer and no token.
	rec := testutil.NewRecorder()
	h.HandleResetRequest(rec, testutil.NewJSONRequest(t, http.MethodPost, "/users/password-reset",
		map[string]any{"email": "nobody@example.com"}))
	rec.AssertStatus(t, http.StatusOK)
	var unknown struct {
		Token string `json:"token"`
	}
	rec.DecodeJSON(t, &unknown)
	if unknown.Token != "" {
		t.Error("no token should be issued for an unknown email")
	}

	rec = testutil.NewRecorder()
	h.HandleResetRequest(rec, testutil.NewJSONRequest(t, http.MethodPost, "/users/password-reset",
		map[string]any{"email": "ada@example.com"}))
	rec.AssertStatus(t, http.StatusOK)
	var issued struct {
		Token string `json:"token"`
	}
	rec.DecodeJSON(t, &issued)
	if issued.Token == "" {
		t.Fatal("expected token in dev mode")
	}

	confirm := func(token, pw string) *testutil.ResponseRecorder {
		rec := testutil.NewRecorder()
		h.HandleResetConfirm(rec, testutil.NewJSONRequest(t, http.MethodPost, "/users/password-reset/confirm",
			map[string]any{"token": token, "password": pw}))
		return rec
	}

	confirm("garbage", "brand-new-pass").AssertStatus(t, http.StatusBadRequest)
	confirm(issued.Token, "short").AssertStatus(t, http.StatusBadRequest)
	confirm(issued.Token, "brand-new-pass").AssertStatus(t, http.StatusOK)

	rec = confirm(issued.Token, "another-new-pass")
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "reset_invalid")

	rec = testutil.NewRecorder()
	h.HandleLogin(rec, testutil.NewJSONRequest(t, http.MethodPost, "/users/login",
		map[string]any{"email": "ada@example.com", "password": "brand-new-pass"}))
	rec.AssertStatus(t, http.StatusOK)
}

func TestHandleDelete(t *testing.T) {
	h := newHandler(t)
	_, u := signup(t, h, "ada@example.com")

	rec := testutil.NewRecorder()
	h.HandleDelete(rec, testutil.NewAuthenticatedJSONRequest(t, http.MethodDelete, "/users/me", nil, u))
	rec.AssertStatus(t, http.StatusOK)

	rec = testutil.NewRecorder()
	h.ServeMe(rec, testutil.NewAuthenticatedJSONRequest(t, http.MethodGet, "/users/me", nil, u))
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestServeActivity(t *testing.T) {
	h := newHandler(t)
	_, u := signup(t, h, "ada@example.com")

	rec := testutil.NewRecorder()
	h.HandleLogin(rec, testutil.NewJSONRequest(t, http.MethodPost, "/users/login",
		map[string]any{"email": "ada@example.com", "password": "wrong-password"}))
	rec.AssertStatus(t, http.StatusUnauthorized)

	rec = testutil.NewRecorder()
	h.HandleLogin(rec, testutil.NewJSONRequest(t, http.MethodPost, "/users/login",
		map[string]any{"email": "ada@example.com", "password": "analytical-engine"}))
	rec.AssertStatus(t, http.StatusOK)

	rec = testutil.NewRecorder()
	h.ServeActivity(rec, testutil.NewAuthenticatedJSONRequest(t, http.MethodGet, "/users/me/activity", nil, u))
	rec.AssertStatus(t, http.StatusOK)

	var events []audit.Event
	rec.DecodeJSON(t, &events)
	// The failed login is not tied to a user id.
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].EventType != audit.EventLoginSuccess || events[1].EventType != audit.EventSignup {
		t.Errorf("unexpected order: %s, %s", events[0].EventType, events[1].EventType)
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
