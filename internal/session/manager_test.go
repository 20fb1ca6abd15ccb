package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/edumaster/edumaster-web/internal/edumaster"
)

func testManager(t *testing.T, handler http.HandlerFunc) (*Manager, *MemoryStore) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	store := NewMemoryStore(time.Hour)
	api := edumaster.New(srv.URL, 5*time.Second, zerolog.Nop())
	return NewManager(store, api, zerolog.Nop()), store
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func TestLoginCreatesSession(t *testing.T) {
	m, store := testManager(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token":"tok","data":{"_id":"u1","fullName":"أحمد","role":"user"}}`))
	})

	rec, err := m.Login(context.Background(), "a@b.c", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if rec.Token != "tok" || rec.User == nil || rec.User.ID != "u1" {
		t.Errorf("record not populated: %+v", rec)
	}

	saved, err := store.Get(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("record not persisted: %v", err)
	}
	if saved.Token != "tok" {
		t.Errorf("persisted token = %q, want tok", saved.Token)
	}
}

func TestLoginFailureReportsServerMessage(t *testing.T) {
	m, _ := testManager(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"بيانات الدخول غير صحيحة"}`))
	})

	_, err := m.Login(context.Background(), "a@b.c", "wrong")
	if err == nil {
		t.Fatal("expected login error")
	}
	if got := edumaster.UserMessage(err); got != "بيانات الدخول غير صحيحة" {
		t.Errorf("user message = %q, want server copy", got)
	}
}

func TestRestoreCachedUserSkipsAPI(t *testing.T) {
	calls := 0
	m, store := testManager(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"data":{"_id":"u1","fullName":"أحمد"}}`))
	})

	rec := &Record{
		ID:          "s1",
		Token:       signedToken(t, time.Now().Add(time.Hour)),
		User:        &edumaster.User{ID: "u1", FullName: "أحمد"},
		RefreshedAt: time.Now(),
	}
	if err := store.Save(context.Background(), rec); err != nil {
		t.Fatal(err)
	}

	state := m.Restore(context.Background(), "s1")
	if !state.IsAuthenticated() {
		t.Fatal("expected authenticated state from fresh cache")
	}
	if calls != 0 {
		t.Errorf("profile calls = %d, want 0 for a fresh cache", calls)
	}
}

func TestRestoreExpiredTokenClearsSession(t *testing.T) {
	m, store := testManager(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no API call expected for a locally expired token")
	})

	rec := &Record{ID: "s2", Token: signedToken(t, time.Now().Add(-time.Hour))}
	if err := store.Save(context.Background(), rec); err != nil {
		t.Fatal(err)
	}

	state := m.Restore(context.Background(), "s2")
	if state.IsAuthenticated() {
		t.Fatal("expected anonymous state")
	}
	if _, err := store.Get(context.Background(), "s2"); err != ErrNotFound {
		t.Errorf("record should be deleted, got err=%v", err)
	}
}

func TestRestoreRejectedTokenClearsSession(t *testing.T) {
	m, store := testManager(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	// Opaque (non-JWT) token: the local expiry peek passes it through and
	// the server rejects it.
	rec := &Record{ID: "s3", Token: "opaque-token"}
	if err := store.Save(context.Background(), rec); err != nil {
		t.Fatal(err)
	}

	state := m.Restore(context.Background(), "s3")
	if state.IsAuthenticated() {
		t.Fatal("expected anonymous state after 401")
	}
	if _, err := store.Get(context.Background(), "s3"); err != ErrNotFound {
		t.Errorf("record should be deleted, got err=%v", err)
	}
}

func TestRestoreServesStaleUserDuringOutage(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	// Unreachable API endpoint.
	api := edumaster.New("http://127.0.0.1:1", time.Second, zerolog.Nop())
	m := NewManager(store, api, zerolog.Nop())

	rec := &Record{
		ID:          "s4",
		Token:       "opaque-token",
		User:        &edumaster.User{ID: "u1"},
		RefreshedAt: time.Now().Add(-time.Hour), // stale, forces a refresh try
	}
	if err := store.Save(context.Background(), rec); err != nil {
		t.Fatal(err)
	}

	state := m.Restore(context.Background(), "s4")
	if !state.IsAuthenticated() {
		t.Fatal("expected cached user to survive a connectivity failure")
	}
}

func TestLogoutDeletesRecord(t *testing.T) {
	m, store := testManager(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("logout must not call the server")
	})

	rec := &Record{ID: "s5", Token: "tok"}
	if err := store.Save(context.Background(), rec); err != nil {
		t.Fatal(err)
	}

	m.Logout(context.Background(), "s5")
	if _, err := store.Get(context.Background(), "s5"); err != ErrNotFound {
		t.Errorf("record should be deleted, got err=%v", err)
	}
}
