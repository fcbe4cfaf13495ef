package state

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Khatrip009/MinalGems-website/internal/apix"
	"github.com/Khatrip009/MinalGems-website/internal/identity"
	"github.com/Khatrip009/MinalGems-website/internal/storex"
)

func newAuthFixture(t *testing.T, kv storex.Store) (*AuthStore, *identity.Store, func()) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/auth/login"):
			_ = json.NewEncoder(w).Encode(map[string]any{
				"ok":    true,
				"token": "tok-1",
				"user":  map[string]any{"id": "u1", "email": "a@example.com"},
			})
		case strings.HasSuffix(r.URL.Path, "/cart/attach"):
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
		case strings.HasSuffix(r.URL.Path, "/cart"):
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": true,
				"cart": map[string]any{"id": "c1", "item_count": 1}})
		default:
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
		}
	}))

	id := identity.New(kv)
	client := apix.New(srv.URL, id, apix.WithGETRetries(0))
	cartAPI := apix.NewCartAPI(client)
	cartStore := NewCartStore(cartAPI, id)
	reconciler := NewCartReconciler(id, cartAPI, cartStore)
	auth := NewAuthStore(apix.NewAuthAPI(client), id, reconciler)
	return auth, id, srv.Close
}

func TestLoginPersistsTokenAndUser(t *testing.T) {
	kv := storex.NewMemory()
	auth, id, done := newAuthFixture(t, kv)
	defer done()

	user, err := auth.Login(context.Background(), "a@example.com", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user == nil || user.ID != "u1" {
		t.Fatalf("user = %+v", user)
	}
	if id.Token() != "tok-1" {
		t.Fatalf("token = %q", id.Token())
	}
	if !auth.LoggedIn() {
		t.Fatal("LoggedIn() false after login")
	}
	if blob, ok := id.CachedUser(); !ok || !strings.Contains(blob, `"u1"`) {
		t.Fatalf("cached user blob = %q/%v", blob, ok)
	}
}

func TestLoginRunsReconciliation(t *testing.T) {
	kv := storex.NewMemory()
	auth, id, done := newAuthFixture(t, kv)
	defer done()

	id.SetAnonCartID("anon-1")
	if _, err := auth.Login(context.Background(), "a@example.com", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if id.AnonCartID() != "" {
		t.Fatal("anon cart marker should be consumed by login")
	}
}

func TestLogoutClearsAuthState(t *testing.T) {
	kv := storex.NewMemory()
	auth, id, done := newAuthFixture(t, kv)
	defer done()

	if _, err := auth.Login(context.Background(), "a@example.com", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	auth.Logout()
	if auth.LoggedIn() || auth.CurrentUser() != nil {
		t.Fatal("auth state survived logout")
	}
	if id.Token() != "" {
		t.Fatal("token survived logout")
	}
}

func TestRestoreFromDurableCache(t *testing.T) {
	kv := storex.NewMemory()
	auth, _, done := newAuthFixture(t, kv)
	if _, err := auth.Login(context.Background(), "a@example.com", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	done()

	// A fresh store over the same kv restores the session offline.
	restored, _, done2 := newAuthFixture(t, kv)
	defer done2()
	if !restored.LoggedIn() {
		t.Fatal("token not restored")
	}
	u := restored.CurrentUser()
	if u == nil || u.ID != "u1" {
		t.Fatalf("restored user = %+v", u)
	}
}

func TestRestoreDropsCorruptCache(t *testing.T) {
	kv := storex.NewMemory()
	_ = kv.Set(identity.KeyAuthToken, "tok-x")
	_ = kv.Set(identity.KeyAuthUser, "{not json")

	auth, id, done := newAuthFixture(t, kv)
	defer done()

	if auth.CurrentUser() != nil {
		t.Fatal("corrupt blob produced a user")
	}
	if _, ok := id.CachedUser(); ok {
		t.Fatal("corrupt blob should be deleted")
	}
}

func TestCurrentUserConcurrentWithLoginAndLogout(t *testing.T) {
	kv := storex.NewMemory()
	auth, _, done := newAuthFixture(t, kv)
	defer done()

	doneCh := make(chan struct{})
	go func() {
		defer close(doneCh)
		for i := 0; i < 50; i++ {
			if _, err := auth.Login(context.Background(), "a@example.com", "pw"); err != nil {
				t.Errorf("login: %v", err)
				return
			}
			auth.Logout()
		}
	}()
	for i := 0; i < 500; i++ {
		_ = auth.CurrentUser()
	}
	<-doneCh

	if auth.CurrentUser() != nil {
		t.Fatal("user should be nil after final logout")
	}
}
