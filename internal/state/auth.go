package state

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/Khatrip009/MinalGems-website/internal/apix"
	"github.com/Khatrip009/MinalGems-website/internal/identity"
	"github.com/Khatrip009/MinalGems-website/internal/logx"
)

// AuthStore owns the current authenticated user. Login persists the bearer
// token through the identity store and triggers the anonymous-cart
// reconciliation; logout clears both token and cached user.
type AuthStore struct {
	api       *apix.AuthAPI
	id        *identity.Store
	reconcile *CartReconciler
	log       *zap.Logger

	mu   sync.RWMutex
	user *apix.UserProfile
}

func NewAuthStore(api *apix.AuthAPI, id *identity.Store, reconcile *CartReconciler) *AuthStore {
	s := &AuthStore{
		api:       api,
		id:        id,
		reconcile: reconcile,
		log:       logx.GetScope("auth-store"),
	}
	s.restore()
	return s
}

// restore rehydrates the user from the durable cache; a stale blob is
// treated as logged out.
func (s *AuthStore) restore() {
	blob, ok := s.id.CachedUser()
	if !ok || s.id.Token() == "" {
		return
	}
	var u apix.UserProfile
	if err := json.Unmarshal([]byte(blob), &u); err != nil {
		s.id.SetCachedUser("")
		return
	}
	s.setUser(&u)
}

func (s *AuthStore) setUser(u *apix.UserProfile) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
}

// CurrentUser returns the authenticated user, nil when anonymous.
func (s *AuthStore) CurrentUser() *apix.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// LoggedIn reports whether a token is present.
func (s *AuthStore) LoggedIn() bool {
	return s.id.Token() != ""
}

// Login exchanges credentials for a token, persists token and user, then
// runs the anonymous-cart reconciliation. A reconciliation failure does not
// fail the login; the marker is kept for a later retry.
func (s *AuthStore) Login(ctx context.Context, email, password string) (*apix.UserProfile, error) {
	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if !res.OK || res.Token == "" {
		return nil, &apix.APIError{Status: 200, Code: "not_ok"}
	}

	s.id.SetToken(res.Token)
	s.setUser(res.User)
	if res.User != nil {
		if blob, err := json.Marshal(res.User); err == nil {
			s.id.SetCachedUser(string(blob))
		}
	}

	if s.reconcile != nil {
		if err := s.reconcile.Run(ctx); err != nil {
			s.log.Warn("cart reconciliation pending retry", zap.Error(err))
		}
	}

	s.log.Info("logged in", zap.String("email", email))
	return res.User, nil
}

// Register creates an account and then behaves like Login.
func (s *AuthStore) Register(ctx context.Context, email, password, fullName string) (*apix.UserProfile, error) {
	res, err := s.api.Register(ctx, email, password, fullName)
	if err != nil {
		return nil, err
	}
	if !res.OK || res.Token == "" {
		return nil, &apix.APIError{Status: 200, Code: "not_ok"}
	}

	s.id.SetToken(res.Token)
	s.setUser(res.User)
	if res.User != nil {
		if blob, err := json.Marshal(res.User); err == nil {
			s.id.SetCachedUser(string(blob))
		}
	}

	if s.reconcile != nil {
		if err := s.reconcile.Run(ctx); err != nil {
			s.log.Warn("cart reconciliation pending retry", zap.Error(err))
		}
	}
	return res.User, nil
}

// Logout drops the token and cached user locally. The backend keeps the
// session cookie's own lifecycle; no server call is required.
func (s *AuthStore) Logout() {
	s.id.ClearAuth()
	s.setUser(nil)
	s.log.Info("logged out")
}
