package state

import (
	"context"

	"go.uber.org/zap"

	"github.com/Khatrip009/MinalGems-website/internal/apix"
	"github.com/Khatrip009/MinalGems-website/internal/identity"
	"github.com/Khatrip009/MinalGems-website/internal/logx"
)

// CartAttacher is the slice of CartAPI the reconciler needs.
type CartAttacher interface {
	Attach(ctx context.Context, anonCartID string) (*apix.AttachCartResponse, error)
}

// CartRefresher is the slice of CartStore the reconciler needs.
type CartRefresher interface {
	Refresh(ctx context.Context) error
}

// CartReconciler merges the pre-login anonymous cart into the freshly
// authenticated user's cart. The attach endpoint is idempotent on the
// backend, so a retried marker never duplicates items.
type CartReconciler struct {
	id       *identity.Store
	attacher CartAttacher
	cart     CartRefresher
	log      *zap.Logger
}

func NewCartReconciler(id *identity.Store, attacher CartAttacher, cart CartRefresher) *CartReconciler {
	return &CartReconciler{
		id:       id,
		attacher: attacher,
		cart:     cart,
		log:      logx.GetScope("reconcile"),
	}
}

// Run reads the anonymous-cart marker and, when present, attaches it. On
// success the marker is cleared and the cart store refreshed exactly once.
// On failure the marker stays put so a later login can retry.
func (r *CartReconciler) Run(ctx context.Context) error {
	marker := r.id.AnonCartID()
	if marker == "" {
		return nil
	}

	res, err := r.attacher.Attach(ctx, marker)
	if err != nil {
		r.log.Warn("anonymous cart attach failed; marker retained",
			zap.String("anon_cart_id", marker), zap.Error(err))
		return err
	}
	if !res.OK {
		r.log.Warn("anonymous cart attach rejected; marker retained",
			zap.String("anon_cart_id", marker))
		return &apix.APIError{Status: 200, Code: "not_ok"}
	}

	r.id.ClearAnonCartID()
	if err := r.cart.Refresh(ctx); err != nil {
		// The merge itself succeeded; the next refresh will converge.
		r.log.Warn("post-attach cart refresh failed", zap.Error(err))
	}
	r.log.Info("anonymous cart attached", zap.String("anon_cart_id", marker))
	return nil
}
