// Package main is a headless storefront client: it wires the SDK together,
// identifies the visitor, hydrates the cart and listens for server events
// until interrupted.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Khatrip009/MinalGems-website/internal/apix"
	"github.com/Khatrip009/MinalGems-website/internal/config"
	"github.com/Khatrip009/MinalGems-website/internal/events"
	"github.com/Khatrip009/MinalGems-website/internal/identity"
	"github.com/Khatrip009/MinalGems-website/internal/logx"
	"github.com/Khatrip009/MinalGems-website/internal/sse"
	"github.com/Khatrip009/MinalGems-website/internal/state"
	"github.com/Khatrip009/MinalGems-website/internal/storex"
)

func main() {
	_ = godotenv.Load()

	cfg, _, apClose, err := config.Load()
	if err != nil {
		panic(err)
	}
	if apClose != nil {
		defer apClose()
	}

	logx.Init(cfg.Log.Level, cfg.Log.Format)
	log := logx.GetScope("main")

	// Durable client-side storage; identity degrades to anonymous when the
	// file cannot be opened.
	var kv storex.Store
	kv, err = storex.OpenSQLite(cfg.State.DBPath)
	if err != nil {
		log.Warn("state db unavailable; running with in-memory storage", zap.Error(err))
		kv = storex.NewMemory()
	}
	defer kv.Close()

	id := identity.New(kv)
	client := apix.New(cfg.API.BaseURL, id)
	log.Info("client ready",
		zap.String("base_url", client.BaseURL()),
		zap.String("session_id", id.SessionID()),
	)

	wishlistBus := events.NewBus[events.WishlistEvent]()
	unsubscribe := wishlistBus.Subscribe(func(ev events.WishlistEvent) {
		log.Info("wishlist changed",
			zap.String("kind", string(ev.Kind)),
			zap.Int("count", ev.Count),
			zap.Int("delta", ev.Delta),
		)
	})
	defer unsubscribe()

	cartAPI := apix.NewCartAPI(client)
	visitorsAPI := apix.NewVisitorsAPI(client)
	authAPI := apix.NewAuthAPI(client)
	wishlistAPI := apix.NewWishlistAPI(client, wishlistBus)
	productsAPI := apix.NewProductsAPI(client)
	categoriesAPI := apix.NewCategoriesAPI(client)

	cartStore := state.NewCartStore(cartAPI, id)
	reconciler := state.NewCartReconciler(id, cartAPI, cartStore)
	authStore := state.NewAuthStore(authAPI, id, reconciler)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bootCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if _, err := visitorsAPI.Identify(bootCtx, nil); err != nil {
		log.Warn("visitor identify failed", zap.Error(err))
	}
	if err := cartStore.Init(bootCtx); err != nil {
		log.Warn("cart hydration failed", zap.Error(err))
	}
	if cart, phase := cartStore.Snapshot(); cart != nil {
		log.Info("cart hydrated", zap.Int("items", cart.ItemCount), zap.String("phase", phase.String()))
	}
	if authStore.LoggedIn() {
		log.Info("session restored", zap.Bool("logged_in", true))
	}

	// Each argument names a smoke flow to run against the live backend.
	for _, flow := range os.Args[1:] {
		switch flow {
		case "browse":
			runBrowse(bootCtx, log, productsAPI, categoriesAPI)
		case "cart":
			runCartSmoke(bootCtx, log, productsAPI, cartStore)
		case "wishlist":
			runWishlistSmoke(bootCtx, log, productsAPI, wishlistAPI)
		default:
			log.Warn("unknown flow", zap.String("flow", flow))
		}
	}

	// Server events fan out through the same typed bus machinery the
	// wishlist uses, so any number of listeners can attach.
	streamBus := events.NewBus[sse.Message]()
	streamBus.Subscribe(func(msg sse.Message) {
		log.Info("server event",
			zap.String("event", msg.Event),
			zap.String("data", msg.Data),
		)
	})

	stream := sse.New(client.BaseURL(), id)
	stream.Connect(ctx, streamBus.Emit, "cart", "wishlist", "orders")
	defer stream.Close()

	<-ctx.Done()
	log.Info("shutting down")

	if _, err := visitorsAPI.TrackEvent(context.Background(), "session_end", nil); err != nil {
		log.Debug("session_end event not delivered", zap.Error(err))
	}
	_ = os.Stdout.Sync()
}

func runBrowse(ctx context.Context, log *zap.Logger, products *apix.ProductsAPI, categories *apix.CategoriesAPI) {
	list, err := products.List(ctx, "")
	if err != nil {
		log.Warn("browse: products failed", zap.Error(err))
		return
	}
	for _, p := range list.Products {
		log.Info("product", zap.String("slug", p.Slug), zap.String("title", p.Title), zap.Float64("price", p.Price))
	}
	cats, err := categories.List(ctx)
	if err != nil {
		log.Warn("browse: categories failed", zap.Error(err))
		return
	}
	for _, c := range cats.Categories {
		log.Info("category", zap.String("slug", c.Slug), zap.Int("products", c.ProductCount))
	}
}

func runCartSmoke(ctx context.Context, log *zap.Logger, products *apix.ProductsAPI, cart *state.CartStore) {
	list, err := products.List(ctx, "")
	if err != nil || len(list.Products) == 0 {
		log.Warn("cart smoke: no products", zap.Error(err))
		return
	}
	snap, err := cart.AddItem(ctx, list.Products[0].ID, 1)
	if err != nil {
		log.Warn("cart smoke: add failed", zap.Error(err))
		return
	}
	log.Info("cart smoke: added",
		zap.String("product", list.Products[0].Slug),
		zap.Int("items", snap.ItemCount),
		zap.Float64("subtotal", snap.Subtotal),
	)
}

func runWishlistSmoke(ctx context.Context, log *zap.Logger, products *apix.ProductsAPI, wishlist *apix.WishlistAPI) {
	list, err := products.List(ctx, "")
	if err != nil || len(list.Products) == 0 {
		log.Warn("wishlist smoke: no products", zap.Error(err))
		return
	}
	pid := list.Products[0].ID
	if err := wishlist.Toggle(ctx, pid); err != nil {
		log.Warn("wishlist smoke: toggle failed", zap.Error(err))
		return
	}
	if err := wishlist.Toggle(ctx, pid); err != nil {
		log.Warn("wishlist smoke: second toggle failed", zap.Error(err))
	}
}
