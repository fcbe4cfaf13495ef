package stubapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"

	"github.com/Khatrip009/MinalGems-website/internal/config"
	"github.com/Khatrip009/MinalGems-website/internal/esx"
	"github.com/Khatrip009/MinalGems-website/internal/logx"
	"github.com/Khatrip009/MinalGems-website/internal/mqx"
	"github.com/Khatrip009/MinalGems-website/internal/redisx"
	"github.com/Khatrip009/MinalGems-website/pkg"
)

// Providers are the optional external services; any of them may be nil.
type Providers struct {
	MQ  mqx.Publisher
	ES  *esx.Client
	RDB *redisx.Client
}

// RegisterCommonMiddlewares installs panic recovery, request ids, CORS and
// the structured access log.
func RegisterCommonMiddlewares(app *fiber.App) {
	accessLogger := logx.GetScope("http")

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New())

	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		accessLogger.Info("access",
			zap.String("method", c.Method()),
			zap.String("path", c.OriginalURL()),
			zap.Int("status", c.Response().StatusCode()),
			zap.String("latency", pkg.SmartDurationFormat(time.Since(start))),
			zap.String("ip", c.IP()),
			zap.String("request_id", c.GetRespHeader(fiber.HeaderXRequestID)),
		)
		return err
	})
}

// Register mounts the whole storefront contract under /api.
func Register(app *fiber.App, cfg *config.Config, store *Store, hub *Hub, providers ...*Providers) {
	var p Providers
	if len(providers) > 0 && providers[0] != nil {
		p = *providers[0]
	}

	auth := NewAuthHandlers(cfg, store)
	cart := NewCartHandlers(store, hub)
	wishlist := NewWishlistHandlers(store, hub)
	visitors := NewVisitorHandlers(store, p.MQ)
	account := NewAccountHandlers(store)
	catalog := NewCatalogHandlers(store, p.RDB, p.ES)
	checkout := NewCheckoutHandlers(store, hub)
	orders := NewOrderHandlers(store)
	alerts := NewAlertHandlers(store)
	addresses := NewAddressHandlers(store)

	app.Get("/health", func(c *fiber.Ctx) error { return OK(c, fiber.Map{"status": "ok"}) })
	app.Get("/swagger/*", fiberSwagger.WrapHandler)

	api := app.Group("/api", IdentityMiddleware(cfg, store))

	api.Post("/auth/login", auth.Login)
	api.Post("/auth/register", auth.Register)

	api.Get("/cart", cart.Get)
	api.Post("/cart", cart.AddItem)
	api.Post("/cart/attach", cart.Attach)
	api.Patch("/cart/:itemId", cart.UpdateItem)
	api.Delete("/cart/:itemId", cart.RemoveItem)

	api.Get("/sales/wishlist", wishlist.Get)
	api.Post("/sales/wishlist", wishlist.Add)
	api.Delete("/sales/wishlist", wishlist.Clear)
	api.Delete("/sales/wishlist/:itemId", wishlist.Remove)

	api.Post("/visitors/identify", visitors.Identify)
	api.Post("/visitors/event", visitors.TrackEvent)
	api.Get("/analytics/visitors-metrics/summary", visitors.MetricsSummary)

	addr := api.Group("/customer-addresses", RequireUser())
	addr.Get("/", addresses.List)
	addr.Post("/", addresses.Create)
	addr.Put("/:id", addresses.Update)
	addr.Delete("/:id", addresses.Delete)

	acc := api.Group("/account", RequireUser())
	acc.Get("/overview", account.Overview)
	acc.Get("/profile", account.Profile)
	acc.Put("/profile", account.UpdateProfile)
	acc.Put("/password", account.ChangePassword)
	acc.Get("/orders/:orderId/timeline", account.Timeline)

	api.Get("/products", catalog.Products)
	api.Get("/products/:slug", catalog.ProductBySlug)
	api.Get("/products/:slug/assets", catalog.ProductAssets)
	api.Get("/categories", catalog.Categories)

	api.Post("/checkout/summary", checkout.Summary)
	api.Post("/checkout/place-order", checkout.PlaceOrder)
	api.Post("/checkout/pay", checkout.Pay)
	api.Post("/promo/apply", checkout.ApplyPromo)

	ord := api.Group("/orders", RequireUser())
	ord.Get("/my", orders.My)
	ord.Get("/:id", orders.Get)

	api.Post("/stock-alerts/register", alerts.RegisterStockAlert)
	api.Post("/cookie-consents", alerts.SubmitConsent)

	api.Get("/events/sse", hub.Handler())
}
