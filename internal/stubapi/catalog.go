package stubapi

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/Khatrip009/MinalGems-website/internal/apix"
	"github.com/Khatrip009/MinalGems-website/internal/esx"
	"github.com/Khatrip009/MinalGems-website/internal/logx"
	"github.com/Khatrip009/MinalGems-website/internal/redisx"
)

const (
	productIndex    = "products"
	catalogCacheTTL = time.Minute
)

// CatalogHandlers serves products and categories. Listing responses are
// cached in Redis when available; text search goes through Elasticsearch
// and falls back to a substring scan without it.
type CatalogHandlers struct {
	store *Store
	rdb   *redisx.Client
	es    *esx.Client
	log   *zap.Logger
}

func NewCatalogHandlers(store *Store, rdb *redisx.Client, es *esx.Client) *CatalogHandlers {
	h := &CatalogHandlers{store: store, rdb: rdb, es: es, log: logx.GetScope("catalog")}
	h.reindex()
	return h
}

func (h *CatalogHandlers) reindex() {
	if h.es == nil {
		return
	}
	for _, p := range h.store.Products() {
		doc := esx.ProductDoc{ID: p.ID, Slug: p.Slug, Title: p.Title, Description: p.Description, Price: p.Price, InStock: p.InStock}
		if err := esx.IndexProduct(context.Background(), h.es, productIndex, doc); err != nil {
			h.log.Warn("product index failed", zap.String("id", p.ID), zap.Error(err))
		}
	}
}

// Products godoc
// @Summary  List products, optionally filtered by a text query
// @Tags     catalog
// @Produce  json
// @Param    q query string false "search text"
// @Success  200 {object} apix.ProductsResponse
// @Router   /products [get]
func (h *CatalogHandlers) Products(c *fiber.Ctx) error {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		if cached, ok := h.cacheGet(c, "catalog:products"); ok {
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.SendString(cached)
		}
		products := h.store.Products()
		body, _ := json.Marshal(fiber.Map{"ok": true, "products": products})
		h.cacheSet(c, "catalog:products", string(body))
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(body)
	}
	return OK(c, fiber.Map{"products": h.search(c, q)})
}

func (h *CatalogHandlers) search(c *fiber.Ctx, q string) []apix.Product {
	if h.es != nil {
		ids, err := esx.SearchProducts(c.UserContext(), h.es, productIndex, q, 0, 50)
		if err == nil {
			return lo.FilterMap(ids, func(id string, _ int) (apix.Product, bool) {
				return h.store.ProductByID(id)
			})
		}
		h.log.Warn("es search failed; falling back to scan", zap.Error(err))
	}
	needle := strings.ToLower(q)
	return lo.Filter(h.store.Products(), func(p apix.Product, _ int) bool {
		return strings.Contains(strings.ToLower(p.Title), needle) ||
			strings.Contains(strings.ToLower(p.Description), needle)
	})
}

func (h *CatalogHandlers) cacheGet(c *fiber.Ctx, key string) (string, bool) {
	if h.rdb == nil {
		return "", false
	}
	v, err := h.rdb.Get(c.UserContext(), key).Result()
	if err != nil {
		return "", false
	}
	return v, true
}

func (h *CatalogHandlers) cacheSet(c *fiber.Ctx, key, val string) {
	if h.rdb == nil {
		return
	}
	if err := h.rdb.Set(c.UserContext(), key, val, catalogCacheTTL).Err(); err != nil {
		h.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// ProductBySlug godoc
// @Summary  Product detail by slug
// @Tags     catalog
// @Produce  json
// @Param    slug path string true "product slug"
// @Success  200 {object} apix.ProductResponse
// @Router   /products/{slug} [get]
func (h *CatalogHandlers) ProductBySlug(c *fiber.Ctx) error {
	p, ok := h.store.ProductBySlug(c.Params("slug"))
	if !ok {
		return NotFound("product_not_found")
	}
	return OK(c, fiber.Map{"product": p})
}

// ProductAssets godoc
// @Summary  Media assets for a product
// @Tags     catalog
// @Produce  json
// @Param    slug path string true "product slug"
// @Success  200 {object} apix.ProductAssetsResponse
// @Router   /products/{slug}/assets [get]
func (h *CatalogHandlers) ProductAssets(c *fiber.Ctx) error {
	p, ok := h.store.ProductBySlug(c.Params("slug"))
	if !ok {
		return NotFound("product_not_found")
	}
	return OK(c, fiber.Map{"assets": h.store.ProductAssets(p.ID)})
}

// Categories godoc
// @Summary  List categories with product counts
// @Tags     catalog
// @Produce  json
// @Success  200 {object} apix.CategoriesResponse
// @Router   /categories [get]
func (h *CatalogHandlers) Categories(c *fiber.Ctx) error {
	cats := h.store.Categories()
	return OK(c, fiber.Map{
		"categories":  cats,
		"page":        1,
		"limit":       len(cats),
		"total":       len(cats),
		"total_pages": 1,
	})
}
