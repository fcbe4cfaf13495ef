package stubapi

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
)

// WishlistHandlers serves the /sales/wishlist group.
type WishlistHandlers struct {
	store *Store
	hub   *Hub
}

func NewWishlistHandlers(store *Store, hub *Hub) *WishlistHandlers {
	return &WishlistHandlers{store: store, hub: hub}
}

func (h *WishlistHandlers) publish(c *fiber.Ctx) {
	if h.hub == nil {
		return
	}
	data, _ := json.Marshal(fiber.Map{"count": h.store.WishlistCount(ownerKey(c))})
	h.hub.Publish("wishlist", "wishlist.updated", string(data))
}

// Get godoc
// @Summary  Current wishlist for the requesting actor
// @Tags     wishlist
// @Produce  json
// @Success  200 {object} apix.WishlistResponse
// @Router   /sales/wishlist [get]
func (h *WishlistHandlers) Get(c *fiber.Ctx) error {
	wl := h.store.WishlistForOwner(ownerKey(c))
	return OK(c, fiber.Map{"wishlist": wl})
}

type addWishlistBody struct {
	ProductID string `json:"product_id"`
}

// Add godoc
// @Summary  Add a product to the wishlist
// @Tags     wishlist
// @Accept   json
// @Produce  json
// @Param    body body addWishlistBody true "product"
// @Success  200 {object} apix.AddToWishlistResponse
// @Router   /sales/wishlist [post]
func (h *WishlistHandlers) Add(c *fiber.Ctx) error {
	var body addWishlistBody
	if err := c.BodyParser(&body); err != nil {
		return BadRequest("invalid_body")
	}
	if body.ProductID == "" {
		return BadRequest("product_id_required")
	}
	itemID, already, ok := h.store.AddWishlistItem(ownerKey(c), body.ProductID)
	if !ok {
		return NotFound("product_not_found")
	}
	if !already {
		h.publish(c)
	}
	return OK(c, fiber.Map{"id": itemID, "already_exists": already})
}

// Remove godoc
// @Summary  Remove a wishlist item
// @Tags     wishlist
// @Produce  json
// @Param    itemId path string true "wishlist item id"
// @Success  200 {object} apix.OKResponse
// @Router   /sales/wishlist/{itemId} [delete]
func (h *WishlistHandlers) Remove(c *fiber.Ctx) error {
	if !h.store.RemoveWishlistItem(ownerKey(c), c.Params("itemId")) {
		return NotFound("wishlist_item_not_found")
	}
	h.publish(c)
	return OK(c, nil)
}

// Clear godoc
// @Summary  Remove every wishlist item
// @Tags     wishlist
// @Produce  json
// @Success  200 {object} apix.OKResponse
// @Router   /sales/wishlist [delete]
func (h *WishlistHandlers) Clear(c *fiber.Ctx) error {
	h.store.ClearWishlist(ownerKey(c))
	h.publish(c)
	return OK(c, nil)
}
