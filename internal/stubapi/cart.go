package stubapi

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
)

// CartHandlers serves the cart CRUD plus the anonymous-cart attach.
type CartHandlers struct {
	store *Store
	hub   *Hub
}

func NewCartHandlers(store *Store, hub *Hub) *CartHandlers {
	return &CartHandlers{store: store, hub: hub}
}

func (h *CartHandlers) publish(c *fiber.Ctx) {
	if h.hub == nil {
		return
	}
	cart := h.store.CartForOwner(ownerKey(c))
	count := 0
	if cart != nil {
		count = cart.ItemCount
	}
	data, _ := json.Marshal(fiber.Map{"item_count": count})
	h.hub.Publish("cart", "cart.updated", string(data))
}

// Get godoc
// @Summary  Current cart for the requesting actor
// @Tags     cart
// @Produce  json
// @Success  200 {object} apix.CartResponse
// @Router   /cart [get]
func (h *CartHandlers) Get(c *fiber.Ctx) error {
	cart := h.store.CartForOwner(ownerKey(c))
	return OK(c, fiber.Map{"cart": cart})
}

type addItemBody struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// AddItem godoc
// @Summary  Add a product line to the cart
// @Tags     cart
// @Accept   json
// @Produce  json
// @Param    body body addItemBody true "line"
// @Success  200 {object} apix.CartResponse
// @Router   /cart [post]
func (h *CartHandlers) AddItem(c *fiber.Ctx) error {
	var body addItemBody
	if err := c.BodyParser(&body); err != nil {
		return BadRequest("invalid_body")
	}
	if body.ProductID == "" {
		return BadRequest("product_id_required")
	}
	if body.Quantity <= 0 {
		body.Quantity = 1
	}
	cart, ok := h.store.AddCartItem(ownerKey(c), body.ProductID, body.Quantity)
	if !ok {
		return NotFound("product_not_found")
	}
	h.publish(c)
	return OK(c, fiber.Map{"cart": cart})
}

type updateItemBody struct {
	Quantity int `json:"quantity"`
}

// UpdateItem godoc
// @Summary  Set a cart line's quantity; zero removes it
// @Tags     cart
// @Accept   json
// @Produce  json
// @Param    itemId path string true "cart item id"
// @Param    body body updateItemBody true "quantity"
// @Success  200 {object} apix.CartResponse
// @Router   /cart/{itemId} [patch]
func (h *CartHandlers) UpdateItem(c *fiber.Ctx) error {
	var body updateItemBody
	if err := c.BodyParser(&body); err != nil {
		return BadRequest("invalid_body")
	}
	cart, ok := h.store.UpdateCartItem(ownerKey(c), c.Params("itemId"), body.Quantity)
	if !ok {
		return NotFound("cart_item_not_found")
	}
	h.publish(c)
	return OK(c, fiber.Map{"cart": cart})
}

// RemoveItem godoc
// @Summary  Remove a cart line
// @Tags     cart
// @Produce  json
// @Param    itemId path string true "cart item id"
// @Success  200 {object} apix.CartResponse
// @Router   /cart/{itemId} [delete]
func (h *CartHandlers) RemoveItem(c *fiber.Ctx) error {
	cart, ok := h.store.RemoveCartItem(ownerKey(c), c.Params("itemId"))
	if !ok {
		return NotFound("cart_item_not_found")
	}
	h.publish(c)
	return OK(c, fiber.Map{"cart": cart})
}

type attachBody struct {
	AnonCartID string `json:"anon_cart_id"`
}

// Attach godoc
// @Summary  Merge an anonymous cart into the authenticated user's cart
// @Tags     cart
// @Accept   json
// @Produce  json
// @Param    body body attachBody true "marker"
// @Success  200 {object} apix.AttachCartResponse
// @Router   /cart/attach [post]
func (h *CartHandlers) Attach(c *fiber.Ctx) error {
	uid := userID(c)
	if uid == "" {
		return Unauthorized()
	}
	var body attachBody
	if err := c.BodyParser(&body); err != nil {
		return BadRequest("invalid_body")
	}
	if body.AnonCartID == "" {
		return BadRequest("anon_cart_id_required")
	}
	h.store.AttachCart("user:"+uid, body.AnonCartID)
	cart := h.store.CartForOwner("user:" + uid)
	h.publish(c)
	return OK(c, fiber.Map{"cart": cart})
}
