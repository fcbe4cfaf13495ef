package stubapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Khatrip009/MinalGems-website/internal/apix"
)

const flatShipping = 250.0

// CheckoutHandlers prices carts, places orders and records payments.
type CheckoutHandlers struct {
	store *Store
	hub   *Hub
}

func NewCheckoutHandlers(store *Store, hub *Hub) *CheckoutHandlers {
	return &CheckoutHandlers{store: store, hub: hub}
}

type summaryBody struct {
	CartID     string `json:"cart_id"`
	CouponCode string `json:"coupon_code"`
}

// Summary godoc
// @Summary  Price the current cart before placing the order
// @Tags     checkout
// @Accept   json
// @Produce  json
// @Param    body body summaryBody true "selection"
// @Success  200 {object} apix.CheckoutSummaryResponse
// @Router   /checkout/summary [post]
func (h *CheckoutHandlers) Summary(c *fiber.Ctx) error {
	var body summaryBody
	if err := c.BodyParser(&body); err != nil {
		return BadRequest("invalid_body")
	}
	cart := h.store.CartForOwner(ownerKey(c))
	if cart == nil || cart.ID != body.CartID {
		return NotFound("cart_not_found")
	}
	discount := 0.0
	if body.CouponCode != "" {
		if pct, ok := h.store.PromoDiscount(body.CouponCode); ok {
			discount = cart.Subtotal * pct
		}
	}
	sum := apix.CheckoutSummary{
		Subtotal:   cart.Subtotal,
		Shipping:   flatShipping,
		Discount:   discount,
		GrandTotal: cart.Subtotal + flatShipping - discount,
	}
	return OK(c, fiber.Map{"summary": sum})
}

type placeOrderBody struct {
	CartID        string `json:"cart_id"`
	PaymentMethod string `json:"payment_method"`
	Notes         string `json:"notes"`
}

// PlaceOrder godoc
// @Summary  Finalize the cart into an order
// @Tags     checkout
// @Accept   json
// @Produce  json
// @Param    body body placeOrderBody true "order"
// @Success  200 {object} apix.PlaceOrderResponse
// @Router   /checkout/place-order [post]
func (h *CheckoutHandlers) PlaceOrder(c *fiber.Ctx) error {
	uid := userID(c)
	if uid == "" {
		return Unauthorized()
	}
	var body placeOrderBody
	if err := c.BodyParser(&body); err != nil {
		return BadRequest("invalid_body")
	}
	cart := h.store.CartForOwner("user:" + uid)
	if cart == nil || cart.ID != body.CartID {
		return NotFound("cart_not_found")
	}
	if len(cart.Items) == 0 {
		return BadRequest("cart_empty")
	}
	order := h.store.PlaceOrder(uid, cart, body.Notes)
	if h.hub != nil {
		h.hub.Publish("orders", "order.placed", `{"order_id":"`+order.ID+`"}`)
	}
	return OK(c, fiber.Map{"order_id": order.ID})
}

type payBody struct {
	OrderID           string  `json:"order_id"`
	Amount            float64 `json:"amount"`
	Provider          string  `json:"provider"`
	ProviderPaymentID string  `json:"provider_payment_id"`
	Status            string  `json:"status"`
}

// Pay godoc
// @Summary  Record a provider payment result against an order
// @Tags     checkout
// @Accept   json
// @Produce  json
// @Param    body body payBody true "payment"
// @Success  200 {object} apix.OKResponse
// @Router   /checkout/pay [post]
func (h *CheckoutHandlers) Pay(c *fiber.Ctx) error {
	uid := userID(c)
	if uid == "" {
		return Unauthorized()
	}
	var body payBody
	if err := c.BodyParser(&body); err != nil {
		return BadRequest("invalid_body")
	}
	if _, ok := h.store.Order(uid, body.OrderID); !ok {
		return NotFound("order_not_found")
	}
	status := "paid"
	if body.Status != "" && body.Status != "succeeded" && body.Status != "paid" {
		status = "payment_failed"
	}
	h.store.AppendTimeline(body.OrderID, apix.TimelineEntry{Status: status, Note: body.Provider})
	if h.hub != nil {
		h.hub.Publish("orders", "order."+status, `{"order_id":"`+body.OrderID+`"}`)
	}
	return OK(c, nil)
}

type promoBody struct {
	PromoCode string  `json:"promo_code"`
	Subtotal  float64 `json:"subtotal"`
}

// ApplyPromo godoc
// @Summary  Validate a promo code against a subtotal
// @Tags     checkout
// @Accept   json
// @Produce  json
// @Param    body body promoBody true "promo"
// @Success  200 {object} apix.PromoResponse
// @Router   /promo/apply [post]
func (h *CheckoutHandlers) ApplyPromo(c *fiber.Ctx) error {
	var body promoBody
	if err := c.BodyParser(&body); err != nil {
		return BadRequest("invalid_body")
	}
	pct, ok := h.store.PromoDiscount(body.PromoCode)
	if !ok {
		return NotFound("promo_not_found")
	}
	return OK(c, fiber.Map{"discount": body.Subtotal * pct, "code": body.PromoCode})
}

// OrderHandlers serves the authenticated order history.
type OrderHandlers struct {
	store *Store
}

func NewOrderHandlers(store *Store) *OrderHandlers {
	return &OrderHandlers{store: store}
}

// My godoc
// @Summary  Orders placed by the authenticated user
// @Tags     orders
// @Produce  json
// @Success  200 {object} apix.OrdersResponse
// @Router   /orders/my [get]
func (h *OrderHandlers) My(c *fiber.Ctx) error {
	return OK(c, fiber.Map{"orders": h.store.OrdersForUser(userID(c))})
}

// Get godoc
// @Summary  One order with its lines
// @Tags     orders
// @Produce  json
// @Param    id path string true "order id"
// @Success  200 {object} apix.OrderResponse
// @Router   /orders/{id} [get]
func (h *OrderHandlers) Get(c *fiber.Ctx) error {
	order, ok := h.store.Order(userID(c), c.Params("id"))
	if !ok {
		return NotFound("order_not_found")
	}
	return OK(c, fiber.Map{"order": order})
}
