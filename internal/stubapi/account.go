package stubapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Khatrip009/MinalGems-website/internal/apix"
)

// AccountHandlers serves the authenticated /account group. Every route is
// behind RequireUser.
type AccountHandlers struct {
	store *Store
}

func NewAccountHandlers(store *Store) *AccountHandlers {
	return &AccountHandlers{store: store}
}

// Overview godoc
// @Summary  Account dashboard: profile, cart snapshot and counters
// @Tags     account
// @Produce  json
// @Success  200 {object} apix.AccountOverviewResponse
// @Router   /account/overview [get]
func (h *AccountHandlers) Overview(c *fiber.Ctx) error {
	uid := userID(c)
	u, ok := h.store.UserByID(uid)
	if !ok {
		return Unauthorized()
	}
	cart := h.store.CartForOwner("user:" + uid)
	orders, lastOrderAt := h.store.OrderCount(uid)
	stats := apix.AccountStats{
		AddressesCount: h.store.AddressCount(uid),
		WishlistCount:  h.store.WishlistCount("user:" + uid),
		OrdersCount:    orders,
		LastOrderAt:    lastOrderAt,
	}
	if cart != nil {
		stats.CartItemCount = cart.ItemCount
		stats.CartSubtotal = cart.Subtotal
		stats.CartGrandTotal = cart.GrandTotal
	}
	profile := u.UserProfile
	return OK(c, fiber.Map{"user": &profile, "cart": cart, "stats": stats})
}

// Profile godoc
// @Summary  Current profile
// @Tags     account
// @Produce  json
// @Success  200 {object} apix.ProfileResponse
// @Router   /account/profile [get]
func (h *AccountHandlers) Profile(c *fiber.Ctx) error {
	u, ok := h.store.UserByID(userID(c))
	if !ok {
		return Unauthorized()
	}
	profile := u.UserProfile
	return OK(c, fiber.Map{"user": &profile})
}

// UpdateProfile godoc
// @Summary  Patch profile fields; absent fields are left untouched
// @Tags     account
// @Accept   json
// @Produce  json
// @Param    body body apix.ProfileUpdate true "fields"
// @Success  200 {object} apix.ProfileResponse
// @Router   /account/profile [put]
func (h *AccountHandlers) UpdateProfile(c *fiber.Ctx) error {
	var body apix.ProfileUpdate
	if err := c.BodyParser(&body); err != nil {
		return BadRequest("invalid_body")
	}
	u, ok := h.store.UpdateUser(userID(c), func(u *User) {
		if body.FullName != nil {
			u.FullName = *body.FullName
		}
		if body.Phone != nil {
			u.Phone = *body.Phone
		}
		if body.DOB != nil {
			u.DOB = *body.DOB
		}
		if body.Metadata != nil {
			u.Metadata = body.Metadata
		}
	})
	if !ok {
		return Unauthorized()
	}
	profile := u.UserProfile
	return OK(c, fiber.Map{"user": &profile})
}

type changePasswordBody struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword godoc
// @Summary  Rotate the account password
// @Tags     account
// @Accept   json
// @Produce  json
// @Param    body body changePasswordBody true "passwords"
// @Success  200 {object} apix.OKResponse
// @Router   /account/password [put]
func (h *AccountHandlers) ChangePassword(c *fiber.Ctx) error {
	var body changePasswordBody
	if err := c.BodyParser(&body); err != nil {
		return BadRequest("invalid_body")
	}
	if len(body.NewPassword) < 8 {
		return BadRequest("password_too_short")
	}
	u, ok := h.store.UserByID(userID(c))
	if !ok {
		return Unauthorized()
	}
	if !VerifyPassword(body.CurrentPassword, u.PasswordHash) {
		return BadRequest("invalid_current_password")
	}
	hash, err := HashPassword(body.NewPassword)
	if err != nil {
		return Internal("hash_failed")
	}
	h.store.UpdateUser(u.ID, func(u *User) { u.PasswordHash = hash })
	return OK(c, nil)
}

// Timeline godoc
// @Summary  Fulfilment history of one of the user's orders
// @Tags     account
// @Produce  json
// @Param    orderId path string true "order id"
// @Success  200 {object} apix.TimelineResponse
// @Router   /account/orders/{orderId}/timeline [get]
func (h *AccountHandlers) Timeline(c *fiber.Ctx) error {
	tl, ok := h.store.Timeline(userID(c), c.Params("orderId"))
	if !ok {
		return NotFound("order_not_found")
	}
	return OK(c, fiber.Map{"timeline": tl})
}
