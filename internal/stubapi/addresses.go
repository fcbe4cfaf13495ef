package stubapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Khatrip009/MinalGems-website/internal/apix"
)

// AddressHandlers serves the customer address book. Every route is behind
// RequireUser; the default-billing and default-shipping flags are exclusive
// per user.
type AddressHandlers struct {
	store *Store
}

func NewAddressHandlers(store *Store) *AddressHandlers {
	return &AddressHandlers{store: store}
}

func validateAddress(in apix.AddressInput) error {
	if in.Line1 == "" {
		return BadRequest("line1_required")
	}
	if in.City == "" {
		return BadRequest("city_required")
	}
	if in.Country == "" {
		return BadRequest("country_required")
	}
	return nil
}

// List godoc
// @Summary  Saved addresses of the logged-in customer
// @Tags     addresses
// @Produce  json
// @Success  200 {object} apix.AddressesResponse
// @Router   /customer-addresses [get]
func (h *AddressHandlers) List(c *fiber.Ctx) error {
	return OK(c, fiber.Map{"addresses": h.store.Addresses(userID(c))})
}

// Create godoc
// @Summary  Save a new address
// @Tags     addresses
// @Accept   json
// @Produce  json
// @Param    body body apix.AddressInput true "address"
// @Success  200 {object} apix.AddressResponse
// @Router   /customer-addresses [post]
func (h *AddressHandlers) Create(c *fiber.Ctx) error {
	var body apix.AddressInput
	if err := c.BodyParser(&body); err != nil {
		return BadRequest("invalid_body")
	}
	if err := validateAddress(body); err != nil {
		return err
	}
	addr := h.store.AddAddress(userID(c), body)
	return OK(c, fiber.Map{"address": addr})
}

// Update godoc
// @Summary  Replace a saved address
// @Tags     addresses
// @Accept   json
// @Produce  json
// @Param    id path string true "address id"
// @Param    body body apix.AddressInput true "address"
// @Success  200 {object} apix.AddressResponse
// @Router   /customer-addresses/{id} [put]
func (h *AddressHandlers) Update(c *fiber.Ctx) error {
	var body apix.AddressInput
	if err := c.BodyParser(&body); err != nil {
		return BadRequest("invalid_body")
	}
	if err := validateAddress(body); err != nil {
		return err
	}
	addr, ok := h.store.UpdateAddress(userID(c), c.Params("id"), body)
	if !ok {
		return NotFound("address_not_found")
	}
	return OK(c, fiber.Map{"address": addr})
}

// Delete godoc
// @Summary  Remove a saved address
// @Tags     addresses
// @Produce  json
// @Param    id path string true "address id"
// @Success  200 {object} apix.OKResponse
// @Router   /customer-addresses/{id} [delete]
func (h *AddressHandlers) Delete(c *fiber.Ctx) error {
	if !h.store.DeleteAddress(userID(c), c.Params("id")) {
		return NotFound("address_not_found")
	}
	return OK(c, nil)
}
