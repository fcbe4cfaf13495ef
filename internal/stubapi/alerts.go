package stubapi

import (
	"github.com/gofiber/fiber/v2"
)

// AlertHandlers serves stock-alert registration and cookie consents.
type AlertHandlers struct {
	store *Store
}

func NewAlertHandlers(store *Store) *AlertHandlers {
	return &AlertHandlers{store: store}
}

type stockAlertBody struct {
	ProductID string `json:"product_id"`
}

// RegisterStockAlert godoc
// @Summary  Register a back-in-stock notification
// @Tags     alerts
// @Accept   json
// @Produce  json
// @Param    body body stockAlertBody true "product"
// @Success  200 {object} apix.StockAlertResponse
// @Router   /stock-alerts/register [post]
func (h *AlertHandlers) RegisterStockAlert(c *fiber.Ctx) error {
	var body stockAlertBody
	if err := c.BodyParser(&body); err != nil {
		return BadRequest("invalid_body")
	}
	if body.ProductID == "" {
		return BadRequest("product_id_required")
	}
	id, already, ok := h.store.RegisterStockAlert(ownerKey(c), body.ProductID)
	if !ok {
		return NotFound("product_not_found")
	}
	return OK(c, fiber.Map{"alert_id": id, "status": "registered", "already_exists": already})
}

type consentBody struct {
	VisitorID string         `json:"visitor_id"`
	Consent   map[string]any `json:"consent"`
}

// SubmitConsent godoc
// @Summary  Persist a visitor's cookie consent choices
// @Tags     alerts
// @Accept   json
// @Produce  json
// @Param    body body consentBody true "consent"
// @Success  200 {object} apix.ConsentResponse
// @Router   /cookie-consents [post]
func (h *AlertHandlers) SubmitConsent(c *fiber.Ctx) error {
	var body consentBody
	if err := c.BodyParser(&body); err != nil {
		return BadRequest("invalid_body")
	}
	if body.VisitorID == "" {
		return BadRequest("visitor_id_required")
	}
	return OK(c, fiber.Map{"id": h.store.SaveConsent(body.VisitorID)})
}
