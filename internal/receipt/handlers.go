package receipt

import "github.com/gofiber/fiber/v2"

type ocrRequest struct {
	RawText string `json:"rawText"`
}

// RegisterRoutes wires the receipt endpoint onto r, which the caller
// mounts under a trip-scoped, membership-checked group (the parser
// itself has no notion of trips or members; it only parses text).
func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Post("/", func(c *fiber.Ctx) error {
		var req ocrRequest
		if err := c.BodyParser(&req); err != nil {
			req.RawText = ""
		}
		result := svc.Parse(c.Context(), req.RawText)
		return c.JSON(result)
	})
}
