package export

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes wires the export endpoint onto r, mounted under a
// trip-scoped, membership-checked group by the caller.
func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Get("/", func(c *fiber.Ctx) error {
		tripID := c.Params("id")
		callerID, _ := c.Locals("user_id").(string)
		wb, err := svc.TripWorkbook(c.Context(), tripID, callerID)
		if err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="trip-%s.xlsx"`, tripID))
		return wb.Write(c.Response().BodyWriter())
	})
}
