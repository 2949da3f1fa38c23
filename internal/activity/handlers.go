package activity

import "github.com/gofiber/fiber/v2"

// RegisterRoutes wires the single GET /activity feed endpoint onto r.
// ?offset= slices into the feed for simple pagination; the feed itself
// is already capped at the service's configured limit.
func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Get("/", func(c *fiber.Ctx) error {
		callerID, _ := c.Locals("user_id").(string)
		events, err := svc.ForUser(c.Context(), callerID)
		if err != nil {
			return err
		}
		return c.JSON(paginate(events, c.QueryInt("offset", 0), c.QueryInt("limit", 0)))
	})
}

func paginate(events []Event, offset, limit int) []Event {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(events) {
		return []Event{}
	}
	events = events[offset:]
	if limit > 0 && limit < len(events) {
		events = events[:limit]
	}
	return events
}
