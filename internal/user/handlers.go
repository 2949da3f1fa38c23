package user

import "github.com/gofiber/fiber/v2"

// RegisterRoutes wires /users/search and /users/me onto r. r is
// expected to already carry the JWT middleware so c.Locals("user_id")
// is populated.
func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Get("/search", func(c *fiber.Ctx) error {
		users, err := svc.Search(c.Context(), c.Query("q"))
		if err != nil {
			return err
		}
		return c.JSON(users)
	})

	r.Get("/me", func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		u, err := svc.ByID(c.Context(), userID)
		if err != nil {
			return err
		}
		return c.JSON(u)
	})
}
