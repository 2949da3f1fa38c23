package friend

import "github.com/gofiber/fiber/v2"

// RegisterRoutes wires /friends and its nested /friends/invites routes.
// resolveUsername looks up a user id by username for the {username}
// add-friend payload shape.
func RegisterRoutes(r fiber.Router, svc *Service, resolveUsername func(c *fiber.Ctx, username string) (string, error)) {
	r.Get("/", func(c *fiber.Ctx) error {
		callerID, _ := c.Locals("user_id").(string)
		friends, err := svc.ListForUser(c.Context(), callerID)
		if err != nil {
			return err
		}
		return c.JSON(friends)
	})

	r.Post("/", func(c *fiber.Ctx) error {
		callerID, _ := c.Locals("user_id").(string)
		var body struct {
			Username string `json:"username"`
		}
		if err := c.BodyParser(&body); err != nil || body.Username == "" {
			return fiber.NewError(fiber.StatusBadRequest, "username required")
		}
		receiverID, err := resolveUsername(c, body.Username)
		if err != nil {
			return err
		}
		inv, err := svc.CreateInvite(c.Context(), callerID, receiverID)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(inv)
	})

	r.Delete("/:id", func(c *fiber.Ctx) error {
		callerID, _ := c.Locals("user_id").(string)
		if err := svc.Remove(c.Context(), callerID, c.Params("id")); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Get("/invites", func(c *fiber.Ctx) error {
		callerID, _ := c.Locals("user_id").(string)
		invites, err := svc.InvitesForUser(c.Context(), callerID)
		if err != nil {
			return err
		}
		return c.JSON(invites)
	})

	r.Post("/invites/:id/accept", func(c *fiber.Ctx) error {
		callerID, _ := c.Locals("user_id").(string)
		inv, err := svc.AcceptInvite(c.Context(), c.Params("id"), callerID)
		if err != nil {
			return err
		}
		return c.JSON(inv)
	})

	r.Post("/invites/:id/decline", func(c *fiber.Ctx) error {
		callerID, _ := c.Locals("user_id").(string)
		inv, err := svc.DeclineInvite(c.Context(), c.Params("id"), callerID)
		if err != nil {
			return err
		}
		return c.JSON(inv)
	})
}
