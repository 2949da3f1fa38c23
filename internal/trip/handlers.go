package trip

import "github.com/gofiber/fiber/v2"

// RegisterRoutes wires trip CRUD, membership and invite routes onto r.
// r is expected to already carry the JWT middleware. resolveUsername
// looks up a user id by username for the {username} member-invite
// payload shape; pass internal/user.Service.ByUsername's id projection.
func RegisterRoutes(r fiber.Router, svc *Service, resolveUsername func(c *fiber.Ctx, username string) (string, error)) {
	r.Post("/", func(c *fiber.Ctx) error {
		callerID, _ := c.Locals("user_id").(string)
		var req Trip
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		t, err := svc.CreateTrip(c.Context(), callerID, req)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(t)
	})

	r.Get("/", func(c *fiber.Ctx) error {
		callerID, _ := c.Locals("user_id").(string)
		trips, err := svc.ListForUser(c.Context(), callerID)
		if err != nil {
			return err
		}
		return c.JSON(trips)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		t, err := svc.GetTrip(c.Context(), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(t)
	})

	r.Patch("/:id", func(c *fiber.Ctx) error {
		var patch Trip
		if err := c.BodyParser(&patch); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		t, err := svc.UpdateTrip(c.Context(), c.Params("id"), patch)
		if err != nil {
			return err
		}
		return c.JSON(t)
	})

	r.Post("/:id/members", func(c *fiber.Ctx) error {
		callerID, _ := c.Locals("user_id").(string)
		var body struct {
			Username string `json:"username"`
			UserID   string `json:"userId"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		inviteeID := body.UserID
		if inviteeID == "" && body.Username != "" {
			id, err := resolveUsername(c, body.Username)
			if err != nil {
				return err
			}
			inviteeID = id
		}
		if inviteeID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "username or userId required")
		}
		inv, err := svc.CreateInvite(c.Context(), c.Params("id"), callerID, inviteeID)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(inv)
	})

	r.Get("/:id/members", func(c *fiber.Ctx) error {
		members, err := svc.Members(c.Context(), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(members)
	})

	r.Delete("/:id/members/:userId", func(c *fiber.Ctx) error {
		if err := svc.RemoveMember(c.Context(), c.Params("id"), c.Params("userId")); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

// RegisterInviteRoutes wires the caller-centric invite inbox endpoints
// (/invites, /invites/:id/{accept,decline}) onto r.
func RegisterInviteRoutes(r fiber.Router, svc *Service) {
	r.Get("/", func(c *fiber.Ctx) error {
		callerID, _ := c.Locals("user_id").(string)
		invites, err := svc.InvitesForUser(c.Context(), callerID)
		if err != nil {
			return err
		}
		return c.JSON(invites)
	})

	r.Post("/:id/accept", func(c *fiber.Ctx) error {
		callerID, _ := c.Locals("user_id").(string)
		inv, err := svc.AcceptInvite(c.Context(), c.Params("id"), callerID)
		if err != nil {
			return err
		}
		return c.JSON(inv)
	})

	r.Post("/:id/decline", func(c *fiber.Ctx) error {
		callerID, _ := c.Locals("user_id").(string)
		inv, err := svc.DeclineInvite(c.Context(), c.Params("id"), callerID)
		if err != nil {
			return err
		}
		return c.JSON(inv)
	})
}
