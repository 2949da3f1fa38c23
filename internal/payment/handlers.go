package payment

import "github.com/gofiber/fiber/v2"

// RegisterRoutes wires payment endpoints mounted under
// /trips/:id/payments. resolveUsername looks up a user id by username
// for the ToUsername payload shape.
func RegisterRoutes(r fiber.Router, svc *Service, resolveUsername func(c *fiber.Ctx, username string) (string, error)) {
	r.Post("/", func(c *fiber.Ctx) error {
		callerID, _ := c.Locals("user_id").(string)
		var req CreateRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		if req.ToUserID == "" && req.ToUsername != "" {
			id, err := resolveUsername(c, req.ToUsername)
			if err != nil {
				return err
			}
			req.ToUserID = id
		}
		p, err := svc.Create(c.Context(), c.Params("id"), callerID, req)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	})

	r.Get("/", func(c *fiber.Ctx) error {
		payments, err := svc.ListForTrip(c.Context(), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(payments)
	})

	r.Post("/:paymentId/confirm", func(c *fiber.Ctx) error {
		callerID, _ := c.Locals("user_id").(string)
		p, err := svc.Confirm(c.Context(), c.Params("paymentId"), callerID)
		if err != nil {
			return err
		}
		return c.JSON(p)
	})

	r.Post("/:paymentId/decline", func(c *fiber.Ctx) error {
		callerID, _ := c.Locals("user_id").(string)
		var body DeclineRequest
		_ = c.BodyParser(&body)
		p, err := svc.Decline(c.Context(), c.Params("paymentId"), callerID, body.DeclineNote)
		if err != nil {
			return err
		}
		return c.JSON(p)
	})

	r.Delete("/:paymentId", func(c *fiber.Ctx) error {
		callerID, _ := c.Locals("user_id").(string)
		if err := svc.Delete(c.Context(), c.Params("paymentId"), callerID); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
