package expense

import "github.com/gofiber/fiber/v2"

// RegisterRoutes wires the expense endpoints for a single trip onto r.
// r is expected to be mounted under /trips/:id/expenses with the JWT
// middleware already applied.
func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Post("/", func(c *fiber.Ctx) error {
		tripID := c.Params("id")
		callerID, _ := c.Locals("user_id").(string)

		var probe struct {
			Items []ItemInput `json:"items"`
		}
		if err := c.BodyParser(&probe); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}

		if len(probe.Items) > 0 {
			var req ItemizedInput
			if err := c.BodyParser(&req); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
			}
			e, err := svc.CreateItemizedExpense(c.Context(), tripID, callerID, req)
			if err != nil {
				return err
			}
			return c.Status(fiber.StatusCreated).JSON(e)
		}

		var req SimpleSplitInput
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		e, err := svc.CreateSimpleExpense(c.Context(), tripID, callerID, req)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(e)
	})

	r.Get("/", func(c *fiber.Ctx) error {
		expenses, err := svc.ListForTrip(c.Context(), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(expenses)
	})

	r.Get("/:expenseId", func(c *fiber.Ctx) error {
		e, err := svc.GetByID(c.Context(), c.Params("expenseId"))
		if err != nil {
			return err
		}
		return c.JSON(e)
	})
}
