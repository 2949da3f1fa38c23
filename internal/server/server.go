package server

import (
	"time"

	"tripledger/internal/activity"
	"tripledger/internal/apperr"
	"tripledger/internal/auth"
	"tripledger/internal/balance"
	"tripledger/internal/config"
	"tripledger/internal/expense"
	"tripledger/internal/export"
	"tripledger/internal/friend"
	"tripledger/internal/logging"
	"tripledger/internal/payment"
	"tripledger/internal/receipt"
	"tripledger/internal/trip"
	"tripledger/internal/user"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App   *fiber.App
	Cfg   config.Config
	DB    *pgxpool.Pool
	Redis *redis.Client
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New(fiber.Config{ErrorHandler: apperr.FiberHandler})
	app.Use(recover.New())
	app.Use(logging.FiberMiddleware())

	s := &Server{
		App:   app,
		Cfg:   cfg,
		DB:    db,
		Redis: redisClient,
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	trips := trip.NewService(s.DB)
	expenses := expense.NewService(s.DB)
	payments := payment.NewService(s.DB)
	users := user.NewService(s.DB)
	friends := friend.NewService(s.DB)
	activities := activity.NewService(s.DB, s.Cfg.ActivityLimit)
	receipts := receipt.NewService(s.Cfg.LLMVerifierURL)
	balances := balance.NewService(trips, expenses, payments, s.Redis, balanceCacheTTL(s.Cfg.BalanceCacheTTL))
	exports := export.NewService(trips, expenses, payments, balances, users, s.DB)

	resolveUsername := func(c *fiber.Ctx, username string) (string, error) {
		u, err := users.ByUsername(c.Context(), username)
		if err != nil {
			return "", err
		}
		return u.ID, nil
	}

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.DB))

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	tripsGroup := s.App.Group("/trips", jwtMiddleware)

	// Registered ahead of trip.RegisterRoutes: fiber dispatches to the
	// first handler that matches a given method+path, so these richer
	// aggregate views must claim GET / and GET /:id before trip's own
	// plain equivalents do. trip.RegisterRoutes still wires POST /,
	// PATCH /:id and the /:id/members routes (including the member
	// DELETE), which don't overlap.
	agg := &aggregates{trips: trips, expenses: expenses, payments: payments, balances: balances}
	tripsGroup.Get("/", agg.listTrips)
	tripsGroup.Get("/:id", agg.tripDetail)
	tripsGroup.Get("/:id/balances", agg.tripBalances)

	trip.RegisterRoutes(tripsGroup, trips, resolveUsername)
	expense.RegisterRoutes(tripsGroup.Group("/:id/expenses", membershipGuard(trips), invalidateBalanceOnWrite(balances)), expenses)
	payment.RegisterRoutes(tripsGroup.Group("/:id/payments", membershipGuard(trips), invalidateBalanceOnWrite(balances)), payments, resolveUsername)
	receipt.RegisterRoutes(tripsGroup.Group("/:id/receipt/ocr", membershipGuard(trips)), receipts)
	export.RegisterRoutes(tripsGroup.Group("/:id/export", membershipGuard(trips)), exports)

	trip.RegisterInviteRoutes(s.App.Group("/invites", jwtMiddleware), trips)

	friend.RegisterRoutes(s.App.Group("/friends", jwtMiddleware), friends, resolveUsername)
	activity.RegisterRoutes(s.App.Group("/activity", jwtMiddleware), activities)
	user.RegisterRoutes(s.App.Group("/users", jwtMiddleware), users)

	s.App.Get("/payments/pending", jwtMiddleware, func(c *fiber.Ctx) error {
		callerID, _ := c.Locals("user_id").(string)
		pending, err := payments.ListPendingForReceiver(c.Context(), callerID)
		if err != nil {
			return err
		}
		return c.JSON(pending)
	})
}

func balanceCacheTTL(seconds int) time.Duration {
	if seconds <= 0 {
		seconds = 5
	}
	return time.Duration(seconds) * time.Second
}

// membershipGuard blocks access to a trip-scoped sub-route for callers
// who are not a member of the :id trip in the parent group. expense,
// payment, receipt and export routes are membership-checked here rather
// than inside those packages, since "is the caller on this trip" is a
// property of trip.Service, not of any of theirs.
func membershipGuard(trips *trip.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, _ := c.Locals("user_id").(string)
		ok, err := trips.IsMember(c.Context(), c.Params("id"), callerID)
		if err != nil {
			return err
		}
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "not a member of this trip")
		}
		return c.Next()
	}
}

// invalidateBalanceOnWrite drops the cached balance for the :id trip
// after any non-GET request under an expense or payment subgroup
// succeeds, so the next balance read recomputes instead of serving a
// stale cached value from before the write.
func invalidateBalanceOnWrite(balances *balance.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if err == nil && c.Method() != fiber.MethodGet {
			balances.Invalidate(c.Context(), c.Params("id"))
		}
		return err
	}
}
