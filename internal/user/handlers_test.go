package user

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tripledger/internal/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
)

func newTestApp(svc *Service) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: apperr.FiberHandler})
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", "user-1")
		return c.Next()
	})
	RegisterRoutes(app.Group("/users"), svc)
	return app
}

func TestSearchHandler(t *testing.T) {
	mock, _ := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, email, username, full_name, avatar_url, created_at`).
		WithArgs("%ali%").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "username", "full_name", "avatar_url", "created_at"}).
			AddRow("user-1", "a@b.com", "alice", "Alice", "", time.Now()))

	app := newTestApp(NewService(mock))
	req := httptest.NewRequest(http.MethodGet, "/users/search?q=ali", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected: %v %v", err, resp.StatusCode)
	}
}

func TestSearchHandlerValidation(t *testing.T) {
	app := newTestApp(NewService(nil))
	req := httptest.NewRequest(http.MethodGet, "/users/search", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request, got %v", resp.StatusCode)
	}
}

func TestMeHandler(t *testing.T) {
	mock, _ := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, email, username, full_name, avatar_url, created_at FROM users WHERE id`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "username", "full_name", "avatar_url", "created_at"}).
			AddRow("user-1", "a@b.com", "alice", "Alice", "", time.Now()))

	app := newTestApp(NewService(mock))
	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected: %v %v", err, resp.StatusCode)
	}
}
