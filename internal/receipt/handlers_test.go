package receipt

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestOCRHandlerReturnsParsedResult(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/ocr"), NewService(""))

	body, _ := json.Marshal(ocrRequest{RawText: "Shop\nTotal $10.00"})
	req := httptest.NewRequest(http.MethodPost, "/ocr", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected: %v %v", err, resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Total != 1000 {
		t.Fatalf("expected total 1000, got %d", result.Total)
	}
}

func TestOCRHandlerToleratesBadPayload(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/ocr"), NewService(""))

	req := httptest.NewRequest(http.MethodPost, "/ocr", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected: %v %v", err, resp.StatusCode)
	}
}
