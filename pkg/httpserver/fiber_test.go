package httpserver

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weathercast/pkg/observe"
)

func TestInitFiberServer_Health(t *testing.T) {
	app := InitFiberServer("test-app", observe.NewZapLogger("test-app", io.Discard))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/manage/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestInitFiberServer_ErrorHandler(t *testing.T) {
	var buf bytes.Buffer
	app := InitFiberServer("test-app", observe.NewZapLogger("test-app", &buf))

	app.Get("/teapot", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("boom")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/teapot", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"error":"short and stout"}`, string(body))
	assert.Empty(t, buf.String(), "client errors are not logged")

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/panic", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, buf.String(), "boom")
}

func TestInitFiberServer_BodyLimit(t *testing.T) {
	app := InitFiberServer("test-app", observe.NewZapLogger("test-app", io.Discard))
	app.Post("/echo", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("x", 128*1024)))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusRequestEntityTooLarge, resp.StatusCode)
}
