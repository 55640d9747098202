package handler_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/hackmate-io/hackmate-api/internal/config"
	"github.com/hackmate-io/hackmate-api/internal/handler"
)

func TestHealthCheck(t *testing.T) {
	app := fiber.New()
	app.Get("/api/v1/health", handler.HealthCheck(config.Config{
		AppName: "HackMate API",
		AppEnv:  "test",
	}))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded struct {
		Success bool                   `json:"success"`
		Data    handler.HealthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &decoded))
	require.True(t, decoded.Success)
	require.Equal(t, "ok", decoded.Data.Status)
	require.Equal(t, "HackMate API", decoded.Data.Service)
	require.Equal(t, "test", decoded.Data.Environment)
}
