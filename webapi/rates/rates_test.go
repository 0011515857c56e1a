package rates_test

import (
	"testing"

	"github.com/amirasaad/feescope/webapi/testutils"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLive(t *testing.T) {
	env := testutils.NewEnv(t, testutils.Options{})

	resp := env.MakeRequest(t, fiber.MethodGet, "/api/rates/live", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := testutils.Data(t, resp)
	assert.Equal(t, "USD/NGN", data["pair"])
	assert.Nil(t, data["rate"])
	assert.Empty(t, data["samples"])

	resp = env.MakeRequest(t, fiber.MethodPost, "/api/rates/live/refresh", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data = testutils.Data(t, resp)
	assert.InDelta(t, 1530.5, data["rate"], 1e-9)
	assert.Len(t, data["samples"], 1)
	assert.Nil(t, data["change_pct"])
}

func TestLive_Disabled(t *testing.T) {
	env := testutils.NewEnv(t, testutils.Options{NoWatcher: true})

	resp := env.MakeRequest(t, fiber.MethodGet, "/api/rates/live", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	resp = env.MakeRequest(t, fiber.MethodPost, "/api/rates/live/refresh", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestTable(t *testing.T) {
	env := testutils.NewEnv(t, testutils.Options{})

	resp := env.MakeRequest(t, fiber.MethodGet, "/api/rates", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := testutils.Data(t, resp)
	assert.Equal(t, "USD", data["base"])
	assert.InDelta(t, 1530.5, data["rates"].(map[string]any)["NGN"], 1e-9)

	resp = env.MakeRequest(t, fiber.MethodGet, "/api/rates?base=ngn", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data = testutils.Data(t, resp)
	assert.Equal(t, "NGN", data["base"])
	assert.InDelta(t, 1/1530.5, data["rates"].(map[string]any)["USD"], 1e-12)

	resp = env.MakeRequest(t, fiber.MethodGet, "/api/rates?base=JPY", "")
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	resp = env.MakeRequest(t, fiber.MethodGet, "/api/rates?base=YEN1", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
