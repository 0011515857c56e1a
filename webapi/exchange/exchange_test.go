package exchange_test

import (
	"testing"

	"github.com/amirasaad/feescope/webapi/testutils"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert(t *testing.T) {
	env := testutils.NewEnv(t, testutils.Options{})

	resp := env.MakeRequest(t, fiber.MethodGet, "/api/exchange/convert?from=usd&to=NGN&amount=10", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := testutils.Data(t, resp)
	assert.Equal(t, "USD", data["from"])
	assert.Equal(t, "NGN", data["to"])
	assert.InDelta(t, 15305.0, data["converted"], 1e-9)
	assert.Equal(t, "₦15,305.00", data["display"])
	assert.Equal(t, "2025-09-01", data["date"])

	resp = env.MakeRequest(t, fiber.MethodGet, "/api/exchange/convert?from=EUR&to=GBP&amount=92", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.InDelta(t, 79.0, testutils.Data(t, resp)["converted"], 1e-9)
}

func TestConvert_Errors(t *testing.T) {
	env := testutils.NewEnv(t, testutils.Options{})

	tests := []struct {
		name   string
		query  string
		status int
	}{
		{"zero amount", "from=USD&to=NGN&amount=0", fiber.StatusBadRequest},
		{"missing currency", "from=USD&amount=5", fiber.StatusBadRequest},
		{"same currency", "from=USD&to=USD&amount=5", fiber.StatusBadRequest},
		{"malformed amount", "from=USD&to=NGN&amount=lots", fiber.StatusBadRequest},
		{"malformed code", "from=US&to=NGN&amount=5", fiber.StatusUnprocessableEntity},
		{"unsupported pair", "from=USD&to=JPY&amount=5", fiber.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.MakeRequest(t, fiber.MethodGet, "/api/exchange/convert?"+tt.query, "")
			assert.Equal(t, tt.status, resp.StatusCode)
			problem := testutils.Decode(t, resp)
			assert.NotEmpty(t, problem["title"])
		})
	}
}
