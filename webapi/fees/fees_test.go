package fees_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/amirasaad/feescope/webapi/testutils"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	env := testutils.NewEnv(t, testutils.Options{})

	tests := []struct {
		name     string
		body     string
		computed float64
		clamped  string
	}{
		{"percent within bounds", `{"fee":"1.5% ($1 – $5)","amount":100,"currency":"USD"}`, 1.5, ""},
		{"percent capped", `{"fee":"1.5% ($1 – $5)","amount":1000,"currency":"usd"}`, 5, "max"},
		{"percent floored", `{"fee":"1.5% ($1 – $5)","amount":10,"currency":"USD"}`, 1, "min"},
		{"fixed converted", `{"fee":"$5","amount":100,"currency":"NGN"}`, 7652.5, ""},
		{"free", `{"fee":"FREE","amount":100,"currency":"NGN"}`, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.MakeRequest(t, fiber.MethodPost, "/api/fees/evaluate", tt.body)
			require.Equal(t, fiber.StatusOK, resp.StatusCode)
			data := testutils.Data(t, resp)
			result := data["result"].(map[string]any)
			assert.InDelta(t, tt.computed, result["computed"], 1e-9)
			if tt.clamped != "" {
				assert.Equal(t, tt.clamped, result["clamped"])
			}
		})
	}
}

func TestEvaluate_ReportsRateSource(t *testing.T) {
	env := testutils.NewEnv(t, testutils.Options{})
	resp := env.MakeRequest(t, fiber.MethodPost, "/api/fees/evaluate", `{"fee":"$5","amount":100,"currency":"NGN"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := testutils.Data(t, resp)
	assert.Equal(t, "fixture", data["rates_source"])
	assert.NotEmpty(t, data["rates_as_of"])
}

func TestEvaluate_UncomputableIsNotAnError(t *testing.T) {
	env := testutils.NewEnv(t, testutils.Options{})

	resp := env.MakeRequest(t, fiber.MethodPost, "/api/fees/evaluate", `{"fee":"Contact sales","amount":100,"currency":"USD"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := testutils.Data(t, resp)
	result := data["result"].(map[string]any)
	assert.Nil(t, result["computed"])
	assert.Equal(t, "Contact sales", result["display"])
	assert.NotEmpty(t, data["issues"])

	resp = env.MakeRequest(t, fiber.MethodPost, "/api/fees/evaluate", `{"fee":"2%","amount":-5,"currency":"USD"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	result = testutils.Data(t, resp)["result"].(map[string]any)
	assert.Nil(t, result["computed"])
}

func TestEvaluate_BadRequest(t *testing.T) {
	env := testutils.NewEnv(t, testutils.Options{})

	tests := []struct {
		body      string
		wantTitle string
	}{
		{`{"fee":"2%","amount":100}`, "Validation failed"},
		{`{"fee":"2%","amount":100,"currency":"US"}`, "Validation failed"},
		{`{"fee":`, "Invalid request body"},
	}
	for _, tt := range tests {
		resp := env.MakeRequest(t, fiber.MethodPost, "/api/fees/evaluate", tt.body)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, tt.body)
		problem := testutils.Decode(t, resp)
		assert.EqualValues(t, fiber.StatusBadRequest, problem["status"])
		assert.Equal(t, tt.wantTitle, problem["title"], tt.body)
	}
}

func TestEstimate_BadRequest(t *testing.T) {
	env := testutils.NewEnv(t, testutils.Options{})

	resp := env.MakeRequest(t, fiber.MethodPost, "/api/fees/estimate", `{"user_type":"partner","amount":1,"currency":"USD"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	problem := testutils.Decode(t, resp)
	assert.Equal(t, "Validation failed", problem["title"])
}

func TestEstimate(t *testing.T) {
	env := testutils.NewEnv(t, testutils.Options{})

	resp := env.MakeRequest(t, fiber.MethodPost, "/api/fees/estimate", `{
		"user_type": "business",
		"section": "Business Collections",
		"service": "Card Collections",
		"amount": 1000,
		"currency": "USD"
	}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := testutils.Data(t, resp)
	assert.Equal(t, "Business", data["user_type"])
	entry := data["entry"].(map[string]any)
	assert.Equal(t, "Local and international cards", entry["Description"])
	assert.InDelta(t, 5.0, data["result"].(map[string]any)["computed"], 1e-9)
}

func TestEstimate_NotFound(t *testing.T) {
	env := testutils.NewEnv(t, testutils.Options{})

	for _, body := range []string{
		`{"section":"Business Collections","service":"Card Collections","amount":1,"currency":"USD"}`,
		`{"section":"Payout","service":"Carrier pigeon","amount":1,"currency":"USD"}`,
	} {
		resp := env.MakeRequest(t, fiber.MethodPost, "/api/fees/estimate", body)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode, body)
	}
}

func TestSchedule(t *testing.T) {
	env := testutils.NewEnv(t, testutils.Options{})

	resp := env.MakeRequest(t, fiber.MethodGet, "/api/fees/schedule", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Data []struct {
			Name  string `json:"name"`
			Items []struct {
				Label   string `json:"label"`
				Summary string `json:"summary"`
			} `json:"items"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.Data)
	names := make([]string, 0, len(body.Data))
	for _, s := range body.Data {
		names = append(names, s.Name)
	}
	assert.Contains(t, names, "Payout")
	assert.NotContains(t, names, "Business Collections")

	resp = env.MakeRequest(t, fiber.MethodGet, "/api/fees/schedule?user_type=partner", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Validation failed", testutils.Decode(t, resp)["title"])
}

func TestParse(t *testing.T) {
	env := testutils.NewEnv(t, testutils.Options{})

	resp := env.MakeRequest(t, fiber.MethodGet, "/api/fees/parse?fee=FREE", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rule := testutils.Data(t, resp)["rule"].(map[string]any)
	assert.Equal(t, true, rule["is_free"])
}
