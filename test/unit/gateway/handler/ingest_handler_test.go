package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"agentstack/pipeline/internal/infrastructure/config"
	"agentstack/pipeline/internal/infrastructure/logger"
	"agentstack/pipeline/internal/infrastructure/validator"
	deliveryhttp "agentstack/pipeline/internal/modules/gateway/delivery/http"
	"agentstack/pipeline/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	projectID string
	err       error
}

func (f *fakeAuth) Verify(ctx context.Context, apiKey string) (string, error) {
	return f.projectID, f.err
}

func setupTestApp(t *testing.T, auth deliveryhttp.AuthVerifier) *fiber.App {
	t.Helper()
	return setupTestAppWithConfig(t, auth, &config.GatewayConfig{MaxBodyBytes: 1024})
}

func setupTestAppWithConfig(t *testing.T, auth deliveryhttp.AuthVerifier, cfg *config.GatewayConfig) *fiber.App {
	t.Helper()

	log := logger.NewNoOpLogger()
	val := validator.NewPlaygroundValidator()
	handler := deliveryhttp.NewHandler(cfg, log, val, auth, nil, "spans.ingest")

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			errCode := "ERR_500"
			if e, ok := err.(*apperror.AppError); ok {
				code = e.GetHttpStatus()
				errCode = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error_code": errCode})
		},
	})
	app.Post("/v1/traces", handler.Ingest)
	return app
}

func doPost(t *testing.T, app *fiber.App, apiKey string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/v1/traces", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	rec.Code = resp.StatusCode
	b, _ := io.ReadAll(resp.Body)
	rec.Body = bytes.NewBuffer(b)
	return rec
}

func TestIngest_MissingAPIKeyIsUnauthorized(t *testing.T) {
	// Arrange
	app := setupTestApp(t, &fakeAuth{projectID: "proj-1"})

	// Act
	resp := doPost(t, app, "", []byte(`{"spans":[]}`))

	// Assert
	assert.Equal(t, fiber.StatusUnauthorized, resp.Code)
}

func TestIngest_UnknownAPIKeyIsUnauthorized(t *testing.T) {
	// Arrange
	app := setupTestApp(t, &fakeAuth{projectID: ""})

	// Act
	resp := doPost(t, app, "bad-key", []byte(`{"spans":[]}`))

	// Assert
	assert.Equal(t, fiber.StatusUnauthorized, resp.Code)
}

func TestIngest_BodyOverMaxBytesIsRejected(t *testing.T) {
	// Arrange
	app := setupTestApp(t, &fakeAuth{projectID: "proj-1"})
	oversized := bytes.Repeat([]byte("a"), 2048)

	// Act
	resp := doPost(t, app, "good-key", oversized)

	// Assert
	assert.Equal(t, fiber.StatusRequestEntityTooLarge, resp.Code)
}

func TestIngest_MalformedJSONIsRejected(t *testing.T) {
	// Arrange
	app := setupTestApp(t, &fakeAuth{projectID: "proj-1"})

	// Act
	resp := doPost(t, app, "good-key", []byte("not json"))

	// Assert
	assert.Equal(t, fiber.StatusBadRequest, resp.Code)
}

func TestIngest_InvalidSpansAreDroppedWithoutTouchingTheLog(t *testing.T) {
	// Arrange: DLog is nil in setupTestApp, so this only passes if the
	// handler never reaches the Append step for an all-invalid batch.
	app := setupTestApp(t, &fakeAuth{projectID: "proj-1"})
	badSpan := map[string]any{
		"trace_id": "", // required, fails validation
		"span_id":  "",
		"name":     "",
	}
	body, err := json.Marshal(map[string]any{"spans": []any{badSpan}})
	require.NoError(t, err)

	// Act
	resp := doPost(t, app, "good-key", body)

	// Assert
	assert.Equal(t, fiber.StatusAccepted, resp.Code)
	var out map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	data := out["data"].(map[string]any)
	assert.EqualValues(t, 0, data["queued_count"])
}

func TestIngest_BatchOverMaxSpansIsRejected(t *testing.T) {
	// Arrange
	cfg := &config.GatewayConfig{MaxBodyBytes: 1 << 20, MaxSpansPerBatch: 2}
	app := setupTestAppWithConfig(t, &fakeAuth{projectID: "proj-1"}, cfg)
	badSpan := map[string]any{"trace_id": "", "span_id": "", "name": ""}
	body, err := json.Marshal(map[string]any{"spans": []any{badSpan, badSpan, badSpan}})
	require.NoError(t, err)

	// Act
	resp := doPost(t, app, "good-key", body)

	// Assert
	assert.Equal(t, fiber.StatusBadRequest, resp.Code)
}

func TestIngest_AcceptsBareArrayShape(t *testing.T) {
	// Arrange
	app := setupTestApp(t, &fakeAuth{projectID: "proj-1"})
	badSpan := map[string]any{"trace_id": "", "span_id": "", "name": ""}
	body, err := json.Marshal([]any{badSpan})
	require.NoError(t, err)

	// Act
	resp := doPost(t, app, "good-key", body)

	// Assert
	assert.Equal(t, fiber.StatusAccepted, resp.Code)
}
