package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajkumar-hr-ps/webhook-poc/internal/apidocs"
	"github.com/rajkumar-hr-ps/webhook-poc/internal/config"
	"github.com/rajkumar-hr-ps/webhook-poc/internal/domain"
	"github.com/rajkumar-hr-ps/webhook-poc/internal/repo"
	"github.com/rajkumar-hr-ps/webhook-poc/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	store := repo.NewMemoryStore()
	docs, err := apidocs.Load(context.Background())
	require.NoError(t, err)
	srv := New(
		config.Config{Port: "0", CORSOrigins: []string{"*"}},
		zerolog.Nop(),
		service.NewWebhookService(store, zerolog.Nop()),
		service.NewRecordService(store, zerolog.Nop()),
		docs,
	)
	return srv.RegisterRoutes()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// seedScenario creates order 1 (total 237), payment 2 and held tickets 3-5.
func seedScenario(t *testing.T, h http.Handler) {
	t.Helper()
	w := do(t, h, http.MethodPost, "/seed", `{
		"orders": [{"total_amount": 237}],
		"payments": [{"order_id": "1", "amount": 237}],
		"tickets": [
			{"order_id": "1", "unit_price": 79},
			{"order_id": "1", "unit_price": 79},
			{"order_id": "1", "unit_price": 79}
		]
	}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestWebhook_CompletedConfirmsOrder(t *testing.T) {
	h := newTestHandler(t)
	seedScenario(t, h)

	w := do(t, h, http.MethodPost, "/webhook",
		`{"payment_id":"2","status":"completed","amount":237,"webhook_event_id":"evt_004"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received":true,"payment_status":"completed"}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/orders/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"1","total_amount":237,"status":"confirmed","payment_status":"paid"}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/tickets?order_id=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var tickets []domain.Ticket
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tickets))
	require.Len(t, tickets, 3)
	for _, tk := range tickets {
		assert.Equal(t, domain.TicketConfirmed, tk.Status)
	}

	w = do(t, h, http.MethodGet, "/payments/2", "")
	require.Equal(t, http.StatusOK, w.Code)
	var payment domain.Payment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payment))
	assert.Equal(t, domain.PaymentCompleted, payment.Status)
	assert.NotNil(t, payment.ProcessedAt)
}

func TestWebhook_Duplicate(t *testing.T) {
	h := newTestHandler(t)
	seedScenario(t, h)
	body := `{"payment_id":"2","status":"completed","amount":237,"webhook_event_id":"evt_003"}`

	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/webhook", body).Code)
	w := do(t, h, http.MethodPost, "/webhook", body)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received":true,"duplicate":true}`, w.Body.String())
}

func TestWebhook_Ignored(t *testing.T) {
	h := newTestHandler(t)
	seedScenario(t, h)
	do(t, h, http.MethodPost, "/webhook",
		`{"payment_id":"2","status":"completed","amount":237,"webhook_event_id":"evt_a"}`)

	w := do(t, h, http.MethodPost, "/webhook",
		`{"payment_id":"2","status":"pending","amount":237,"webhook_event_id":"evt_005"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		`{"received":true,"ignored":true,"reason":"cannot transition from 'completed' to 'pending'"}`,
		w.Body.String())
}

func TestWebhook_Rejections(t *testing.T) {
	h := newTestHandler(t)
	seedScenario(t, h)

	w := do(t, h, http.MethodPost, "/webhook",
		`{"payment_id":"999","status":"completed","amount":100,"webhook_event_id":"evt_001"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"payment not found"}`, w.Body.String())

	w = do(t, h, http.MethodPost, "/webhook",
		`{"payment_id":"2","status":"completed","amount":100,"webhook_event_id":"evt_002"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"payment amount does not match order total"}`, w.Body.String())

	// both rejected events were still logged
	w = do(t, h, http.MethodGet, "/webhook-logs", "")
	require.Equal(t, http.StatusOK, w.Code)
	var logs []domain.WebhookLog
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &logs))
	assert.Len(t, logs, 2)

	w = do(t, h, http.MethodGet, "/payments/2", "")
	assert.Contains(t, w.Body.String(), `"status":"pending"`)
}

func TestWebhook_MalformedPayload(t *testing.T) {
	h := newTestHandler(t)

	for _, body := range []string{
		`not json`,
		`{"payment_id":"2","status":"completed","webhook_event_id":"evt"}`,
		`{"payment_id":"2","status":"completed","amount":1}`,
		`{"payment_id":"2","amount":1,"webhook_event_id":"evt"}`,
	} {
		w := do(t, h, http.MethodPost, "/webhook", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Contains(t, w.Body.String(), "invalid webhook payload")
	}

	w := do(t, h, http.MethodGet, "/webhook-logs", "")
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestWebhook_EmptyStatusIsLoggedAndIgnored(t *testing.T) {
	h := newTestHandler(t)
	seedScenario(t, h)

	w := do(t, h, http.MethodPost, "/webhook",
		`{"payment_id":"2","status":"","amount":237,"webhook_event_id":"evt_empty"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		`{"received":true,"ignored":true,"reason":"cannot transition from 'pending' to ''"}`,
		w.Body.String())

	w = do(t, h, http.MethodGet, "/webhook-logs?webhook_event_id=evt_empty", "")
	var logs []domain.WebhookLog
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &logs))
	require.Len(t, logs, 1)
	assert.Equal(t, domain.PaymentStatus(""), logs[0].Status)
}

func TestWebhook_NumericPaymentID(t *testing.T) {
	h := newTestHandler(t)
	seedScenario(t, h)

	w := do(t, h, http.MethodPost, "/webhook",
		`{"payment_id":2,"status":"completed","amount":237,"webhook_event_id":"evt_num"}`)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"received":true,"payment_status":"completed"}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/webhook-logs?webhook_event_id=evt_num", "")
	var logs []domain.WebhookLog
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &logs))
	require.Len(t, logs, 1)
	assert.Equal(t, "2", logs[0].PaymentID)

	for _, body := range []string{
		`{"payment_id":true,"status":"completed","amount":237,"webhook_event_id":"evt_bool"}`,
		`{"payment_id":null,"status":"completed","amount":237,"webhook_event_id":"evt_null"}`,
	} {
		w = do(t, h, http.MethodPost, "/webhook", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestLookups_NotFound(t *testing.T) {
	h := newTestHandler(t)

	for _, path := range []string{"/orders/1", "/payments/1"} {
		w := do(t, h, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.JSONEq(t, `{"error":"not found"}`, w.Body.String())
	}
}

func TestTickets_RequiresOrderID(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, http.MethodGet, "/tickets", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"order_id query param required"}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/tickets?order_id=42", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestWebhookLogs_FilterByEventID(t *testing.T) {
	h := newTestHandler(t)
	seedScenario(t, h)
	do(t, h, http.MethodPost, "/webhook",
		`{"payment_id":"2","status":"processing","amount":237,"webhook_event_id":"evt_008_logged"}`)

	w := do(t, h, http.MethodGet, "/webhook-logs?webhook_event_id=evt_008_logged", "")
	require.Equal(t, http.StatusOK, w.Code)
	var logs []domain.WebhookLog
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &logs))
	require.Len(t, logs, 1)
	assert.Equal(t, "evt_008_logged", logs[0].WebhookEventID)
	assert.Equal(t, "2", logs[0].PaymentID)

	w = do(t, h, http.MethodGet, "/webhook-logs?webhook_event_id=nope", "")
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestSeed_EchoesOnlySuppliedCollections(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, http.MethodPost, "/seed", `{"orders":[{"total_amount":10}]}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t,
		`{"orders":[{"id":"1","total_amount":10,"status":"pending","payment_status":"pending"}]}`,
		w.Body.String())

	w = do(t, h, http.MethodPost, "/seed", "")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{}`, w.Body.String())
}

func TestReset(t *testing.T) {
	h := newTestHandler(t)
	seedScenario(t, h)

	w := do(t, h, http.MethodPost, "/reset", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"reset complete"}`, w.Body.String())

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/orders/1", "").Code)
}

func TestHealthAndDocs(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"driver":"memory"`)

	w = do(t, h, http.MethodGet, "/api-docs.json", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"/webhook"`)
}

func TestSwaggerUI(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, http.MethodGet, "/api-docs", "")
	assert.Equal(t, http.StatusMovedPermanently, w.Code)
	location := w.Header().Get("Location")
	assert.Equal(t, swaggerUIPath+"/index.html", location)

	w = do(t, h, http.MethodGet, location, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "swagger-ui")
	assert.Contains(t, w.Body.String(), "api-docs.json")
}

func TestRequestID(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, http.MethodGet, "/health", "")
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get(requestIDHeader))
}

type brokenRecords struct {
	service.RecordService
}

func (brokenRecords) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return nil, errors.New("disk on fire")
}

func TestUnexpectedErrorIsHidden(t *testing.T) {
	srv := New(config.Config{}, zerolog.Nop(), nil, brokenRecords{}, nil)

	w := do(t, srv.RegisterRoutes(), http.MethodGet, "/orders/1", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, w.Body.String())
}
