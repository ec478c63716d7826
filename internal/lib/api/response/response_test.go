package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shophub/shop-api/internal/lib/api/response"
	"github.com/shophub/shop-api/internal/lib/apperr"
)

func writeError(debug bool, err error) (*httptest.ResponseRecorder, response.ErrorBody) {
	rr := httptest.NewRecorder()
	h := response.DebugErrors(debug)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, r, err)
	}))
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	var body response.ErrorBody
	_ = json.Unmarshal(rr.Body.Bytes(), &body)
	return rr, body
}

func TestError_KnownKind(t *testing.T) {
	rr, body := writeError(true, apperr.NotFound("Order not found"))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, "Order not found", body.Message)
	assert.Empty(t, body.Error)
	assert.Empty(t, body.Stack)
}

func TestError_CauseAndStack(t *testing.T) {
	cause := pkgerrors.New("pq: connection refused")

	rr, body := writeError(true, apperr.Internal("Error fetching orders", cause))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Error fetching orders", body.Message)
	assert.Equal(t, "pq: connection refused", body.Error)
	assert.Contains(t, body.Stack, "response_test")

	_, body = writeError(false, apperr.Internal("Error fetching orders", cause))
	assert.Equal(t, "pq: connection refused", body.Error)
	assert.Empty(t, body.Stack)
}

func TestError_UnknownBecomesInternal(t *testing.T) {
	rr, body := writeError(false, assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Internal server error", body.Message)
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	rr := httptest.NewRecorder()
	response.NotFound(rr, httptest.NewRequest(http.MethodGet, "/api/nope?x=1", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	var msg response.MessageBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &msg))
	assert.Equal(t, "Not Found - /api/nope?x=1", msg.Message)

	rr = httptest.NewRecorder()
	response.MethodNotAllowed(rr, httptest.NewRequest(http.MethodPatch, "/api/cart", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &msg))
	assert.Equal(t, "Method Not Allowed - PATCH /api/cart", msg.Message)
}
