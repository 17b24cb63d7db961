package httptransport

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/internal/pipeline"
	audit "github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/audit"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/audit/recorder"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/audit/store/memory"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/fieldcrypt"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/testutil"
)

func newRecordsHandler(t *testing.T, secret string) (*Handler, *memory.Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.New()
	rec, err := recorder.New(store, recorder.WithLogger(logger))
	require.NoError(t, err)
	crypt, err := fieldcrypt.New(secret, fieldcrypt.WithLogger(logger))
	require.NoError(t, err)
	pipe, err := pipeline.New(crypt, rec, pipeline.WithLogger(logger))
	require.NoError(t, err)
	return &Handler{logger: logger, recorder: rec, pipeline: pipe}, store
}

func withRouteParams(req *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestHandleProtect_UpdateKeepsIDAndRequestContext(t *testing.T) {
	h, store := newRecordsHandler(t, testSecret)
	at := time.Date(2026, 10, 2, 9, 30, 0, 0, time.UTC)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/v1/records/registration?id=user-5", map[string]any{
		"email": "new@example.com", "password": "longenough", "name": "Ravi", "address": "7 Hill Road",
	})
	req = withRouteParams(req, "resource", "registration")
	req = testutil.WithActor(req, "user-5")
	req = testutil.WithClient(req, "198.51.100.20", "Mozilla/5.0")
	req = testutil.WithTime(req, at)

	rr := testutil.DoRequest(http.HandlerFunc(h.handleProtect), req)
	testutil.AssertStatusOK(t, rr)
	resp := testutil.UnmarshalResponse[RecordResponse](t, rr)
	assert.Equal(t, "user-5", resp.ID)
	assert.NotEqual(t, "7 Hill Road", resp.Record["address"])

	records := store.All()
	require.Len(t, records, 1)
	assert.Equal(t, "UPDATE", records[0].Action)
	assert.Equal(t, "user-5", records[0].ActorID)
	assert.Equal(t, "198.51.100.20", records[0].SourceAddress)
	assert.Equal(t, "Mozilla/5.0", records[0].UserAgent)
	assert.True(t, at.Equal(records[0].Timestamp))
}

func TestHandleProtect_MissingKeyIsMasked(t *testing.T) {
	h, store := newRecordsHandler(t, "")

	req := testutil.NewJSONRequest(t, http.MethodPost, "/v1/records/order", map[string]any{
		"items":           []map[string]any{{"productId": "3f1c1d7e-9a4b-4c52-8f0e-2b7a9d6c1e55", "quantity": 1}},
		"shippingAddress": "42 Park Street",
		"phone":           "9830012345",
	})
	rr := testutil.DoRequest(http.HandlerFunc(h.handleProtect), withRouteParams(req, "resource", "order"))

	testutil.AssertStatusAndError(t, rr, http.StatusInternalServerError, "internal_error")
	require.Len(t, store.All(), 1)
	assert.Equal(t, audit.OutcomeFailure, store.All()[0].Outcome)
}

func TestHandleReveal_RecordMustBeObject(t *testing.T) {
	h, _ := newRecordsHandler(t, testSecret)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/v1/records/order/o-1/reveal", map[string]any{"record": "nope"})
	req = withRouteParams(req, "resource", "order", "id", "o-1")
	req = testutil.WithActor(req, "staff-1")

	rr := testutil.DoRequest(http.HandlerFunc(h.handleReveal), req)
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
}
