package httptransport

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/internal/pipeline"
	dErrors "github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/domain-errors"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/httputil"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/validation"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/requestcontext"
)

// RecordPipeline protects records before the storefront persists them and
// reveals them again on read.
type RecordPipeline interface {
	Write(ctx context.Context, req pipeline.WriteRequest) (*pipeline.WriteResult, error)
	Read(ctx context.Context, req pipeline.ReadRequest) (map[string]any, error)
}

// RecordResponse carries a record and its identifier.
type RecordResponse struct {
	ID       string         `json:"id"`
	Resource string         `json:"resource"`
	Record   map[string]any `json:"record"`
}

// handleProtect validates and encrypts a record for the caller to store.
// The caller keeps the returned record verbatim; ?id= marks an update.
func (h *Handler) handleProtect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	raw := chi.URLParam(r, "resource")
	rt, err := validation.ParseResourceType(raw)
	if err != nil {
		h.validation.ObserveRejection(validation.ResourceType(raw), err)
		httputil.WriteError(w, err)
		return
	}
	body, err := httputil.DecodeJSON(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	id := r.URL.Query().Get("id")
	action := "UPDATE"
	if id == "" {
		action = "CREATE"
	}

	res, err := h.pipeline.Write(ctx, pipeline.WriteRequest{
		Resource:   rt,
		Action:     action,
		ResourceID: id,
		Payload:    body,
		Persist: func(context.Context, map[string]any) (string, error) {
			if id != "" {
				return id, nil
			}
			return uuid.NewString(), nil
		},
	})
	if err != nil {
		h.logger.WarnContext(ctx, "record rejected",
			"request_id", requestcontext.RequestID(ctx),
			"resource", rt,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	status := http.StatusCreated
	if action == "UPDATE" {
		status = http.StatusOK
	}
	httputil.WriteJSON(w, status, RecordResponse{ID: res.ResourceID, Resource: string(rt), Record: res.Stored})
}

// handleReveal decrypts a stored record for an authenticated actor.
func (h *Handler) handleReveal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if requestcontext.ActorID(ctx) == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	rt, err := validation.ParseResourceType(chi.URLParam(r, "resource"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	body, err := httputil.DecodeJSON(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	stored, ok := body["record"].(map[string]any)
	if !ok {
		httputil.WriteError(w, dErrors.NewField(dErrors.CodeBadRequest, "record", "type", "record must be a JSON object"))
		return
	}

	id := chi.URLParam(r, "id")
	plain, err := h.pipeline.Read(ctx, pipeline.ReadRequest{Resource: string(rt), ResourceID: id, Stored: stored})
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to reveal record",
			"request_id", requestcontext.RequestID(ctx),
			"resource", rt,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, RecordResponse{ID: id, Resource: string(rt), Record: plain})
}
