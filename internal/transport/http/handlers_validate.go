package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/httputil"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/validation"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/requestcontext"
)

// ValidateResponse echoes the normalized payload. Password fields are
// validated but never echoed.
type ValidateResponse struct {
	Resource validation.ResourceType `json:"resource"`
	Data     map[string]any          `json:"data"`
}

// handleValidate runs a storefront form through the validator so clients
// see the same normalization and errors the write path applies.
func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	rt, err := validation.ParseResourceType(chi.URLParam(r, "resource"))
	if err != nil {
		h.validation.ObserveRejection(validation.ResourceType(chi.URLParam(r, "resource")), err)
		httputil.WriteError(w, err)
		return
	}

	body, err := httputil.DecodeJSON(r)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid validate request",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	input, err := validation.Validate(rt, body)
	if err != nil {
		h.validation.ObserveRejection(rt, err)
		h.logger.DebugContext(ctx, "payload rejected",
			"request_id", requestID,
			"resource", rt,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ValidateResponse{Resource: rt, Data: withoutPasswords(rt, input)})
}

func withoutPasswords(rt validation.ResourceType, input validation.Input) map[string]any {
	out := make(map[string]any, len(input))
	for k, v := range input {
		out[k] = v
	}
	schema, _ := validation.SchemaFor(rt)
	for _, f := range schema.Fields {
		if f.Kind == validation.KindPassword {
			delete(out, f.Name)
		}
	}
	return out
}
