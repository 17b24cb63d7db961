package httptransport

import (
	"net/http"
	"strconv"

	dErrors "github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/domain-errors"
	audit "github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/audit"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/httputil"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/monitor"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/sentinel"
	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/requestcontext"
)

const defaultAdminLimit = 50

// RecentAuditResponse lists audit records, newest first.
type RecentAuditResponse struct {
	Records []audit.Record `json:"records"`
}

// RecentAlertsResponse lists escalated security alerts, newest first.
type RecentAlertsResponse struct {
	Alerts []monitor.Alert `json:"alerts"`
}

func (h *Handler) handleRecentAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit, err := parseLimit(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	records, err := h.recorder.Recent(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list audit records",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		if dErrors.Is(err, sentinel.ErrUnavailable) {
			httputil.WriteJSONError(w, http.StatusServiceUnavailable, "unavailable", "audit store does not support listing")
			return
		}
		httputil.WriteError(w, err)
		return
	}
	if records == nil {
		records = []audit.Record{}
	}
	httputil.WriteJSON(w, http.StatusOK, RecentAuditResponse{Records: records})
}

func (h *Handler) handleRecentAlerts(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	alerts := []monitor.Alert{}
	if h.alerts != nil {
		if recent := h.alerts.Recent(limit); recent != nil {
			alerts = recent
		}
	}
	httputil.WriteJSON(w, http.StatusOK, RecentAlertsResponse{Alerts: alerts})
}

func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultAdminLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, dErrors.NewField(dErrors.CodeBadRequest, "limit", "format", "limit must be a positive integer")
	}
	return n, nil
}
