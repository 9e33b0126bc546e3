package adaptor

import (
	"net/http"

	"gastrotour/internal/usecase"
	"gastrotour/pkg/utils"

	"go.uber.org/zap"
)

type SystemHandler struct {
	service usecase.SystemService
	log     *zap.Logger
}

func NewSystemHandler(service usecase.SystemService, log *zap.Logger) *SystemHandler {
	return &SystemHandler{
		service: service,
		log:     log.With(zap.String("handler", "system")),
	}
}

// GetErrorLogs handles GET /api/admin/errors (admin only)
func (h *SystemHandler) GetErrorLogs(w http.ResponseWriter, r *http.Request) {
	limit := utils.ParseInt(r.URL.Query().Get("limit"), 50)

	logs, err := h.service.GetRecentErrors(r.Context(), limit)
	if err != nil {
		handleServiceError(w, h.log, err, "get error logs")
		return
	}

	utils.ResponseSuccess(w, "success", logs)
}
