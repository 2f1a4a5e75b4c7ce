package handler

import (
	"log/slog"
	"net/http"

	"gorm.io/gorm"

	"github.com/EdDevbr/FluxTotemBackEnd/internal/http/response"
)

type HealthHandler struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewHealthHandler(db *gorm.DB, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{db: db, logger: logger}
}

func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if h.db != nil {
		sqlDB, err := h.db.DB()
		if err == nil {
			err = sqlDB.PingContext(r.Context())
		}
		if err != nil {
			h.logger.Error("health check: database ping failed", "error", err)
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}
	response.JSON(w, r, code, map[string]string{"status": status})
}
