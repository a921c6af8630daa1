package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/garra-os/backend/internal/auth"
	"github.com/garra-os/backend/internal/maplink"
	"github.com/garra-os/backend/internal/photos"
	"github.com/garra-os/backend/internal/session"
	"github.com/garra-os/backend/internal/store"
)

type Handler struct {
	Store     *store.Store
	Session   *session.Controller
	Auth      *auth.Service
	Photos    *photos.Registry
	Links     maplink.Builder
	Validator *validator.Validate
	Logger    zerolog.Logger
}

func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "orders": h.Store.Len()})
}

// @Summary Logged-in technician
// @Tags technician
// @Produce json
// @Success 200 {object} models.Technician
// @Router /api/technician [get]
func (h *Handler) Technician(c *gin.Context) {
	c.JSON(http.StatusOK, h.Session.Technician())
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// writeSessionError maps controller errors onto the API error envelope.
// Triggers that do not apply to the current screen leave all state untouched
// and surface as a conflict carrying the current screen.
func writeSessionError(c *gin.Context, err error) {
	var wrong *session.WrongScreenError
	switch {
	case errors.As(err, &wrong):
		writeError(c, http.StatusConflict, "INVALID_STATE", wrong.Error(), gin.H{"screen": wrong.Current})
	case errors.Is(err, session.ErrOrderNotFound):
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Order not found", nil)
	case errors.Is(err, session.ErrNoSelection):
		writeError(c, http.StatusConflict, "INVALID_STATE", err.Error(), nil)
	case errors.Is(err, session.ErrMissingSolution),
		errors.Is(err, session.ErrMissingParts),
		errors.Is(err, session.ErrMissingPhotos),
		errors.Is(err, session.ErrMissingRating),
		errors.Is(err, session.ErrNothingStaged):
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
	default:
		writeError(c, http.StatusInternalServerError, "INTERNAL", "Unexpected error", err.Error())
	}
}
