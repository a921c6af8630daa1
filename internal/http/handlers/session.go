package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/garra-os/backend/internal/auth"
	"github.com/garra-os/backend/internal/models"
	"github.com/garra-os/backend/internal/photos"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string            `json:"access_token"`
	ExpiresIn   int64             `json:"expires_in"`
	Technician  models.Technician `json:"technician"`
}

// @Summary Log in with the technician credential pair
// @Tags session
// @Accept json
// @Produce json
// @Success 200 {object} LoginResponse
// @Failure 401 {object} map[string]any
// @Router /api/session/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	token, err := h.Auth.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			// Screen stays LOGIN; retry is simply re-submission.
			writeError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Credenciais inválidas. Tente tech@garra.gov.br / 123456", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "INTERNAL", "Failed to issue token", err.Error())
		return
	}

	if err := h.Session.CompleteLogin(); err != nil {
		// Already past LOGIN: re-issuing a token is harmless, the screen
		// pointer is simply left where it is.
		h.Logger.Debug().Err(err).Msg("login on active session")
	}

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(h.Auth.TokenTTL().Seconds()),
		Technician:  h.Session.Technician(),
	})
}

// @Summary Current session state
// @Tags session
// @Produce json
// @Success 200 {object} session.State
// @Router /api/session [get]
func (h *Handler) SessionState(c *gin.Context) {
	c.JSON(http.StatusOK, h.Session.State())
}

func (h *Handler) SelectOrder(c *gin.Context) {
	order, err := h.Session.SelectOrder(c.Param("id"))
	if err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"screen": h.Session.Screen(), "order": order})
}

func (h *Handler) Back(c *gin.Context) {
	screen, err := h.Session.Back()
	if err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"screen": screen})
}

func (h *Handler) OpenManager(c *gin.Context) {
	if err := h.Session.OpenManager(); err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"screen": h.Session.Screen()})
}

type StartServiceRequest struct {
	ServiceName string `json:"service_name"`
}

// @Summary Start the selected service order
// @Tags session
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 409 {object} map[string]any
// @Router /api/session/start [post]
func (h *Handler) StartService(c *gin.Context) {
	var req StartServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	order, err := h.Session.StartService(req.ServiceName)
	if err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"screen": h.Session.Screen(), "order": order})
}

// @Summary Stage a before/after photo for the active execution
// @Tags session
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "photo file"
// @Param type formData string true "BEFORE or AFTER"
// @Success 201 {object} photos.Handle
// @Router /api/session/photos [post]
func (h *Handler) StagePhoto(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "photo file required", nil)
		return
	}
	typ := models.PhotoType(c.PostForm("type"))

	f, err := file.Open()
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "cannot read photo", err.Error())
		return
	}
	defer f.Close()
	payload, err := io.ReadAll(f)
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "cannot read photo", err.Error())
		return
	}

	handle, err := h.Session.StagePhoto(payload, typ)
	if err != nil {
		if errors.Is(err, photos.ErrInvalidType) || errors.Is(err, photos.ErrEmptyPhoto) {
			writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
			return
		}
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handle)
}

func (h *Handler) DropPhoto(c *gin.Context) {
	if !h.Session.DropPhoto(c.Param("id")) {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Photo not found", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ServePhoto streams a staged photo's bytes. Handles only live for the
// duration of the execution session.
func (h *Handler) ServePhoto(c *gin.Context) {
	payload, _, ok := h.Photos.Get(c.Param("id"))
	if !ok {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Photo not found", nil)
		return
	}
	c.Data(http.StatusOK, "application/octet-stream", payload)
}

type FinishExecutionRequest struct {
	Solution string `json:"solution"`
	Parts    string `json:"parts"`
}

// @Summary Finish execution, staging the result for predictive confirmation
// @Tags session
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/session/finish [post]
func (h *Handler) FinishExecution(c *gin.Context) {
	var req FinishExecutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Session.FinishExecution(req.Solution, req.Parts); err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"screen": h.Session.Screen()})
}

type PredictiveRequest struct {
	HealthStatus models.HealthStatus `json:"health_status"`
}

// @Summary Confirm the predictive health rating and complete the order
// @Tags session
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/session/predictive [post]
func (h *Handler) CompletePredictive(c *gin.Context) {
	var req PredictiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	order, err := h.Session.CompletePredictive(req.HealthStatus)
	if err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"screen": h.Session.Screen(), "order": order})
}

func (h *Handler) GoHome(c *gin.Context) {
	if err := h.Session.GoHome(); err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"screen": h.Session.Screen()})
}
