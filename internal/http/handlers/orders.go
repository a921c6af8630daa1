package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/garra-os/backend/internal/maplink"
	"github.com/garra-os/backend/internal/models"
	"github.com/garra-os/backend/internal/store"
)

// @Summary List service orders
// @Tags orders
// @Produce json
// @Param status query string false "PENDING, IN_PROGRESS or COMPLETED"
// @Param priority query string false "HIGH, MEDIUM or LOW"
// @Param q query string false "free-text search over id, school and description"
// @Success 200 {object} map[string]any
// @Router /api/orders [get]
func (h *Handler) OrdersList(c *gin.Context) {
	f := store.Filter{
		Status:   models.OSStatus(c.Query("status")),
		Priority: models.OSPriority(c.Query("priority")),
		Query:    c.Query("q"),
	}
	if f.Status != "" && !f.Status.Valid() {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "unknown status filter", nil)
		return
	}
	if f.Priority != "" && !f.Priority.Valid() {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "unknown priority filter", nil)
		return
	}
	items := h.Store.List(f)
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

func (h *Handler) OrderDetails(c *gin.Context) {
	order, ok := h.Store.Get(c.Param("id"))
	if !ok {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Order not found", nil)
		return
	}
	c.JSON(http.StatusOK, order)
}

// @Summary Map deep-link for an order address
// @Tags orders
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/orders/{id}/map-link [get]
func (h *Handler) OrderMapLink(c *gin.Context) {
	order, ok := h.Store.Get(c.Param("id"))
	if !ok {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Order not found", nil)
		return
	}
	link, err := h.Links.Link(order.SchoolName, order.Address)
	if err == maplink.ErrEmptyAddress {
		writeError(c, http.StatusUnprocessableEntity, "INVALID_STATE", "Order has no address", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": link, "address": order.Address})
}

// OrderRequest is the manager create/update payload. The manager surface is
// an operator override: any status may be set directly and no cross-field
// validation is applied beyond required-field presence.
type OrderRequest struct {
	ID                  string            `json:"id"`
	SchoolName          string            `json:"school_name" validate:"required"`
	Description         string            `json:"description" validate:"required"`
	Address             string            `json:"address" validate:"required"`
	Contact             string            `json:"contact"`
	Priority            models.OSPriority `json:"priority" validate:"required"`
	Status              models.OSStatus   `json:"status"`
	LastVisitDate       string            `json:"last_visit_date"`
	LastVisitTechnician string            `json:"last_visit_technician"`
	LastVisitPhotoURL   string            `json:"last_visit_photo_url"`
	ServiceName         string            `json:"service_name"`
}

func (r OrderRequest) toOrder() models.ServiceOrder {
	return models.ServiceOrder{
		ID:                  r.ID,
		SchoolName:          r.SchoolName,
		Description:         r.Description,
		Address:             r.Address,
		Contact:             r.Contact,
		Priority:            r.Priority,
		Status:              r.Status,
		LastVisitDate:       r.LastVisitDate,
		LastVisitTechnician: r.LastVisitTechnician,
		LastVisitPhotoURL:   r.LastVisitPhotoURL,
		ServiceName:         r.ServiceName,
	}
}

// @Summary Create a service order
// @Tags orders
// @Accept json
// @Produce json
// @Success 201 {object} models.ServiceOrder
// @Failure 400 {object} map[string]any
// @Router /api/orders [post]
func (h *Handler) OrderCreate(c *gin.Context) {
	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	if !req.Priority.Valid() {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "unknown priority", nil)
		return
	}
	order := req.toOrder()
	if order.Status == "" {
		order.Status = models.StatusPending
	} else if !order.Status.Valid() {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "unknown status", nil)
		return
	}
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	h.Store.Create(order)
	h.Logger.Info().Str("order_id", order.ID).Msg("order created")
	c.JSON(http.StatusCreated, order)
}

// @Summary Replace a service order
// @Tags orders
// @Accept json
// @Produce json
// @Success 200 {object} models.ServiceOrder
// @Failure 404 {object} map[string]any
// @Router /api/orders/{id} [put]
func (h *Handler) OrderUpdate(c *gin.Context) {
	id := c.Param("id")
	existing, ok := h.Store.Get(id)
	if !ok {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Order not found", nil)
		return
	}
	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	if !req.Priority.Valid() {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "unknown priority", nil)
		return
	}
	order := req.toOrder()
	order.ID = id
	if order.Status == "" {
		order.Status = existing.Status
	} else if !order.Status.Valid() {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "unknown status", nil)
		return
	}
	// Replacing descriptive fields keeps the execution result of a completed
	// order intact.
	order.SolutionApplied = existing.SolutionApplied
	order.PartsUsed = existing.PartsUsed
	order.HealthStatus = existing.HealthStatus
	order.Photos = existing.Photos
	order.CompletionDate = existing.CompletionDate
	order.TechnicianName = existing.TechnicianName
	if order.LastVisitDate == "" {
		order.LastVisitDate = existing.LastVisitDate
	}
	if order.LastVisitTechnician == "" {
		order.LastVisitTechnician = existing.LastVisitTechnician
	}
	if order.LastVisitPhotoURL == "" {
		order.LastVisitPhotoURL = existing.LastVisitPhotoURL
	}
	if order.ServiceName == "" {
		order.ServiceName = existing.ServiceName
	}
	h.Store.Update(order)
	h.Session.RefreshSelection(id)
	c.JSON(http.StatusOK, order)
}

// @Summary Patch service order fields
// @Tags orders
// @Accept json
// @Produce json
// @Success 200 {object} models.ServiceOrder
// @Failure 404 {object} map[string]any
// @Router /api/orders/{id} [patch]
func (h *Handler) OrderPatch(c *gin.Context) {
	id := c.Param("id")
	var patch models.OrderPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if patch.Status != nil && !patch.Status.Valid() {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "unknown status", nil)
		return
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "unknown priority", nil)
		return
	}
	if !h.Store.Patch(id, patch) {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Order not found", nil)
		return
	}
	h.Session.RefreshSelection(id)
	order, _ := h.Store.Get(id)
	c.JSON(http.StatusOK, order)
}

// @Summary Delete a service order
// @Tags orders
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /api/orders/{id} [delete]
func (h *Handler) OrderDelete(c *gin.Context) {
	// Routed through the session controller so a selected order's deletion
	// also clears the selection.
	if !h.Session.DeleteOrder(c.Param("id")) {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Order not found", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary Clear an order's execution result, keeping the record
// @Tags orders
// @Produce json
// @Success 200 {object} models.ServiceOrder
// @Failure 404 {object} map[string]any
// @Router /api/orders/{id}/clear-execution [post]
func (h *Handler) OrderClearExecution(c *gin.Context) {
	id := c.Param("id")
	if !h.Store.ClearExecutionResult(id) {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Order not found", nil)
		return
	}
	h.Session.RefreshSelection(id)
	order, _ := h.Store.Get(id)
	c.JSON(http.StatusOK, order)
}

type RemovePhotoRequest struct {
	URL string `json:"url" validate:"required"`
}

// @Summary Remove a photo from an order by URL
// @Tags orders
// @Accept json
// @Produce json
// @Success 200 {object} models.ServiceOrder
// @Failure 404 {object} map[string]any
// @Router /api/orders/{id}/photos [delete]
func (h *Handler) OrderRemovePhoto(c *gin.Context) {
	id := c.Param("id")
	var req RemovePhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	if !h.Store.RemovePhoto(id, req.URL) {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Order not found", nil)
		return
	}
	h.Session.RefreshSelection(id)
	order, _ := h.Store.Get(id)
	c.JSON(http.StatusOK, order)
}
