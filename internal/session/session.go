// Package session implements the screen controller: the current-screen
// pointer, the selected order, and the execution data staged between
// finishing execution and confirming the predictive assessment.
//
// Store writes happen at exactly two transitions: starting a service
// (DETAILS→EXECUTION flips the order to IN_PROGRESS) and confirming the
// predictive rating (PREDICTIVE→SUCCESS commits the full execution result in
// one update). Everything staged in between stays invisible to the store, so
// an abandoned execution leaves the persisted order untouched apart from the
// earlier status flip.
package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/garra-os/backend/internal/models"
	"github.com/garra-os/backend/internal/photos"
	"github.com/garra-os/backend/internal/store"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrNoSelection     = errors.New("no order selected")
	ErrMissingSolution = errors.New("solution description is required")
	ErrMissingParts    = errors.New("parts used is required")
	ErrMissingPhotos   = errors.New("at least one BEFORE and one AFTER photo are required")
	ErrMissingRating   = errors.New("a health rating must be chosen")
	ErrNothingStaged   = errors.New("no execution data staged")
)

// WrongScreenError reports a trigger that does not apply to the current
// screen. The controller leaves all state untouched in that case.
type WrongScreenError struct {
	Current models.Screen
	Trigger string
}

func (e *WrongScreenError) Error() string {
	return fmt.Sprintf("%s not available on screen %s", e.Trigger, e.Current)
}

// State is a read-only snapshot of the controller for API consumption.
type State struct {
	Screen       models.Screen        `json:"screen"`
	Selected     *models.ServiceOrder `json:"selected,omitempty"`
	StagedPhotos []photos.Handle      `json:"staged_photos,omitempty"`
	HasStaged    bool                 `json:"has_staged_execution"`
	Technician   models.Technician    `json:"technician"`
}

// Controller mediates every screen transition and orchestrates order store
// mutations. A single mutex serializes triggers, so each user action runs to
// completion before the next is accepted.
type Controller struct {
	mu     sync.Mutex
	store  *store.Store
	photos *photos.Registry
	tech   models.Technician
	logger zerolog.Logger

	screen   models.Screen
	selected *models.ServiceOrder
	staged   *models.ExecutionData

	now          func() time.Time
	onTransition func(from, to models.Screen)
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock overrides the completion timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithTransitionHook registers a callback fired on every screen change.
func WithTransitionHook(fn func(from, to models.Screen)) Option {
	return func(c *Controller) { c.onTransition = fn }
}

func New(st *store.Store, reg *photos.Registry, tech models.Technician, logger zerolog.Logger, opts ...Option) *Controller {
	c := &Controller{
		store:  st,
		photos: reg,
		tech:   tech,
		logger: logger,
		screen: models.ScreenLogin,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) transition(to models.Screen) {
	from := c.screen
	c.screen = to
	c.logger.Debug().Str("from", string(from)).Str("to", string(to)).Msg("screen transition")
	if c.onTransition != nil {
		c.onTransition(from, to)
	}
}

// CompleteLogin advances LOGIN→DASHBOARD after the credential check has
// passed. Credential verification itself lives in the auth layer; a failed
// login never reaches the controller, so the screen stays LOGIN.
func (c *Controller) CompleteLogin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.screen != models.ScreenLogin {
		return &WrongScreenError{Current: c.screen, Trigger: "login"}
	}
	c.transition(models.ScreenDashboard)
	return nil
}

// SelectOrder sets the selected order reference and advances
// DASHBOARD→DETAILS.
func (c *Controller) SelectOrder(id string) (models.ServiceOrder, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.screen != models.ScreenDashboard {
		return models.ServiceOrder{}, &WrongScreenError{Current: c.screen, Trigger: "select order"}
	}
	o, ok := c.store.Get(id)
	if !ok {
		return models.ServiceOrder{}, ErrOrderNotFound
	}
	c.selected = &o
	c.transition(models.ScreenDetails)
	return o, nil
}

// OpenManager advances DASHBOARD→OS_MANAGER.
func (c *Controller) OpenManager() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.screen != models.ScreenDashboard {
		return &WrongScreenError{Current: c.screen, Trigger: "open manager"}
	}
	c.transition(models.ScreenOSManager)
	return nil
}

// Back navigates one step back: DETAILS→DASHBOARD (clearing the selection),
// EXECUTION→DETAILS (selection retained), OS_MANAGER→DASHBOARD.
func (c *Controller) Back() (models.Screen, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.screen {
	case models.ScreenDetails:
		c.selected = nil
		c.releaseExecutionLocked()
		c.transition(models.ScreenDashboard)
	case models.ScreenExecution:
		c.transition(models.ScreenDetails)
	case models.ScreenOSManager:
		c.transition(models.ScreenDashboard)
	default:
		return c.screen, &WrongScreenError{Current: c.screen, Trigger: "back"}
	}
	return c.screen, nil
}

// StartService confirms the service type, flips the selected order to
// IN_PROGRESS in the store, and advances DETAILS→EXECUTION. An empty
// confirmed name keeps the order's current service name.
func (c *Controller) StartService(confirmedServiceName string) (models.ServiceOrder, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.screen != models.ScreenDetails {
		return models.ServiceOrder{}, &WrongScreenError{Current: c.screen, Trigger: "start service"}
	}
	if c.selected == nil {
		return models.ServiceOrder{}, ErrNoSelection
	}
	name := strings.TrimSpace(confirmedServiceName)
	if name == "" {
		name = c.selected.ServiceName
	}
	status := models.StatusInProgress
	c.store.Patch(c.selected.ID, models.OrderPatch{Status: &status, ServiceName: &name})
	updated, ok := c.store.Get(c.selected.ID)
	if !ok {
		// Selected order vanished under an administrative delete.
		c.selected = nil
		return models.ServiceOrder{}, ErrOrderNotFound
	}
	c.selected = &updated
	c.transition(models.ScreenExecution)
	return updated, nil
}

// StagePhoto captures a before/after photo for the active execution.
func (c *Controller) StagePhoto(payload []byte, typ models.PhotoType) (photos.Handle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.screen != models.ScreenExecution {
		return photos.Handle{}, &WrongScreenError{Current: c.screen, Trigger: "stage photo"}
	}
	return c.photos.Add(payload, typ)
}

// DropPhoto removes a staged photo by handle id.
func (c *Controller) DropPhoto(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.photos.Remove(id)
}

// FinishExecution validates and stages the execution data, advancing
// EXECUTION→PREDICTIVE. The store is deliberately not touched here: the data
// stays pending until the predictive assessment is confirmed.
func (c *Controller) FinishExecution(solution, parts string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.screen != models.ScreenExecution {
		return &WrongScreenError{Current: c.screen, Trigger: "finish execution"}
	}
	if strings.TrimSpace(solution) == "" {
		return ErrMissingSolution
	}
	if strings.TrimSpace(parts) == "" {
		return ErrMissingParts
	}
	before, after := c.photos.Count()
	if before == 0 || after == 0 {
		return ErrMissingPhotos
	}
	c.staged = &models.ExecutionData{
		Solution: strings.TrimSpace(solution),
		Parts:    strings.TrimSpace(parts),
		Photos:   c.photos.Photos(),
	}
	c.transition(models.ScreenPredictive)
	return nil
}

// CompletePredictive merges the staged execution data, the chosen rating, the
// completion timestamp and the technician name into the selected order,
// writes it to the store as a single update, and advances PREDICTIVE→SUCCESS.
func (c *Controller) CompletePredictive(health models.HealthStatus) (models.ServiceOrder, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.screen != models.ScreenPredictive {
		return models.ServiceOrder{}, &WrongScreenError{Current: c.screen, Trigger: "confirm predictive"}
	}
	if !health.Valid() {
		return models.ServiceOrder{}, ErrMissingRating
	}
	if c.staged == nil {
		return models.ServiceOrder{}, ErrNothingStaged
	}
	if c.selected == nil {
		return models.ServiceOrder{}, ErrNoSelection
	}
	completed := *c.selected
	completed.Status = models.StatusCompleted
	completed.SolutionApplied = c.staged.Solution
	completed.PartsUsed = c.staged.Parts
	completed.Photos = append([]models.OSPhoto(nil), c.staged.Photos...)
	completed.HealthStatus = health
	now := c.now().UTC()
	completed.CompletionDate = &now
	completed.TechnicianName = c.tech.Name

	c.store.Update(completed)
	c.selected = &completed
	c.staged = nil
	c.transition(models.ScreenSuccess)
	c.logger.Info().Str("order_id", completed.ID).Str("health", string(health)).Msg("service order completed")
	return completed, nil
}

// GoHome clears the selection and returns SUCCESS→DASHBOARD. The photo
// session ends here, releasing the staged handles.
func (c *Controller) GoHome() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.screen != models.ScreenSuccess {
		return &WrongScreenError{Current: c.screen, Trigger: "go home"}
	}
	c.selected = nil
	c.releaseExecutionLocked()
	c.transition(models.ScreenDashboard)
	return nil
}

// DeleteOrder removes an order through the administrative surface. If the
// deleted record is the current selection, the selection (and anything staged
// against it) is cleared.
func (c *Controller) DeleteOrder(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	ok := c.store.Delete(id)
	if ok && c.selected != nil && c.selected.ID == id {
		c.selected = nil
		c.releaseExecutionLocked()
	}
	return ok
}

// RefreshSelection re-reads the selected order from the store after an
// administrative mutation, so the controller never holds a divergent copy.
func (c *Controller) RefreshSelection(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil || c.selected.ID != id {
		return
	}
	if o, ok := c.store.Get(id); ok {
		c.selected = &o
	} else {
		c.selected = nil
		c.releaseExecutionLocked()
	}
}

func (c *Controller) releaseExecutionLocked() {
	c.staged = nil
	c.photos.ReleaseAll()
}

// Screen returns the current screen.
func (c *Controller) Screen() models.Screen {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.screen
}

// Selected returns a copy of the selected order, if any.
func (c *Controller) Selected() (models.ServiceOrder, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil {
		return models.ServiceOrder{}, false
	}
	return *c.selected, true
}

// State snapshots the controller for the session endpoint.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := State{
		Screen:     c.screen,
		HasStaged:  c.staged != nil,
		Technician: c.tech,
	}
	if c.selected != nil {
		sel := *c.selected
		st.Selected = &sel
	}
	if handles := c.photos.List(); len(handles) > 0 {
		st.StagedPhotos = handles
	}
	return st
}

// Technician returns the logged-in technician.
func (c *Controller) Technician() models.Technician {
	return c.tech
}
