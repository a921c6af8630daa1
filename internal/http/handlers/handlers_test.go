package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garra-os/backend/internal/auth"
	"github.com/garra-os/backend/internal/http/middleware"
	"github.com/garra-os/backend/internal/maplink"
	"github.com/garra-os/backend/internal/models"
	"github.com/garra-os/backend/internal/photos"
	"github.com/garra-os/backend/internal/session"
	"github.com/garra-os/backend/internal/store"
)

type env struct {
	router  *gin.Engine
	store   *store.Store
	session *session.Controller
	token   string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.NewSeeded()
	reg := photos.NewRegistry()
	tech := models.Technician{Name: "Carlos Silva", VanStatus: "OK - Abastecida"}
	ctrl := session.New(st, reg, tech, zerolog.Nop())
	authSvc := auth.New(auth.Config{
		Secret:         "test-secret",
		TokenTTL:       time.Hour,
		Email:          "tech@garra.gov.br",
		Password:       "123456",
		TechnicianName: tech.Name,
	})

	h := &Handler{
		Store:     st,
		Session:   ctrl,
		Auth:      authSvc,
		Photos:    reg,
		Links:     maplink.Builder{},
		Validator: validator.New(),
		Logger:    zerolog.Nop(),
	}

	r := gin.New()
	api := r.Group("/api")
	api.POST("/session/login", h.Login)

	authed := api.Group("")
	authed.Use(middleware.Bearer(authSvc))
	{
		authed.GET("/session", h.SessionState)
		authed.POST("/session/select/:id", h.SelectOrder)
		authed.POST("/session/back", h.Back)
		authed.POST("/session/manager", h.OpenManager)
		authed.POST("/session/start", h.StartService)
		authed.POST("/session/photos", h.StagePhoto)
		authed.GET("/session/photos/:id", h.ServePhoto)
		authed.DELETE("/session/photos/:id", h.DropPhoto)
		authed.POST("/session/finish", h.FinishExecution)
		authed.POST("/session/predictive", h.CompletePredictive)
		authed.POST("/session/home", h.GoHome)
		authed.GET("/technician", h.Technician)
		authed.GET("/orders", h.OrdersList)
		authed.GET("/orders/:id", h.OrderDetails)
		authed.GET("/orders/:id/map-link", h.OrderMapLink)
		authed.POST("/orders", h.OrderCreate)
		authed.PUT("/orders/:id", h.OrderUpdate)
		authed.PATCH("/orders/:id", h.OrderPatch)
		authed.DELETE("/orders/:id", h.OrderDelete)
		authed.POST("/orders/:id/clear-execution", h.OrderClearExecution)
		authed.DELETE("/orders/:id/photos", h.OrderRemovePhoto)
	}

	return &env{router: r, store: st, session: ctrl}
}

func (e *env) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *env) login(t *testing.T) {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/session/login", gin.H{
		"email":    "tech@garra.gov.br",
		"password": "123456",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	e.token = resp.AccessToken
}

func (e *env) uploadPhoto(t *testing.T, typ string) photos.Handle {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "photo.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake-jpeg-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("type", typ))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/session/photos", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+e.token)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var h photos.Handle
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &h))
	return h
}

func TestLoginWithWrongPair(t *testing.T) {
	e := newEnv(t)
	w := e.do(t, http.MethodPost, "/api/session/login", gin.H{
		"email":    "intruder@garra.gov.br",
		"password": "123456",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var resp struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Error.Message)
	assert.Equal(t, models.ScreenLogin, e.session.Screen())
}

func TestLoginAdvancesSession(t *testing.T) {
	e := newEnv(t)
	e.login(t)
	assert.Equal(t, models.ScreenDashboard, e.session.Screen())

	w := e.do(t, http.MethodGet, "/api/session", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var state session.State
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, models.ScreenDashboard, state.Screen)
	assert.Equal(t, "Carlos Silva", state.Technician.Name)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	e := newEnv(t)
	w := e.do(t, http.MethodGet, "/api/orders", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	e.token = "not-a-token"
	w = e.do(t, http.MethodGet, "/api/orders", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// Create → appears first → select → details → start → IN_PROGRESS, then the
// full execution/predictive flow and final deletion. Mirrors the app's
// guided technician journey end to end.
func TestGuidedFlowEndToEnd(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	// Create order 9001 via the manager surface.
	w := e.do(t, http.MethodPost, "/api/orders", gin.H{
		"id":          "9001",
		"school_name": "Test School",
		"description": "Leaking pipe in kitchen",
		"address":     "Rua Teste, 1",
		"priority":    "LOW",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// It lists first on the dashboard.
	w = e.do(t, http.MethodGet, "/api/orders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Items []models.ServiceOrder `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.NotEmpty(t, list.Items)
	assert.Equal(t, "9001", list.Items[0].ID)
	assert.Equal(t, models.StatusPending, list.Items[0].Status)

	// Select it: DETAILS shows the school name.
	w = e.do(t, http.MethodPost, "/api/session/select/9001", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var sel struct {
		Screen models.Screen       `json:"screen"`
		Order  models.ServiceOrder `json:"order"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sel))
	assert.Equal(t, models.ScreenDetails, sel.Screen)
	assert.Equal(t, "Test School", sel.Order.SchoolName)

	// Start service: status flips, screen becomes EXECUTION.
	w = e.do(t, http.MethodPost, "/api/session/start", gin.H{"service_name": "Hidráulica"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	o, ok := e.store.Get("9001")
	require.True(t, ok)
	assert.Equal(t, models.StatusInProgress, o.Status)
	assert.Equal(t, models.ScreenExecution, e.session.Screen())

	// Finish without photos is blocked.
	w = e.do(t, http.MethodPost, "/api/session/finish", gin.H{"solution": "Fixed leak", "parts": "1 pipe"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	before := e.uploadPhoto(t, "BEFORE")
	e.uploadPhoto(t, "AFTER")

	// Staged photo is servable.
	w = e.do(t, http.MethodGet, "/api/session/photos/"+before.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Finish execution: PREDICTIVE active, store still IN_PROGRESS.
	snapshot := e.store.Snapshot()
	w = e.do(t, http.MethodPost, "/api/session/finish", gin.H{"solution": "Fixed leak", "parts": "1 pipe"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.ScreenPredictive, e.session.Screen())
	assert.True(t, reflect.DeepEqual(snapshot, e.store.Snapshot()), "staging must not touch the store")
	o, _ = e.store.Get("9001")
	assert.Equal(t, models.StatusInProgress, o.Status)

	// Confirm green: COMPLETED, SUCCESS screen.
	w = e.do(t, http.MethodPost, "/api/session/predictive", gin.H{"health_status": "green"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.ScreenSuccess, e.session.Screen())
	o, _ = e.store.Get("9001")
	assert.Equal(t, models.StatusCompleted, o.Status)
	assert.Equal(t, models.HealthGreen, o.HealthStatus)
	assert.Equal(t, "Fixed leak", o.SolutionApplied)
	require.NotNil(t, o.CompletionDate)
	assert.Equal(t, "Carlos Silva", o.TechnicianName)
	assert.Len(t, o.Photos, 2)

	// Home, then delete 9001 while re-selected: selection clears.
	w = e.do(t, http.MethodPost, "/api/session/home", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = e.do(t, http.MethodPost, "/api/session/select/9001", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = e.do(t, http.MethodDelete, "/api/orders/9001", nil)
	require.Equal(t, http.StatusOK, w.Code)
	_, found := e.store.Get("9001")
	assert.False(t, found)
	_, selected := e.session.Selected()
	assert.False(t, selected)
}

func TestTriggersOffScreenConflict(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	// start service on DASHBOARD does not apply.
	w := e.do(t, http.MethodPost, "/api/session/start", gin.H{"service_name": "x"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, models.ScreenDashboard, e.session.Screen())

	var resp struct {
		Error struct {
			Code    string `json:"code"`
			Details struct {
				Screen models.Screen `json:"screen"`
			} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_STATE", resp.Error.Code)
	assert.Equal(t, models.ScreenDashboard, resp.Error.Details.Screen)
}

func TestManagerSurface(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	// Missing required fields.
	w := e.do(t, http.MethodPost, "/api/orders", gin.H{"school_name": "X"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Create without id: one is generated.
	w = e.do(t, http.MethodPost, "/api/orders", gin.H{
		"school_name": "Nova Escola",
		"description": "Pintura",
		"address":     "Rua Nova, 7",
		"priority":    "MEDIUM",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.ServiceOrder
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.StatusPending, created.Status)

	// Any status can be set directly: the operator override for orders left
	// IN_PROGRESS by an abandoned execution.
	w = e.do(t, http.MethodPatch, "/api/orders/"+created.ID, gin.H{"status": "IN_PROGRESS"})
	require.Equal(t, http.StatusOK, w.Code)
	w = e.do(t, http.MethodPatch, "/api/orders/"+created.ID, gin.H{"status": "PENDING"})
	require.Equal(t, http.StatusOK, w.Code)
	o, _ := e.store.Get(created.ID)
	assert.Equal(t, models.StatusPending, o.Status)

	// Unknown enum values are rejected.
	w = e.do(t, http.MethodPatch, "/api/orders/"+created.ID, gin.H{"status": "LOST"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Miss is promoted to 404 on the HTTP surface.
	w = e.do(t, http.MethodPatch, "/api/orders/missing", gin.H{"status": "PENDING"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = e.do(t, http.MethodDelete, "/api/orders/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestClearExecutionReopensOrder(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	// Complete 1234 via the guided flow.
	w := e.do(t, http.MethodPost, "/api/session/select/1234", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = e.do(t, http.MethodPost, "/api/session/start", gin.H{})
	require.Equal(t, http.StatusOK, w.Code)
	e.uploadPhoto(t, "BEFORE")
	e.uploadPhoto(t, "AFTER")
	w = e.do(t, http.MethodPost, "/api/session/finish", gin.H{"solution": "s", "parts": "p"})
	require.Equal(t, http.StatusOK, w.Code)
	w = e.do(t, http.MethodPost, "/api/session/predictive", gin.H{"health_status": "yellow"})
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodPost, "/api/orders/1234/clear-execution", nil)
	require.Equal(t, http.StatusOK, w.Code)
	o, _ := e.store.Get("1234")
	assert.False(t, o.HasExecutionResult())
	assert.Equal(t, models.StatusCompleted, o.Status, "status stays untouched")
}

func TestOrderFiltersAndSearch(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	w := e.do(t, http.MethodGet, "/api/orders?priority=HIGH", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Items []models.ServiceOrder `json:"items"`
		Total int                   `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "1234", list.Items[0].ID)

	w = e.do(t, http.MethodGet, "/api/orders?q=gin%C3%A1sio", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "1236", list.Items[0].ID)

	w = e.do(t, http.MethodGet, "/api/orders?status=SOMEDAY", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMapLink(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	w := e.do(t, http.MethodGet, "/api/orders/1234/map-link", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		URL     string `json:"url"`
		Address string `json:"address"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.URL, "query=")
	assert.Equal(t, "Rua das Flores, 123 - Centro", resp.Address)

	w = e.do(t, http.MethodGet, "/api/orders/missing/map-link", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRemovePhotoFromOrder(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	w := e.do(t, http.MethodDelete, "/api/orders/1234/photos", gin.H{
		"url": "https://images.unsplash.com/photo-1607472586893-edb57bdc0e39?q=80&w=600&auto=format&fit=crop",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	o, _ := e.store.Get("1234")
	assert.Empty(t, o.LastVisitPhotoURL)
}

func TestTechnicianEndpoint(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	w := e.do(t, http.MethodGet, "/api/technician", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tech models.Technician
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tech))
	assert.Equal(t, "Carlos Silva", tech.Name)
	assert.Equal(t, "OK - Abastecida", tech.VanStatus)
}
