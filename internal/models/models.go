package models

import "time"

// Screen identifies the single active view of the field app.
type Screen string

const (
	ScreenLogin      Screen = "LOGIN"
	ScreenDashboard  Screen = "DASHBOARD"
	ScreenDetails    Screen = "DETAILS"
	ScreenExecution  Screen = "EXECUTION"
	ScreenPredictive Screen = "PREDICTIVE"
	ScreenSuccess    Screen = "SUCCESS"
	ScreenOSManager  Screen = "OS_MANAGER"
)

type OSStatus string

const (
	StatusPending    OSStatus = "PENDING"
	StatusInProgress OSStatus = "IN_PROGRESS"
	StatusCompleted  OSStatus = "COMPLETED"
)

func (s OSStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type OSPriority string

const (
	PriorityHigh   OSPriority = "HIGH"
	PriorityMedium OSPriority = "MEDIUM"
	PriorityLow    OSPriority = "LOW"
)

func (p OSPriority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// HealthStatus is the three-level predictive rating assigned at completion.
type HealthStatus string

const (
	HealthGreen  HealthStatus = "green"
	HealthYellow HealthStatus = "yellow"
	HealthRed    HealthStatus = "red"
)

func (h HealthStatus) Valid() bool {
	switch h {
	case HealthGreen, HealthYellow, HealthRed:
		return true
	}
	return false
}

type PhotoType string

const (
	PhotoBefore PhotoType = "BEFORE"
	PhotoAfter  PhotoType = "AFTER"
)

func (t PhotoType) Valid() bool {
	return t == PhotoBefore || t == PhotoAfter
}

// OSPhoto is evidence captured during execution. URLs are in-memory display
// handles, not durable storage.
type OSPhoto struct {
	URL       string    `json:"url"`
	Type      PhotoType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// ServiceOrder is one school-maintenance request (OS).
//
// The execution-result fields (SolutionApplied through TechnicianName) are
// unset while Status != COMPLETED and are always written together in a single
// store update.
type ServiceOrder struct {
	ID          string     `json:"id"`
	SchoolName  string     `json:"school_name"`
	Description string     `json:"description"`
	Address     string     `json:"address"`
	Contact     string     `json:"contact,omitempty"`
	Priority    OSPriority `json:"priority"`
	Status      OSStatus   `json:"status"`

	// Record of a prior, unrelated visit.
	LastVisitDate           string `json:"last_visit_date"`
	LastVisitTechnician     string `json:"last_visit_technician"`
	LastVisitPhotoURL       string `json:"last_visit_photo_url"`
	LastVisitSecondPhotoURL string `json:"last_visit_second_photo_url,omitempty"`
	ServiceName             string `json:"service_name"`

	SolutionApplied string       `json:"solution_applied,omitempty"`
	PartsUsed       string       `json:"parts_used,omitempty"`
	HealthStatus    HealthStatus `json:"health_status,omitempty"`
	Photos          []OSPhoto    `json:"photos,omitempty"`
	CompletionDate  *time.Time   `json:"completion_date,omitempty"`
	TechnicianName  string       `json:"technician_name,omitempty"`
}

// HasExecutionResult reports whether any execution-result field is set.
func (o ServiceOrder) HasExecutionResult() bool {
	return o.SolutionApplied != "" || o.PartsUsed != "" || o.HealthStatus != "" ||
		len(o.Photos) > 0 || o.CompletionDate != nil || o.TechnicianName != ""
}

// OrderPatch carries a field-level merge for Store.Patch. Nil fields are
// left untouched.
type OrderPatch struct {
	SchoolName          *string     `json:"school_name,omitempty"`
	Description         *string     `json:"description,omitempty"`
	Address             *string     `json:"address,omitempty"`
	Contact             *string     `json:"contact,omitempty"`
	Priority            *OSPriority `json:"priority,omitempty"`
	Status              *OSStatus   `json:"status,omitempty"`
	ServiceName         *string     `json:"service_name,omitempty"`
	LastVisitDate       *string     `json:"last_visit_date,omitempty"`
	LastVisitTechnician *string     `json:"last_visit_technician,omitempty"`
	LastVisitPhotoURL   *string     `json:"last_visit_photo_url,omitempty"`
}

// ExecutionData is staged by the screen controller between finishing
// execution and confirming the predictive assessment. It is never visible in
// the order store until committed.
type ExecutionData struct {
	Solution string    `json:"solution"`
	Parts    string    `json:"parts"`
	Photos   []OSPhoto `json:"photos"`
}

// Technician is the logged-in field technician. One per running session,
// sourced from configuration.
type Technician struct {
	Name      string `json:"name"`
	VanStatus string `json:"van_status"`
}
