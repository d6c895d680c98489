package inspection

import (
	"errors"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusReviewed  Status = "reviewed"
	StatusCompleted Status = "completed"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusReviewed, StatusCompleted:
		return true
	default:
		return false
	}
}

type Inspection struct {
	ID                string    `json:"id"`
	VehicleNumber     string    `json:"vehicle_number"`
	DamageReport      string    `json:"damage_report"`
	ImageURL          string    `json:"image_url"`
	InspectedBy       string    `json:"inspected_by"`
	InspectorUsername string    `json:"inspector_username"`
	Status            Status    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
}

// ErrNotFound covers both a missing row and a row owned by someone
// else; callers must not be able to tell the two apart.
var ErrNotFound = errors.New("inspection not found or access denied")

type CreateInspectionRequest struct {
	VehicleNumber string `json:"vehicle_number" binding:"required,min=5,max=20"`
	DamageReport  string `json:"damage_report" binding:"required,min=10,max=1000"`
	ImageURL      string `json:"image_url" binding:"required,imageurl"`
}

type UpdateStatusRequest struct {
	Status Status `json:"status" binding:"required,oneof=reviewed completed"`
}

// ListFilter narrows an owner-scoped listing; a nil Status means all.
type ListFilter struct {
	Status *Status
}

type ListQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=pending reviewed completed"`
}

func (q ListQuery) Filter() ListFilter {
	var f ListFilter

	if q.Status != "" {
		s := Status(q.Status)
		f.Status = &s
	}

	return f
}
