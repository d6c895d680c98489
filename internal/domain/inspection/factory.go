package inspection

import (
	"time"

	"github.com/google/uuid"
)

// NewFromCreateRequest binds the record to the authenticated owner;
// a caller-supplied owner is never honored. Status always starts pending.
func NewFromCreateRequest(req CreateInspectionRequest, ownerID string) Inspection {
	return Inspection{
		ID:            uuid.NewString(),
		VehicleNumber: req.VehicleNumber,
		DamageReport:  req.DamageReport,
		ImageURL:      req.ImageURL,
		InspectedBy:   ownerID,
		Status:        StatusPending,
		CreatedAt:     time.Now().UTC(),
	}
}
