package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/roadcheck/inspecthub/internal/config"
	"github.com/roadcheck/inspecthub/internal/domain/inspection"
	"github.com/roadcheck/inspecthub/internal/http/middlewares"
	"github.com/roadcheck/inspecthub/internal/utils"
)

type InspectionsStore interface {
	Create(ctx context.Context, req inspection.CreateInspectionRequest, ownerID string) (inspection.Inspection, error)
	GetByIDForOwner(ctx context.Context, id, ownerID string) (inspection.Inspection, error)
	UpdateStatusForOwner(ctx context.Context, id, ownerID string, status inspection.Status) (inspection.Inspection, error)
	ListForOwner(ctx context.Context, ownerID string, filter inspection.ListFilter) ([]inspection.Inspection, error)
}

type InspectionsHandler struct {
	repo InspectionsStore
}

func NewInspectionsHandler(repo InspectionsStore) *InspectionsHandler {
	return &InspectionsHandler{repo: repo}
}

func (h *InspectionsHandler) CreateInspection(ctx *gin.Context) {
	var req inspection.CreateInspectionRequest

	if !BindJSON(ctx, &req) {
		return
	}

	ownerID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || ownerID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	ins, err := h.repo.Create(cctx, req, ownerID)

	if err != nil {
		RespondInternal(ctx, "Could not create inspection")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message":    "Inspection created successfully",
		"inspection": ins,
	})
}

func (h *InspectionsHandler) GetInspection(ctx *gin.Context) {
	id := ctx.Param("id")

	ownerID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || ownerID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	// an id that cannot exist must look the same as one that doesn't
	if !utils.IsUUID(id) {
		RespondNotFound(ctx, "Inspection not found or access denied")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	ins, err := h.repo.GetByIDForOwner(cctx, id, ownerID)

	if err != nil {
		if errors.Is(err, inspection.ErrNotFound) {
			RespondNotFound(ctx, "Inspection not found or access denied")
			return
		}

		RespondInternal(ctx, "Could not retrieve inspection")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"inspection": ins,
	})
}

func (h *InspectionsHandler) UpdateInspectionStatus(ctx *gin.Context) {
	id := ctx.Param("id")

	// validation first, then the ownership-scoped lookup
	var req inspection.UpdateStatusRequest

	if !BindJSON(ctx, &req) {
		return
	}

	ownerID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || ownerID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	if !utils.IsUUID(id) {
		RespondNotFound(ctx, "Inspection not found or access denied")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	ins, err := h.repo.UpdateStatusForOwner(cctx, id, ownerID, req.Status)

	if err != nil {
		if errors.Is(err, inspection.ErrNotFound) {
			RespondNotFound(ctx, "Inspection not found or access denied")
			return
		}

		RespondInternal(ctx, "Could not update inspection")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":    "Inspection status updated successfully",
		"inspection": ins,
	})
}

func (h *InspectionsHandler) ListInspections(ctx *gin.Context) {
	var query inspection.ListQuery

	if !BindQuery(ctx, &query) {
		return
	}

	ownerID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || ownerID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	inspections, err := h.repo.ListForOwner(cctx, ownerID, query.Filter())

	if err != nil {
		RespondInternal(ctx, "Could not retrieve inspections")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"inspections": inspections,
		"count":       len(inspections),
	})
}
