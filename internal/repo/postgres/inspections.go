package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/roadcheck/inspecthub/internal/domain/inspection"
	"github.com/roadcheck/inspecthub/internal/observability"
)

type InspectionsRepo struct {
	pool    *pgxpool.Pool
	metrics *observability.Prom
}

func NewInspectionsRepo(pool *pgxpool.Pool, metrics *observability.Prom) *InspectionsRepo {
	return &InspectionsRepo{pool: pool, metrics: metrics}
}

func (r *InspectionsRepo) Create(ctx context.Context, req inspection.CreateInspectionRequest, ownerID string) (inspection.Inspection, error) {
	ins := inspection.NewFromCreateRequest(req, ownerID)

	// single statement: the FK on inspected_by keeps the insert atomic,
	// and the subquery fills the owner's username for the response view.
	err := observe(r.metrics, "inspections.create", func() error {
		return r.pool.QueryRow(
			ctx,
			`INSERT INTO inspections(id, vehicle_number, damage_report, image_url, inspected_by, status, created_at)
			 VALUES($1, $2, $3, $4, $5, $6, $7)
			 RETURNING (SELECT username FROM users WHERE id = $5)`,
			ins.ID, ins.VehicleNumber, ins.DamageReport, ins.ImageURL, ins.InspectedBy, ins.Status, ins.CreatedAt,
		).Scan(&ins.InspectorUsername)
	})

	if err != nil {
		return inspection.Inspection{}, err
	}

	return ins, nil
}

// GetByIDForOwner scopes the lookup to the owner in the WHERE clause, so
// a foreign-owned row and an absent row are the same ErrNotFound.
func (r *InspectionsRepo) GetByIDForOwner(ctx context.Context, id, ownerID string) (inspection.Inspection, error) {
	var ins inspection.Inspection

	err := observe(r.metrics, "inspections.get", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT i.id, i.vehicle_number, i.damage_report, i.image_url, i.inspected_by, u.username, i.status, i.created_at
			 FROM inspections i
			 JOIN users u ON u.id = i.inspected_by
			 WHERE i.id = $1 AND i.inspected_by = $2`,
			id, ownerID,
		).Scan(
			&ins.ID,
			&ins.VehicleNumber,
			&ins.DamageReport,
			&ins.ImageURL,
			&ins.InspectedBy,
			&ins.InspectorUsername,
			&ins.Status,
			&ins.CreatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return inspection.Inspection{}, inspection.ErrNotFound
		}

		return inspection.Inspection{}, err
	}

	return ins, nil
}

// UpdateStatusForOwner is update-or-nothing: the owner scope sits in the
// WHERE clause and zero updated rows reports the same conflated ErrNotFound.
func (r *InspectionsRepo) UpdateStatusForOwner(ctx context.Context, id, ownerID string, status inspection.Status) (inspection.Inspection, error) {
	var ins inspection.Inspection

	err := observe(r.metrics, "inspections.update_status", func() error {
		return r.pool.QueryRow(
			ctx,
			`UPDATE inspections
			 SET status = $3
			 WHERE id = $1 AND inspected_by = $2
			 RETURNING id, vehicle_number, damage_report, image_url, inspected_by,
			           (SELECT username FROM users WHERE id = inspected_by),
			           status, created_at`,
			id, ownerID, status,
		).Scan(
			&ins.ID,
			&ins.VehicleNumber,
			&ins.DamageReport,
			&ins.ImageURL,
			&ins.InspectedBy,
			&ins.InspectorUsername,
			&ins.Status,
			&ins.CreatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return inspection.Inspection{}, inspection.ErrNotFound
		}

		return inspection.Inspection{}, err
	}

	return ins, nil
}

func (r *InspectionsRepo) ListForOwner(ctx context.Context, ownerID string, filter inspection.ListFilter) ([]inspection.Inspection, error) {
	baseQuery :=
		`SELECT i.id,
		i.vehicle_number,
		i.damage_report,
		i.image_url,
		i.inspected_by,
		u.username,
		i.status,
		i.created_at
	FROM inspections i
	JOIN users u ON u.id = i.inspected_by
	`

	conds := []string{"i.inspected_by = $1"}
	args := []interface{}{ownerID}

	argsPosition := 2

	if filter.Status != nil {
		conds = append(conds, fmt.Sprintf("i.status = $%d", argsPosition))
		args = append(args, *filter.Status)
		argsPosition++
	}

	query := baseQuery + " WHERE " + strings.Join(conds, " AND ")

	// newest first; id breaks created_at ties so the order stays stable
	query += " ORDER BY i.created_at DESC, i.id DESC"

	var output []inspection.Inspection

	err := observe(r.metrics, "inspections.list", func() error {
		rows, err := r.pool.Query(ctx, query, args...)

		if err != nil {
			return err
		}

		defer rows.Close()

		output = make([]inspection.Inspection, 0)

		for rows.Next() {
			var ins inspection.Inspection

			err = rows.Scan(
				&ins.ID,
				&ins.VehicleNumber,
				&ins.DamageReport,
				&ins.ImageURL,
				&ins.InspectedBy,
				&ins.InspectorUsername,
				&ins.Status,
				&ins.CreatedAt,
			)

			if err != nil {
				return err
			}

			output = append(output, ins)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return output, nil
}
