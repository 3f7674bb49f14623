package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pnj-dev/facility-booking/internal/model"
)

// BuildingRepo serves the public building catalogue.
type BuildingRepo struct {
	db *sql.DB
}

// NewBuildingRepo returns a BuildingRepo bound to the given database.
func NewBuildingRepo(db *sql.DB) *BuildingRepo { return &BuildingRepo{db: db} }

const buildingCols = "id, name, description, capacity, specifications, images, status, created_at, updated_at"

// List returns buildings ordered by name. status narrows to one
// availability status, search matches the name; both are optional.
func (r *BuildingRepo) List(ctx context.Context, status model.BuildingStatus, search string) ([]model.Building, error) {
	where := []string{"1=1"}
	args := []any{}
	if status != "" {
		where = append(where, "status = ?")
		args = append(args, string(status))
	}
	if s := strings.TrimSpace(search); s != "" {
		where = append(where, "name LIKE ?")
		args = append(args, "%"+s+"%")
	}
	q := "SELECT " + buildingCols + " FROM buildings WHERE " +
		strings.Join(where, " AND ") + " ORDER BY name"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Building, 0)
	for rows.Next() {
		b, err := scanBuilding(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// GetByID fetches one building.
func (r *BuildingRepo) GetByID(ctx context.Context, id uint64) (*model.Building, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+buildingCols+" FROM buildings WHERE id = ?", id)
	return scanBuilding(row)
}
