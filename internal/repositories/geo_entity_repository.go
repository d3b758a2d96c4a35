package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"pamojaBack/internal/models"
)

// GeoEntityRepository reads the mappable entity snapshot: projects, training
// events and marketplace users flattened into one shape.
type GeoEntityRepository struct {
	DB *sql.DB
}

const feedQuery = `
SELECT CAST(p.id AS CHAR) AS id, 'project' AS source, COALESCE(p.category, '') AS category,
       p.title AS name, p.description, p.location, p.latitude, p.longitude
  FROM projects p
 UNION ALL
SELECT CAST(t.id AS CHAR), 'training_event', COALESCE(t.topic, ''),
       t.title, t.description, t.venue, t.latitude, t.longitude
  FROM training_events t
 UNION ALL
SELECT CAST(u.id AS CHAR), 'marketplace_user', COALESCE(u.role, ''),
       u.name, u.bio, u.address, u.latitude, u.longitude
  FROM marketplace_users u`

// FetchAll returns the full feed snapshot.
func (r *GeoEntityRepository) FetchAll(ctx context.Context) ([]models.GeoEntity, error) {
	rows, err := r.DB.QueryContext(ctx, feedQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntities(rows)
}

// Search returns the feed filtered by a LIKE match on the given column, or
// on name, category and location together for column "all".
func (r *GeoEntityRepository) Search(ctx context.Context, query, column string) ([]models.GeoEntity, error) {
	pattern := "%" + query + "%"

	var where string
	var args []interface{}
	switch column {
	case models.SearchColumnName:
		where = "m.name LIKE ?"
		args = []interface{}{pattern}
	case models.SearchColumnCategory:
		where = "m.category LIKE ?"
		args = []interface{}{pattern}
	case models.SearchColumnLocation:
		where = "m.location LIKE ?"
		args = []interface{}{pattern}
	case models.SearchColumnAll:
		where = "(m.name LIKE ? OR m.category LIKE ? OR m.location LIKE ?)"
		args = []interface{}{pattern, pattern, pattern}
	default:
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidSearchColumn, column)
	}

	stmt := fmt.Sprintf("SELECT * FROM (%s) AS m WHERE %s", feedQuery, where)
	rows, err := r.DB.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntities(rows)
}

func scanEntities(rows *sql.Rows) ([]models.GeoEntity, error) {
	var entities []models.GeoEntity
	for rows.Next() {
		var e models.GeoEntity
		var description, location sql.NullString
		var lat, lon sql.NullFloat64
		if err := rows.Scan(&e.ID, &e.Source, &e.Category, &e.Name, &description, &location, &lat, &lon); err != nil {
			return nil, err
		}
		if description.Valid {
			e.Description = &description.String
		}
		if location.Valid {
			e.Location = &location.String
		}
		if lat.Valid {
			e.Latitude = &lat.Float64
		}
		if lon.Valid {
			e.Longitude = &lon.Float64
		}
		entities = append(entities, e)
	}
	return entities, rows.Err()
}
