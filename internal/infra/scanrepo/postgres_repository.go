// Package scanrepo persists detections recorded by the mock API.
package scanrepo

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cropcare/cropcare-go/internal/domain/healthcheck"
)

// PostgresRepository stores detections in a detections table using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Insert appends a detection row.
func (r *PostgresRepository) Insert(ctx context.Context, detection healthcheck.Detection) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO detections (id, label, confidence, severity, crop_type, crop_stage, lat, lon, image_url, captured_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		detection.ID,
		detection.Label,
		detection.Confidence,
		string(detection.Severity),
		string(detection.CropType),
		string(detection.CropStage),
		detection.Lat,
		detection.Lon,
		detection.ImageURL,
		detection.CapturedAt,
	)
	return err
}

// List returns detections newest first.
func (r *PostgresRepository) List(ctx context.Context, limit, offset int) ([]healthcheck.Detection, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, label, confidence, severity, crop_type, crop_stage, lat, lon, image_url, captured_at
		FROM detections
		ORDER BY captured_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var detections []healthcheck.Detection
	for rows.Next() {
		detection, err := scanDetection(rows)
		if err != nil {
			return nil, err
		}
		detections = append(detections, detection)
	}
	return detections, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDetection(row rowScanner) (healthcheck.Detection, error) {
	var (
		detection healthcheck.Detection
		severity  sql.NullString
		cropType  sql.NullString
		cropStage sql.NullString
		imageURL  sql.NullString
	)
	err := row.Scan(
		&detection.ID,
		&detection.Label,
		&detection.Confidence,
		&severity,
		&cropType,
		&cropStage,
		&detection.Lat,
		&detection.Lon,
		&imageURL,
		&detection.CapturedAt,
	)
	if err != nil {
		return healthcheck.Detection{}, err
	}
	detection.Severity = healthcheck.Severity(severity.String)
	detection.CropType = healthcheck.CropType(cropType.String)
	detection.CropStage = healthcheck.CropStage(cropStage.String)
	detection.ImageURL = imageURL.String
	return detection, nil
}
