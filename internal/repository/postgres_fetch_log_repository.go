package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"CityScape3D/internal/domain/model"
	"CityScape3D/internal/domain/repository"
	"CityScape3D/internal/infrastructure/database"
)

type PostgresFetchLogRepository struct {
	client *database.PostgreSQLClient
}

func NewPostgresFetchLogRepository(client *database.PostgreSQLClient) repository.DatasetArchiveRepository {
	return &PostgresFetchLogRepository{
		client: client,
	}
}

// RecordFetchRun 取得実行1回分をfetch_runsテーブルに記録する
func (r *PostgresFetchLogRepository) RecordFetchRun(ctx context.Context, run *model.FetchRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	query := `INSERT INTO fetch_runs
		(id, center_lat, center_lon, radius_meters, feature_count, building_count, street_count, duration_ms, endpoint, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.client.DB.ExecContext(ctx, query,
		run.ID, run.CenterLat, run.CenterLon, run.RadiusMeters,
		run.FeatureCount, run.BuildingCount, run.StreetCount,
		run.DurationMillis, run.Endpoint, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("取得記録の作成失敗: %w", err)
	}

	return nil
}

// ListRecentRuns 直近の取得記録を新しい順に取得する
func (r *PostgresFetchLogRepository) ListRecentRuns(ctx context.Context, limit int) ([]model.FetchRun, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `SELECT id, center_lat, center_lon, radius_meters, feature_count, building_count, street_count, duration_ms, endpoint, created_at
		FROM fetch_runs ORDER BY created_at DESC LIMIT $1`

	rows, err := r.client.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("取得記録の一覧取得失敗: %w", err)
	}
	defer rows.Close()

	var runs []model.FetchRun
	for rows.Next() {
		var run model.FetchRun
		if err := rows.Scan(&run.ID, &run.CenterLat, &run.CenterLon, &run.RadiusMeters,
			&run.FeatureCount, &run.BuildingCount, &run.StreetCount,
			&run.DurationMillis, &run.Endpoint, &run.CreatedAt); err != nil {
			if err == sql.ErrNoRows {
				break
			}
			return nil, fmt.Errorf("取得記録の読み取り失敗: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("取得記録の走査エラー: %w", err)
	}

	return runs, nil
}
