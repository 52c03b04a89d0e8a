package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"

	"CityScape3D/internal/database"
	"CityScape3D/internal/domain/model"
	"CityScape3D/internal/domain/repository"
)

type SupabaseFetchLogRepository struct {
	client *database.SupabaseClient
}

func NewSupabaseFetchLogRepository(client *database.SupabaseClient) repository.DatasetArchiveRepository {
	return &SupabaseFetchLogRepository{
		client: client,
	}
}

// RecordFetchRun 取得実行1回分をfetch_runsテーブルに記録する
func (r *SupabaseFetchLogRepository) RecordFetchRun(ctx context.Context, run *model.FetchRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("取得記録のJSONマーシャル失敗: %w", err)
	}

	_, _, err = r.client.GetClient().From("fetch_runs").Insert(string(data), false, "", "", "").Execute()
	if err != nil {
		return fmt.Errorf("取得記録の作成失敗: %w", err)
	}

	return nil
}

// ListRecentRuns 直近の取得記録を新しい順に取得する
func (r *SupabaseFetchLogRepository) ListRecentRuns(ctx context.Context, limit int) ([]model.FetchRun, error) {
	if limit <= 0 {
		limit = 10
	}

	var runs []model.FetchRun
	data, count, err := r.client.GetClient().From("fetch_runs").
		Select("*", "exact", false).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Limit(limit, "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("取得記録の一覧取得失敗: %w", err)
	}
	_ = count

	if err := json.Unmarshal([]byte(data), &runs); err != nil {
		return nil, fmt.Errorf("取得記録のJSONアンマーシャル失敗: %w", err)
	}

	return runs, nil
}
