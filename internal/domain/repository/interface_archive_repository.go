package repository

import (
	"context"

	"CityScape3D/internal/domain/model"
)

// DatasetArchiveRepository 取得実行の記録を永続化するリポジトリ
// 実装はPostgres直結またはSupabase経由。アーカイブの失敗は取得処理を
// 失敗させてはならない（呼び出し側がログに留める）
type DatasetArchiveRepository interface {
	// RecordFetchRun 取得実行1回分を記録する
	RecordFetchRun(ctx context.Context, run *model.FetchRun) error

	// ListRecentRuns 直近の取得記録を新しい順に取得する
	ListRecentRuns(ctx context.Context, limit int) ([]model.FetchRun, error)
}

// GeometrySnapshotRepository 合成ジョブの概要を保存するリポジトリ
type GeometrySnapshotRepository interface {
	// SaveSnapshot スナップショットを保存しIDを返す
	SaveSnapshot(ctx context.Context, snap *model.GeometrySnapshot, ttlHours int) (string, error)

	// GetSnapshot 指定IDのスナップショットを取得する
	GetSnapshot(ctx context.Context, id string) (*model.GeometrySnapshot, error)
}
