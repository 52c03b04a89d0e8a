package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"CityScape3D/internal/domain/helper"
	"CityScape3D/internal/domain/model"
	"CityScape3D/internal/domain/repository"
	"CityScape3D/internal/infrastructure/overpass"
	"CityScape3D/internal/metrics"
	repoImpl "CityScape3D/internal/repository"
)

// DefaultFetchTimeoutSec 外側のウォールクロックタイムアウトの既定値（秒）
// リクエストで明示されない場合に適用される。リトライとバックオフを含む
// 取得全体がこの時間に収まらなければキャンセルされる
const DefaultFetchTimeoutSec = 120

// OverpassFetcher 取得クライアントの抽象。テストでは偽実装に差し替える
type OverpassFetcher interface {
	Fetch(ctx context.Context, query string) ([]byte, error)
	CurrentEndpoint() string
}

type DatasetFetchUseCase interface {
	// FetchDataset はリクエストに基づいて地物データセットを取得・構築する
	// 同一条件（丸め後）のリクエストはキャッシュから返し、再取得しない
	FetchDataset(ctx context.Context, req *model.FetchRequest) (*model.Dataset, error)

	// DatasetByID はキャッシュ内のデータセットをIDで検索する
	DatasetByID(id string) (*model.Dataset, bool)

	// ResetCache はデータセットキャッシュ全体を破棄する
	ResetCache()

	// RecentRuns は直近の取得記録をアーカイブから取得する
	RecentRuns(ctx context.Context, limit int) ([]model.FetchRun, error)
}

// datasetFetchUseCaseImpl はDatasetFetchUseCaseの実装
type datasetFetchUseCaseImpl struct {
	fetcher      OverpassFetcher
	queryBuilder *overpass.QueryBuilder
	parser       *overpass.Parser
	cache        *repoImpl.DatasetCache
	archiveRepo  repository.DatasetArchiveRepository // nilならアーカイブしない
}

// NewDatasetFetchUseCase は新しいDatasetFetchUseCaseインスタンスを作成
// archiveRepoはnil可（記録なしで動作する）
func NewDatasetFetchUseCase(
	fetcher OverpassFetcher,
	queryBuilder *overpass.QueryBuilder,
	parser *overpass.Parser,
	cache *repoImpl.DatasetCache,
	archiveRepo repository.DatasetArchiveRepository,
) DatasetFetchUseCase {
	return &datasetFetchUseCaseImpl{
		fetcher:      fetcher,
		queryBuilder: queryBuilder,
		parser:       parser,
		cache:        cache,
		archiveRepo:  archiveRepo,
	}
}

// FetchDataset はリクエストに基づいて地物データセットを取得・構築する
func (u *datasetFetchUseCaseImpl) FetchDataset(ctx context.Context, req *model.FetchRequest) (*model.Dataset, error) {
	if err := helper.ValidateCoords(req.Center.Lat, req.Center.Lon); err != nil {
		return nil, fmt.Errorf("中心点が不正です: %w", err)
	}
	if req.RadiusMeters <= 0 {
		return nil, fmt.Errorf("半径は正の値が必要です: %f", req.RadiusMeters)
	}
	if !req.Filter.AnyEnabled() {
		return nil, fmt.Errorf("有効な地物クラスが1つもありません（少なくとも1クラスを有効にしてください）")
	}

	// Step 1: キャッシュ照会（座標4桁・半径整数に丸めた複合キー）
	cacheKey := repoImpl.BuildCacheKey(req.Center, req.RadiusMeters, req.Filter)
	if ds, ok := u.cache.Get(cacheKey); ok {
		metrics.CacheHits.Inc()
		log.Printf("💾 キャッシュヒット: %s", cacheKey)
		return ds, nil
	}

	// Step 2: 境界ボックスとクエリを構築
	bbox := helper.BoundingBoxFromCenter(req.Center.Lat, req.Center.Lon, req.RadiusMeters)
	query := u.queryBuilder.Build(bbox, req.Filter)

	// Step 3: 外側タイムアウト付きで取得
	timeoutSec := req.TimeoutSeconds
	if timeoutSec <= 0 {
		timeoutSec = DefaultFetchTimeoutSec
	}
	fetchCtx, cancel := context.WithTimeout(ctx, time.Duration(timeoutSec)*time.Second)
	defer cancel()

	log.Printf("🚀 地物取得開始 (中心: %.5f,%.5f 半径: %.0fm)", req.Center.Lat, req.Center.Lon, req.RadiusMeters)
	start := time.Now()

	raw, err := u.fetcher.Fetch(fetchCtx, query)
	if err != nil {
		return nil, fmt.Errorf("地物の取得に失敗: %w", err)
	}
	endpoint := u.fetcher.CurrentEndpoint()

	// Step 4: 2パスでグラフを再構成
	parsed, err := u.parser.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("レスポンスの解析に失敗: %w", err)
	}

	elapsed := time.Since(start)
	metrics.FetchDuration.Observe(elapsed.Seconds())

	dataset := &model.Dataset{
		ID:        uuid.New().String(),
		Origin:    req.Center,
		Bounds:    bbox,
		FetchedAt: time.Now(),
		Features:  parsed.Features,
		Buildings: parsed.Buildings,
		Streets:   parsed.Streets,
	}

	u.cache.Add(cacheKey, dataset)
	log.Printf("✅ 地物取得完了 (%v): %s", elapsed, dataset.Summary())

	// Step 5: 取得記録のアーカイブ（失敗しても取得自体は成功として扱う）
	u.archiveRun(ctx, req, parsed, endpoint, elapsed)

	return dataset, nil
}

// DatasetByID はキャッシュ内のデータセットをIDで検索する
func (u *datasetFetchUseCaseImpl) DatasetByID(id string) (*model.Dataset, bool) {
	return u.cache.FindByID(id)
}

// ResetCache はデータセットキャッシュ全体を破棄する
func (u *datasetFetchUseCaseImpl) ResetCache() {
	u.cache.Reset()
	log.Printf("🗑️ データセットキャッシュを破棄しました")
}

// RecentRuns は直近の取得記録をアーカイブから取得する
func (u *datasetFetchUseCaseImpl) RecentRuns(ctx context.Context, limit int) ([]model.FetchRun, error) {
	if u.archiveRepo == nil {
		return nil, fmt.Errorf("アーカイブリポジトリが設定されていません")
	}
	return u.archiveRepo.ListRecentRuns(ctx, limit)
}

// archiveRun は取得実行1回分を記録する。失敗はログに留める
func (u *datasetFetchUseCaseImpl) archiveRun(ctx context.Context, req *model.FetchRequest, parsed *overpass.ParseResult, endpoint string, elapsed time.Duration) {
	if u.archiveRepo == nil {
		return
	}

	run := &model.FetchRun{
		CenterLat:      req.Center.Lat,
		CenterLon:      req.Center.Lon,
		RadiusMeters:   req.RadiusMeters,
		FeatureCount:   len(parsed.Features),
		BuildingCount:  len(parsed.Buildings),
		StreetCount:    len(parsed.Streets),
		DurationMillis: elapsed.Milliseconds(),
		Endpoint:       endpoint,
	}
	if err := u.archiveRepo.RecordFetchRun(ctx, run); err != nil {
		log.Printf("⚠️ 取得記録のアーカイブに失敗（処理は継続）: %v", err)
	}
}
