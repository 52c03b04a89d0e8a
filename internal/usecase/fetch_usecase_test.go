package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CityScape3D/internal/domain/model"
	"CityScape3D/internal/infrastructure/overpass"
	repoImpl "CityScape3D/internal/repository"
)

// fakeFetcher 固定レスポンスを返す取得クライアントの偽実装
type fakeFetcher struct {
	response []byte
	err      error
	calls    int
}

func (f *fakeFetcher) Fetch(ctx context.Context, query string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func (f *fakeFetcher) CurrentEndpoint() string { return "fake" }

// fakeArchive 記録された取得実行を保持する偽アーカイブ
type fakeArchive struct {
	runs []model.FetchRun
	err  error
}

func (a *fakeArchive) RecordFetchRun(ctx context.Context, run *model.FetchRun) error {
	if a.err != nil {
		return a.err
	}
	a.runs = append(a.runs, *run)
	return nil
}

func (a *fakeArchive) ListRecentRuns(ctx context.Context, limit int) ([]model.FetchRun, error) {
	return a.runs, nil
}

const sampleResponse = `{"elements": [
	{"type": "node", "id": 1, "lat": 35.0, "lon": 135.0},
	{"type": "node", "id": 2, "lat": 35.0, "lon": 135.001},
	{"type": "node", "id": 3, "lat": 35.001, "lon": 135.001},
	{"type": "way", "id": 100, "nodes": [1, 2, 3], "tags": {"building": "yes"}}
]}`

func newFetchUseCase(t *testing.T, fetcher OverpassFetcher, archive *fakeArchive) DatasetFetchUseCase {
	t.Helper()
	cache, err := repoImpl.NewDatasetCache()
	require.NoError(t, err)

	if archive == nil {
		return NewDatasetFetchUseCase(fetcher, overpass.NewQueryBuilder(), overpass.NewParser(), cache, nil)
	}
	return NewDatasetFetchUseCase(fetcher, overpass.NewQueryBuilder(), overpass.NewParser(), cache, archive)
}

func testFetchRequest() *model.FetchRequest {
	return &model.FetchRequest{
		Center:       model.GeoPoint{Lat: 35.0047, Lon: 135.7700},
		RadiusMeters: 500,
		Filter:       model.DefaultFeatureFilter(),
	}
}

func TestFetchDataset(t *testing.T) {
	t.Run("取得・解析してデータセットを構築する", func(t *testing.T) {
		fetcher := &fakeFetcher{response: []byte(sampleResponse)}
		uc := newFetchUseCase(t, fetcher, nil)

		ds, err := uc.FetchDataset(context.Background(), testFetchRequest())
		require.NoError(t, err)
		assert.NotEmpty(t, ds.ID)
		assert.Equal(t, 35.0047, ds.Origin.Lat)
		assert.Len(t, ds.Features, 1)
		assert.Len(t, ds.Buildings, 1)
		assert.False(t, ds.FetchedAt.IsZero())
	})

	t.Run("同一条件の2回目はキャッシュから返し再取得しない", func(t *testing.T) {
		fetcher := &fakeFetcher{response: []byte(sampleResponse)}
		uc := newFetchUseCase(t, fetcher, nil)

		first, err := uc.FetchDataset(context.Background(), testFetchRequest())
		require.NoError(t, err)
		second, err := uc.FetchDataset(context.Background(), testFetchRequest())
		require.NoError(t, err)

		assert.Equal(t, 1, fetcher.calls)
		assert.Same(t, first, second)
	})

	t.Run("座標の丸めで同じキーになるリクエストもキャッシュヒットする", func(t *testing.T) {
		fetcher := &fakeFetcher{response: []byte(sampleResponse)}
		uc := newFetchUseCase(t, fetcher, nil)

		req1 := testFetchRequest()
		_, err := uc.FetchDataset(context.Background(), req1)
		require.NoError(t, err)

		// 小数4桁までは同一（約11m未満の違い）
		req2 := testFetchRequest()
		req2.Center.Lat = 35.00472
		_, err = uc.FetchDataset(context.Background(), req2)
		require.NoError(t, err)
		assert.Equal(t, 1, fetcher.calls)
	})

	t.Run("ResetCache後は再取得する", func(t *testing.T) {
		fetcher := &fakeFetcher{response: []byte(sampleResponse)}
		uc := newFetchUseCase(t, fetcher, nil)

		_, err := uc.FetchDataset(context.Background(), testFetchRequest())
		require.NoError(t, err)
		uc.ResetCache()
		_, err = uc.FetchDataset(context.Background(), testFetchRequest())
		require.NoError(t, err)
		assert.Equal(t, 2, fetcher.calls)
	})

	t.Run("DatasetByIDでキャッシュ済みデータセットを引ける", func(t *testing.T) {
		fetcher := &fakeFetcher{response: []byte(sampleResponse)}
		uc := newFetchUseCase(t, fetcher, nil)

		ds, err := uc.FetchDataset(context.Background(), testFetchRequest())
		require.NoError(t, err)

		found, ok := uc.DatasetByID(ds.ID)
		assert.True(t, ok)
		assert.Same(t, ds, found)

		_, ok = uc.DatasetByID("unknown")
		assert.False(t, ok)
	})

	t.Run("範囲外の座標はネットワークに出る前にエラー", func(t *testing.T) {
		fetcher := &fakeFetcher{response: []byte(sampleResponse)}
		uc := newFetchUseCase(t, fetcher, nil)

		req := testFetchRequest()
		req.Center.Lat = 91
		_, err := uc.FetchDataset(context.Background(), req)
		assert.Error(t, err)
		assert.Equal(t, 0, fetcher.calls)
	})

	t.Run("全クラス無効のフィルタはネットワークに出る前にエラー", func(t *testing.T) {
		fetcher := &fakeFetcher{response: []byte(sampleResponse)}
		uc := newFetchUseCase(t, fetcher, nil)

		req := testFetchRequest()
		req.Filter = model.FeatureFilter{}
		_, err := uc.FetchDataset(context.Background(), req)
		assert.Error(t, err)
		assert.Equal(t, 0, fetcher.calls)
	})

	t.Run("半径0はエラー", func(t *testing.T) {
		uc := newFetchUseCase(t, &fakeFetcher{}, nil)
		req := testFetchRequest()
		req.RadiusMeters = 0
		_, err := uc.FetchDataset(context.Background(), req)
		assert.Error(t, err)
	})

	t.Run("取得の失敗はそのまま返す", func(t *testing.T) {
		fetcher := &fakeFetcher{err: errors.New("all endpoints failed")}
		uc := newFetchUseCase(t, fetcher, nil)
		_, err := uc.FetchDataset(context.Background(), testFetchRequest())
		assert.Error(t, err)
	})

	t.Run("取得実行はアーカイブに記録される", func(t *testing.T) {
		archive := &fakeArchive{}
		fetcher := &fakeFetcher{response: []byte(sampleResponse)}
		uc := newFetchUseCase(t, fetcher, archive)

		_, err := uc.FetchDataset(context.Background(), testFetchRequest())
		require.NoError(t, err)
		require.Len(t, archive.runs, 1)
		assert.Equal(t, 35.0047, archive.runs[0].CenterLat)
		assert.Equal(t, 1, archive.runs[0].FeatureCount)
		assert.Equal(t, "fake", archive.runs[0].Endpoint)
	})

	t.Run("アーカイブの失敗は取得を失敗させない", func(t *testing.T) {
		archive := &fakeArchive{err: errors.New("db down")}
		fetcher := &fakeFetcher{response: []byte(sampleResponse)}
		uc := newFetchUseCase(t, fetcher, archive)

		ds, err := uc.FetchDataset(context.Background(), testFetchRequest())
		require.NoError(t, err)
		assert.NotNil(t, ds)
	})
}
