package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CityScape3D/internal/domain/kernel"
	"CityScape3D/internal/domain/model"
	"CityScape3D/internal/domain/service"
)

// fakeSnapshotRepo 保存されたスナップショットを保持する偽リポジトリ
type fakeSnapshotRepo struct {
	saved []*model.GeometrySnapshot
}

func (r *fakeSnapshotRepo) SaveSnapshot(ctx context.Context, snap *model.GeometrySnapshot, ttlHours int) (string, error) {
	r.saved = append(r.saved, snap)
	return "snap_test", nil
}

func (r *fakeSnapshotRepo) GetSnapshot(ctx context.Context, id string) (*model.GeometrySnapshot, error) {
	return nil, nil
}

func newSynthesisUseCase(repo *fakeSnapshotRepo) GeometrySynthesisUseCase {
	meshKernel := kernel.NewMeshKernel()
	corridors := service.NewCorridorSynthesizer(meshKernel)
	if repo == nil {
		return NewGeometrySynthesisUseCase(
			service.NewBuildingSynthesizer(meshKernel),
			corridors,
			service.NewAreaSynthesizer(meshKernel, corridors),
			nil,
		)
	}
	return NewGeometrySynthesisUseCase(
		service.NewBuildingSynthesizer(meshKernel),
		corridors,
		service.NewAreaSynthesizer(meshKernel, corridors),
		repo,
	)
}

// squareFootprint 原点付近の約11m四方のフットプリント
func squareFootprint() []model.GeoPoint {
	return []model.GeoPoint{
		{Lat: 35.0, Lon: 135.0},
		{Lat: 35.0, Lon: 135.0001},
		{Lat: 35.0001, Lon: 135.0001},
		{Lat: 35.0001, Lon: 135.0},
	}
}

func testDataset() *model.Dataset {
	height := 12.0
	return &model.Dataset{
		ID:     "ds-test",
		Origin: model.GeoPoint{Lat: 35.0, Lon: 135.0},
		Buildings: []*model.Building{
			{ID: 1, Footprint: squareFootprint(), Height: &height},
			{ID: 2, Footprint: squareFootprint()[:2]}, // 2点では押し出せない
		},
		Streets: []*model.Street{
			{ID: 10, HighwayType: "residential", Centerline: []model.GeoPoint{
				{Lat: 35.0, Lon: 135.0},
				{Lat: 35.0, Lon: 135.001},
			}},
		},
		Features: []*model.Feature{
			{ID: 20, Type: model.FeaturePark, Geometry: squareFootprint(), Tags: map[string]string{"leisure": "park"}},
			{ID: 21, Type: model.FeatureAmenity, Geometry: []model.GeoPoint{{Lat: 35.0, Lon: 135.0005}}, Tags: map[string]string{"amenity": "cafe"}},
		},
	}
}

func TestBuildBuildings(t *testing.T) {
	t.Run("有効な建物は押し出され不正な建物はスキップされる", func(t *testing.T) {
		uc := newSynthesisUseCase(nil)
		batch, err := uc.BuildBuildings(context.Background(), testDataset())
		require.NoError(t, err)

		assert.Equal(t, 1, batch.Built)
		assert.Equal(t, 1, batch.Skipped)
		require.Len(t, batch.Meshes, 2)
		assert.NotNil(t, batch.Meshes[0])
		assert.Nil(t, batch.Meshes[1]) // スキップ分はスロットを保ったままnil
		assert.NotEmpty(t, batch.SkipReasons)

		// 高さ12mの押し出しが最上面に現れる
		maxZ := 0.0
		for _, v := range batch.Meshes[0].Vertices {
			if v.Z > maxZ {
				maxZ = v.Z
			}
		}
		assert.InDelta(t, 12.0, maxZ, 1e-9)
	})

	t.Run("nilデータセットはエラー", func(t *testing.T) {
		uc := newSynthesisUseCase(nil)
		_, err := uc.BuildBuildings(context.Background(), nil)
		assert.Error(t, err)
	})
}

func TestBuildStreets(t *testing.T) {
	t.Run("帯状サーフェスと中心線カーブの両方を出力する", func(t *testing.T) {
		uc := newSynthesisUseCase(nil)
		batch, err := uc.BuildStreets(context.Background(), testDataset())
		require.NoError(t, err)

		assert.Equal(t, 1, batch.Built)
		require.Len(t, batch.Meshes, 1)
		assert.NotNil(t, batch.Meshes[0])
		require.Len(t, batch.Curves, 1)
		assert.Len(t, batch.Curves[0].Points, 2)
	})
}

func TestBuildAreas(t *testing.T) {
	t.Run("公園はキャップ・アメニティはマーカーになる", func(t *testing.T) {
		uc := newSynthesisUseCase(nil)
		batch, err := uc.BuildAreas(context.Background(), testDataset())
		require.NoError(t, err)

		assert.Equal(t, 2, batch.Built)
		assert.Equal(t, 0, batch.Skipped)
		// アメニティのマーカーが垂直線分として付く
		require.Len(t, batch.Curves, 1)
		require.Len(t, batch.Curves[0].Points, 2)
		assert.InDelta(t, 8.0, batch.Curves[0].Points[1].Z-batch.Curves[0].Points[0].Z, 1e-9)
	})

	t.Run("対象外の地物は含めない", func(t *testing.T) {
		uc := newSynthesisUseCase(nil)
		ds := testDataset()
		ds.Features = append(ds.Features, &model.Feature{ID: 30, Type: model.FeatureStreet, Geometry: squareFootprint()})
		batch, err := uc.BuildAreas(context.Background(), ds)
		require.NoError(t, err)
		assert.Len(t, batch.Meshes, 2)
	})
}

func TestSaveSnapshot(t *testing.T) {
	t.Run("バッチ概要がスナップショットとして保存される", func(t *testing.T) {
		repo := &fakeSnapshotRepo{}
		uc := newSynthesisUseCase(repo)

		_, err := uc.BuildBuildings(context.Background(), testDataset())
		require.NoError(t, err)

		require.Len(t, repo.saved, 1)
		assert.Equal(t, "ds-test", repo.saved[0].DatasetID)
		assert.Equal(t, "buildings", repo.saved[0].Kind)
		assert.Equal(t, 1, repo.saved[0].Built)
	})
}
