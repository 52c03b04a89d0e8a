package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CityScape3D/internal/domain/helper"
	"CityScape3D/internal/domain/model"
	"CityScape3D/internal/domain/service"
)

// fakeRasterFetcher 固定バイト列を返すラスタ取得の偽実装
type fakeRasterFetcher struct {
	data []byte
	err  error
}

func (f *fakeRasterFetcher) FetchRaster(ctx context.Context, bbox model.GeoBoundingBox, res model.Resolution) ([]byte, error) {
	return f.data, f.err
}

// fakeGridDecoder 固定グリッドまたはエラーを返すデコーダの偽実装
type fakeGridDecoder struct {
	grid  *model.ElevationGrid
	err   error
	calls int
}

func (d *fakeGridDecoder) Decode(data []byte, bbox model.GeoBoundingBox, res model.Resolution) (*model.ElevationGrid, error) {
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	return d.grid, nil
}

func flatGrid(synthetic bool) *model.ElevationGrid {
	return &model.ElevationGrid{
		Values: [][]float64{
			{10, 10, 10},
			{10, 10, 10},
			{10, 10, 10},
		},
		CellSize:  90,
		Synthetic: synthetic,
	}
}

func TestBuildTerrain(t *testing.T) {
	bbox := helper.BoundingBoxFromCenter(35.0, 135.0, 500)

	t.Run("デコード成功時は実データのグリッドとメッシュを返す", func(t *testing.T) {
		decoder := &fakeGridDecoder{grid: flatGrid(false)}
		fallback := &fakeGridDecoder{grid: flatGrid(true)}
		uc := NewTerrainUseCase(&fakeRasterFetcher{data: []byte("tiff")}, decoder, fallback, service.NewTerrainSynthesizer())

		grid, mesh, err := uc.BuildTerrain(context.Background(), bbox, model.Resolution90m)
		require.NoError(t, err)
		assert.False(t, grid.Synthetic)
		assert.Len(t, mesh.Vertices, 9)
		assert.Equal(t, 0, fallback.calls)
	})

	t.Run("デコード失敗時は合成グリッドにフォールバックする", func(t *testing.T) {
		decoder := &fakeGridDecoder{err: errors.New("unsupported layout")}
		fallback := &fakeGridDecoder{grid: flatGrid(true)}
		uc := NewTerrainUseCase(&fakeRasterFetcher{data: []byte("junk")}, decoder, fallback, service.NewTerrainSynthesizer())

		grid, mesh, err := uc.BuildTerrain(context.Background(), bbox, model.Resolution90m)
		require.NoError(t, err)
		assert.True(t, grid.Synthetic)
		assert.NotNil(t, mesh)
		assert.Equal(t, 1, decoder.calls)
		assert.Equal(t, 1, fallback.calls)
	})

	t.Run("取得の失敗はそのまま返す", func(t *testing.T) {
		uc := NewTerrainUseCase(&fakeRasterFetcher{err: errors.New("api down")}, &fakeGridDecoder{}, nil, service.NewTerrainSynthesizer())
		_, _, err := uc.BuildTerrain(context.Background(), bbox, model.Resolution90m)
		assert.Error(t, err)
	})

	t.Run("フォールバックなしでデコード失敗ならエラー", func(t *testing.T) {
		decoder := &fakeGridDecoder{err: errors.New("unsupported layout")}
		uc := NewTerrainUseCase(&fakeRasterFetcher{data: []byte("junk")}, decoder, nil, service.NewTerrainSynthesizer())
		_, _, err := uc.BuildTerrain(context.Background(), bbox, model.Resolution90m)
		assert.Error(t, err)
	})

	t.Run("フォールバックも失敗ならエラー", func(t *testing.T) {
		decoder := &fakeGridDecoder{err: errors.New("unsupported layout")}
		fallback := &fakeGridDecoder{err: errors.New("no seed")}
		uc := NewTerrainUseCase(&fakeRasterFetcher{data: []byte("junk")}, decoder, fallback, service.NewTerrainSynthesizer())
		_, _, err := uc.BuildTerrain(context.Background(), bbox, model.Resolution90m)
		assert.Error(t, err)
	})
}
