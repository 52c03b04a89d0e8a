package elevation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CityScape3D/internal/domain/model"
)

func testBBox() model.GeoBoundingBox {
	return model.GeoBoundingBox{South: 34.99, West: 134.99, North: 35.01, East: 135.01}
}

func TestFetchRasterValidation(t *testing.T) {
	t.Run("未対応の解像度はネットワークに出る前にエラー", func(t *testing.T) {
		client := NewOpenTopoClient("key")
		_, err := client.FetchRaster(context.Background(), testBBox(), model.Resolution("10m"))
		assert.Error(t, err)
	})

	t.Run("不正な境界ボックスはエラー", func(t *testing.T) {
		client := NewOpenTopoClient("key")
		bbox := model.GeoBoundingBox{South: 35.01, West: 134.99, North: 34.99, East: 135.01}
		_, err := client.FetchRaster(context.Background(), bbox, model.Resolution90m)
		assert.Error(t, err)
	})

	t.Run("APIキー未設定はエラー", func(t *testing.T) {
		client := NewOpenTopoClient("")
		_, err := client.FetchRaster(context.Background(), testBBox(), model.Resolution90m)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "OPENTOPO_API_KEY")
	})
}

func TestSyntheticDecoder(t *testing.T) {
	decoder := NewSyntheticDecoder()

	t.Run("同じ入力からは同じグリッドが生成される", func(t *testing.T) {
		data := []byte("raster bytes")
		a, err := decoder.Decode(data, testBBox(), model.Resolution90m)
		require.NoError(t, err)
		b, err := decoder.Decode(data, testBBox(), model.Resolution90m)
		require.NoError(t, err)
		assert.Equal(t, a.Values, b.Values)
	})

	t.Run("異なるシードは異なる地形になる", func(t *testing.T) {
		a, err := decoder.Decode([]byte("aaaa"), testBBox(), model.Resolution90m)
		require.NoError(t, err)
		b, err := decoder.Decode([]byte("zzzz"), testBBox(), model.Resolution90m)
		require.NoError(t, err)
		assert.NotEqual(t, a.Values, b.Values)
	})

	t.Run("合成グリッドはSyntheticフラグが立つ", func(t *testing.T) {
		grid, err := decoder.Decode(nil, testBBox(), model.Resolution90m)
		require.NoError(t, err)
		assert.True(t, grid.Synthetic)
		assert.Equal(t, 90.0, grid.CellSize)
	})

	t.Run("グリッド寸法は8〜256に収まる", func(t *testing.T) {
		tiny := model.GeoBoundingBox{South: 35.0, West: 135.0, North: 35.0001, East: 135.0001}
		grid, err := decoder.Decode(nil, tiny, model.Resolution90m)
		require.NoError(t, err)
		assert.Equal(t, 8, grid.Rows())
		assert.Equal(t, 8, grid.Cols())
	})
}

func TestClampGridDim(t *testing.T) {
	assert.Equal(t, 8, clampGridDim(0))
	assert.Equal(t, 64, clampGridDim(64))
	assert.Equal(t, 256, clampGridDim(10000))
}
