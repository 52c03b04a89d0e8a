package elevation

import (
	"math"

	"CityScape3D/internal/domain/model"
)

// SyntheticDecoder 実デコードの代わりにもっともらしい地形を合成するプレースホルダ
// レスポンスバイト列から導出したシードで決定的なグリッドを生成する
// 出力は実地形の統計を代表しない。生成結果はSyntheticフラグで明示される
// （GeoTIFFDecoderが対応できないラスタのフォールバックとしてのみ使う）
type SyntheticDecoder struct{}

// NewSyntheticDecoder 新しいSyntheticDecoderインスタンスを作成
func NewSyntheticDecoder() *SyntheticDecoder {
	return &SyntheticDecoder{}
}

// Decode バイト列由来のシードから合成標高グリッドを生成する
func (d *SyntheticDecoder) Decode(data []byte, bbox model.GeoBoundingBox, res model.Resolution) (*model.ElevationGrid, error) {
	var seed float64
	for i, b := range data {
		if i >= 256 {
			break
		}
		seed += float64(b)
	}

	cellSize := res.CellSizeMeters()
	cols := clampGridDim(int(bbox.WidthMeters() / cellSize))
	rows := clampGridDim(int(bbox.HeightMeters() / cellSize))

	values := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		row := make([]float64, cols)
		for j := 0; j < cols; j++ {
			u := float64(j) / float64(cols)
			v := float64(i) / float64(rows)
			row[j] = 20*math.Sin(seed/100+u*4*math.Pi)*math.Cos(seed/137+v*3*math.Pi) +
				5*math.Sin(u*11*math.Pi+seed) +
				seed/50
		}
		values[i] = row
	}

	return &model.ElevationGrid{
		Values:    values,
		CellSize:  cellSize,
		Bounds:    bbox,
		Synthetic: true,
	}, nil
}

// clampGridDim グリッド寸法を実用的な範囲に収める
func clampGridDim(n int) int {
	if n < 8 {
		return 8
	}
	if n > 256 {
		return 256
	}
	return n
}
