package unit

import (
	"context"
	"fmt"

	"CityScape3D/internal/domain/helper"
	"CityScape3D/internal/domain/model"
	"CityScape3D/internal/usecase"
)

// FetchUnit 地物取得ユニット。中心点・半径・クラストグルからデータセットを構築する
type FetchUnit struct {
	fetch usecase.DatasetFetchUseCase
}

// NewFetchUnit 新しいFetchUnitインスタンスを作成
func NewFetchUnit(fetch usecase.DatasetFetchUseCase) *FetchUnit {
	return &FetchUnit{fetch: fetch}
}

func (u *FetchUnit) Name() string { return "fetch" }

func (u *FetchUnit) Inputs() []ParamSpec {
	return []ParamSpec{
		{Name: "lat", Kind: KindNumber, Desc: "中心点の緯度"},
		{Name: "lon", Kind: KindNumber, Desc: "中心点の経度"},
		{Name: "radius", Kind: KindNumber, Default: 500.0, Desc: "取得半径（メートル）"},
		{Name: "buildings", Kind: KindBool, Default: true, Desc: "建物を取得する"},
		{Name: "streets", Kind: KindBool, Default: true, Desc: "道路を取得する"},
		{Name: "parks", Kind: KindBool, Default: true, Desc: "公園を取得する"},
		{Name: "water", Kind: KindBool, Default: true, Desc: "水域を取得する"},
		{Name: "railways", Kind: KindBool, Default: false, Desc: "線路を取得する"},
		{Name: "landuse", Kind: KindBool, Default: false, Desc: "土地利用を取得する"},
		{Name: "amenities", Kind: KindBool, Default: false, Desc: "アメニティを取得する"},
		{Name: RunParam, Kind: KindBool, Default: false, Desc: "実行ゲート"},
	}
}

func (u *FetchUnit) Outputs() []ParamSpec {
	return []ParamSpec{
		{Name: "dataset", Kind: KindObject, Desc: "構築されたデータセット"},
		{Name: "summary", Kind: KindText, Desc: "結果概要"},
		{Name: "feature_count", Kind: KindNumber, Desc: "地物数"},
	}
}

func (u *FetchUnit) Execute(ctx context.Context, in Values) (Values, error) {
	in = ApplyDefaults(in, u.Inputs())

	filter := model.FeatureFilter{
		Buildings: in.Bool("buildings", true),
		Streets:   in.Bool("streets", true),
		Parks:     in.Bool("parks", true),
		Water:     in.Bool("water", true),
		Railways:  in.Bool("railways", false),
		Landuse:   in.Bool("landuse", false),
		Amenities: in.Bool("amenities", false),
	}
	if filter.Streets {
		filter.Highways = model.DefaultFeatureFilter().Highways
	}

	req := &model.FetchRequest{
		Center:       model.GeoPoint{Lat: in.Number("lat", 0), Lon: in.Number("lon", 0)},
		RadiusMeters: in.Number("radius", 500.0),
		Filter:       filter,
	}

	ds, err := u.fetch.FetchDataset(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("ユニット %s の実行に失敗: %w", u.Name(), err)
	}

	return Values{
		"dataset":       ds,
		"summary":       ds.Summary(),
		"feature_count": float64(len(ds.Features)),
	}, nil
}

// BuildingsUnit 建物合成ユニット。データセットから押し出しボリュームを生成する
type BuildingsUnit struct {
	synthesis usecase.GeometrySynthesisUseCase
}

// NewBuildingsUnit 新しいBuildingsUnitインスタンスを作成
func NewBuildingsUnit(synthesis usecase.GeometrySynthesisUseCase) *BuildingsUnit {
	return &BuildingsUnit{synthesis: synthesis}
}

func (u *BuildingsUnit) Name() string { return "buildings" }

func (u *BuildingsUnit) Inputs() []ParamSpec {
	return []ParamSpec{
		{Name: "dataset", Kind: KindObject, Desc: "入力データセット"},
		{Name: RunParam, Kind: KindBool, Default: false, Desc: "実行ゲート"},
	}
}

func (u *BuildingsUnit) Outputs() []ParamSpec {
	return batchOutputs("建物ボリューム")
}

func (u *BuildingsUnit) Execute(ctx context.Context, in Values) (Values, error) {
	ds, err := datasetInput(in)
	if err != nil {
		return nil, err
	}
	batch, err := u.synthesis.BuildBuildings(ctx, ds)
	if err != nil {
		return nil, fmt.Errorf("ユニット %s の実行に失敗: %w", u.Name(), err)
	}
	return batchValues(batch), nil
}

// StreetsUnit 道路合成ユニット。データセットから帯状サーフェスと中心線を生成する
type StreetsUnit struct {
	synthesis usecase.GeometrySynthesisUseCase
}

// NewStreetsUnit 新しいStreetsUnitインスタンスを作成
func NewStreetsUnit(synthesis usecase.GeometrySynthesisUseCase) *StreetsUnit {
	return &StreetsUnit{synthesis: synthesis}
}

func (u *StreetsUnit) Name() string { return "streets" }

func (u *StreetsUnit) Inputs() []ParamSpec {
	return []ParamSpec{
		{Name: "dataset", Kind: KindObject, Desc: "入力データセット"},
		{Name: RunParam, Kind: KindBool, Default: false, Desc: "実行ゲート"},
	}
}

func (u *StreetsUnit) Outputs() []ParamSpec {
	return batchOutputs("道路サーフェス")
}

func (u *StreetsUnit) Execute(ctx context.Context, in Values) (Values, error) {
	ds, err := datasetInput(in)
	if err != nil {
		return nil, err
	}
	batch, err := u.synthesis.BuildStreets(ctx, ds)
	if err != nil {
		return nil, fmt.Errorf("ユニット %s の実行に失敗: %w", u.Name(), err)
	}
	return batchValues(batch), nil
}

// AreasUnit 面地物合成ユニット。水域・公園・土地利用・線路・アメニティを生成する
type AreasUnit struct {
	synthesis usecase.GeometrySynthesisUseCase
}

// NewAreasUnit 新しいAreasUnitインスタンスを作成
func NewAreasUnit(synthesis usecase.GeometrySynthesisUseCase) *AreasUnit {
	return &AreasUnit{synthesis: synthesis}
}

func (u *AreasUnit) Name() string { return "areas" }

func (u *AreasUnit) Inputs() []ParamSpec {
	return []ParamSpec{
		{Name: "dataset", Kind: KindObject, Desc: "入力データセット"},
		{Name: RunParam, Kind: KindBool, Default: false, Desc: "実行ゲート"},
	}
}

func (u *AreasUnit) Outputs() []ParamSpec {
	return batchOutputs("面地物サーフェス")
}

func (u *AreasUnit) Execute(ctx context.Context, in Values) (Values, error) {
	ds, err := datasetInput(in)
	if err != nil {
		return nil, err
	}
	batch, err := u.synthesis.BuildAreas(ctx, ds)
	if err != nil {
		return nil, fmt.Errorf("ユニット %s の実行に失敗: %w", u.Name(), err)
	}
	return batchValues(batch), nil
}

// TerrainUnit 地形合成ユニット。中心点・半径・解像度から地形メッシュを生成する
type TerrainUnit struct {
	terrain usecase.TerrainUseCase
}

// NewTerrainUnit 新しいTerrainUnitインスタンスを作成
func NewTerrainUnit(terrain usecase.TerrainUseCase) *TerrainUnit {
	return &TerrainUnit{terrain: terrain}
}

func (u *TerrainUnit) Name() string { return "terrain" }

func (u *TerrainUnit) Inputs() []ParamSpec {
	return []ParamSpec{
		{Name: "lat", Kind: KindNumber, Desc: "中心点の緯度"},
		{Name: "lon", Kind: KindNumber, Desc: "中心点の経度"},
		{Name: "radius", Kind: KindNumber, Default: 500.0, Desc: "取得半径（メートル）"},
		{Name: "resolution", Kind: KindText, Default: string(model.Resolution90m), Desc: "標高解像度 (90m/30m/cop30)"},
		{Name: RunParam, Kind: KindBool, Default: false, Desc: "実行ゲート"},
	}
}

func (u *TerrainUnit) Outputs() []ParamSpec {
	return []ParamSpec{
		{Name: "grid", Kind: KindObject, Desc: "標高グリッド"},
		{Name: "mesh", Kind: KindObject, Desc: "地形メッシュ"},
		{Name: "synthetic", Kind: KindBool, Desc: "合成グリッドかどうか"},
		{Name: "summary", Kind: KindText, Desc: "結果概要"},
	}
}

func (u *TerrainUnit) Execute(ctx context.Context, in Values) (Values, error) {
	in = ApplyDefaults(in, u.Inputs())

	bbox := helper.BoundingBoxFromCenter(in.Number("lat", 0), in.Number("lon", 0), in.Number("radius", 500.0))
	res := model.Resolution(in.Text("resolution", string(model.Resolution90m)))

	grid, mesh, err := u.terrain.BuildTerrain(ctx, bbox, res)
	if err != nil {
		return nil, fmt.Errorf("ユニット %s の実行に失敗: %w", u.Name(), err)
	}

	return Values{
		"grid":      grid,
		"mesh":      mesh,
		"synthetic": grid.Synthetic,
		"summary":   fmt.Sprintf("地形 %dx%d (標高 %.1f〜%.1fm)", grid.Rows(), grid.Cols(), grid.Min(), grid.Max()),
	}, nil
}

// batchOutputs 合成系ユニット共通の出力宣言を組み立てる
func batchOutputs(desc string) []ParamSpec {
	return []ParamSpec{
		{Name: "batch", Kind: KindObject, Desc: desc},
		{Name: "built", Kind: KindNumber, Desc: "成功件数"},
		{Name: "skipped", Kind: KindNumber, Desc: "スキップ件数"},
		{Name: "summary", Kind: KindText, Desc: "結果概要"},
	}
}

// batchValues GeometryBatchを出力Valuesに変換する
func batchValues(batch *model.GeometryBatch) Values {
	return Values{
		"batch":   batch,
		"built":   float64(batch.Built),
		"skipped": float64(batch.Skipped),
		"summary": batch.Summary,
	}
}

// datasetInput dataset入力を取り出して型を検証する
func datasetInput(in Values) (*model.Dataset, error) {
	ds, ok := in.Object("dataset").(*model.Dataset)
	if !ok || ds == nil {
		return nil, fmt.Errorf("dataset入力が設定されていません")
	}
	return ds, nil
}
