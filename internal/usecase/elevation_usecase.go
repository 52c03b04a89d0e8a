package usecase

import (
	"context"
	"fmt"
	"log"

	"CityScape3D/internal/domain/model"
	"CityScape3D/internal/domain/service"
	"CityScape3D/internal/infrastructure/elevation"
)

// RasterFetcher 標高ラスタ取得クライアントの抽象。テストでは偽実装に差し替える
type RasterFetcher interface {
	FetchRaster(ctx context.Context, bbox model.GeoBoundingBox, res model.Resolution) ([]byte, error)
}

type TerrainUseCase interface {
	// BuildTerrain は指定領域の標高グリッドを取得し、地形メッシュを合成する
	// 実データのデコードに失敗した場合は合成グリッドにフォールバックし、
	// 結果にSyntheticフラグを立てる
	BuildTerrain(ctx context.Context, bbox model.GeoBoundingBox, res model.Resolution) (*model.ElevationGrid, *model.Mesh, error)
}

// terrainUseCaseImpl はTerrainUseCaseの実装
type terrainUseCaseImpl struct {
	fetcher  RasterFetcher
	decoder  elevation.GridDecoder
	fallback elevation.GridDecoder
	terrain  *service.TerrainSynthesizer
}

// NewTerrainUseCase は新しいTerrainUseCaseインスタンスを作成
func NewTerrainUseCase(
	fetcher RasterFetcher,
	decoder elevation.GridDecoder,
	fallback elevation.GridDecoder,
	terrain *service.TerrainSynthesizer,
) TerrainUseCase {
	return &terrainUseCaseImpl{
		fetcher:  fetcher,
		decoder:  decoder,
		fallback: fallback,
		terrain:  terrain,
	}
}

// BuildTerrain は指定領域の標高グリッドを取得し、地形メッシュを合成する
func (u *terrainUseCaseImpl) BuildTerrain(ctx context.Context, bbox model.GeoBoundingBox, res model.Resolution) (*model.ElevationGrid, *model.Mesh, error) {
	log.Printf("🚀 地形取得開始 (%.0fm x %.0fm, 解像度: %s)", bbox.WidthMeters(), bbox.HeightMeters(), res)

	raw, err := u.fetcher.FetchRaster(ctx, bbox, res)
	if err != nil {
		return nil, nil, fmt.Errorf("標高ラスタの取得に失敗: %w", err)
	}

	grid, err := u.decoder.Decode(raw, bbox, res)
	if err != nil {
		if u.fallback == nil {
			return nil, nil, fmt.Errorf("標高ラスタのデコードに失敗: %w", err)
		}
		log.Printf("⚠️ 標高ラスタのデコードに失敗、合成グリッドで代替します: %v", err)
		grid, err = u.fallback.Decode(raw, bbox, res)
		if err != nil {
			return nil, nil, fmt.Errorf("合成グリッドの生成に失敗: %w", err)
		}
	}

	mesh, err := u.terrain.BuildMesh(grid, model.Point3{})
	if err != nil {
		return nil, nil, fmt.Errorf("地形メッシュの合成に失敗: %w", err)
	}

	log.Printf("✅ 地形合成完了: %dx%dグリッド, 頂点%d件 (synthetic=%t)", grid.Rows(), grid.Cols(), len(mesh.Vertices), grid.Synthetic)
	return grid, &mesh, nil
}
