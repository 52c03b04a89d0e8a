package usecase

import (
	"context"
	"fmt"
	"log"

	"CityScape3D/internal/domain/kernel"
	"CityScape3D/internal/domain/model"
	"CityScape3D/internal/domain/repository"
	"CityScape3D/internal/domain/service"
	"CityScape3D/internal/metrics"
)

const (
	// railwayWidthMeters 線路の帯状サーフェスの固定幅（メートル）
	railwayWidthMeters = 4.0
	// amenityMarkerLength アメニティマーカーの垂直線分の長さ（メートル）
	amenityMarkerLength = 8.0
	// snapshotTTLHours 合成スナップショットの保持時間
	snapshotTTLHours = 24
)

type GeometrySynthesisUseCase interface {
	// BuildBuildings はデータセット内の全建物を並列に押し出し合成する
	BuildBuildings(ctx context.Context, ds *model.Dataset) (*model.GeometryBatch, error)

	// BuildStreets はデータセット内の全道路の帯状サーフェスを並列に合成する
	BuildStreets(ctx context.Context, ds *model.Dataset) (*model.GeometryBatch, error)

	// BuildAreas は水域・公園・土地利用・線路・アメニティを並列に合成する
	BuildAreas(ctx context.Context, ds *model.Dataset) (*model.GeometryBatch, error)
}

// geometrySynthesisUseCaseImpl はGeometrySynthesisUseCaseの実装
type geometrySynthesisUseCaseImpl struct {
	buildings    *service.BuildingSynthesizer
	corridors    *service.CorridorSynthesizer
	areas        *service.AreaSynthesizer
	snapshotRepo repository.GeometrySnapshotRepository // nilならスナップショットを保存しない
}

// NewGeometrySynthesisUseCase は新しいGeometrySynthesisUseCaseインスタンスを作成
// snapshotRepoはnil可（記録なしで動作する）
func NewGeometrySynthesisUseCase(
	buildings *service.BuildingSynthesizer,
	corridors *service.CorridorSynthesizer,
	areas *service.AreaSynthesizer,
	snapshotRepo repository.GeometrySnapshotRepository,
) GeometrySynthesisUseCase {
	return &geometrySynthesisUseCaseImpl{
		buildings:    buildings,
		corridors:    corridors,
		areas:        areas,
		snapshotRepo: snapshotRepo,
	}
}

// BuildBuildings はデータセット内の全建物を並列に押し出し合成する
func (u *geometrySynthesisUseCaseImpl) BuildBuildings(ctx context.Context, ds *model.Dataset) (*model.GeometryBatch, error) {
	if ds == nil {
		return nil, fmt.Errorf("データセットがnilです")
	}

	outcome := service.RunParallel(ctx, "建物", len(ds.Buildings), func(i int) service.SynthesisOutcome[model.Mesh] {
		b := ds.Buildings[i]
		mesh, err := u.buildings.BuildVolume(b, ds.Origin)
		if err != nil {
			return service.SynthesisOutcome[model.Mesh]{Index: i, SkipReason: fmt.Sprintf("建物 %d: %v", b.ID, err)}
		}
		return service.SynthesisOutcome[model.Mesh]{Index: i, Result: &mesh}
	})

	batch := u.assembleBatch("buildings", outcome, func(i int) string {
		if ds.Buildings[i].Name != "" {
			return ds.Buildings[i].Name
		}
		return fmt.Sprintf("building_%d", ds.Buildings[i].ID)
	})

	u.saveSnapshot(ctx, ds.ID, batch)
	return batch, nil
}

// BuildStreets はデータセット内の全道路の帯状サーフェスを並列に合成する
// 各メッシュと対になる中心線カーブも出力する
func (u *geometrySynthesisUseCaseImpl) BuildStreets(ctx context.Context, ds *model.Dataset) (*model.GeometryBatch, error) {
	if ds == nil {
		return nil, fmt.Errorf("データセットがnilです")
	}

	outcome := service.RunParallel(ctx, "道路", len(ds.Streets), func(i int) service.SynthesisOutcome[model.Mesh] {
		st := ds.Streets[i]
		mesh, err := u.corridors.BuildSurface(st.Centerline, st.WidthMeters(), ds.Origin, kernel.CornerSharp)
		if err != nil {
			return service.SynthesisOutcome[model.Mesh]{Index: i, SkipReason: fmt.Sprintf("道路 %d (%s): %v", st.ID, st.HighwayType, err)}
		}
		return service.SynthesisOutcome[model.Mesh]{Index: i, Result: &mesh}
	})

	batch := u.assembleBatch("streets", outcome, func(i int) string {
		if ds.Streets[i].Name != "" {
			return ds.Streets[i].Name
		}
		return fmt.Sprintf("street_%d", ds.Streets[i].ID)
	})

	for _, st := range ds.Streets {
		curve := u.corridors.CenterlineCurve(st.Centerline, ds.Origin)
		batch.Curves = append(batch.Curves, &curve)
	}

	u.saveSnapshot(ctx, ds.ID, batch)
	return batch, nil
}

// BuildAreas は水域・公園・土地利用・線路・アメニティを並列に合成する
// 湖・公園・土地利用は平面キャップ、河川・線路は帯状サーフェス、
// アメニティは重心位置の垂直マーカーになる
func (u *geometrySynthesisUseCaseImpl) BuildAreas(ctx context.Context, ds *model.Dataset) (*model.GeometryBatch, error) {
	if ds == nil {
		return nil, fmt.Errorf("データセットがnilです")
	}

	var targets []*model.Feature
	for _, f := range ds.Features {
		switch f.Type {
		case model.FeaturePark, model.FeatureWater, model.FeatureLanduse, model.FeatureRailway, model.FeatureAmenity:
			targets = append(targets, f)
		}
	}

	markers := make([]*model.Curve, len(targets))
	outcome := service.RunParallel(ctx, "面地物", len(targets), func(i int) service.SynthesisOutcome[model.Mesh] {
		f := targets[i]

		var mesh model.Mesh
		var err error
		switch f.Type {
		case model.FeatureWater:
			mesh, err = u.areas.BuildWaterGeometry(f, ds.Origin)
		case model.FeatureRailway:
			mesh, err = u.corridors.BuildSurface(f.Geometry, railwayWidthMeters, ds.Origin, kernel.CornerSharp)
		case model.FeatureAmenity:
			// アメニティはメッシュを持たず、マーカーカーブのみ出力する
			_, marker, markerErr := u.areas.BuildAmenityMarker(f, ds.Origin, 0, amenityMarkerLength)
			if markerErr != nil {
				return service.SynthesisOutcome[model.Mesh]{Index: i, SkipReason: fmt.Sprintf("アメニティ %d: %v", f.ID, markerErr)}
			}
			markers[i] = marker
			return service.SynthesisOutcome[model.Mesh]{Index: i, Result: &model.Mesh{}}
		default:
			mesh, err = u.areas.BuildAreaCap(f, ds.Origin)
		}
		if err != nil {
			return service.SynthesisOutcome[model.Mesh]{Index: i, SkipReason: fmt.Sprintf("%s %d: %v", f.Type, f.ID, err)}
		}
		return service.SynthesisOutcome[model.Mesh]{Index: i, Result: &mesh}
	})

	batch := u.assembleBatch("areas", outcome, func(i int) string {
		return targets[i].DisplayName()
	})
	for _, m := range markers {
		if m != nil {
			batch.Curves = append(batch.Curves, m)
		}
	}

	u.saveSnapshot(ctx, ds.ID, batch)
	return batch, nil
}

// assembleBatch は並列合成の集計結果をGeometryBatchに組み立てる
// メッシュスロットは入力位置を保存し、スキップ分はnilのまま残る
func (u *geometrySynthesisUseCaseImpl) assembleBatch(kind string, outcome service.BatchOutcome[model.Mesh], nameOf func(i int) string) *model.GeometryBatch {
	batch := &model.GeometryBatch{
		Kind:        kind,
		Meshes:      make([]*model.Mesh, len(outcome.Outcomes)),
		Names:       make([]string, len(outcome.Outcomes)),
		Built:       outcome.Built,
		Skipped:     outcome.Skipped,
		SkipReasons: outcome.SkipReasons,
		Summary:     model.BatchSummary(kind, outcome.Built, outcome.Skipped),
	}
	for i, o := range outcome.Outcomes {
		batch.Meshes[i] = o.Result
		batch.Names[i] = nameOf(i)
	}

	metrics.SynthesisBuilt.WithLabelValues(kind).Add(float64(outcome.Built))
	metrics.SynthesisSkipped.WithLabelValues(kind).Add(float64(outcome.Skipped))
	return batch
}

// saveSnapshot は合成結果の概要をアーカイブする。失敗はログに留める
func (u *geometrySynthesisUseCaseImpl) saveSnapshot(ctx context.Context, datasetID string, batch *model.GeometryBatch) {
	if u.snapshotRepo == nil {
		return
	}

	snap := &model.GeometrySnapshot{
		DatasetID: datasetID,
		Kind:      batch.Kind,
		Built:     batch.Built,
		Skipped:   batch.Skipped,
		Summary:   batch.Summary,
	}
	if _, err := u.snapshotRepo.SaveSnapshot(ctx, snap, snapshotTTLHours); err != nil {
		log.Printf("⚠️ スナップショットの保存に失敗（処理は継続）: %v", err)
	}
}
