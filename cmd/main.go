package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"CityScape3D/internal/database"
	"CityScape3D/internal/domain/kernel"
	domainRepo "CityScape3D/internal/domain/repository"
	"CityScape3D/internal/domain/service"
	"CityScape3D/internal/handler"
	pgdb "CityScape3D/internal/infrastructure/database"
	"CityScape3D/internal/infrastructure/elevation"
	"CityScape3D/internal/infrastructure/firestore"
	"CityScape3D/internal/infrastructure/overpass"
	"CityScape3D/internal/repository"
	"CityScape3D/internal/usecase"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using system environment variables")
	}

	ctx := context.Background()

	// 取得パイプライン（Overpass）
	overpassClient := overpass.NewClient()
	queryBuilder := overpass.NewQueryBuilder()
	parser := overpass.NewParser()

	datasetCache, err := repository.NewDatasetCache()
	if err != nil {
		log.Fatalf("❌ データセットキャッシュの初期化に失敗: %v", err)
	}

	// アーカイブリポジトリ（任意：未設定なら記録なしで起動する）
	archiveRepo := newArchiveRepository()

	fetchUseCase := usecase.NewDatasetFetchUseCase(overpassClient, queryBuilder, parser, datasetCache, archiveRepo)

	// 合成パイプライン
	meshKernel := kernel.NewMeshKernel()
	buildingSyn := service.NewBuildingSynthesizer(meshKernel)
	corridorSyn := service.NewCorridorSynthesizer(meshKernel)
	areaSyn := service.NewAreaSynthesizer(meshKernel, corridorSyn)

	// スナップショットリポジトリ（任意：Firestoreプロジェクト未設定なら保存しない）
	snapshotRepo := newSnapshotRepository(ctx)

	synthesisUseCase := usecase.NewGeometrySynthesisUseCase(buildingSyn, corridorSyn, areaSyn, snapshotRepo)

	// 地形パイプライン（OpenTopography）
	openTopoClient := elevation.NewOpenTopoClient(os.Getenv("OPENTOPO_API_KEY"))
	terrainUseCase := usecase.NewTerrainUseCase(
		openTopoClient,
		elevation.NewGeoTIFFDecoder(),
		elevation.NewSyntheticDecoder(),
		service.NewTerrainSynthesizer(),
	)

	// ハンドラーの初期化
	datasetHandler := handler.NewDatasetHandler(fetchUseCase)
	geometryHandler := handler.NewGeometryHandler(fetchUseCase, synthesisUseCase)
	terrainHandler := handler.NewTerrainHandler(terrainUseCase)

	// Ginエンジンのセットアップ
	router := gin.Default()

	router.POST("/datasets/fetch", datasetHandler.PostFetchDataset)
	router.GET("/datasets/:id", datasetHandler.GetDataset)
	router.DELETE("/datasets/cache", datasetHandler.DeleteCache)
	router.GET("/archive/runs", datasetHandler.GetArchiveRuns)

	router.POST("/geometry/buildings", geometryHandler.PostBuildings)
	router.POST("/geometry/streets", geometryHandler.PostStreets)
	router.POST("/geometry/areas", geometryHandler.PostAreas)

	router.POST("/terrain", terrainHandler.PostTerrain)

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy", "service": "CityScape3D"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	fmt.Printf("CityScape3D server starting on :%s...\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("❌ サーバーの起動に失敗: %v", err)
	}
}

// newArchiveRepository は環境変数から取得記録リポジトリを選択する
// DATABASE_URL（またはSupabaseのDB接続情報）があればPostgres直結、
// なければSupabase REST、どちらもなければnil（記録なし）を返す
func newArchiveRepository() domainRepo.DatasetArchiveRepository {
	if os.Getenv("DATABASE_URL") != "" || os.Getenv("SUPABASE_DB_PASSWORD") != "" {
		client, err := pgdb.NewPostgreSQLClient()
		if err != nil {
			log.Printf("⚠️ PostgreSQL接続に失敗、取得記録なしで起動します: %v", err)
			return nil
		}
		fmt.Println("✅ PostgreSQL connection successful!")
		return repository.NewPostgresFetchLogRepository(client)
	}

	if os.Getenv("SUPABASE_URL") != "" && os.Getenv("SUPABASE_ANON_KEY") != "" {
		client, err := database.NewSupabaseClient()
		if err != nil {
			log.Printf("⚠️ Supabase接続に失敗、取得記録なしで起動します: %v", err)
			return nil
		}
		fmt.Println("✅ Supabase connection successful!")
		return repository.NewSupabaseFetchLogRepository(client)
	}

	fmt.Println("Warning: archive repository not configured, fetch runs will not be recorded")
	return nil
}

// newSnapshotRepository は環境変数からスナップショットリポジトリを初期化する
func newSnapshotRepository(ctx context.Context) domainRepo.GeometrySnapshotRepository {
	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	if projectID == "" {
		fmt.Println("Warning: GOOGLE_CLOUD_PROJECT not set, geometry snapshots will not be saved")
		return nil
	}

	client, err := firestore.NewFirestoreClient(ctx, projectID)
	if err != nil {
		log.Printf("⚠️ Firestore接続に失敗、スナップショットなしで起動します: %v", err)
		return nil
	}
	return repository.NewFirestoreSnapshotRepository(client.GetClient())
}
