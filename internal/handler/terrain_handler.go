package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"CityScape3D/internal/domain/helper"
	"CityScape3D/internal/domain/model"
	"CityScape3D/internal/usecase"
)

// TerrainHandler は地形合成APIのハンドラー
type TerrainHandler struct {
	terrainUseCase usecase.TerrainUseCase
}

// NewTerrainHandler は新しいTerrainHandlerインスタンスを作成
func NewTerrainHandler(terrainUseCase usecase.TerrainUseCase) *TerrainHandler {
	return &TerrainHandler{
		terrainUseCase: terrainUseCase,
	}
}

// terrainRequest は地形合成リクエストのボディ
type terrainRequest struct {
	Center       model.GeoPoint `json:"center"`
	RadiusMeters float64        `json:"radius_meters"`
	Resolution   string         `json:"resolution"` // 90m / 30m / cop30（省略時90m）
}

// PostTerrain は標高グリッドを取得し地形メッシュを合成するエンドポイント
// POST /terrain
func (h *TerrainHandler) PostTerrain(c *gin.Context) {
	var req terrainRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "リクエストの形式が正しくありません",
			"details": err.Error(),
		})
		return
	}

	if err := helper.ValidateCoords(req.Center.Lat, req.Center.Lon); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "バリデーションエラー",
			"details": err.Error(),
		})
		return
	}
	if req.RadiusMeters <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "半径は正の値で指定してください",
		})
		return
	}

	resolution := model.Resolution(req.Resolution)
	if req.Resolution == "" {
		resolution = model.Resolution90m
	}
	if _, err := resolution.DEMType(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "バリデーションエラー",
			"details": err.Error(),
		})
		return
	}

	bbox := helper.BoundingBoxFromCenter(req.Center.Lat, req.Center.Lon, req.RadiusMeters)
	grid, mesh, err := h.terrainUseCase.BuildTerrain(c.Request.Context(), bbox, resolution)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "地形の合成に失敗しました",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"mesh":      mesh,
		"rows":      grid.Rows(),
		"cols":      grid.Cols(),
		"min":       grid.Min(),
		"max":       grid.Max(),
		"synthetic": grid.Synthetic,
	})
}
