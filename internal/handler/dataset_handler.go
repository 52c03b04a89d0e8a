package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"CityScape3D/internal/domain/model"
	"CityScape3D/internal/usecase"
)

// DatasetHandler は地物データセットAPIのハンドラー
type DatasetHandler struct {
	fetchUseCase usecase.DatasetFetchUseCase
}

// NewDatasetHandler は新しいDatasetHandlerインスタンスを作成
func NewDatasetHandler(fetchUseCase usecase.DatasetFetchUseCase) *DatasetHandler {
	return &DatasetHandler{
		fetchUseCase: fetchUseCase,
	}
}

// PostFetchDataset は地物データセットを取得・構築するエンドポイント
// POST /datasets/fetch
func (h *DatasetHandler) PostFetchDataset(c *gin.Context) {
	var req model.FetchRequest

	// リクエストボディのバインド
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "リクエストの形式が正しくありません",
			"details": err.Error(),
		})
		return
	}

	// バリデーション（ネットワークに出る前に検証する）
	if err := h.validateRequest(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "バリデーションエラー",
			"details": err.Error(),
		})
		return
	}

	// UseCase呼び出し
	dataset, err := h.fetchUseCase.FetchDataset(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "地物データセットの取得に失敗しました",
			"details": err.Error(),
		})
		return
	}

	// 成功レスポンス
	c.JSON(http.StatusOK, gin.H{
		"dataset": dataset,
		"summary": dataset.Summary(),
		"counts":  dataset.CountsByType(),
	})
}

// GetDataset はキャッシュ済みデータセットをIDで取得するエンドポイント
// GET /datasets/:id
func (h *DatasetHandler) GetDataset(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "dataset_idが指定されていません",
		})
		return
	}

	dataset, ok := h.fetchUseCase.DatasetByID(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "データセットが見つかりません（キャッシュから追い出された可能性があります）",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"dataset": dataset,
		"summary": dataset.Summary(),
	})
}

// DeleteCache はデータセットキャッシュを破棄するエンドポイント
// DELETE /datasets/cache
func (h *DatasetHandler) DeleteCache(c *gin.Context) {
	h.fetchUseCase.ResetCache()
	c.JSON(http.StatusOK, gin.H{
		"message": "キャッシュを破棄しました",
	})
}

// GetArchiveRuns は直近の取得記録を返すエンドポイント
// GET /archive/runs?limit=10
func (h *DatasetHandler) GetArchiveRuns(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "limitは正の整数で指定してください",
			})
			return
		}
		limit = parsed
	}

	runs, err := h.fetchUseCase.RecentRuns(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "取得記録の一覧取得に失敗しました",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"runs":  runs,
		"count": len(runs),
	})
}

// validateRequest はリクエストの詳細バリデーションを行う
func (h *DatasetHandler) validateRequest(req *model.FetchRequest) error {
	if req.Center.Lat < -90 || req.Center.Lat > 90 {
		return &ValidationError{Field: "center.lat", Message: "緯度は-90から90の範囲で指定してください"}
	}
	if req.Center.Lon < -180 || req.Center.Lon > 180 {
		return &ValidationError{Field: "center.lon", Message: "経度は-180から180の範囲で指定してください"}
	}
	if req.RadiusMeters <= 0 {
		return &ValidationError{Field: "radius_meters", Message: "半径は正の値で指定してください"}
	}
	if req.TimeoutSeconds < 0 {
		return &ValidationError{Field: "timeout_seconds", Message: "タイムアウトは0以上で指定してください"}
	}
	return nil
}

// ValidationError はバリデーションエラーを表す
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
