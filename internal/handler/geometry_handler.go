package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"CityScape3D/internal/domain/model"
	"CityScape3D/internal/usecase"
)

// GeometryHandler はジオメトリ合成APIのハンドラー
type GeometryHandler struct {
	fetchUseCase     usecase.DatasetFetchUseCase
	synthesisUseCase usecase.GeometrySynthesisUseCase
}

// NewGeometryHandler は新しいGeometryHandlerインスタンスを作成
func NewGeometryHandler(fetchUseCase usecase.DatasetFetchUseCase, synthesisUseCase usecase.GeometrySynthesisUseCase) *GeometryHandler {
	return &GeometryHandler{
		fetchUseCase:     fetchUseCase,
		synthesisUseCase: synthesisUseCase,
	}
}

// synthesisRequest は合成エンドポイント共通のリクエストボディ
type synthesisRequest struct {
	DatasetID string `json:"dataset_id"`
}

// PostBuildings は建物ボリュームを合成するエンドポイント
// POST /geometry/buildings
func (h *GeometryHandler) PostBuildings(c *gin.Context) {
	h.synthesize(c, h.synthesisUseCase.BuildBuildings)
}

// PostStreets は道路サーフェスを合成するエンドポイント
// POST /geometry/streets
func (h *GeometryHandler) PostStreets(c *gin.Context) {
	h.synthesize(c, h.synthesisUseCase.BuildStreets)
}

// PostAreas は面地物サーフェスを合成するエンドポイント
// POST /geometry/areas
func (h *GeometryHandler) PostAreas(c *gin.Context) {
	h.synthesize(c, h.synthesisUseCase.BuildAreas)
}

// synthesize は合成エンドポイント共通の処理
// データセットをIDで解決し、バッチ結果（成功数・スキップ数・理由を含む）を返す
func (h *GeometryHandler) synthesize(c *gin.Context, build func(ctx context.Context, ds *model.Dataset) (*model.GeometryBatch, error)) {
	var req synthesisRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "リクエストの形式が正しくありません",
			"details": err.Error(),
		})
		return
	}
	if req.DatasetID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "dataset_idが指定されていません",
		})
		return
	}

	dataset, ok := h.fetchUseCase.DatasetByID(req.DatasetID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "データセットが見つかりません（先にPOST /datasets/fetchを実行してください）",
		})
		return
	}

	batch, err := build(c.Request.Context(), dataset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "ジオメトリの合成に失敗しました",
			"details": err.Error(),
		})
		return
	}

	// 個々のスキップはバッチの失敗ではない。常に集計付きで200を返す
	c.JSON(http.StatusOK, gin.H{
		"batch":        batch,
		"built":        batch.Built,
		"skipped":      batch.Skipped,
		"skip_reasons": batch.SkipReasons,
		"summary":      batch.Summary,
	})
}
