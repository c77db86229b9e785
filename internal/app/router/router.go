package router

import (
	cataloghandler "banknote_backend/internal/feature/catalog/transport/handler"
	datasethandler "banknote_backend/internal/feature/dataset/transport/handler"
	recognitionhandler "banknote_backend/internal/feature/recognition/transport/handler"
	traininghandler "banknote_backend/internal/feature/training/transport/handler"
	"banknote_backend/internal/platform/http/handler"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter(catalog *cataloghandler.CatalogHandler, recognition *recognitionhandler.RecognitionHandler,
	dataset *datasethandler.DatasetHandler, training *traininghandler.TrainingHandler,
	uploadDir string) *gin.Engine {
	r := gin.Default()

	// CORSはルート登録より前に適用する
	r.Use(cors.Default())

	// 導通確認用
	r.GET("/healthz", handler.Health)

	// アップロード済み画像の静的配信
	r.Static("/uploads", uploadDir)

	v1 := r.Group("/v1")
	{
		// 画像カタログ
		v1.POST("/images", catalog.Upload)
		v1.GET("/images", catalog.List)

		// シリアル番号認識
		v1.POST("/recognition/batch", recognition.BatchRecognize)
		v1.GET("/recognition/jobs/:id", recognition.GetJob)
		v1.GET("/recognition/stats", recognition.GetStats)

		// データセット組み立て
		v1.POST("/dataset/prepare", dataset.Prepare)

		// 学習セッション履歴
		v1.GET("/training/sessions", training.ListSessions)
	}

	return r
}
