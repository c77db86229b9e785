package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"banknote_backend/internal/app/di"
	"banknote_backend/internal/app/router"
	catalogadapters "banknote_backend/internal/feature/catalog/adapters"
	cataloghandler "banknote_backend/internal/feature/catalog/transport/handler"
	catalogusecase "banknote_backend/internal/feature/catalog/usecase"
	datasethandler "banknote_backend/internal/feature/dataset/transport/handler"
	datasetusecase "banknote_backend/internal/feature/dataset/usecase"
	recognitionadapters "banknote_backend/internal/feature/recognition/adapters"
	recognitionhandler "banknote_backend/internal/feature/recognition/transport/handler"
	recognitionusecase "banknote_backend/internal/feature/recognition/usecase"
	trainingadapters "banknote_backend/internal/feature/training/adapters"
	traininghandler "banknote_backend/internal/feature/training/transport/handler"
	trainingusecase "banknote_backend/internal/feature/training/usecase"
	infradb "banknote_backend/internal/platform/db"
	"banknote_backend/internal/platform/jobs"
	infraredis "banknote_backend/internal/platform/redis"
	"banknote_backend/internal/shared/ratelimiter"
)

func main() {
	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		log.Println("[INFO] .env not found; using system environment variables")
	}

	// db
	db := infradb.OpenDB()

	// Redis
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(); err != nil {
		log.Println("[WARN] Redis unavailable. Running without cache.")
		rdb = nil
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	// アルファベットと検出器
	alpha := di.NewAlphabet()
	detector, cleanup := di.NewDetector(context.Background(), alpha)
	defer cleanup()

	// Repository
	imageRepo := catalogadapters.NewImageRepository(db)
	resultRepo := di.NewRecognitionRepository(rdb, db)
	jobRepo := recognitionadapters.NewJobRepository(db)
	sessionRepo := trainingadapters.NewSessionRepository(db)

	// バッチ認識のバックグラウンド実行基盤
	runner := jobs.NewRunner(1, 16)
	defer runner.Stop()

	// バッチ経路での検出器呼び出しを1分あたり120回までに制限する
	limiter := ratelimiter.NewRateLimiter(120, time.Minute)

	// Usecase
	catalogUC := catalogusecase.NewCatalogUsecase(imageRepo)
	recognitionUC := recognitionusecase.NewRecognitionUsecase(
		detector, alpha, imageRepo, resultRepo, jobRepo, runner, limiter)
	datasetUC := datasetusecase.NewDatasetUsecase(datasetusecase.LoadConfig(), catalogUC)
	trainingUC := trainingusecase.NewTrainingUsecase(sessionRepo)

	// アップロード先ディレクトリ
	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		log.Fatalf("failed to create upload dir: %v", err)
	}

	// Handler
	catalogH := cataloghandler.NewCatalogHandler(catalogUC, recognitionUC, uploadDir)
	recognitionH := recognitionhandler.NewRecognitionHandler(recognitionUC)
	datasetH := datasethandler.NewDatasetHandler(datasetUC)
	trainingH := traininghandler.NewTrainingHandler(trainingUC)

	// ルータ生成
	router := router.NewRouter(catalogH, recognitionH, datasetH, trainingH, uploadDir)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := router.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
