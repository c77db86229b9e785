package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	catalogadapters "banknote_backend/internal/feature/catalog/adapters"
	catalogusecase "banknote_backend/internal/feature/catalog/usecase"
	datasetusecase "banknote_backend/internal/feature/dataset/usecase"
	infradb "banknote_backend/internal/platform/db"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("[INFO] .env not found; using system environment variables")
	}

	db := infradb.OpenDB()
	imageRepo := catalogadapters.NewImageRepository(db)
	catalogUC := catalogusecase.NewCatalogUsecase(imageRepo)
	uc := datasetusecase.NewDatasetUsecase(datasetusecase.LoadConfig(), catalogUC)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	processed, err := uc.PrepareDataset(ctx)
	if err != nil {
		log.Fatal(err)
	}
	log.Println("dataset ok:", processed, "images")
}
