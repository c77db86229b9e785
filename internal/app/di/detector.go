// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"log/slog"
	"os"

	"banknote_backend/internal/feature/recognition/adapters/gemini"
	"banknote_backend/internal/feature/recognition/adapters/vision"
	"banknote_backend/internal/feature/recognition/adapters/yolohttp"
	"banknote_backend/internal/feature/recognition/usecase"
	infrahttp "banknote_backend/internal/platform/http"
	"banknote_backend/internal/shared/alphabet"
)

// NewDetector selects and builds a symbol detector from environment variables.
// Priority: YOLO_INFERENCE_URL, then DETECTOR=vision, then DETECTOR=gemini.
// When nothing is configured it returns a nil detector and recognition falls
// back to filename-derived results. The returned cleanup is never nil.
func NewDetector(ctx context.Context, alpha *alphabet.Alphabet) (usecase.Detector, func()) {
	noop := func() {}

	if cfg := yolohttp.LoadConfig(); cfg.BaseURL != "" {
		client := yolohttp.NewClient(cfg, infrahttp.NewHTTPClient(cfg.Timeout))
		classes, err := client.CheckHealth(ctx)
		switch {
		case err != nil:
			slog.Warn("YOLO inference service health check failed; recognition will fall back on errors",
				"url", cfg.BaseURL, "error", err)
		case classes != 0 && classes != alpha.Len():
			slog.Warn("YOLO inference service class count does not match the alphabet",
				"service_classes", classes, "alphabet_len", alpha.Len())
		}
		return client, noop
	}

	switch os.Getenv("DETECTOR") {
	case "vision":
		det, err := vision.NewSymbolDetector(ctx, alpha)
		if err != nil {
			slog.Warn("failed to create vision detector; continuing without one", "error", err)
			return nil, noop
		}
		return det, func() {
			if err := det.Close(); err != nil {
				slog.Warn("failed to close vision client", "error", err)
			}
		}
	case "gemini":
		det, err := gemini.NewSymbolDetector(ctx, alpha)
		if err != nil {
			slog.Warn("failed to create gemini detector; continuing without one", "error", err)
			return nil, noop
		}
		return det, noop
	}

	return nil, noop
}

// NewAlphabet loads the recognition alphabet from ALPHABET_PATH when set.
// On any load error it logs a warning and returns the built-in default so
// the server can still start.
func NewAlphabet() *alphabet.Alphabet {
	path := os.Getenv("ALPHABET_PATH")
	if path == "" {
		return alphabet.Default()
	}
	alpha, err := alphabet.Load(path)
	if err != nil {
		slog.Warn("failed to load alphabet file; using built-in default", "path", path, "error", err)
		return alphabet.Default()
	}
	return alpha
}
