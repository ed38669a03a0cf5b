package main

import (
	"os"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	_ "docbridge/internal/function"
	"docbridge/internal/logging"
)

// main runs the registered functions locally. Set FUNCTION_TARGET to Handler
// or HandleEvent to serve a single one at "/".
func main() {
	logger, err := logging.New(os.Getenv("LOG_DEVELOPMENT") == "true")
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	port := "8080"
	if p := os.Getenv("PORT"); p != "" {
		port = p
	}

	logger.Info("starting functions framework", zap.String("port", port))
	if err := funcframework.Start(port); err != nil {
		logger.Fatal("functions framework stopped", zap.Error(err))
	}
}
