package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/3vaseline3-ai/yuutai-site/internal/api"
	"github.com/3vaseline3-ai/yuutai-site/internal/api/handlers"
	"github.com/3vaseline3-ai/yuutai-site/internal/pipeline"
	"github.com/3vaseline3-ai/yuutai-site/pkg/config"
	"github.com/3vaseline3-ai/yuutai-site/pkg/logger"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "APIサーバー起動",
	Long: `在庫とパフォーマンスを返すREST APIサーバーを起動します。

Endpoints:
  GET /health                        - Health check
  GET /api/zaiko?month=N&code=XXXX   - 在庫スナップショット
  GET /api/performance?month=N       - パフォーマンス結果

Example:
  go run ./cmd/yuutai serve
  go run ./cmd/yuutai serve --port 8089`,
	RunE: runServe,
}

var servePort string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "APIサーバーのポート")
}

func runServe(cmd *cobra.Command, args []string) error {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Override port if flag is set
	if servePort != "" {
		cfg.API.Port = servePort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.API.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 3. Build pipeline
	p := pipeline.New(cfg, log)

	// 4. Create handlers
	zaikoHandler := handlers.NewZaikoHandler(p, log)
	perfHandler := handlers.NewPerformanceHandler(p, log)

	// 5. Create router and server
	router := api.NewRouter(zaikoHandler, perfHandler, log)
	server := api.New(cfg, log, router)

	// 6. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.API.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET /health")
	fmt.Println("  GET /api/zaiko?month=N&code=XXXX")
	fmt.Println("  GET /api/performance?month=N")
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
