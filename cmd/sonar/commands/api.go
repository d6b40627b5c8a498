package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/sonar/internal/api"
	"github.com/wonny/sonar/internal/api/handlers"
	"github.com/wonny/sonar/internal/correlation"
	"github.com/wonny/sonar/internal/outcome"
	"github.com/wonny/sonar/internal/scheduler"
	"github.com/wonny/sonar/internal/scheduler/jobs"
	"github.com/wonny/sonar/internal/store"
	"github.com/wonny/sonar/pkg/config"
	"github.com/wonny/sonar/pkg/database"
	"github.com/wonny/sonar/pkg/logger"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "시그널 수집/분석 HTTP API 서버 실행",
	Long: `시그널 인제스트, 상관 분석, 사후 검증, 백테스트를 제공하는
HTTP API 서버를 실행합니다. 설정은 환경변수(.env)로 제어합니다.

Example:
  go run ./cmd/sonar api
  PORT=9000 DB_ENABLED=true DATABASE_URL=postgres://... go run ./cmd/sonar api`,
	RunE: runAPI,
}

func init() {
	rootCmd.AddCommand(apiCmd)
}

func runAPI(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Bool("db_enabled", cfg.Database.Enabled).
		Msg("starting api server")

	// Persistence is optional; the archive lives in memory either way.
	var repo *store.SignalRepository
	if cfg.Database.Enabled {
		db, err := database.New(cfg)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer db.Close()
		repo = store.NewSignalRepository(db.Pool)
	}

	state := handlers.NewState()
	analyzer := correlation.NewAnalyzer(correlation.DefaultConfig(), log)
	validator := outcome.NewValidator(log)

	signalHandler := handlers.NewSignalHandler(state, repo, log)
	analysisHandler := handlers.NewAnalysisHandler(state, analyzer, validator, log)

	router := api.NewRouter(cfg, signalHandler, analysisHandler, log)
	server := api.NewServer(cfg, log, router)

	sched := scheduler.New(log)
	revalidate := jobs.NewRevalidateJob(state, validator, cfg.RevalidateSchedule, log)
	if err := sched.AddJob(revalidate); err != nil {
		return fmt.Errorf("register revalidate job: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("api server: %w", err)
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info().Msg("api server stopped")
	return nil
}
