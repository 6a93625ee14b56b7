package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/untangle-ph/untangle-backend/api/routes"
	"github.com/untangle-ph/untangle-backend/internal/config"
	"github.com/untangle-ph/untangle-backend/internal/handlers"
	mongorepo "github.com/untangle-ph/untangle-backend/internal/repositories/mongodb"
	"github.com/untangle-ph/untangle-backend/internal/services"
	"github.com/untangle-ph/untangle-backend/pkg/mongodb"
	"golang.org/x/exp/slog"
)

func main() {
	// .env is optional; real deployments use environment variables
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	ctx := context.Background()

	mongoClient, err := mongodb.NewClient(ctx, cfg.MongoDB.URI)
	if err != nil {
		slog.Error("failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			slog.Error("error disconnecting from MongoDB", "error", err)
		}
	}()

	db := mongoClient.Database(cfg.MongoDB.Database)

	if err := mongorepo.EnsureIndexes(ctx, db); err != nil {
		slog.Error("failed to ensure indexes", "error", err)
		os.Exit(1)
	}

	// Repositories
	memberRepo := mongorepo.NewMemberRepository(db)
	purchaseRepo := mongorepo.NewPurchaseRepository(db)
	sessionRepo := mongorepo.NewSessionRepository(db)
	staffRepo := mongorepo.NewStaffRepository(db)
	branchRepo := mongorepo.NewBranchRepository(db)

	// A single lock table serializes every balance-mutating write per member,
	// so all three ledger services must share it.
	locks := services.NewMemberLocks()

	// Services
	memberService := services.NewMemberService(memberRepo, purchaseRepo, sessionRepo, locks)
	purchaseService := services.NewPurchaseService(purchaseRepo, memberRepo, locks)
	sessionService := services.NewSessionService(sessionRepo, memberRepo, locks)
	authService := services.NewAuthService(staffRepo, cfg)
	dashboardService := services.NewDashboardService(memberRepo, purchaseRepo, sessionRepo, cfg)
	branchService := services.NewBranchService(branchRepo)

	// Handlers
	h := routes.Handlers{
		Auth:      handlers.NewAuthHandler(authService),
		Member:    handlers.NewMemberHandler(memberService),
		Purchase:  handlers.NewPurchaseHandler(purchaseService),
		Session:   handlers.NewSessionHandler(sessionService),
		Dashboard: handlers.NewDashboardHandler(dashboardService),
		Branch:    handlers.NewBranchHandler(branchService),
	}

	router := routes.SetupRouter(cfg, h)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	if cfg.Ledger.SweepIntervalMinutes > 0 {
		go runRolloverSweep(sweepCtx, purchaseService, time.Duration(cfg.Ledger.SweepIntervalMinutes)*time.Minute)
	}

	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exiting")
}

// runRolloverSweep forfeits overdue rollovers on a fixed interval. The sweep
// is idempotent, so overlapping deployments running it concurrently are safe.
func runRolloverSweep(ctx context.Context, purchaseService services.PurchaseService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepCtx, cancel := context.WithTimeout(ctx, time.Minute)
			expired, err := purchaseService.SweepExpiredRollovers(sweepCtx)
			cancel()
			if err != nil {
				slog.Error("rollover sweep failed", "error", err)
				continue
			}
			if expired > 0 {
				slog.Info("rollover sweep completed", "expired", expired)
			}
		}
	}
}

func setupLogger(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
}
