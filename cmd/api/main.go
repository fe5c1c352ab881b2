package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amlwatch/aml-backend/api"
	"github.com/amlwatch/aml-backend/internal/auth"
	"github.com/amlwatch/aml-backend/internal/chain"
	"github.com/amlwatch/aml-backend/internal/classifier"
	"github.com/amlwatch/aml-backend/internal/config"
	"github.com/amlwatch/aml-backend/internal/domain"
	"github.com/amlwatch/aml-backend/internal/handler"
	"github.com/amlwatch/aml-backend/internal/logging"
	"github.com/amlwatch/aml-backend/internal/middleware"
	"github.com/amlwatch/aml-backend/internal/repository"
	"github.com/amlwatch/aml-backend/internal/service/ledger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("aml-api", cfg.LogLevel, cfg.AppEnv)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	})
	cancel()
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	users := repository.NewUserRepository(db)
	transactions := repository.NewTransactionRepository(db)
	feedback := repository.NewFeedbackRepository(db)

	suspicion, err := buildClassifier(cfg)
	if err != nil {
		slog.Error("failed to build classifier", "error", err)
		os.Exit(1)
	}

	recorder := chain.NewRecorder(cfg.ChainGatewayURL)

	ledgerSvc := ledger.NewService(
		transactions,
		users,
		suspicion,
		recorder,
		cfg.FailClosed(),
		time.Duration(cfg.ClassifierTimeoutS)*time.Second,
	)

	authHandler := handler.NewAuthHandler(users, cfg.JWTSecret, auth.TokenTTL)
	customerHandler := handler.NewCustomerHandler(users)
	transactionHandler := handler.NewTransactionHandler(ledgerSvc)
	feedbackHandler := handler.NewFeedbackHandler(feedback)
	bankHandler := handler.NewBankHandler(users, ledgerSvc, feedback)
	healthHandler := handler.NewHealthHandler(db)

	authed := middleware.Auth(cfg.JWTSecret)
	customerOnly := middleware.RequireRole(domain.RoleCustomer)
	staffOnly := middleware.RequireRole(domain.RoleAdmin, domain.RoleBankOfficer)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", healthHandler.Liveness)
	mux.HandleFunc("GET /health/ready", healthHandler.Readiness)
	mux.HandleFunc("GET /docs", handler.ServeDocs())
	mux.HandleFunc("GET /docs/openapi.yaml", handler.ServeSpec(api.OpenAPISpec))

	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	mux.Handle("GET /api/customer/profile", authed(http.HandlerFunc(customerHandler.Profile)))
	mux.Handle("PUT /api/customer/update", authed(http.HandlerFunc(customerHandler.Update)))

	mux.Handle("POST /api/transactions", protect(authed, customerOnly, transactionHandler.Create))
	mux.Handle("GET /api/transactions", protect(authed, customerOnly, transactionHandler.List))
	mux.Handle("POST /api/feedback", protect(authed, customerOnly, feedbackHandler.Submit))

	mux.Handle("GET /api/bank/customers", protect(authed, staffOnly, bankHandler.ListCustomers))
	mux.Handle("GET /api/bank/transactions", protect(authed, staffOnly, bankHandler.ListTransactions))
	mux.Handle("PUT /api/bank/transactions/{id}/flag", protect(authed, staffOnly, bankHandler.FlagTransaction))
	mux.Handle("PUT /api/bank/transactions/{id}/unflag", protect(authed, staffOnly, bankHandler.UnflagTransaction))

	mux.Handle("POST /api/bank/officers", protect(authed, adminOnly, bankHandler.CreateOfficer))
	mux.Handle("GET /api/bank/officers", protect(authed, adminOnly, bankHandler.ListOfficers))
	mux.Handle("PUT /api/bank/customers/access", protect(authed, adminOnly, bankHandler.SetAccess))
	mux.Handle("GET /api/bank/feedback", protect(authed, adminOnly, bankHandler.ListFeedback))

	root := middleware.Tracing(middleware.Logging(middleware.Recovery(mux)))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           root,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr, "classifier", cfg.ClassifierMode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func protect(authed, role func(http.Handler) http.Handler, h http.HandlerFunc) http.Handler {
	return authed(role(h))
}

func buildClassifier(cfg *config.Config) (classifier.Classifier, error) {
	switch cfg.ClassifierMode {
	case config.ClassifierModeModel:
		return classifier.NewModel(
			context.Background(),
			cfg.ClassifierModel,
			cfg.SuspiciousThreshold,
			time.Duration(cfg.ClassifierTimeoutS)*time.Second,
		)
	case config.ClassifierModeThreshold:
		return classifier.NewThreshold(cfg.SuspiciousThreshold), nil
	default:
		return nil, fmt.Errorf("unknown classifier mode %q", cfg.ClassifierMode)
	}
}
