package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/lusakatech/pharmacare-backend/internal/config"
	"github.com/lusakatech/pharmacare-backend/internal/database"
	"github.com/lusakatech/pharmacare-backend/internal/logging"
	"github.com/lusakatech/pharmacare-backend/internal/modules/auth"
	"github.com/lusakatech/pharmacare-backend/internal/modules/authz"
	"github.com/lusakatech/pharmacare-backend/internal/modules/branch"
	"github.com/lusakatech/pharmacare-backend/internal/modules/customer"
	"github.com/lusakatech/pharmacare-backend/internal/modules/inventory"
	"github.com/lusakatech/pharmacare-backend/internal/modules/metrics"
	"github.com/lusakatech/pharmacare-backend/internal/modules/product"
	"github.com/lusakatech/pharmacare-backend/internal/modules/sale"
	"github.com/lusakatech/pharmacare-backend/internal/modules/user"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.Env)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal("migrations failed", zap.Error(err))
	}
	log.Info("database ready")

	gate := authz.NewEvaluator(authz.DefaultTable())
	ledger := inventory.NewLedger()

	userRepo := user.NewPostgresRepository(db)
	userSvc := user.NewService(userRepo)
	authSvc := auth.NewService(userRepo, cfg.JWTSecret)

	branchSvc := branch.NewService(branch.NewPostgresRepository(db))
	productSvc := product.NewService(product.NewPostgresRepository(db), log)
	inventorySvc := inventory.NewService(inventory.NewPostgresStore(db), ledger, log)
	customerSvc := customer.NewService(customer.NewPostgresRepository(db))
	saleSvc := sale.NewService(sale.NewPostgresStore(db), ledger, cfg.TaxRate, cfg.PointsDivisor, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	if cfg.MetricsOn {
		r.Handle("/metrics", metrics.Handler())
	}

	auth.NewHandler(authSvc).RegisterRoutes(r)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(authSvc))

		branch.NewHandler(branchSvc, gate).RegisterRoutes(r)
		product.NewHandler(productSvc, gate).RegisterRoutes(r)
		inventory.NewHandler(inventorySvc, productSvc, gate).RegisterRoutes(r)
		customer.NewHandler(customerSvc, gate).RegisterRoutes(r)
		user.NewHandler(userSvc, gate).RegisterRoutes(r)
		sale.NewHandler(saleSvc, gate).RegisterRoutes(r)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("server listening", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", zap.Error(err))
	}
}

// requestLogger logs one line per request with status and latency.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
