package cmd

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	"github.com/teamline/teamline/internal/cache"
	"github.com/teamline/teamline/internal/config"
	"github.com/teamline/teamline/internal/database"
	"github.com/teamline/teamline/internal/events"
	"github.com/teamline/teamline/internal/logging"
	"github.com/teamline/teamline/internal/middleware"
	"github.com/teamline/teamline/internal/storage"
	"github.com/teamline/teamline/pkg/cron"
	"github.com/teamline/teamline/pkg/services"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func NewRun() *cobra.Command {
	var cfg config.ServerCmdConfig
	loader := config.NewLoader()
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start Teamline Server",
		Run: func(cmd *cobra.Command, args []string) {
			runApplication(cmd.Context(), &cfg)
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loader.Initialize(cmd); err != nil {
				return err
			}
			if err := loader.Load(&cfg); err != nil {
				return err
			}
			return config.Validate(&cfg)
		},
	}
	config.AddServerFlags(cmd.Flags(), &cfg)
	return cmd
}

func findAvailablePort(startPort int) (int, error) {
	for port := startPort; port < startPort+100; port++ {
		listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err != nil {
			continue
		}
		listener.Close()
		return port, nil
	}
	return 0, fmt.Errorf("no available ports found between %d and %d", startPort, startPort+100)
}

func runApplication(ctx context.Context, conf *config.ServerCmdConfig) {
	lvl, err := zapcore.ParseLevel(conf.Log.Level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	logging.SetConfig(&logging.Config{
		Level:    lvl,
		FilePath: conf.Log.File,
	})

	lg := logging.DefaultLogger()
	defer lg.Sync()

	port, err := findAvailablePort(conf.Server.Port)
	if err != nil {
		lg.Fatal("failed to find available port", zap.Error(err))
	}
	if port != conf.Server.Port {
		lg.Sugar().Infof("Port %d is occupied, using port %d instead", conf.Server.Port, port)
		conf.Server.Port = port
	}

	cacher := cache.NewCache(ctx, &conf.Cache)

	db, err := database.NewDatabase(&conf.DB, lg)
	if err != nil {
		lg.Fatal("failed to create database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		lg.Fatal("failed to migrate database", zap.Error(err))
	}

	transport := storage.NewS3Transport(&conf.Uploads.Storage, lg)
	broadcaster := events.NewBroadcaster(lg)

	apiSrv := services.NewApiService(db, conf, cacher, transport, broadcaster, lg)
	srv := setupServer(conf, apiSrv, lg)

	var cronSvc *cron.CronService
	if conf.CronJobs.Enable {
		cronSvc, err = cron.StartCronJobs(db, conf, broadcaster, lg)
		if err != nil {
			lg.Fatal("failed to start cron jobs", zap.Error(err))
		}
	}

	go func() {
		lg.Sugar().Infof("Server started at http://localhost:%d", conf.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lg.Error("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()

	lg.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), conf.Server.GracefulShutdown)
	defer shutdownCancel()

	if cronSvc != nil {
		cronSvc.Stop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("server shutdown failed", zap.Error(err))
	}
	apiSrv.Shutdown()

	lg.Info("Server stopped")
}

func setupServer(cfg *config.ServerCmdConfig, apiSrv *services.ApiService, lg *zap.Logger) *http.Server {
	mux := chi.NewRouter()

	mux.Use(chimiddleware.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH", "HEAD"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))
	mux.Use(chimiddleware.RealIP)
	mux.Use(middleware.InjectLogger(lg))
	mux.Use(middleware.RequestLogger(lg, "/api/events"))

	mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.Route("/api", func(r chi.Router) {
		r.Use(middleware.Authenticate(cfg.JWT.Secret))
		apiSrv.Routes(r)
	})

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           mux,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
