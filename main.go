package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"shopapi/internal/config"
	"shopapi/internal/database"
	"shopapi/internal/handlers"
	"shopapi/internal/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	cfg.ConfigureLogger()

	db, err := database.Connect(cfg.DBDriver, cfg.DBDSN, database.PoolOptions{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	})
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.WithError(err).Fatal("database handle unavailable")
	}
	defer sqlDB.Close()

	log.WithField("driver", cfg.DBDriver).Info("database connected")

	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("schema migration failed")
	}

	st := store.New(db, store.WithPasswordCost(cfg.BcryptCost))
	r := handlers.NewRouter(st, cfg.RequestTimeout)

	if cfg.RunMode == config.RunModeLambda {
		runLambda(r)
		return
	}
	if err := runHTTP(r, cfg.Port); err != nil {
		log.WithError(err).Error("server stopped")
	}
}

func runLambda(r *gin.Engine) {
	adapter := ginadapter.New(r)

	log.Info("starting lambda handler")
	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}

func runHTTP(r *gin.Engine, port string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
