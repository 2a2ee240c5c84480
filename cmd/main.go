package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/school-locator/internal/auth"
	"github.com/ukydev/school-locator/internal/cache"
	"github.com/ukydev/school-locator/internal/config"
	"github.com/ukydev/school-locator/internal/dataset"
	"github.com/ukydev/school-locator/internal/db"
	"github.com/ukydev/school-locator/internal/events"
	"github.com/ukydev/school-locator/internal/handlers"
	"github.com/ukydev/school-locator/internal/locator"
	"github.com/ukydev/school-locator/internal/logging"
	"github.com/ukydev/school-locator/internal/metrics"
	"github.com/ukydev/school-locator/internal/middleware"
	"github.com/ukydev/school-locator/internal/names"
	"github.com/ukydev/school-locator/internal/runlog"
	"go.mongodb.org/mongo-driver/mongo"
)

// app holds the wired dependencies of the server.
type app struct {
	cfg     *config.Config
	dataset *dataset.Dataset
	locator *locator.Service
	auth    *auth.Service
	closers []func(context.Context)
}

func (a *app) close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i](ctx)
	}
}

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	for _, w := range cfg.Validate() {
		log.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to start")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(a),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown")
	}
	a.close(shutdownCtx)
}

// newApp connects the optional backends described by cfg and builds the
// locator service.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}

	var database *mongo.Database
	if cfg.DatasetSource == config.SourceMongo || cfg.RunLogEnabled {
		client, err := db.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		log.Info("Connected to MongoDB successfully")
		a.closers = append(a.closers, func(ctx context.Context) {
			if err := client.Disconnect(ctx); err != nil {
				log.WithError(err).Warn("MongoDB disconnect")
			}
		})
		database = client.Database(cfg.MongoDB)
	}

	ds, err := loadDataset(ctx, cfg, database)
	if err != nil {
		return nil, err
	}
	a.dataset = ds
	metrics.DatasetSize.Set(float64(ds.Len()))

	var c locator.Cache
	if addr := cfg.RedisAddr(); addr != "" {
		client := cache.OpenRedis(addr, cfg.RedisPass, cfg.RedisDB)
		a.closers = append(a.closers, func(context.Context) { _ = client.Close() })
		rc := cache.NewRedisCache(client, cfg.CacheTTL)
		if err := rc.Ping(ctx); err != nil {
			log.WithError(err).Warn("Redis unreachable, ranking cache disabled")
		} else {
			log.WithField("addr", addr).Info("Ranking cache enabled")
			c = rc
		}
	}

	var rec locator.Recorder
	if cfg.RunLogEnabled {
		var publisher events.Publisher
		if cfg.MQTTBroker != "" {
			p, client, err := events.ConnectMQTT(cfg.MQTTBroker, cfg.MQTTClientID, cfg.MQTTTopic)
			if err != nil {
				log.WithError(err).Warn("MQTT broker unreachable, run events disabled")
			} else {
				publisher = p
				a.closers = append(a.closers, func(context.Context) { client.Disconnect(250) })
			}
		}
		store := &db.MongoRecordStore{Database: database, Transactional: cfg.MongoTransactions}
		rec = runlog.NewRecorder(store, names.NewGenerator(), publisher)
		log.Info("Run recording enabled")
	}

	a.locator = locator.NewService(ds, c, rec)

	if cfg.AuthEnabled {
		a.auth = auth.NewService(cfg.JWTSecret, cfg.JWTExpiry).WithClient(cfg.APIClientID, cfg.APIClientSecretHash)
	}
	return a, nil
}

func loadDataset(ctx context.Context, cfg *config.Config, database *mongo.Database) (*dataset.Dataset, error) {
	switch cfg.DatasetSource {
	case config.SourceFile:
		if cfg.DatasetPath != "" {
			return dataset.LoadFile(cfg.DatasetPath)
		}
	case config.SourceMongo:
		if database != nil {
			coll := &db.MongoSchoolCollection{Collection: database.Collection(cfg.MongoSchoolsCollection)}
			return dataset.LoadFromSource(ctx, coll, "mongo:"+cfg.MongoDB+"."+cfg.MongoSchoolsCollection)
		}
	}
	return dataset.LoadSample()
}

// newRouter mounts the HTTP routes of a.
func newRouter(a *app) http.Handler {
	mux := http.NewServeMux()

	nearest := handlers.NewNearestHandler(a.locator)
	health := handlers.NewHealthHandler(a.dataset)

	mux.Handle("/api/schools/nearest", middleware.Access("nearest")(http.HandlerFunc(nearest.Nearest)))
	mux.Handle("/health", middleware.Access("health")(http.HandlerFunc(health.Health)))
	mux.Handle("/metrics", metrics.Handler())

	// Authentication runs first so the limiter can key on the client.
	var mws []func(http.Handler) http.Handler
	if a.auth != nil {
		token := handlers.NewTokenHandler(a.auth)
		mux.Handle("/api/auth/token", middleware.Access("token")(http.HandlerFunc(token.Token)))
		mws = append(mws, middleware.NewAuthMiddleware(a.auth).Authenticate)
	}
	limiter := middleware.NewRateLimiter(a.cfg.RateLimitMax, a.cfg.RateLimitWindow, a.cfg.TrustProxyHeaders)
	mws = append(mws, limiter.Limit)

	return middleware.Chain(mux, mws...)
}
