package main

import (
	"context"
	"time"

	"takaful/internal/bulk"
	"takaful/internal/cache"
	"takaful/internal/db"
	"takaful/internal/dedupe"
	"takaful/internal/dirsync"
	"takaful/internal/docs"
	"takaful/internal/geo"
	"takaful/internal/ingest"
	"takaful/internal/mailer"
	"takaful/internal/store"
	"takaful/pkg/types"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// deps is the assembled application graph shared by every command.
type deps struct {
	pool     *pgxpool.Pool
	families *store.FamilyRepository
	kv       cache.KV
	geo      *geo.Client
	dir      dirsync.Directory
	push     *dirsync.PushEngine
	pull     *dirsync.PullEngine
	mail     mailer.Mailer
	docs     docs.Store
	engine   *ingest.Engine
	bulk     *bulk.Service
}

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	return logger
}

func buildDeps(ctx context.Context, config *types.Config, logger *logrus.Logger) (*deps, error) {
	pool, err := db.Connect(ctx, config)
	if err != nil {
		return nil, err
	}

	d := &deps{
		pool:     pool,
		families: store.NewFamilyRepository(pool),
		kv:       buildKV(ctx, config, logger),
	}

	d.geo = geo.NewClient(config.GeoBaseURL, config.GeoSearchRadiusKM, d.kv, logger)
	d.dir = dirsync.NewHTTPDirectory(config.DirectoryBaseURL, config.DirectoryAPIKey, logger)
	d.push = dirsync.NewPushEngine(d.dir, d.geo, logger)
	d.pull = dirsync.NewPullEngine(d.dir, d.families, dirsync.DefaultHouseholdRule, logger)
	d.mail = mailer.NewHTTPMailer(config.MailBaseURL, config.MailAPIKey, config.MailFrom, logger)

	awsConfig, err := loadAWSConfig(ctx)
	if err != nil {
		pool.Close()
		return nil, err
	}
	d.docs = docs.NewS3Store(s3.NewFromConfig(awsConfig), config.DocumentBucket, logger)

	detector := dedupe.NewDetector(d.families, d.kv, logger)
	d.engine = ingest.NewEngine(d.families, detector, d.geo, d.docs, d.push, d.mail,
		config.AdminEmail, logger)
	d.bulk = bulk.NewService(d.engine, d.families, logger)

	return d, nil
}

func (d *deps) close() {
	d.pool.Close()
}

// buildKV prefers Redis but degrades to an in-process map when Redis is
// unreachable. Every cached path tolerates misses, so a cold start without
// Redis only costs extra upstream calls.
func buildKV(ctx context.Context, config *types.Config, logger *logrus.Logger) cache.KV {
	client := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr,
		Password: config.RedisPassword,
		DB:       config.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.WithError(err).Warn("redis unavailable, using in-memory cache")
		_ = client.Close()
		return cache.NewMemoryKV()
	}

	return cache.NewRedisKV(client)
}
