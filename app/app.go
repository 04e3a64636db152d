package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"video-pipeline-service/ddd/adapter/component"
	httpadapter "video-pipeline-service/ddd/adapter/http"
	appsvc "video-pipeline-service/ddd/application/app"
	"video-pipeline-service/ddd/domain/gateway"
	"video-pipeline-service/ddd/domain/port"
	"video-pipeline-service/ddd/infrastructure/cache"
	"video-pipeline-service/ddd/infrastructure/database"
	"video-pipeline-service/ddd/infrastructure/database/persistence"
	"video-pipeline-service/ddd/infrastructure/encoder"
	"video-pipeline-service/ddd/infrastructure/queue"
	"video-pipeline-service/ddd/infrastructure/storage"
	"video-pipeline-service/ddd/infrastructure/worker"
	"video-pipeline-service/pkg/config"
	pkgkafka "video-pipeline-service/pkg/kafka"
	"video-pipeline-service/pkg/logger"
	"video-pipeline-service/pkg/middleware"
	"video-pipeline-service/pkg/redisclient"
	"video-pipeline-service/pkg/task"
)

// Run starts the API process: HTTP surface, upload handling and, when kafka
// is disabled, the in-process encode pipeline.
func Run() {
	cfg, logService := mustInit()
	defer logService.Close()

	mustCheckEncoderBinaries(cfg)

	db, err := database.NewDB(cfg.Database)
	if err != nil {
		logger.Fatal(fmt.Sprintf("Failed to connect database error=%v", err))
	}
	if err := persistence.AutoMigrate(db); err != nil {
		logger.Fatal(fmt.Sprintf("Failed to migrate database error=%v", err))
	}
	logger.Infof("Database connected host=%s database=%s", cfg.Database.Host, cfg.Database.Database)

	// Redis is optional. Without it the service serves straight from MySQL.
	var videoCache *cache.VideoCache
	var invalidator port.CacheInvalidator = cache.NoopInvalidator{}
	if rdb, err := redisclient.New(cfg.Redis); err != nil {
		logger.Warnf("Redis unavailable, running without cache error=%s", err.Error())
	} else {
		defer rdb.Close()
		videoCache = cache.NewVideoCache(rdb, cfg.Redis.CacheTTL)
		invalidator = videoCache
		logger.Infof("Redis connected addr=%s", cfg.Redis.GetRedisAddr())
	}

	videoRepo := persistence.NewVideoRepository(db, invalidator)
	stateRepo := persistence.NewProcessingStateRepository(db, invalidator)
	formatRepo := persistence.NewFormatRepository(db, invalidator)
	subtitleRepo := persistence.NewSubtitleRepository(db, invalidator)
	urlRepo := persistence.NewUploadUrlRepository(db)
	playlistRepo := persistence.NewPlaylistRepository(db)

	runner := encoder.NewRunner(cfg.Encoding)
	taskQueue := queue.NewMemoryTaskQueue(cfg.Worker.QueueCapacity)
	registry := queue.NewJobRegistry()
	dispatcher := queue.NewDispatcher(taskQueue, registry)

	backend, localBackend, err := buildBackend(cfg, runner, dispatcher)
	if err != nil {
		logger.Fatal(fmt.Sprintf("Failed to initialize storage backend error=%v", err))
	}
	logger.Infof("Storage backend initialized backend=%s", cfg.Storage.Backend)

	transcodeApp := appsvc.NewTranscodeApp(videoRepo, stateRepo, formatRepo, backend, cfg.Worker.PollInterval)

	var publisher port.EncodeRequestPublisher
	if cfg.Kafka.Enabled {
		kafkaClient := pkgkafka.New(cfg.Kafka)
		defer kafkaClient.Close()
		if err := kafkaClient.EnsureTopic(cfg.Kafka.Topics.EncodeRequests, 3, 1); err != nil {
			logger.Warnf("Failed to ensure kafka topic topic=%s error=%s", cfg.Kafka.Topics.EncodeRequests, err.Error())
		}
		publisher = component.NewKafkaEncodeRequestPublisher(kafkaClient, cfg.Kafka.Topics.EncodeRequests)
	} else {
		// Single-binary mode: the pipeline runs here, so this process also
		// needs the encode worker pool.
		publisher = component.NewLocalEncodeRequestPublisher(transcodeApp)
		pool := worker.NewEncodeWorker(cfg.Worker.WorkerID, taskQueue, registry, cfg.Worker.MaxConcurrentTasks)
		task.Register(workerTask{pool})
	}

	var cacheReader appsvc.VideoCacheReader
	if videoCache != nil {
		cacheReader = videoCache
	}
	videoApp := appsvc.NewVideoApp(videoRepo, stateRepo, backend, publisher, cacheReader)
	uploadApp := appsvc.NewUploadApp(urlRepo, videoRepo, playlistRepo, backend, publisher)
	subtitleApp := appsvc.NewSubtitleApp(videoRepo, subtitleRepo, backend)
	playlistApp := appsvc.NewPlaylistApp(playlistRepo, videoRepo, backend)

	task.Register(component.NewUploadUrlJanitor(uploadApp, time.Hour, time.Hour))
	if err := task.StartAll(context.Background()); err != nil {
		logger.Fatal(fmt.Sprintf("Failed to start background tasks error=%v", err))
	}
	defer task.StopAll()

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	engine := gin.Default()
	engine.Use(middleware.RequestContextMiddleware())

	var assets *httpadapter.AssetController
	if localBackend != nil {
		assets = httpadapter.NewAssetController(localBackend, cfg.Public.AllowedOrigin)
	}
	router := httpadapter.NewRouter(uploadApp, videoApp, subtitleApp, playlistApp, assets)
	router.SetupRoutes(engine)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(fmt.Sprintf("Failed to start HTTP server error=%v", err))
		}
	}()
	logger.Infof("HTTP server started addr=%s health_url=http://%s/health", addr, addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Infof("Received shutdown signal, shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to close error=%v", err)
	}
	taskQueue.Close()
	logger.Infof("Server exited safely")
}

// RunWorker starts the encode worker process: kafka consumer plus the encode
// pool. Requires kafka; single-binary deployments run everything via Run.
func RunWorker() {
	cfg, logService := mustInit()
	defer logService.Close()

	mustCheckEncoderBinaries(cfg)

	if !cfg.Kafka.Enabled {
		logger.Fatal("kafka must be enabled for the worker process")
	}

	db, err := database.NewDB(cfg.Database)
	if err != nil {
		logger.Fatal(fmt.Sprintf("Failed to connect database error=%v", err))
	}
	if err := persistence.AutoMigrate(db); err != nil {
		logger.Fatal(fmt.Sprintf("Failed to migrate database error=%v", err))
	}

	// Worker writes must drop stale cached representations too.
	var invalidator port.CacheInvalidator = cache.NoopInvalidator{}
	if rdb, err := redisclient.New(cfg.Redis); err != nil {
		logger.Warnf("Redis unavailable, cache invalidation disabled error=%s", err.Error())
	} else {
		defer rdb.Close()
		invalidator = cache.NewVideoCache(rdb, cfg.Redis.CacheTTL)
	}

	videoRepo := persistence.NewVideoRepository(db, invalidator)
	stateRepo := persistence.NewProcessingStateRepository(db, invalidator)
	formatRepo := persistence.NewFormatRepository(db, invalidator)

	runner := encoder.NewRunner(cfg.Encoding)
	taskQueue := queue.NewMemoryTaskQueue(cfg.Worker.QueueCapacity)
	registry := queue.NewJobRegistry()
	dispatcher := queue.NewDispatcher(taskQueue, registry)

	backend, _, err := buildBackend(cfg, runner, dispatcher)
	if err != nil {
		logger.Fatal(fmt.Sprintf("Failed to initialize storage backend error=%v", err))
	}

	transcodeApp := appsvc.NewTranscodeApp(videoRepo, stateRepo, formatRepo, backend, cfg.Worker.PollInterval)

	kafkaClient := pkgkafka.New(cfg.Kafka)
	defer kafkaClient.Close()
	if err := kafkaClient.EnsureTopic(cfg.Kafka.Topics.EncodeRequests, 3, 1); err != nil {
		logger.Warnf("Failed to ensure kafka topic topic=%s error=%s", cfg.Kafka.Topics.EncodeRequests, err.Error())
	}

	pool := worker.NewEncodeWorker(cfg.Worker.WorkerID, taskQueue, registry, cfg.Worker.MaxConcurrentTasks)
	task.Register(workerTask{pool})
	task.Register(component.NewEncodeRequestConsumer(kafkaClient, cfg.Kafka.Topics.EncodeRequests, cfg.Kafka.GroupID, transcodeApp))

	if err := task.StartAll(context.Background()); err != nil {
		logger.Fatal(fmt.Sprintf("Failed to start background tasks error=%v", err))
	}
	logger.Infof("Worker started worker_id=%s pool_size=%d", cfg.Worker.WorkerID, cfg.Worker.MaxConcurrentTasks)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Infof("Received shutdown signal, shutting down worker...")

	taskQueue.Close()
	task.StopAll()
	logger.Infof("Worker exited safely")
}

func mustInit() (*config.Config, *logger.Logger) {
	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("[ERROR] Failed to load config (%s): %v\n", cfgPath, err)
		os.Exit(1)
	}

	logService := logger.NewLogger(cfg)
	logger.SetGlobalLogger(logService)
	logger.Infof("Config loaded path=%s", cfgPath)
	return cfg, logService
}

// mustCheckEncoderBinaries fails startup when ffmpeg or ffprobe is missing;
// a pipeline that cannot encode is better dead than queueing doomed jobs.
func mustCheckEncoderBinaries(cfg *config.Config) {
	for _, bin := range []string{cfg.Encoding.FFmpegBinary, cfg.Encoding.FFprobeBinary} {
		if strings.TrimSpace(bin) == "" {
			continue
		}
		if _, err := exec.LookPath(bin); err != nil {
			logger.Fatal(fmt.Sprintf("Encoder binary not found binary=%s error=%s", bin, err.Error()))
		}
	}
}

func buildBackend(cfg *config.Config, runner *encoder.Runner, dispatcher port.JobDispatcher) (gateway.StorageBackend, *storage.LocalBackend, error) {
	switch cfg.Storage.Backend {
	case "minio":
		b, err := storage.NewMinioBackend(cfg, runner, dispatcher)
		if err != nil {
			return nil, nil, err
		}
		if err := b.EnsureBucket(context.Background()); err != nil {
			return nil, nil, err
		}
		return b, nil, nil
	default:
		b, err := storage.NewLocalBackend(cfg, runner, dispatcher)
		if err != nil {
			return nil, nil, err
		}
		return b, b, nil
	}
}

// workerTask adapts the encode worker pool to the background task manager.
type workerTask struct {
	pool worker.EncodeWorker
}

func (t workerTask) Name() string                    { return "encodeWorkerPool" }
func (t workerTask) Start(ctx context.Context) error { return t.pool.Start(ctx) }
func (t workerTask) Stop() error                     { return t.pool.Stop() }

// resolveConfigPath picks the config file, honoring CONFIG_PATH and
// CONFIG_ENV overrides.
func resolveConfigPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}

	env := strings.ToLower(strings.TrimSpace(os.Getenv("CONFIG_ENV")))
	if env == "" {
		env = "dev"
	}

	switch env {
	case "prod", "production":
		return "configs/config_prod.yaml"
	case "dev", "development":
		return "configs/config.dev.yaml"
	default:
		return fmt.Sprintf("configs/config.%s.yaml", env)
	}
}
