package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/yifanzh/weekly-report-system/api"
	"github.com/yifanzh/weekly-report-system/api/handler"
	"github.com/yifanzh/weekly-report-system/api/middleware"
	wrconfig "github.com/yifanzh/weekly-report-system/config"
	"github.com/yifanzh/weekly-report-system/internal/cache"
	"github.com/yifanzh/weekly-report-system/internal/database"
	"github.com/yifanzh/weekly-report-system/internal/llm"
	"github.com/yifanzh/weekly-report-system/internal/repository"
	"github.com/yifanzh/weekly-report-system/internal/services"
	"github.com/yifanzh/weekly-report-system/pkg/storage"
	"github.com/yifanzh/weekly-report-system/pkg/taskqueue"
)

// 配置选项
type config struct {
	Port         int           // 服务端口
	Mode         string        // 运行模式 (debug/release)
	LogLevel     string        // 日志级别
	LogFile      string        // 日志文件路径，为空时只输出到标准输出
	LogMaxSizeMB int           // 单个日志文件大小上限(MB)
	LogBackups   int           // 保留的历史日志文件数
	LogMaxAge    int           // 日志保留天数
	ReadTimeout  time.Duration // 读取超时
	WriteTimeout time.Duration // 写入超时

	// 存储配置
	StorageType    string // 存储类型 (local/minio)
	StoragePath    string // 本地存储路径
	MinioEndpoint  string // MinIO端点
	MinioAccessKey string // MinIO访问密钥
	MinioSecretKey string // MinIO秘密密钥
	MinioBucket    string // MinIO存储桶
	MinioUseSSL    bool   // MinIO是否使用SSL

	// 数据库配置
	DBPath string // SQLite数据库路径

	// 大语言模型配置
	LLMModel       string  // 模型名称
	LLMAPIKey      string  // API密钥
	LLMEndpoint    string  // API端点
	LLMMaxTokens   int     // 最大生成token数量
	LLMTemperature float32 // 采样温度

	// 缓存配置
	CacheType string // 缓存类型 (memory/redis)

	ConfigFile string // 配置文件路径

	// 任务队列相关配置
	QueueEnabled     bool          // 是否启用任务队列
	QueueType        string        // 任务队列类型
	RedisAddr        string        // Redis 地址
	RedisPassword    string        // Redis 密码
	RedisDB          int           // Redis 数据库编号
	QueueConcurrency int           // 任务队列处理并发数
	QueueRetryLimit  int           // 任务重试次数
	QueueRetryDelay  time.Duration // 任务重试延迟
}

func main() {
	// 加载.env文件(如果存在)，让API密钥等敏感配置不必进入命令行
	_ = godotenv.Load()

	// 解析命令行参数
	cfg := parseFlags()

	// 加载配置文件(如果指定)
	var appConfig *wrconfig.Config
	var err error
	if cfg.ConfigFile != "" {
		appConfig, err = wrconfig.Load(cfg.ConfigFile)
		if err != nil {
			log.Printf("Warning: Failed to load config file: %v, using command line args", err)
		} else {
			// 使用配置文件中的值更新相关设置
			updateConfigFromFile(&cfg, appConfig)
		}
	}

	// 设置Gin模式
	gin.SetMode(cfg.Mode)

	// 初始化日志
	logger := setupLogger(cfg)
	logger.Info("Starting Weekly Report System...")

	// 初始化数据库
	if err := setupDatabase(cfg, logger); err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// 创建文件存储服务
	fileStorage, err := setupStorage(cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize storage: %v", err)
	}

	// 创建大语言模型客户端
	llmClient, err := setupLLM(cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize LLM client: %v", err)
	}

	// 创建缓存服务
	cacheService, err := setupCache(cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize cache: %v", err)
	}

	// 初始化任务队列（如果启用）
	var queue taskqueue.Queue
	if cfg.QueueEnabled {
		queue, err = setupTaskQueue(cfg, logger)
		if err != nil {
			logger.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer queue.Close()
		logger.Info("Task queue initialized successfully")
	}

	// 初始化仓储层
	submissionRepo := repository.NewSubmissionRepository()
	configRepo := repository.NewConfigRepository()
	dailyRepo := repository.NewDailyRepository()

	// 初始化业务服务
	configService := services.NewConfigService(configRepo,
		services.WithConfigCache(cacheService),
		services.WithConfigLogger(logger),
	)

	checkService := services.NewCheckService(llmClient, configService, submissionRepo,
		services.WithCheckCache(cacheService),
		services.WithCheckLogger(logger),
	)

	fixService := services.NewFixService(submissionRepo, checkService,
		services.WithFixLogger(logger),
	)

	submissionServiceOptions := []services.SubmissionOption{
		services.WithSubmissionStorage(fileStorage),
		services.WithSubmissionCache(cacheService),
		services.WithSubmissionLogger(logger),
	}
	if queue != nil {
		submissionServiceOptions = append(submissionServiceOptions,
			services.WithSubmissionTaskQueue(queue),
		)
		logger.Info("Submission checks can be dispatched to the task queue")
	}
	submissionService := services.NewSubmissionService(submissionRepo, submissionServiceOptions...)

	dailyService := services.NewDailyService(dailyRepo,
		services.WithDailyLogger(logger),
	)

	optimizeService := services.NewOptimizeService(llmClient, configService, dailyRepo,
		services.WithOptimizeTemperature(cfg.LLMTemperature),
		services.WithOptimizeLogger(logger),
	)

	// 启动任务队列工作者（如果启用）
	if queue != nil {
		worker, err := setupWorker(queue, checkService, optimizeService, logger)
		if err != nil {
			logger.Fatalf("Failed to start task worker: %v", err)
		}
		defer worker.Stop()
	}

	// 初始化API处理器
	handlers := api.Handlers{
		Submission: handler.NewSubmissionHandler(submissionService),
		Check:      handler.NewCheckHandler(checkService, fixService),
		Daily:      handler.NewDailyHandler(dailyService, optimizeService, queue),
		Admin:      handler.NewAdminHandler(configService),
	}
	if queue != nil {
		handlers.Task = handler.NewTaskHandler(queue)
	}

	// 设置路由
	r := api.SetupRouter(handlers)

	// 启动HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// 优雅关闭
	go func() {
		// 启动服务
		logger.Infof("Server is running on port %d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// 等待终止信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// 创建带超时的上下文
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 优雅关闭服务器
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

func parseFlags() config {
	cfg := config{}

	// 服务配置
	flag.IntVar(&cfg.Port, "port", 8080, "Server port")
	flag.StringVar(&cfg.Mode, "mode", "debug", "Run mode (debug/release)")
	flag.StringVar(&cfg.LogLevel, "log-level", "info", "Log level (debug/info/warn/error)")
	flag.StringVar(&cfg.LogFile, "log-file", "", "Log file path (empty for stdout only)")
	flag.IntVar(&cfg.LogMaxSizeMB, "log-max-size", 100, "Max size of a log file in MB before rotation")
	flag.IntVar(&cfg.LogBackups, "log-backups", 3, "Number of rotated log files to keep")
	flag.IntVar(&cfg.LogMaxAge, "log-max-age", 30, "Days to keep rotated log files")
	flag.DurationVar(&cfg.ReadTimeout, "read-timeout", 30*time.Second, "Read timeout")
	flag.DurationVar(&cfg.WriteTimeout, "write-timeout", 30*time.Second, "Write timeout")

	// 存储配置
	flag.StringVar(&cfg.StorageType, "storage-type", "local", "Storage type (local/minio)")
	flag.StringVar(&cfg.StoragePath, "storage", "./uploads", "File storage path for local storage")
	flag.StringVar(&cfg.MinioEndpoint, "minio-endpoint", "localhost:9000", "MinIO endpoint")
	flag.StringVar(&cfg.MinioAccessKey, "minio-access-key", "", "MinIO access key")
	flag.StringVar(&cfg.MinioSecretKey, "minio-secret-key", "", "MinIO secret key")
	flag.StringVar(&cfg.MinioBucket, "minio-bucket", "weekly-report", "MinIO bucket name")
	flag.BoolVar(&cfg.MinioUseSSL, "minio-ssl", false, "Use SSL for MinIO")

	// 数据库配置
	flag.StringVar(&cfg.DBPath, "db", "data/weekly_report.db", "SQLite database path")

	// LLM配置
	flag.StringVar(&cfg.LLMModel, "llm-model", "deepseek-chat", "LLM model name")
	flag.StringVar(&cfg.LLMAPIKey, "llm-key", "", "LLM API key")
	flag.StringVar(&cfg.LLMEndpoint, "llm-endpoint", "https://api.deepseek.com/chat/completions", "LLM API endpoint")
	flag.IntVar(&cfg.LLMMaxTokens, "llm-max-tokens", 2048, "Max tokens per LLM response")
	llmTemperature := flag.Float64("llm-temperature", 0.3, "LLM sampling temperature")

	// 缓存配置
	flag.StringVar(&cfg.CacheType, "cache", "memory", "Cache type (memory/redis)")

	// 配置文件
	flag.StringVar(&cfg.ConfigFile, "config", "", "Path to config file")

	// 任务队列配置
	flag.BoolVar(&cfg.QueueEnabled, "queue", false, "Enable task queue")
	flag.StringVar(&cfg.QueueType, "queue-type", "redis", "Task queue type (redis)")
	flag.StringVar(&cfg.RedisAddr, "redis-addr", "localhost:6379", "Redis address for task queue")
	flag.StringVar(&cfg.RedisPassword, "redis-password", "", "Redis password")
	flag.IntVar(&cfg.RedisDB, "redis-db", 0, "Redis database number")
	flag.IntVar(&cfg.QueueConcurrency, "queue-concurrency", 10, "Task queue concurrency")
	flag.IntVar(&cfg.QueueRetryLimit, "queue-retry", 3, "Max retry attempts for failed tasks")
	flag.DurationVar(&cfg.QueueRetryDelay, "queue-retry-delay", time.Minute, "Delay between retry attempts")

	// 从环境变量获取API密钥（优先级高于命令行参数）
	if key := os.Getenv("DEEPSEEK_API_KEY"); key != "" {
		cfg.LLMAPIKey = key
	}
	if key := os.Getenv("LLM_API_KEY"); key != "" {
		cfg.LLMAPIKey = key
	}
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		cfg.RedisAddr = redisAddr
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		cfg.RedisPassword = redisPassword
	}

	flag.Parse()

	cfg.LLMTemperature = float32(*llmTemperature)
	return cfg
}

// updateConfigFromFile 从配置文件更新命令行参数
func updateConfigFromFile(cfg *config, appConfig *wrconfig.Config) {
	// 只更新未在命令行上明确设置的参数

	// 服务配置
	if flag.Lookup("port").DefValue == fmt.Sprint(cfg.Port) && appConfig.Server.Port > 0 {
		cfg.Port = appConfig.Server.Port
	}

	// 日志配置
	if flag.Lookup("log-file").DefValue == cfg.LogFile {
		cfg.LogFile = appConfig.Log.Path
	}
	if appConfig.Log.MaxSizeMB > 0 {
		cfg.LogMaxSizeMB = appConfig.Log.MaxSizeMB
	}
	if appConfig.Log.MaxBackups > 0 {
		cfg.LogBackups = appConfig.Log.MaxBackups
	}
	if appConfig.Log.MaxAgeDays > 0 {
		cfg.LogMaxAge = appConfig.Log.MaxAgeDays
	}

	// 存储配置
	if flag.Lookup("storage-type").DefValue == cfg.StorageType && appConfig.Storage.Type != "" {
		cfg.StorageType = appConfig.Storage.Type
	}
	if flag.Lookup("storage").DefValue == cfg.StoragePath && appConfig.Storage.Path != "" {
		cfg.StoragePath = appConfig.Storage.Path
	}
	if flag.Lookup("minio-endpoint").DefValue == cfg.MinioEndpoint && appConfig.Storage.Endpoint != "" {
		cfg.MinioEndpoint = appConfig.Storage.Endpoint
	}
	if flag.Lookup("minio-access-key").DefValue == cfg.MinioAccessKey {
		cfg.MinioAccessKey = appConfig.Storage.AccessKey
	}
	if flag.Lookup("minio-secret-key").DefValue == cfg.MinioSecretKey {
		cfg.MinioSecretKey = appConfig.Storage.SecretKey
	}
	if flag.Lookup("minio-bucket").DefValue == cfg.MinioBucket && appConfig.Storage.Bucket != "" {
		cfg.MinioBucket = appConfig.Storage.Bucket
	}
	if flag.Lookup("minio-ssl").DefValue == fmt.Sprint(cfg.MinioUseSSL) {
		cfg.MinioUseSSL = appConfig.Storage.UseSSL
	}

	// 数据库配置
	if flag.Lookup("db").DefValue == cfg.DBPath && appConfig.Database.DSN != "" {
		cfg.DBPath = appConfig.Database.DSN
	}

	// LLM配置
	if flag.Lookup("llm-model").DefValue == cfg.LLMModel && appConfig.LLM.Model != "" {
		cfg.LLMModel = appConfig.LLM.Model
	}
	if cfg.LLMAPIKey == "" {
		cfg.LLMAPIKey = appConfig.LLM.APIKey
	}
	if flag.Lookup("llm-endpoint").DefValue == cfg.LLMEndpoint && appConfig.LLM.Endpoint != "" {
		cfg.LLMEndpoint = appConfig.LLM.Endpoint
	}
	if flag.Lookup("llm-max-tokens").DefValue == fmt.Sprint(cfg.LLMMaxTokens) && appConfig.LLM.MaxTokens > 0 {
		cfg.LLMMaxTokens = appConfig.LLM.MaxTokens
	}
	if appConfig.LLM.Temperature > 0 {
		cfg.LLMTemperature = appConfig.LLM.Temperature
	}

	// 缓存配置
	if flag.Lookup("cache").DefValue == cfg.CacheType && appConfig.Cache.Type != "" {
		cfg.CacheType = appConfig.Cache.Type
	}

	// 任务队列配置
	if flag.Lookup("queue").DefValue == fmt.Sprint(cfg.QueueEnabled) {
		cfg.QueueEnabled = appConfig.Queue.Enable
	}
	if flag.Lookup("queue-type").DefValue == cfg.QueueType && appConfig.Queue.Type != "" {
		cfg.QueueType = appConfig.Queue.Type
	}
	if flag.Lookup("redis-addr").DefValue == cfg.RedisAddr && appConfig.Queue.RedisAddr != "" {
		cfg.RedisAddr = appConfig.Queue.RedisAddr
	}
	if flag.Lookup("redis-password").DefValue == cfg.RedisPassword {
		cfg.RedisPassword = appConfig.Queue.RedisPassword
	}
	if flag.Lookup("redis-db").DefValue == fmt.Sprint(cfg.RedisDB) {
		cfg.RedisDB = appConfig.Queue.RedisDB
	}
	if flag.Lookup("queue-concurrency").DefValue == fmt.Sprint(cfg.QueueConcurrency) && appConfig.Queue.Concurrency > 0 {
		cfg.QueueConcurrency = appConfig.Queue.Concurrency
	}
	if flag.Lookup("queue-retry").DefValue == fmt.Sprint(cfg.QueueRetryLimit) && appConfig.Queue.RetryLimit > 0 {
		cfg.QueueRetryLimit = appConfig.Queue.RetryLimit
	}
	if appConfig.Queue.RetryDelay > 0 {
		cfg.QueueRetryDelay = time.Duration(appConfig.Queue.RetryDelay) * time.Second
	}
}

// setupLogger 设置日志系统
func setupLogger(cfg config) *logrus.Logger {
	logger := middleware.GetLogger()

	// 设置日志级别
	switch cfg.LogLevel {
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "info":
		logger.SetLevel(logrus.InfoLevel)
	case "warn":
		logger.SetLevel(logrus.WarnLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}

	// 配置了日志文件时，同时输出到标准输出和滚动日志文件
	if cfg.LogFile != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.LogMaxSizeMB,
			MaxBackups: cfg.LogBackups,
			MaxAge:     cfg.LogMaxAge,
			Compress:   true,
		}
		logger.SetOutput(io.MultiWriter(os.Stdout, rotator))
	}

	return logger
}

// setupDatabase 初始化数据库连接
func setupDatabase(cfg config, logger *logrus.Logger) error {
	dbConfig := database.DefaultConfig()
	dbConfig.Type = "sqlite"
	dbConfig.DSN = cfg.DBPath

	return database.Setup(dbConfig, logger)
}

// setupStorage 设置文件存储服务
func setupStorage(cfg config) (storage.Storage, error) {
	if cfg.StorageType == "minio" {
		return storage.NewMinioStorage(storage.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			UseSSL:    cfg.MinioUseSSL,
			Bucket:    cfg.MinioBucket,
		})
	}

	// 确保存储目录存在
	if err := os.MkdirAll(cfg.StoragePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %v", err)
	}

	return storage.NewLocalStorage(storage.LocalConfig{
		Path: cfg.StoragePath,
	})
}

// setupLLM 设置大语言模型客户端
func setupLLM(cfg config) (llm.Client, error) {
	return llm.NewClient("deepseek",
		llm.WithAPIKey(cfg.LLMAPIKey),
		llm.WithModel(cfg.LLMModel),
		llm.WithBaseURL(cfg.LLMEndpoint),
		llm.WithMaxTokens(cfg.LLMMaxTokens),
		llm.WithTemperature(cfg.LLMTemperature),
	)
}

// setupCache 设置缓存服务
func setupCache(cfg config) (cache.Cache, error) {
	cacheConfig := cache.Config{
		Type:            cfg.CacheType,
		DefaultTTL:      time.Hour * 24,
		CleanupInterval: time.Minute * 10,
	}

	if cfg.CacheType == "redis" {
		cacheConfig.RedisAddr = cfg.RedisAddr
		cacheConfig.RedisPassword = cfg.RedisPassword
		cacheConfig.RedisDB = cfg.RedisDB
	}

	return cache.NewCache(cacheConfig)
}

// setupTaskQueue 设置任务队列
func setupTaskQueue(cfg config, logger *logrus.Logger) (taskqueue.Queue, error) {
	queueConfig := &taskqueue.Config{
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
		Concurrency:   cfg.QueueConcurrency,
		RetryLimit:    cfg.QueueRetryLimit,
		RetryDelay:    cfg.QueueRetryDelay,
	}

	logger.WithFields(logrus.Fields{
		"type":        cfg.QueueType,
		"redis_addr":  cfg.RedisAddr,
		"concurrency": cfg.QueueConcurrency,
		"retry_limit": cfg.QueueRetryLimit,
	}).Info("Setting up task queue")

	return taskqueue.NewQueue(cfg.QueueType, queueConfig)
}

// setupWorker 注册任务处理器并启动队列工作者
func setupWorker(
	queue taskqueue.Queue,
	checkService *services.CheckService,
	optimizeService *services.OptimizeService,
	logger *logrus.Logger,
) (taskqueue.Worker, error) {
	redisQueue, ok := queue.(*taskqueue.RedisQueue)
	if !ok {
		return nil, fmt.Errorf("task queue type %T does not support workers", queue)
	}

	taskHandler := services.NewTaskHandler(checkService, optimizeService, queue,
		services.WithTaskHandlerLogger(logger),
	)

	worker := taskqueue.NewRedisWorker(redisQueue, nil)
	for _, taskType := range taskHandler.GetTaskTypes() {
		worker.RegisterHandler(taskType, taskHandler)
	}

	if err := worker.Start(); err != nil {
		return nil, err
	}

	logger.Info("Task worker started")
	return worker, nil
}
