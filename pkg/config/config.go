package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"countries/pkg/client"
	"countries/pkg/logger"
)

type Config struct {
	MongoURI            string
	MongoDatabaseName   string
	MongoCollectionName string
	MongoConnTimeout    time.Duration
	MongoOpTimeout      time.Duration
	CollationLocale     string

	Port       string
	ProjectURL string

	RequestTimeout time.Duration

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	RedisURL string
	CacheTTL time.Duration

	KafkaBrokers                []string
	KafkaLookupMissTopic        string
	KafkaProducerMaxAttempts    int
	KafkaProducerBatchTimeout   time.Duration
	KafkaProducerCompression    string
	KafkaProducerPublishTimeout time.Duration

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	cfg := &Config{
		MongoURI:            getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName:   getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoCollectionName: getEnvStr(EnvMongoCollectionName, DefaultMongoCollectionName),
		MongoConnTimeout:    getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),
		MongoOpTimeout:      getEnvDuration(EnvMongoOpTimeout, DefaultMongoOpTimeout),
		CollationLocale:     getEnvStr(EnvCollationLocale, DefaultCollationLocale),

		Port:       getEnvStr(EnvPort, DefaultPort),
		ProjectURL: getEnvStr(EnvProjectURL, DefaultProjectURL),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		RedisURL: getEnvStr(EnvRedisURL, ""),
		CacheTTL: getEnvDuration(EnvCacheTTL, DefaultCacheTTL),

		KafkaBrokers:                getEnvList(EnvKafkaBrokers),
		KafkaLookupMissTopic:        getEnvStr(EnvKafkaLookupMissTopic, DefaultKafkaLookupMissTopic),
		KafkaProducerMaxAttempts:    getEnvNum(EnvKafkaProducerMaxAttempts, DefaultKafkaProducerMaxAttempts),
		KafkaProducerBatchTimeout:   getEnvDuration(EnvKafkaProducerBatchTimeout, DefaultKafkaProducerBatchTimeout),
		KafkaProducerCompression:    getEnvStr(EnvKafkaProducerCompression, DefaultKafkaProducerCompression),
		KafkaProducerPublishTimeout: getEnvDuration(EnvKafkaProducerPublishTimeout, DefaultKafkaPublishTimeout),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	err := cfg.Validate()
	if err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout, cfg.MongoOpTimeout)
}

// SetRedis connects the optional response cache. It is a no-op when
// REDIS_URL is not set.
func (cfg *Config) SetRedis() {
	if cfg.RedisURL == "" {
		cfg.Log.Info("Redis cache disabled")
		return
	}
	cfg.Client.SetRedis(cfg.Log, cfg.RedisURL, cfg.MongoConnTimeout)
}

func (cfg *Config) KafkaEnabled() bool {
	return len(cfg.KafkaBrokers) > 0
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if len(cfg.MongoURI) < 10 || !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}

	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}
	if cfg.MongoCollectionName == "" {
		errors = append(errors, "MongoCollectionName cannot be empty")
	}
	if cfg.CollationLocale == "" {
		errors = append(errors, "CollationLocale cannot be empty")
	}

	if cfg.MongoConnTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}
	if cfg.MongoOpTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("MongoOpTimeout must be positive, got: %s", cfg.MongoOpTimeout))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if cfg.RedisURL != "" && !regexp.MustCompile(`^rediss?://`).MatchString(cfg.RedisURL) {
		errors = append(errors, "RedisURL must start with 'redis://' or 'rediss://'")
	}
	if cfg.CacheTTL <= 0 {
		errors = append(errors, fmt.Sprintf("CacheTTL must be positive, got: %s", cfg.CacheTTL))
	}

	if cfg.KafkaEnabled() {
		if cfg.KafkaLookupMissTopic == "" {
			errors = append(errors, "KafkaLookupMissTopic cannot be empty when KAFKA_BROKERS is set")
		}
		if cfg.KafkaProducerMaxAttempts <= 0 {
			errors = append(errors, fmt.Sprintf("KafkaProducerMaxAttempts must be positive, got: %d", cfg.KafkaProducerMaxAttempts))
		}
		if cfg.KafkaProducerBatchTimeout <= 0 {
			errors = append(errors, fmt.Sprintf("KafkaProducerBatchTimeout must be positive, got: %s", cfg.KafkaProducerBatchTimeout))
		}
		if cfg.KafkaProducerPublishTimeout <= 0 {
			errors = append(errors, fmt.Sprintf("KafkaProducerPublishTimeout must be positive, got: %s", cfg.KafkaProducerPublishTimeout))
		}
		validCompressions := map[string]bool{
			"none": true, "gzip": true, "snappy": true, "lz4": true, "zstd": true,
		}
		if !validCompressions[cfg.KafkaProducerCompression] {
			errors = append(errors, fmt.Sprintf("KafkaProducerCompression must be one of [none, gzip, snappy, lz4, zstd], got: %s", cfg.KafkaProducerCompression))
		}
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_collection", cfg.MongoCollectionName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"mongo_operation_timeout", cfg.MongoOpTimeout,
		"collation_locale", cfg.CollationLocale,
		"port", cfg.Port,
		"request_timeout", cfg.RequestTimeout,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"redis_enabled", cfg.RedisURL != "",
		"cache_ttl", cfg.CacheTTL,
		"kafka_enabled", cfg.KafkaEnabled(),
		"kafka_brokers", cfg.KafkaBrokers,
		"kafka_lookup_miss_topic", cfg.KafkaLookupMissTopic,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
}
