package config

const (
	EnvMongoURI            = "MONGO_URI"
	EnvMongoDatabaseName   = "MONGO_DATABASE_NAME"
	EnvMongoCollectionName = "MONGO_COLLECTION_NAME"
	EnvMongoConnTimeout    = "MONGO_CONN_TIMEOUT"
	EnvMongoOpTimeout      = "MONGO_OPERATION_TIMEOUT"
	EnvCollationLocale     = "COLLATION_LOCALE"

	EnvPort       = "PORT"
	EnvLogLevel   = "LOG_LEVEL"
	EnvProjectURL = "PROJECT_URL"

	EnvRequestTimeout = "REQUEST_TIMEOUT"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvRedisURL = "REDIS_URL"
	EnvCacheTTL = "CACHE_TTL"

	EnvKafkaBrokers                = "KAFKA_BROKERS"
	EnvKafkaLookupMissTopic        = "KAFKA_LOOKUP_MISS_TOPIC"
	EnvKafkaProducerMaxAttempts    = "KAFKA_PRODUCER_MAX_ATTEMPTS"
	EnvKafkaProducerBatchTimeout   = "KAFKA_PRODUCER_BATCH_TIMEOUT"
	EnvKafkaProducerCompression    = "KAFKA_PRODUCER_COMPRESSION"
	EnvKafkaProducerPublishTimeout = "KAFKA_PRODUCER_PUBLISH_TIMEOUT"
)
