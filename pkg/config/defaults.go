package config

import "time"

const (
	DefaultMongoURI            = "mongodb://localhost:27017"
	DefaultMongoDatabaseName   = "countries"
	DefaultMongoCollectionName = "countries"
	DefaultMongoConnTimeout    = 10 * time.Second
	DefaultMongoOpTimeout      = 5 * time.Second
	DefaultCollationLocale     = "en"

	DefaultPort       = "3000"
	DefaultLogLevel   = "info"
	DefaultProjectURL = "https://github.com/rgdevment/retrieve-countries"

	DefaultRequestTimeout = 15 * time.Second

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultCacheTTL = 1 * time.Hour

	DefaultKafkaLookupMissTopic      = "countries.lookup.missed"
	DefaultKafkaProducerMaxAttempts  = 3
	DefaultKafkaProducerBatchTimeout = 10 * time.Millisecond
	DefaultKafkaProducerCompression  = "snappy"
	DefaultKafkaPublishTimeout       = 2 * time.Second
)
