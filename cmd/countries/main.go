package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"countries/internal/countries/cache"
	"countries/internal/countries/events"
	"countries/internal/countries/handler"
	"countries/internal/countries/metrics"
	"countries/internal/countries/repository"
	"countries/internal/countries/service"
	"countries/internal/countries/validator"
	"countries/pkg/app"
	"countries/pkg/config"
	"countries/pkg/kafka"
	kafkamiddleware "countries/pkg/kafka/middleware"
	"countries/pkg/middleware"
)

const ServiceName = "countries"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	cfg.Log.Info("Starting Countries service")
	serverApp := app.NewApplication(cfg, registry)
	countryService := initServices(cfg, registry, serverApp)
	serverApp.SetApp(handler.NewCountryHandler(countryService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config, registry *prometheus.Registry, serverApp *app.Application) service.CountryService {
	m := metrics.New(registry)

	var countryRepo repository.CountryRepository = repository.NewMongoCountryRepository(cfg)
	if cfg.Client.Redis != nil {
		countryRepo = cache.NewCountryRepository(countryRepo, cfg.Client.Redis, cfg.CacheTTL, m, cfg.Log)
		cfg.Log.Info("Country lookups cached in Redis", "ttl", cfg.CacheTTL)
	}

	var opts []service.Option
	if cfg.KafkaEnabled() {
		producer := initProducer(cfg, registry)
		serverApp.OnShutdown("kafka producer", producer.Close)
		opts = append(opts, service.WithMissRecorder(events.NewKafkaMissRecorder(
			producer,
			cfg.KafkaProducerPublishTimeout,
			middleware.RequestIDFromContext,
			cfg.Log,
		)))
	}

	countryService := service.NewCountryService(
		countryRepo,
		validator.NewLookupValidator(cfg.Log),
		m,
		cfg.Log,
		opts...,
	)

	cfg.Log.Info("Countries service initialized",
		"database", cfg.MongoDatabaseName,
		"collection", cfg.MongoCollectionName,
	)
	return countryService
}

func initProducer(cfg *config.Config, registry prometheus.Registerer) *kafka.Producer {
	producer, err := kafka.NewProducer(kafka.ProducerConfig{
		Brokers:      cfg.KafkaBrokers,
		Topic:        cfg.KafkaLookupMissTopic,
		Compression:  cfg.KafkaProducerCompression,
		MaxAttempts:  cfg.KafkaProducerMaxAttempts,
		BatchTimeout: cfg.KafkaProducerBatchTimeout,
	}, cfg.Log)
	if err != nil {
		cfg.GracefulShutdown()
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	producer.Use(kafkamiddleware.LoggingProducerMiddleware(cfg.Log))
	producer.Use(kafkamiddleware.NewProducerMetrics(registry).Middleware())

	cfg.Log.Info("Lookup-miss events enabled",
		"brokers", cfg.KafkaBrokers,
		"topic", cfg.KafkaLookupMissTopic,
	)
	return producer
}
