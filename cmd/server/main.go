package main

import (
	"fmt"
	"log"

	"pdfdigest/internal/cache"
	"pdfdigest/internal/cache/badgerstore"
	"pdfdigest/internal/config"
	"pdfdigest/internal/converter"
	"pdfdigest/internal/converter/agno"
	"pdfdigest/internal/converter/docling"
	"pdfdigest/internal/domain"
	"pdfdigest/internal/handler"
	"pdfdigest/internal/pdfinfo"
	"pdfdigest/internal/port"
	"pdfdigest/internal/router"
	"pdfdigest/internal/service"
	localstorage "pdfdigest/internal/storage/local"
	s3storage "pdfdigest/internal/storage/s3"
	"pdfdigest/internal/validator"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize cache backend
	store, err := newCacheStore(&cfg.Cache)
	if err != nil {
		return fmt.Errorf("failed to initialize cache backend: %w", err)
	}
	defer func() { _ = store.Close() }()
	cacheManager := cache.NewManager(store, cfg.Cache.TTL)

	// Register converter factories
	converter.Register(domain.ProcessorDocling, func(c *config.ConverterConfig) (port.Converter, error) {
		return docling.NewConverter(c), nil
	})
	converter.Register(domain.ProcessorAgno, func(c *config.ConverterConfig) (port.Converter, error) {
		return agno.NewConverter(c)
	})

	// Build every configurable converter. The extraction agent is skipped
	// when no API key is set; the config layer already rejected a missing
	// key when agno is the default.
	converters := map[domain.Processor]port.Converter{}
	for p := range domain.Processors {
		if p == domain.ProcessorAgno && cfg.Converter.AgnoAPIKey == "" {
			log.Printf("main: %s converter disabled, no API key configured", p)
			continue
		}
		conv, err := converter.New(p, &cfg.Converter)
		if err != nil {
			return fmt.Errorf("failed to initialize %s converter: %w", p, err)
		}
		converters[p] = conv
	}

	// Initialize artifact storage
	storage, err := newArtifactStorage(&cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize artifact storage: %w", err)
	}

	// Initialize services
	convertSvc := service.NewConvertService(converters, cacheManager, validator.NewEngine(), pdfinfo.NewInspector(), storage, cfg)

	// Initialize handlers
	convertH := handler.NewConvertHandler(convertSvc)
	cacheH := handler.NewCacheHandler(convertSvc)
	healthH := handler.NewHealthHandler(convertSvc)

	// Setup router
	r := router.Setup(convertH, cacheH, healthH)

	log.Printf("Server starting on %s (cache=%s ttl=%s, default processor=%s)",
		cfg.Server.Port, cfg.Cache.Backend, cfg.Cache.TTL, cfg.Converter.Default)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

func newCacheStore(cfg *config.CacheConfig) (port.CacheStore, error) {
	switch cfg.Backend {
	case "badger":
		return badgerstore.Open(cfg.Path)
	default:
		return cache.NewMemoryStore(), nil
	}
}

func newArtifactStorage(cfg *config.StorageConfig) (port.ObjectStorage, error) {
	switch cfg.Backend {
	case "s3":
		return s3storage.NewS3Client(cfg)
	default:
		return localstorage.NewLocalStorage(cfg.LocalDir)
	}
}
