// Package admin implements the hrdeskd server and one-shot commands.
package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/cloo-solutions/hrdesk/internal/chunker"
	"github.com/cloo-solutions/hrdesk/internal/config"
	"github.com/cloo-solutions/hrdesk/internal/database"
	"github.com/cloo-solutions/hrdesk/internal/extract"
	"github.com/cloo-solutions/hrdesk/internal/openai"
	"github.com/cloo-solutions/hrdesk/internal/repository"
	"github.com/cloo-solutions/hrdesk/internal/service"
	"github.com/cloo-solutions/hrdesk/internal/storage"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// App bundles the wired service graph shared by serve, ingest, and ask.
type App struct {
	Config    *config.Config
	Pool      *pgxpool.Pool
	DocRepo   *repository.DocumentRepository
	ChunkRepo *repository.ChunkRepository
	Ingest    *service.IngestService
	Documents *service.DocumentService
	QA        *service.QAService
}

// NewApp loads configuration, connects to the database, and wires the
// full service graph. Callers must Close the app when done.
func NewApp(ctx context.Context, migrateDB bool) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("connected to database")

	if migrateDB {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	docRepo := repository.NewDocumentRepository(pool)
	chunkRepo := repository.NewChunkRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	var archive service.ArchiveStore
	if cfg.HasS3() {
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
		archive = s3Client
	}

	if !cfg.HasOpenAI() {
		pool.Close()
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	aiClient := openai.NewClientWithConfig(openai.Config{
		APIKey:              cfg.OpenAIAPIKey,
		BaseURL:             cfg.OpenAIBaseURL,
		EmbeddingModel:      cfg.EmbeddingModel,
		EmbeddingDimensions: cfg.EmbeddingDimensions,
		ChatModel:           cfg.ChatModel,
	})

	textChunker, err := chunker.New(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		pool.Close()
		return nil, err
	}

	locks := service.NewDocumentLocks()

	ingestSvc := service.NewIngestService(service.IngestServiceConfig{
		Extractor:    extract.New(),
		Chunker:      textChunker,
		Embedder:     aiClient,
		DocumentRepo: docRepo,
		TxRunner:     txRunner,
		Locks:        locks,
		Archive:      archive,
		EmbedTimeout: cfg.EmbedTimeout,
	})

	retriever := service.NewRetrieverService(aiClient, chunkRepo, service.RetrieverConfig{
		TopK:                cfg.TopK,
		SimilarityThreshold: cfg.SimilarityThreshold,
		OversampleFactor:    cfg.OversampleFactor,
		EmbedTimeout:        cfg.EmbedTimeout,
	})
	synthesizer := service.NewAnswerService(aiClient, cfg.GenerateTimeout)
	qaSvc := service.NewQAService(retriever, synthesizer, docRepo)

	docSvc := service.NewDocumentService(docRepo, txRunner, locks, archive)

	return &App{
		Config:    cfg,
		Pool:      pool,
		DocRepo:   docRepo,
		ChunkRepo: chunkRepo,
		Ingest:    ingestSvc,
		Documents: docSvc,
		QA:        qaSvc,
	}, nil
}

// Close releases the app's resources.
func (a *App) Close() {
	a.Pool.Close()
}

func runMigrations(databaseURL string) error {
	// golang-migrate needs database/sql, not a pgx pool
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else if err == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
