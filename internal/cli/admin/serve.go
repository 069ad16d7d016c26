package admin

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	goopenai "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"
	"github.com/you-education/examref/internal/api/handlers"
	"github.com/you-education/examref/internal/config"
	"github.com/you-education/examref/internal/contentstore"
	"github.com/you-education/examref/internal/database"
	"github.com/you-education/examref/internal/openai"
	"github.com/you-education/examref/internal/repository"
	"github.com/you-education/examref/internal/segment"
	"github.com/you-education/examref/internal/server"
	"github.com/you-education/examref/internal/service"
	"github.com/you-education/examref/internal/storage"
	"github.com/you-education/examref/internal/telemetry"
	"github.com/you-education/examref/internal/vectorindex"
	"github.com/you-education/examref/internal/youtube"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the examref API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if !cfg.HasOpenAI() {
		return fmt.Errorf("OPENAI_API_KEY is required: ingestion, retrieval and chat depend on embeddings")
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	// Run migrations unless --no-migrate flag is set
	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	mongoClient, err := contentstore.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return fmt.Errorf("failed to connect to mongo: %w", err)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	mongoDB := mongoClient.Database(cfg.MongoDatabase)
	chunkStore := contentstore.NewChunkStore(mongoDB, cfg.MongoChunkCollection)
	if err := chunkStore.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("failed to ensure chunk indexes: %w", err)
	}
	mindmapStore := contentstore.NewMindmapStore(mongoDB, cfg.MongoMindmapCollection)
	if err := mindmapStore.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("failed to ensure mindmap indexes: %w", err)
	}
	log.Println("connected to content store")

	var storageClient service.StorageClientInterface
	if cfg.HasS3() {
		s3Config := storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		}
		s3Client, err := storage.NewS3Client(ctx, s3Config)
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
		storageClient = &S3StorageAdapter{client: s3Client}
	}

	embeddingClient := openai.NewClientWithConfig(openai.Config{
		APIKey:              cfg.OpenAIAPIKey,
		EmbeddingModel:      goopenai.EmbeddingModel(cfg.EmbeddingModel),
		EmbeddingDimensions: cfg.EmbeddingDimensions,
	})
	chatClient := openai.NewChatClient(cfg.OpenAIAPIKey, cfg.ChatModel)
	mindmapClient := openai.NewChatClient(cfg.OpenAIAPIKey, cfg.MindmapModel)

	var ytClient *youtube.Client
	if cfg.HasYouTube() {
		ytClient, err = youtube.NewClient(ctx, cfg.YouTubeAPIKey)
		if err != nil {
			return fmt.Errorf("failed to create YouTube client: %w", err)
		}
		log.Println("YouTube Data API client ready")
	}

	var ytSegmenter *segment.YouTubeSegmenter
	if ytClient != nil {
		ytSegmenter = segment.NewYouTubeSegmenter(ytClient)
	}
	registry := segment.DefaultRegistry(segment.NewWebsiteSegmenter(), ytSegmenter)

	subjectRepo := repository.NewSubjectRepository(pool)
	examRepo := repository.NewExamRepository(pool)
	referenceRepo := repository.NewReferenceRepository(pool)
	chunkRepo := repository.NewChunkRepository(pool)
	txRunner := repository.NewTxRunner(pool)
	vectorIndex := vectorindex.NewIndex(pool, cfg.EmbeddingDimensions)

	uuidGen := &service.DefaultUUIDGenerator{}

	ingestor := service.NewIngestionCoordinator(chunkRepo, chunkStore, embeddingClient, vectorIndex, uuidGen)
	retriever := service.NewRetriever(embeddingClient, vectorIndex, chunkStore)
	deleter := service.NewDeletionCoordinator(chunkRepo, chunkStore, vectorIndex, txRunner)

	referenceSvc := service.NewReferenceService(referenceRepo, examRepo, registry, ingestor, deleter, storageClient, uuidGen)
	chatSvc := service.NewChatService(examRepo, subjectRepo, referenceRepo, retriever, chatClient, cfg.RetrievalK, cfg.RetrievalMaxDistance)

	var videoSearcher service.VideoSearcher
	var videoMetadata service.VideoMetadataGetter
	if ytClient != nil {
		videoSearcher = ytClient
		videoMetadata = ytClient
	}
	mindmapSvc := service.NewMindmapService(examRepo, referenceRepo, chunkRepo, chunkStore, mindmapStore, mindmapClient, videoSearcher)
	metadataSvc := service.NewMetadataService(videoMetadata)

	routerCfg := server.RouterConfig{
		SubjectHandler:   handlers.NewSubjectHandler(subjectRepo),
		ExamHandler:      handlers.NewExamHandler(examRepo),
		ReferenceHandler: handlers.NewReferenceHandler(referenceSvc),
		ChatHandler:      handlers.NewChatHandler(chatSvc),
		MindmapHandler:   handlers.NewMindmapHandler(mindmapSvc),
		MetadataHandler:  handlers.NewMetadataHandler(metadataSvc),
		MaxUploadBytes:   cfg.MaxUploadBytes,
	}

	router := server.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// S3StorageAdapter bridges the storage client to the service layer's
// metadata type.
type S3StorageAdapter struct {
	client *storage.S3Client
}

func (a *S3StorageAdapter) UploadObject(ctx context.Context, key string, body io.Reader, contentType string) error {
	return a.client.UploadObject(ctx, key, body, contentType)
}

func (a *S3StorageAdapter) GenerateDownloadURL(ctx context.Context, key string) (string, error) {
	return a.client.GenerateDownloadURL(ctx, key)
}

func (a *S3StorageAdapter) DeleteObject(ctx context.Context, key string) error {
	return a.client.DeleteObject(ctx, key)
}

func (a *S3StorageAdapter) HeadObject(ctx context.Context, key string) (*service.ObjectMetadata, error) {
	meta, err := a.client.HeadObject(ctx, key)
	if err != nil {
		return nil, err
	}
	return &service.ObjectMetadata{
		ContentLength: meta.ContentLength,
		ContentType:   meta.ContentType,
		ETag:          meta.ETag,
	}, nil
}

func runMigrations(databaseURL string) error {
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
