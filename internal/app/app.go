// Package app builds the clients and stores a process needs from its
// Config and owns their lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sakshi-kadian/aurelius/internal/queue"
	"github.com/sakshi-kadian/aurelius/internal/storage"
	"github.com/sakshi-kadian/aurelius/internal/util"
	"github.com/sakshi-kadian/aurelius/pkg/ai"
	oai "github.com/sakshi-kadian/aurelius/pkg/ai/ollama"
	gai "github.com/sakshi-kadian/aurelius/pkg/ai/openai"
	"github.com/sakshi-kadian/aurelius/pkg/cache/redis"
	"github.com/sakshi-kadian/aurelius/pkg/graph"
	"github.com/sakshi-kadian/aurelius/pkg/leaselock"
	"github.com/sakshi-kadian/aurelius/pkg/logger"
	"github.com/sakshi-kadian/aurelius/pkg/query"
	"github.com/sakshi-kadian/aurelius/pkg/store"
	"github.com/sakshi-kadian/aurelius/pkg/store/memory"
	"github.com/sakshi-kadian/aurelius/pkg/store/neo4j"
	pgxstore "github.com/sakshi-kadian/aurelius/pkg/store/pgx"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
	"github.com/rabbitmq/amqp091-go"
)

var ErrQueueDisabled = errors.New("job queue is not configured")

// App holds everything the pipeline needs at runtime. Optional parts are
// nil when their configuration is missing: DB and Locks without
// DATABASE_URL, S3 without AWS_BUCKET and Queue until ConnectQueue
// succeeds.
type App struct {
	Config Config

	AI         ai.GraphAIClient
	Graph      *graph.GraphClient
	GraphStore store.GraphStorage
	ChunkStore store.ChunkStorage
	Projector  *graph.Projector
	Reasoner   *graph.PathReasoner
	Reasoning  *query.ReasoningClient

	DB    *pgxpool.Pool
	Locks *leaselock.Client
	S3    *s3.Client
	Queue *amqp091.Channel

	closers []func(ctx context.Context) error
}

// New wires an App from cfg. Every connection is verified before New
// returns; on failure the parts opened so far are closed again.
func New(ctx context.Context, cfg Config) (*App, error) {
	a := &App{Config: cfg}
	if err := a.open(ctx); err != nil {
		a.Close(context.Background())
		return nil, err
	}
	return a, nil
}

func (a *App) open(ctx context.Context) (err error) {
	cfg := a.Config

	a.AI, err = NewAIClient(cfg)
	if err != nil {
		return err
	}

	if err = a.openGraphStore(ctx); err != nil {
		return err
	}
	if err = a.openChunkStore(ctx); err != nil {
		return err
	}

	var cache graph.TripletCache
	if cfg.RedisAddr != "" {
		c, err := redis.NewTripletCache(ctx, redis.NewTripletCacheParams{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			TTL:      cfg.RedisTTL,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.closers = append(a.closers, func(context.Context) error { return c.Close() })
		cache = c
		logger.Info("[App] Extraction cache enabled", "addr", cfg.RedisAddr)
	}

	opts := ExtractorOptions(cfg, cache)
	a.Graph, err = graph.NewGraphClient(graph.NewGraphClientParams{
		ParallelAiRequests: cfg.ParallelAI,
		ChunkSize:          cfg.ChunkSize,
		ChunkOverlap:       cfg.ChunkOverlap,
		MaxChunks:          cfg.MaxChunks,
		ExtractTimeout:     cfg.AITimeout,
		MergeTimeout:       cfg.Neo4jTimeout,
		ExtractorOptions:   opts,
	})
	if err != nil {
		return err
	}

	a.Projector = graph.NewProjector(a.GraphStore)
	a.Reasoner = graph.NewPathReasoner(a.GraphStore, cfg.PathMaxHops)

	var resolver query.EntityResolver = query.HeuristicResolver{}
	if cfg.ModelResolution {
		resolver = query.ExtractorResolver{
			Extractor: graph.NewTripletExtractor(a.AI, append(opts, graph.WithTimeout(cfg.AITimeout))...),
		}
	}
	a.Reasoning = query.NewReasoningClient(query.NewReasoningClientParams{
		Search:   a.ChunkStore,
		Reasoner: a.Reasoner,
		Resolver: resolver,
		TopK:     cfg.ContextTopK,
		Tracer:   query.LogTracer{},
	})

	if cfg.ObjectStoreEnabled() {
		a.S3, err = storage.NewS3Client(ctx, storage.NewS3ClientParams{
			Region:    cfg.AWSRegion,
			Endpoint:  cfg.AWSEndpoint,
			AccessKey: cfg.AWSAccessKey,
			SecretKey: cfg.AWSSecretKey,
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// NewFromEnv loads the Config from the environment and calls New.
func NewFromEnv(ctx context.Context) (*App, error) {
	return New(ctx, LoadConfig())
}

// NewAIClient builds the inference backend selected by AIAdapter.
func NewAIClient(cfg Config) (ai.GraphAIClient, error) {
	switch cfg.AIAdapter {
	case "ollama":
		client, err := oai.NewGraphOllamaClient(oai.NewGraphOllamaClientParams{
			EmbeddingModel:        cfg.EmbedModel,
			ExtractionModel:       cfg.ExtractModel,
			EmbeddingDim:          cfg.EmbedDim,
			BaseURL:               cfg.ChatURL,
			ApiKey:                cfg.ChatKey,
			Timeout:               cfg.AITimeout,
			MaxConcurrentRequests: int64(cfg.ParallelAI),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama client: %w", err)
		}
		return client, nil
	case "openai", "":
		return gai.NewGraphOpenAIClient(gai.NewGraphOpenAIClientParams{
			ExtractionModel:       cfg.ExtractModel,
			EmbeddingModel:        cfg.EmbedModel,
			EmbeddingDim:          cfg.EmbedDim,
			ChatURL:               cfg.ChatURL,
			ChatKey:               cfg.ChatKey,
			EmbeddingURL:          cfg.EmbedURL,
			EmbeddingKey:          cfg.EmbedKey,
			Timeout:               cfg.AITimeout,
			MaxConcurrentRequests: int64(cfg.ParallelAI),
		}), nil
	default:
		return nil, fmt.Errorf("unknown AI_ADAPTER %q", cfg.AIAdapter)
	}
}

// ExtractorOptions maps the extraction settings of cfg to extractor
// options. cache may be nil.
func ExtractorOptions(cfg Config, cache graph.TripletCache) []graph.ExtractorOption {
	opts := []graph.ExtractorOption{graph.WithRepair(cfg.JSONRepair)}
	if cache != nil {
		opts = append(opts, graph.WithCache(cache))
	}
	if cfg.ExtractModel != "" {
		opts = append(opts, graph.WithExtractionModel(cfg.ExtractModel))
	}
	return opts
}

func (a *App) openGraphStore(ctx context.Context) error {
	cfg := a.Config
	switch cfg.GraphAdapter {
	case "memory":
		logger.Warn("[App] Using in-memory graph store, facts are lost on exit")
		a.GraphStore = memory.NewGraphStorage()
	case "neo4j":
		client, err := util.RetryWithBackoff(ctx, 5, time.Second, func(ctx context.Context) (*neo4j.Client, error) {
			return neo4j.NewClient(ctx, neo4j.NewClientParams{
				URI:         cfg.Neo4jURI,
				User:        cfg.Neo4jUser,
				Password:    cfg.Neo4jPassword,
				Database:    cfg.Neo4jDatabase,
				MaxPoolSize: cfg.Neo4jMaxPoolSize,
				Timeout:     cfg.Neo4jTimeout,
			})
		})
		if err != nil {
			return fmt.Errorf("failed to connect to neo4j: %w", err)
		}
		gs := neo4j.NewGraphStorage(client)
		gs.EnsureSchema(ctx)
		a.GraphStore = gs
		logger.Info("[App] Connected to Neo4j", "uri", cfg.Neo4jURI)
	default:
		return fmt.Errorf("unknown GRAPH_ADAPTER %q", cfg.GraphAdapter)
	}
	a.closers = append(a.closers, a.GraphStore.Close)
	return nil
}

func (a *App) openChunkStore(ctx context.Context) error {
	cfg := a.Config
	if cfg.DatabaseURL == "" {
		a.ChunkStore = memory.NewChunkStorage(a.AI)
		return nil
	}

	if err := pgxstore.Migrate(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		return err
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return fmt.Errorf("unable to connect to database: %w", err)
	}
	a.closers = append(a.closers, func(context.Context) error {
		pool.Close()
		return nil
	})
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("unable to reach database: %w", err)
	}

	a.DB = pool
	a.Locks = leaselock.New(pool)
	a.ChunkStore = pgxstore.NewChunkDBStorageWithConnection(pool, a.AI)
	logger.Info("[App] Chunk index on Postgres")
	return nil
}

// ConnectQueue dials RabbitMQ and declares the ingest queues. It returns
// ErrQueueDisabled when no broker is configured.
func (a *App) ConnectQueue(ctx context.Context) (*amqp091.Connection, error) {
	cfg := a.Config
	if !cfg.QueueEnabled() {
		return nil, ErrQueueDisabled
	}

	conn, err := queue.Init(ctx, queue.InitParams{
		User:     cfg.RabbitUser,
		Password: cfg.RabbitPassword,
		Host:     cfg.RabbitHost,
		Port:     cfg.RabbitPort,
	})
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if err := queue.SetupQueues(ch, []string{queue.IngestQueue}); err != nil {
		_ = conn.Close()
		return nil, err
	}

	a.Queue = ch
	a.closers = append(a.closers, func(context.Context) error {
		_ = ch.Close()
		return conn.Close()
	})
	return conn, nil
}

// Close releases every connection in reverse order of opening.
func (a *App) Close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			logger.Warn("[App] Close failed", "err", err)
		}
	}
	a.closers = nil
}
