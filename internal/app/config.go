package app

import (
	"time"

	"github.com/sakshi-kadian/aurelius/internal/util"
	"github.com/sakshi-kadian/aurelius/pkg/graph"
	"github.com/sakshi-kadian/aurelius/pkg/query"
)

// Config is the process configuration read from the environment.
type Config struct {
	Debug bool
	Port  string

	AIAdapter       string
	ChatURL         string
	ChatKey         string
	ExtractModel    string
	EmbedURL        string
	EmbedKey        string
	EmbedModel      string
	EmbedDim        int
	ParallelAI      int
	AITimeout       time.Duration
	JSONRepair      bool
	ModelResolution bool

	GraphAdapter     string
	Neo4jURI         string
	Neo4jUser        string
	Neo4jPassword    string
	Neo4jDatabase    string
	Neo4jMaxPoolSize int
	Neo4jTimeout     time.Duration
	PathMaxHops      int

	DatabaseURL    string
	MigrationsPath string

	RedisAddr     string
	RedisPassword string
	RedisTTL      time.Duration

	AWSRegion    string
	AWSEndpoint  string
	AWSAccessKey string
	AWSSecretKey string
	AWSBucket    string

	RabbitUser     string
	RabbitPassword string
	RabbitHost     string
	RabbitPort     string

	ChunkSize    int
	ChunkOverlap int
	MaxChunks    int
	ContextTopK  int
}

// LoadConfig reads Config from the environment.
func LoadConfig() Config {
	cfg := Config{
		Debug: util.GetEnvBool("DEBUG", false),
		Port:  util.GetEnvString("PORT", "8000"),

		AIAdapter:       util.GetEnvString("AI_ADAPTER", "openai"),
		ChatURL:         util.GetEnv("AI_CHAT_URL"),
		ChatKey:         util.GetEnv("AI_CHAT_KEY"),
		ExtractModel:    util.GetEnv("AI_CHAT_EXTRACT_MODEL"),
		EmbedURL:        util.GetEnv("AI_EMBED_URL"),
		EmbedKey:        util.GetEnv("AI_EMBED_KEY"),
		EmbedModel:      util.GetEnv("AI_EMBED_MODEL"),
		EmbedDim:        util.GetEnvInt("AI_EMBED_DIM", 0),
		ParallelAI:      util.GetEnvInt("AI_PARALLEL_REQ", graph.DefaultParallel),
		AITimeout:       util.GetEnvSeconds("AI_TIMEOUT_SECONDS", 120),
		JSONRepair:      util.GetEnvBool("AI_JSON_REPAIR", false),
		ModelResolution: util.GetEnvBool("AI_RESOLVE_ENTITIES", false),

		GraphAdapter:     util.GetEnv("GRAPH_ADAPTER"),
		Neo4jURI:         util.GetEnv("NEO4J_URI"),
		Neo4jUser:        util.GetEnvString("NEO4J_USER", "neo4j"),
		Neo4jPassword:    util.GetEnv("NEO4J_PASSWORD"),
		Neo4jDatabase:    util.GetEnv("NEO4J_DATABASE"),
		Neo4jMaxPoolSize: util.GetEnvInt("NEO4J_MAX_POOL_SIZE", 50),
		Neo4jTimeout:     util.GetEnvSeconds("NEO4J_TIMEOUT_SECONDS", 10),
		PathMaxHops:      util.GetEnvInt("PATH_MAX_HOPS", 0),

		DatabaseURL:    util.GetEnv("DATABASE_URL"),
		MigrationsPath: util.GetEnvString("MIGRATIONS_PATH", "migrations"),

		RedisAddr:     util.GetEnv("REDIS_ADDR"),
		RedisPassword: util.GetEnv("REDIS_PASSWORD"),
		RedisTTL:      time.Duration(util.GetEnvNumeric("REDIS_TTL_HOURS", 168) * float64(time.Hour)),

		AWSRegion:    util.GetEnvString("AWS_REGION", "us-east-1"),
		AWSEndpoint:  util.GetEnv("AWS_ENDPOINT"),
		AWSAccessKey: util.GetEnv("AWS_ACCESS_KEY"),
		AWSSecretKey: util.GetEnv("AWS_SECRET_KEY"),
		AWSBucket:    util.GetEnv("AWS_BUCKET"),

		RabbitUser:     util.GetEnvString("RABBITMQ_USER", "guest"),
		RabbitPassword: util.GetEnvString("RABBITMQ_PASSWORD", "guest"),
		RabbitHost:     util.GetEnv("RABBITMQ_HOST"),
		RabbitPort:     util.GetEnvString("RABBITMQ_PORT", "5672"),

		ChunkSize:    util.GetEnvInt("CHUNK_SIZE", graph.DefaultChunkSize),
		ChunkOverlap: util.GetEnvInt("CHUNK_OVERLAP", graph.DefaultChunkOverlap),
		MaxChunks:    util.GetEnvInt("MAX_CHUNKS", 0),
		ContextTopK:  util.GetEnvInt("CONTEXT_TOP_K", query.DefaultTopK),
	}

	if cfg.GraphAdapter == "" {
		cfg.GraphAdapter = "memory"
		if cfg.Neo4jURI != "" {
			cfg.GraphAdapter = "neo4j"
		}
	}
	return cfg
}

// QueueEnabled reports whether a RabbitMQ broker is configured.
func (c Config) QueueEnabled() bool {
	return c.RabbitHost != ""
}

// ObjectStoreEnabled reports whether an S3 bucket is configured.
func (c Config) ObjectStoreEnabled() bool {
	return c.AWSBucket != ""
}
