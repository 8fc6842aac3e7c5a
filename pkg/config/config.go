package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Milvus    MilvusConfig
	SQLite    SQLiteConfig
	Redis     RedisConfig
	Neo4j     Neo4jConfig
	Embedding EmbeddingConfig
	Retrieval RetrievalConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
}

type MilvusConfig struct {
	Endpoint       string
	APIKey         string
	CollectionName string
	VectorDim      int
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	Enabled  bool
}

type Neo4jConfig struct {
	URI      string
	Username string
	Password string
	Database string
	Enabled  bool
}

type EmbeddingConfig struct {
	APIKey     string
	Model      string
	TimeoutSec int
}

// RetrievalConfig carries the knobs the orchestrator reads at query time.
// ProductSpellings maps a logical product name to the literal spellings
// observed in stored metadata; a product filter matches the whole set.
type RetrievalConfig struct {
	K                int
	MaxVariants      int
	ComparativeKCap  int
	TrendKCap        int
	ProductSpellings map[string][]string
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/complaint-intel")

	viper.SetEnvPrefix("COMPLAINT_INTEL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if len(config.Retrieval.ProductSpellings) == 0 {
		config.Retrieval.ProductSpellings = DefaultProductSpellings()
	}

	return &config, nil
}

// DefaultProductSpellings covers the case and hyphenation variants observed
// in the complaint corpus metadata.
func DefaultProductSpellings() map[string][]string {
	return map[string][]string{
		"Credit card":      {"Credit card", "credit card", "Credit Card", "Credit-card"},
		"Personal loan":    {"Personal loan", "personal loan", "Personal Loan", "Personal-loan"},
		"Savings account":  {"Savings account", "savings account", "Savings Account", "Savings-account"},
		"Money transfers":  {"Money transfers", "money transfers", "Money Transfers", "Money-transfers"},
		"Mortgage":         {"Mortgage", "mortgage", "Home loan"},
		"Checking account": {"Checking account", "checking account", "Checking Account", "Checking-account"},
	}
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", 30)
	viper.SetDefault("server.writeTimeout", 30)
	viper.SetDefault("server.bodyLimit", 10485760)

	viper.SetDefault("milvus.endpoint", "localhost:19530")
	viper.SetDefault("milvus.collectionName", "complaint_embeddings")
	viper.SetDefault("milvus.vectorDim", 1536)

	viper.SetDefault("sqlite.path", "./data/complaints.db")

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.enabled", false)

	viper.SetDefault("neo4j.uri", "bolt://localhost:7687")
	viper.SetDefault("neo4j.username", "neo4j")
	viper.SetDefault("neo4j.password", "password")
	viper.SetDefault("neo4j.database", "neo4j")
	viper.SetDefault("neo4j.enabled", false)

	viper.SetDefault("embedding.model", "text-embedding-3-small")
	viper.SetDefault("embedding.timeoutSec", 30)

	viper.SetDefault("retrieval.k", 5)
	viper.SetDefault("retrieval.maxVariants", 2)
	viper.SetDefault("retrieval.comparativeKCap", 8)
	viper.SetDefault("retrieval.trendKCap", 10)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
