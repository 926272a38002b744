package file

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/twinsync/internal/core/domain"
	"github.com/custodia-labs/twinsync/internal/core/ports/driven"
)

// Configuration keys.
const (
	KeyProfilePath       = "profile.path"
	KeyRelationalDriver  = "relational.driver"
	KeyRelationalDSN     = "relational.dsn"
	KeyRelationalDataDir = "relational.data_dir"
	KeyVectorProvider    = "vector.provider"
	KeyVectorURL         = "vector.url"
	KeyVectorToken       = "vector.token"
	KeyVectorDimension   = "vector.dimension"
	KeyVectorChromemPath = "vector.chromem_path"
	KeyVectorEmbedder    = "vector.embedder"
	KeyVectorOllamaModel = "vector.ollama_model"
	KeyVectorOllamaURL   = "vector.ollama_url"
	KeyBatchSize         = "migration.batch_size"
	KeyBatchPauseMS      = "migration.batch_pause_ms"
	KeyHarnessTopK       = "harness.top_k"
	KeyHarnessWorkers    = "harness.workers"
	KeyCacheRedisAddr    = "cache.redis_addr"
	KeyReportDir         = "report.dir"
)

// Environment variables that override file configuration.
const (
	EnvDatabaseURL  = "DATABASE_URL"
	EnvVectorURL    = "UPSTASH_VECTOR_REST_URL"
	EnvVectorToken  = "UPSTASH_VECTOR_REST_TOKEN"
	EnvRedisURL     = "REDIS_URL"
	EnvProfilePath  = "TWINSYNC_PROFILE"
	EnvVectorDriver = "TWINSYNC_VECTOR_PROVIDER"
)

// Relational drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Vector providers.
const (
	ProviderUpstash = "upstash"
	ProviderChromem = "chromem"
	ProviderMemory  = "memory"
)

// Settings is the resolved runtime configuration.
type Settings struct {
	ProfilePath string

	RelationalDriver  string
	RelationalDSN     string
	RelationalDataDir string

	VectorProvider    string
	VectorURL         string
	VectorToken       string
	VectorDimension   int
	VectorChromemPath string

	// Embedder, OllamaModel and OllamaURL configure local embedding for chromem.
	VectorEmbedder    string
	VectorOllamaModel string
	VectorOllamaURL   string

	BatchSize  int
	BatchPause time.Duration

	HarnessTopK    int
	HarnessWorkers int

	RedisAddr string
	ReportDir string
}

// LoadEnvFiles loads .env.local then .env from dir into the process
// environment. Variables already set are never overwritten, so .env.local
// wins over .env. Missing files are skipped.
func LoadEnvFiles(dir string) error {
	var files []string
	for _, name := range []string{".env.local", ".env"} {
		path := filepath.Join(dir, name)
		if _, err := godotenv.Read(path); err == nil {
			files = append(files, path)
		}
	}
	if len(files) == 0 {
		return nil
	}
	return godotenv.Load(files...)
}

// Resolve combines file configuration, environment overrides and defaults.
// getenv is typically os.Getenv.
func Resolve(store driven.ConfigStore, getenv func(string) string) Settings {
	s := Settings{
		ProfilePath:       store.GetString(KeyProfilePath),
		RelationalDriver:  store.GetString(KeyRelationalDriver),
		RelationalDSN:     store.GetString(KeyRelationalDSN),
		RelationalDataDir: store.GetString(KeyRelationalDataDir),
		VectorProvider:    store.GetString(KeyVectorProvider),
		VectorURL:         store.GetString(KeyVectorURL),
		VectorToken:       store.GetString(KeyVectorToken),
		VectorDimension:   store.GetInt(KeyVectorDimension),
		VectorChromemPath: store.GetString(KeyVectorChromemPath),
		VectorEmbedder:    store.GetString(KeyVectorEmbedder),
		VectorOllamaModel: store.GetString(KeyVectorOllamaModel),
		VectorOllamaURL:   store.GetString(KeyVectorOllamaURL),
		BatchSize:         store.GetInt(KeyBatchSize),
		HarnessTopK:       store.GetInt(KeyHarnessTopK),
		HarnessWorkers:    store.GetInt(KeyHarnessWorkers),
		RedisAddr:         store.GetString(KeyCacheRedisAddr),
		ReportDir:         store.GetString(KeyReportDir),
	}
	if _, ok := store.Get(KeyBatchPauseMS); ok {
		s.BatchPause = time.Duration(store.GetInt(KeyBatchPauseMS)) * time.Millisecond
	} else {
		s.BatchPause = domain.DefaultBatchPause
	}

	if v := getenv(EnvProfilePath); v != "" {
		s.ProfilePath = v
	}
	if v := getenv(EnvDatabaseURL); v != "" {
		s.RelationalDriver = DriverPostgres
		s.RelationalDSN = v
	}
	if v := getenv(EnvVectorURL); v != "" {
		s.VectorURL = v
	}
	if v := getenv(EnvVectorToken); v != "" {
		s.VectorToken = v
	}
	if v := getenv(EnvVectorDriver); v != "" {
		s.VectorProvider = v
	}
	if v := getenv(EnvRedisURL); v != "" {
		s.RedisAddr = v
	}

	s.applyDefaults()
	return s
}

func (s *Settings) applyDefaults() {
	s.RelationalDriver = strings.ToLower(s.RelationalDriver)
	if s.RelationalDriver == "" {
		s.RelationalDriver = DriverSQLite
	}

	s.VectorProvider = strings.ToLower(s.VectorProvider)
	if s.VectorProvider == "" {
		if s.VectorURL != "" {
			s.VectorProvider = ProviderUpstash
		} else {
			s.VectorProvider = ProviderChromem
		}
	}

	if s.VectorDimension <= 0 {
		s.VectorDimension = domain.DefaultExpectedDimension
	}
	if s.BatchSize <= 0 {
		s.BatchSize = domain.DefaultBatchSize
	}
	if s.HarnessTopK <= 0 {
		s.HarnessTopK = domain.DefaultTopK
	}
	if s.ProfilePath == "" {
		s.ProfilePath = "portfolio.json"
	}
	if s.ReportDir == "" {
		s.ReportDir = "."
	}
}

// Describe returns the settings as display rows with secrets masked.
func (s Settings) Describe() [][2]string {
	return [][2]string{
		{KeyProfilePath, s.ProfilePath},
		{KeyRelationalDriver, s.RelationalDriver},
		{KeyRelationalDSN, MaskSecret(s.RelationalDSN)},
		{KeyRelationalDataDir, s.RelationalDataDir},
		{KeyVectorProvider, s.VectorProvider},
		{KeyVectorURL, s.VectorURL},
		{KeyVectorToken, MaskSecret(s.VectorToken)},
		{KeyVectorDimension, strconv.Itoa(s.VectorDimension)},
		{KeyVectorChromemPath, s.VectorChromemPath},
		{KeyVectorEmbedder, s.VectorEmbedder},
		{KeyVectorOllamaModel, s.VectorOllamaModel},
		{KeyVectorOllamaURL, s.VectorOllamaURL},
		{KeyBatchSize, strconv.Itoa(s.BatchSize)},
		{KeyBatchPauseMS, strconv.FormatInt(s.BatchPause.Milliseconds(), 10)},
		{KeyHarnessTopK, strconv.Itoa(s.HarnessTopK)},
		{KeyHarnessWorkers, strconv.Itoa(s.HarnessWorkers)},
		{KeyCacheRedisAddr, s.RedisAddr},
		{KeyReportDir, s.ReportDir},
	}
}

// MaskSecret masks all but the last four characters of a secret.
func MaskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return "****"
	}
	return strings.Repeat("*", 8) + secret[len(secret)-4:]
}
