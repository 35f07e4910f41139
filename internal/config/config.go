// Package config loads application settings from the environment, with an
// optional .env file for local development.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dvloznov/statement-insights/internal/dashboard"
	"github.com/dvloznov/statement-insights/internal/pipeline"
	"github.com/joho/godotenv"
)

// DefaultEnvFiles are tried in order; the first one found is loaded.
var DefaultEnvFiles = []string{".env", "../.env", "../../.env"}

type Config struct {
	Gemini    GeminiConfig
	Server    ServerConfig
	Storage   StorageConfig
	Worker    WorkerConfig
	Dashboard DashboardConfig
	Logger    LoggerConfig
}

type GeminiConfig struct {
	APIKey            string
	Model             string
	Temperature       *float32 // nil when GEMINI_TEMPERATURE is unset
	UseVertexAI       bool
	Project           string
	Location          string
	APIVersion        string
	BaseURL           string
	EncodeConcurrency int
}

type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxUploadBytes int64
	APIToken       string
}

type StorageConfig struct {
	CredentialsFile string
}

type WorkerConfig struct {
	Count     int
	QueueSize int
}

type DashboardConfig struct {
	TopCategories int
}

type LoggerConfig struct {
	Level string
}

// Load reads the first of DefaultEnvFiles that exists, then the environment.
func Load() (*Config, error) {
	return LoadFrom(DefaultEnvFiles...)
}

// LoadFrom reads the first existing env file from envFiles, then the
// environment. Variables already set in the environment win over the file.
func LoadFrom(envFiles ...string) (*Config, error) {
	for _, envFile := range envFiles {
		err := godotenv.Load(envFile)
		if err == nil {
			break
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("LoadFrom: parse %s: %w", envFile, err)
		}
	}

	var errs []error

	temperature, err := getEnvAsOptionalFloat32("GEMINI_TEMPERATURE")
	errs = append(errs, err)
	encodeConcurrency, err := getEnvAsInt("ENCODE_CONCURRENCY", pipeline.DefaultEncodeConcurrency)
	errs = append(errs, err)
	useVertex, err := getEnvAsBool("GOOGLE_GENAI_USE_VERTEXAI", false)
	errs = append(errs, err)
	readTimeout, err := getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second)
	errs = append(errs, err)
	writeTimeout, err := getEnvAsDuration("SERVER_WRITE_TIMEOUT", 120*time.Second)
	errs = append(errs, err)
	maxUploadMB, err := getEnvAsInt("MAX_UPLOAD_MB", 20)
	errs = append(errs, err)
	workerCount, err := getEnvAsInt("WORKER_COUNT", 2)
	errs = append(errs, err)
	queueSize, err := getEnvAsInt("QUEUE_SIZE", 100)
	errs = append(errs, err)
	topCategories, err := getEnvAsInt("TOP_CATEGORIES", dashboard.DefaultTopCategories)
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("LoadFrom: %w", err)
	}

	return &Config{
		Gemini: GeminiConfig{
			APIKey:            getEnv("GEMINI_API_KEY", os.Getenv("GOOGLE_API_KEY")),
			Model:             getEnv("GEMINI_MODEL", pipeline.DefaultModelName),
			Temperature:       temperature,
			UseVertexAI:       useVertex,
			Project:           getEnv("GOOGLE_CLOUD_PROJECT", ""),
			Location:          getEnv("GOOGLE_CLOUD_LOCATION", ""),
			APIVersion:        getEnv("GEMINI_API_VERSION", ""),
			BaseURL:           getEnv("GEMINI_BASE_URL", ""),
			EncodeConcurrency: encodeConcurrency,
		},
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			ReadTimeout:    readTimeout,
			WriteTimeout:   writeTimeout,
			MaxUploadBytes: int64(maxUploadMB) << 20,
			APIToken:       getEnv("API_TOKEN", ""),
		},
		Storage: StorageConfig{
			CredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		},
		Worker: WorkerConfig{
			Count:     workerCount,
			QueueSize: queueSize,
		},
		Dashboard: DashboardConfig{
			TopCategories: topCategories,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

// AnalyzerConfig maps the Gemini settings onto the analyzer's config.
func (c *Config) AnalyzerConfig() pipeline.AnalyzerConfig {
	return pipeline.AnalyzerConfig{
		APIKey:            c.Gemini.APIKey,
		UseVertexAI:       c.Gemini.UseVertexAI,
		Project:           c.Gemini.Project,
		Location:          c.Gemini.Location,
		APIVersion:        c.Gemini.APIVersion,
		BaseURL:           c.Gemini.BaseURL,
		Model:             c.Gemini.Model,
		Temperature:       c.Gemini.Temperature,
		EncodeConcurrency: c.Gemini.EncodeConcurrency,
	}
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	s := getEnv(key, "")
	if s == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, s)
	}
	return v, nil
}

func getEnvAsOptionalFloat32(key string) (*float32, error) {
	s := getEnv(key, "")
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid number %q", key, s)
	}
	f := float32(v)
	return &f, nil
}

func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	s := getEnv(key, "")
	if s == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q", key, s)
	}
	return v, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	s := getEnv(key, "")
	if s == "" {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, s)
	}
	return v, nil
}
