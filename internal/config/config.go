package config

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config holds the full application configuration. It is built once at
// process start and passed into constructors, never read as global state.
type Config struct {
	Store         StoreConfig       `yaml:"store" mapstructure:"store"`
	Documents     map[string]string `yaml:"documents" mapstructure:"documents"`
	DocumentsFile string            `yaml:"documents_file" mapstructure:"documents_file"`
	KeyField      string            `yaml:"key_field" mapstructure:"key_field"`
	Extractor     ExtractorConfig   `yaml:"extractor" mapstructure:"extractor"`
	Anthropic     AnthropicConfig   `yaml:"anthropic" mapstructure:"anthropic"`
	OCR           OCRConfig         `yaml:"ocr" mapstructure:"ocr"`
	Server        ServerConfig      `yaml:"server" mapstructure:"server"`
	Log           LogConfig         `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the canonical table backend.
type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"` // csv, sqlite, or xlsx
	Path   string `yaml:"path" mapstructure:"path"`
}

// ExtractorConfig selects the PDF extraction provider.
type ExtractorConfig struct {
	Provider string `yaml:"provider" mapstructure:"provider"` // anthropic or fixture
}

// AnthropicConfig holds Anthropic API settings for the extraction gateway.
type AnthropicConfig struct {
	Key               string `yaml:"key" mapstructure:"key"`
	Model             string `yaml:"model" mapstructure:"model"`
	MaxTokens         int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	RequestsPerMinute int    `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
}

// OCRConfig configures PDF text extraction.
type OCRConfig struct {
	Provider      string `yaml:"provider" mapstructure:"provider"` // local or mistral
	PdfToTextPath string `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
	MistralKey    string `yaml:"mistral_api_key" mapstructure:"mistral_api_key"`
	MistralModel  string `yaml:"mistral_ocr_model" mapstructure:"mistral_ocr_model"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DISCREPANCY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "csv")
	v.SetDefault("store.path", "data/database.csv")
	v.SetDefault("key_field", "Company Name")
	v.SetDefault("documents", map[string]string{
		"healthinc.pdf":  "assets/healthinc.pdf",
		"retailco.pdf":   "assets/retailco.pdf",
		"financellc.pdf": "assets/financellc.pdf",
		"techcorp.pdf":   "assets/techcorp.pdf",
	})
	v.SetDefault("documents_file", "")
	v.SetDefault("extractor.provider", "anthropic")
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("anthropic.requests_per_minute", 30)
	v.SetDefault("ocr.provider", "local")
	v.SetDefault("ocr.pdftotext_path", "pdftotext")
	v.SetDefault("ocr.mistral_api_key", "")
	v.SetDefault("ocr.mistral_ocr_model", "pixtral-large-latest")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	// Viper lowercases map keys on its own; normalize explicitly so filename
	// lookups stay case-insensitive regardless of the config source.
	cfg.Documents = normalizeDocuments(cfg.Documents)

	if cfg.DocumentsFile != "" {
		docs, err := loadDocumentsFile(cfg.DocumentsFile)
		if err != nil {
			return nil, err
		}
		cfg.Documents = docs
	}

	return &cfg, nil
}

// loadDocumentsFile reads a standalone YAML mapping of document filename to
// on-disk path, replacing the built-in documents mapping.
func loadDocumentsFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "config: read documents file %s", path)
	}

	var docs map[string]string
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return nil, eris.Wrapf(err, "config: parse documents file %s", path)
	}

	return normalizeDocuments(docs), nil
}

func normalizeDocuments(docs map[string]string) map[string]string {
	out := make(map[string]string, len(docs))
	for name, path := range docs {
		out[strings.ToLower(name)] = path
	}
	return out
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
