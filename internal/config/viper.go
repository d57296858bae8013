// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
		File   string `mapstructure:"file" yaml:"file"`
	} `mapstructure:"log" yaml:"log"`

	Paths struct {
		DocumentsDir string `mapstructure:"documents_dir" yaml:"documents_dir"`
	} `mapstructure:"paths" yaml:"paths"`

	OCR struct {
		Lang                string  `mapstructure:"lang" yaml:"lang"`
		UseGPU              bool    `mapstructure:"use_gpu" yaml:"use_gpu"`
		UseAngleCls         bool    `mapstructure:"use_angle_cls" yaml:"use_angle_cls"`
		ConfidenceThreshold float64 `mapstructure:"confidence_threshold" yaml:"confidence_threshold"`
		DPI                 int     `mapstructure:"dpi" yaml:"dpi"`
		DPIHighQuality      int     `mapstructure:"dpi_high_quality" yaml:"dpi_high_quality"`
		RowToleranceY       float64 `mapstructure:"row_tolerance_y" yaml:"row_tolerance_y"`
		CacheDir            string  `mapstructure:"cache_dir" yaml:"cache_dir"`
		ModelURL            string  `mapstructure:"model_url" yaml:"model_url"`
		Granularity         string  `mapstructure:"granularity" yaml:"granularity"`
	} `mapstructure:"ocr" yaml:"ocr"`

	Detection struct {
		ImagePixelThreshold int `mapstructure:"image_pixel_threshold" yaml:"image_pixel_threshold"`
		TextCharThreshold   int `mapstructure:"text_char_threshold" yaml:"text_char_threshold"`
		// MaxPagesToCheck is accepted but not enforced: every page is classified.
		MaxPagesToCheck int `mapstructure:"max_pages_to_check" yaml:"max_pages_to_check"`
	} `mapstructure:"detection" yaml:"detection"`

	Batch struct {
		MaxWorkers int      `mapstructure:"max_workers" yaml:"max_workers"`
		Parallel   bool     `mapstructure:"parallel" yaml:"parallel"`
		Extensions []string `mapstructure:"extensions" yaml:"extensions"`
	} `mapstructure:"batch" yaml:"batch"`

	Output struct {
		PageHeader      string `mapstructure:"page_header" yaml:"page_header"`
		EmptyPageMarker string `mapstructure:"empty_page_marker" yaml:"empty_page_marker"`
	} `mapstructure:"output" yaml:"output"`
}

// legacyEnv maps configuration keys to the unprefixed environment variable
// names used by existing .env files. LOG_FORMAT is absent: existing files set
// it to a log line pattern, not to text or json.
var legacyEnv = map[string]string{
	"log.level":                       "LOG_LEVEL",
	"log.file":                        "LOG_FILE_BATCH",
	"paths.documents_dir":             "DOCUMENTOS_ORIGINAL_DIR",
	"ocr.lang":                        "OCR_LANG",
	"ocr.use_gpu":                     "OCR_USE_GPU",
	"ocr.use_angle_cls":               "OCR_USE_ANGLE_CLS",
	"ocr.confidence_threshold":        "OCR_CONFIDENCE_THRESHOLD",
	"ocr.dpi":                         "OCR_DPI",
	"ocr.dpi_high_quality":            "OCR_DPI_HIGH_QUALITY",
	"ocr.row_tolerance_y":             "OCR_ROW_TOLERANCE_Y",
	"ocr.cache_dir":                   "OCR_CACHE_DIR",
	"detection.image_pixel_threshold": "IMAGE_PIXEL_THRESHOLD",
	"detection.text_char_threshold":   "TEXT_CHAR_THRESHOLD",
	"detection.max_pages_to_check":    "MAX_PAGES_TO_CHECK",
	"batch.max_workers":               "MAX_WORKERS",
}

// InitializeConfig initializes Viper configuration with hierarchical loading
func InitializeConfig() (*Config, error) {
	return Load("", nil)
}

// Load builds the configuration from defaults, an optional config file,
// environment variables and, when flags is non-nil, command-line flags.
// An explicit configFile must exist; the default search locations are optional.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Defaults
	setDefaults(v)

	// 2. Config file locations
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.pdf-txt")
		v.AddConfigPath(".pdf-txt")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix("PDFTXT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for key, env := range legacyEnv {
		if err := v.BindEnv(key, "PDFTXT_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	// 4. Flags
	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	// 5. Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 6. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// flagKeys maps persistent flag names to configuration keys.
var flagKeys = map[string]string{
	"log-level":  "log.level",
	"log-format": "log.format",
	"workers":    "batch.max_workers",
	"parallel":   "batch.parallel",
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")

	v.SetDefault("paths.documents_dir", filepath.Join("datos", "documentos-original"))

	v.SetDefault("ocr.lang", "es")
	v.SetDefault("ocr.use_gpu", false)
	v.SetDefault("ocr.use_angle_cls", true)
	v.SetDefault("ocr.confidence_threshold", 0.5)
	v.SetDefault("ocr.dpi", 200)
	v.SetDefault("ocr.dpi_high_quality", 250)
	v.SetDefault("ocr.row_tolerance_y", 30)
	v.SetDefault("ocr.cache_dir", DefaultCacheDir())
	v.SetDefault("ocr.model_url", "https://github.com/tesseract-ocr/tessdata_fast/raw/main")
	v.SetDefault("ocr.granularity", "line")

	v.SetDefault("detection.image_pixel_threshold", 200000)
	v.SetDefault("detection.text_char_threshold", 100)
	v.SetDefault("detection.max_pages_to_check", 3)

	v.SetDefault("batch.max_workers", 4)
	v.SetDefault("batch.parallel", false)
	v.SetDefault("batch.extensions", []string{".pdf"})

	v.SetDefault("output.page_header", "PÁGINA %d")
	v.SetDefault("output.empty_page_marker", "(página vacía)")
}

// DefaultCacheDir returns the tessdata cache location under the user cache
// directory, falling back to the system temp directory.
func DefaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil || base == "" {
		base = os.TempDir()
	}
	return filepath.Join(base, "pdf-txt", "tessdata")
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if config.OCR.ConfidenceThreshold < 0.0 || config.OCR.ConfidenceThreshold > 1.0 {
		return fmt.Errorf("ocr.confidence_threshold must be between 0.0 and 1.0, got: %f", config.OCR.ConfidenceThreshold)
	}

	if config.OCR.DPI <= 0 || config.OCR.DPIHighQuality <= 0 {
		return fmt.Errorf("ocr.dpi and ocr.dpi_high_quality must be positive, got: %d and %d", config.OCR.DPI, config.OCR.DPIHighQuality)
	}

	if config.OCR.RowToleranceY < 0 {
		return fmt.Errorf("ocr.row_tolerance_y must not be negative, got: %f", config.OCR.RowToleranceY)
	}

	if config.OCR.Granularity != "line" && config.OCR.Granularity != "word" {
		return fmt.Errorf("invalid ocr.granularity: %s (must be 'line' or 'word')", config.OCR.Granularity)
	}

	if strings.TrimSpace(config.OCR.Lang) == "" {
		return fmt.Errorf("ocr.lang must not be empty")
	}

	if config.Detection.ImagePixelThreshold < 0 || config.Detection.TextCharThreshold < 0 {
		return fmt.Errorf("detection thresholds must not be negative")
	}

	if config.Batch.MaxWorkers < 1 {
		return fmt.Errorf("batch.max_workers must be at least 1, got: %d", config.Batch.MaxWorkers)
	}

	if len(config.Batch.Extensions) == 0 {
		return fmt.Errorf("batch.extensions must list at least one extension")
	}

	if !validPageHeader(config.Output.PageHeader) {
		return fmt.Errorf("output.page_header must contain exactly one %%d verb and no other verb (use %%%% for a literal %%), got: %q", config.Output.PageHeader)
	}

	return nil
}

// validPageHeader reports whether h has one %d and otherwise only %% escapes.
func validPageHeader(h string) bool {
	h = strings.ReplaceAll(h, "%%", "")
	return strings.Count(h, "%") == 1 && strings.Count(h, "%d") == 1
}

// ConfigureLoggingFromConfig configures logging based on the Config struct
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
