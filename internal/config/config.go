package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// Settings represents runtime configuration for the service. Every value can
// be overridden from the environment; main loads a .env file first.
type Settings struct {
	ServerAddress string `envconfig:"SERVER_ADDRESS" default:":8080"`
	SecretKey     string `envconfig:"SECRET_KEY" validate:"required"`
	LogLevel      string `envconfig:"LOG_LEVEL" default:"INFO"`

	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`

	AllowedExtensions      []string `envconfig:"ALLOWED_EXTENSIONS" default:"png,jpg,jpeg,webp,gif,xlsx,pdf,docx,txt,eml"`
	MaxFileSizeMB          int64    `envconfig:"MAX_FILE_SIZE_MB" default:"25" validate:"min=1"`
	MaxTotalUploadSizeMB   int64    `envconfig:"MAX_TOTAL_UPLOAD_SIZE_MB" default:"100" validate:"min=1"`
	MaxExtractedTextLength int      `envconfig:"MAX_EXTRACTED_TEXT_LENGTH" default:"500000" validate:"min=1"`

	ModelName       string  `envconfig:"LLM_MODEL_NAME" default:"gemini-2.5-flash-preview-05-20" validate:"required"`
	Temperature     float32 `envconfig:"LLM_TEMPERATURE" default:"0.5"`
	MaxOutputTokens int32   `envconfig:"LLM_MAX_TOKENS" default:"64000" validate:"min=1"`

	PromptCacheName  string `envconfig:"REPORT_PROMPT_CACHE_NAME"`
	CacheTTLDays     int    `envconfig:"CACHE_TTL_DAYS" default:"30" validate:"min=1"`
	CacheDisplayName string `envconfig:"CACHE_DISPLAY_NAME" default:"ReportGenerationBasePromptsV1"`

	RetryAttempts    int `envconfig:"LLM_API_RETRY_ATTEMPTS" default:"3" validate:"min=1"`
	RetryWaitSeconds int `envconfig:"LLM_API_RETRY_WAIT_SECONDS" default:"2" validate:"min=0"`
	TimeoutSeconds   int `envconfig:"LLM_API_TIMEOUT_SECONDS" default:"120" validate:"min=1"`

	DocxFontName       string `envconfig:"DOCX_FONT_NAME" default:"Times New Roman"`
	DocxFontSizeNormal int    `envconfig:"DOCX_FONT_SIZE_NORMAL" default:"11" validate:"min=1"`
	DocxFontSizeHead   int    `envconfig:"DOCX_FONT_SIZE_HEADING" default:"12" validate:"min=1"`
	DocxFooterTemplate string `envconfig:"DOCX_FOOTER_TEXT_TEMPLATE" default:"Salomone & Associati S.r.l. - Pag. {page_number} di {total_pages}"`

	StagingDir              string `envconfig:"STAGING_DIR" default:"./data/reports"`
	StagingTTLMinutes       int    `envconfig:"STAGING_TTL_MINUTES" default:"60" validate:"min=1"`
	StagingSweepMinutes     int    `envconfig:"STAGING_SWEEP_MINUTES" default:"10" validate:"min=1"`
	PromptOverrideDir       string `envconfig:"PROMPT_OVERRIDE_DIR" default:"./data/prompts"`
	MaxConcurrentGeneration int    `envconfig:"MAX_CONCURRENT_GENERATIONS" default:"4" validate:"min=1"`
	GenerationQueueSize     int    `envconfig:"GENERATION_QUEUE_SIZE" default:"16" validate:"min=1"`

	DatabaseDriver string `envconfig:"DB_DRIVER" default:"sqlite3"`
	DatabaseDSN    string `envconfig:"DB_DSN" default:"./data/reportgen.db"`

	AdminUsername string `envconfig:"ADMIN_USERNAME"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`

	RedisAddr          string `envconfig:"REDIS_ADDR"`
	RedisPassword      string `envconfig:"REDIS_PASSWORD"`
	RedisDB            int    `envconfig:"REDIS_DB" default:"0"`
	UploadsPerMinute   int    `envconfig:"UPLOADS_PER_MINUTE" default:"10" validate:"min=1"`
	RateLimitKeyPrefix string `envconfig:"RATE_LIMIT_KEY_PREFIX" default:"reportgen:ratelimit"`
}

// Load reads settings from the environment and validates them.
func Load() (*Settings, error) {
	var cfg Settings
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate settings: %w", err)
	}
	return &cfg, nil
}

// MaxFileSizeBytes returns the per-file upload cap in bytes.
func (s *Settings) MaxFileSizeBytes() int64 {
	return s.MaxFileSizeMB * 1024 * 1024
}

// MaxTotalUploadSizeBytes returns the batch upload cap in bytes.
func (s *Settings) MaxTotalUploadSizeBytes() int64 {
	return s.MaxTotalUploadSizeMB * 1024 * 1024
}

// ExtensionAllowed reports whether the lowercase extension (without dot) is
// in the configured allow-list.
func (s *Settings) ExtensionAllowed(ext string) bool {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, allowed := range s.AllowedExtensions {
		if strings.TrimSpace(strings.ToLower(allowed)) == ext {
			return true
		}
	}
	return false
}
