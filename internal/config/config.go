package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Task     TaskConfig     `mapstructure:"task"     validate:"required"`
	Storage  StorageConfig  `mapstructure:"storage"  validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"      validate:"required"`
}

// ServerConfig contains all HTTP server related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret"                     validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes"         validate:"required,gt=0"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0"`
}

// TaskConfig contains settings for the background task processing system.
type TaskConfig struct {
	// WorkerCount is the number of goroutines pulling application
	// processing tasks off the queue.
	WorkerCount int `mapstructure:"worker_count" validate:"required,gt=0"`

	// QueueSize bounds the in-memory task queue; submission blocks
	// once the queue is full.
	QueueSize int `mapstructure:"queue_size" validate:"required,gt=0"`

	// StuckTaskAgeMinutes is how long a task may sit in the processing
	// state before the monitor resets it to pending.
	StuckTaskAgeMinutes int `mapstructure:"stuck_task_age_minutes" validate:"required,gt=0"`

	// ExecutorTimeoutSeconds bounds a single form-filling attempt,
	// browser navigation included.
	ExecutorTimeoutSeconds int `mapstructure:"executor_timeout_seconds" validate:"required,gt=0"`
}

// StorageConfig contains settings for cloud object storage of resumes.
type StorageConfig struct {
	Bucket       string `mapstructure:"bucket"        validate:"required"`
	ResumeFolder string `mapstructure:"resume_folder" validate:"required"`
}

// LLMConfig contains all settings for the LLM-driven form-filling agent.
type LLMConfig struct {
	GeminiAPIKey      string `mapstructure:"gemini_api_key"      validate:"required"`
	ModelName         string `mapstructure:"model_name"          validate:"required"`
	MaxRetries        int    `mapstructure:"max_retries"         validate:"gte=0"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" validate:"gte=0"`
	Headless          bool   `mapstructure:"headless"`
}
