package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the briefing service
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Server    ServerConfig    `mapstructure:"server"`
	Agent     AgentConfig     `mapstructure:"agent"`
	Images    ImagesConfig    `mapstructure:"images"`
	Speech    SpeechConfig    `mapstructure:"speech"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Schedule  ScheduleConfig  `mapstructure:"schedule"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig contains HTTP server and auth settings
type ServerConfig struct {
	Address   string `mapstructure:"address"`
	JWTSecret string `mapstructure:"jwt_secret"`
}

// AgentConfig configures the remote research-task service. An empty APIKey
// switches the orchestrator onto the local demo path.
type AgentConfig struct {
	APIKey          string        `mapstructure:"api_key"`
	BaseURL         string        `mapstructure:"base_url"`
	CreatePath      string        `mapstructure:"create_path"`
	GetPathTemplate string        `mapstructure:"get_path_template"`
	AgentProfile    string        `mapstructure:"agent_profile"`
	TaskMode        string        `mapstructure:"task_mode"`
	HideInTaskList  bool          `mapstructure:"hide_in_task_list"`
	SystemPrompt    string        `mapstructure:"system_prompt"`
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	MaxPoll         time.Duration `mapstructure:"max_poll"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
}

// Enabled reports whether live agent runs are possible at all.
func (a AgentConfig) Enabled() bool {
	return strings.TrimSpace(a.APIKey) != ""
}

// Normalize applies defaults for unset agent values.
func (a AgentConfig) Normalize() AgentConfig {
	if a.PollInterval <= 0 {
		a.PollInterval = 3 * time.Second
	}
	if a.MaxPoll <= 0 {
		a.MaxPoll = 5 * time.Minute
	}
	if a.RequestTimeout <= 0 {
		a.RequestTimeout = 30 * time.Second
	}
	if a.CreatePath == "" {
		a.CreatePath = "/v1/tasks"
	}
	if a.GetPathTemplate == "" {
		a.GetPathTemplate = "/v1/tasks/:id"
	}
	if a.TaskMode == "" {
		a.TaskMode = "agent"
	}
	return a
}

func (a AgentConfig) Validate() error {
	if !a.Enabled() {
		return nil
	}
	if strings.TrimSpace(a.BaseURL) == "" {
		return fmt.Errorf("agent.base_url required when agent.api_key is set")
	}
	if !strings.Contains(a.GetPathTemplate, ":id") {
		return fmt.Errorf("agent.get_path_template must contain :id")
	}
	return nil
}

// ImagesConfig configures the illustration-generation collaborator.
type ImagesConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Size    string        `mapstructure:"size"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Normalize applies defaults for unset image values.
func (i ImagesConfig) Normalize() ImagesConfig {
	if i.BaseURL == "" {
		i.BaseURL = "https://api.openai.com/v1"
	}
	if i.Model == "" {
		i.Model = "gpt-image-1"
	}
	if i.Size == "" {
		i.Size = "1024x1024"
	}
	if i.Timeout <= 0 {
		i.Timeout = 60 * time.Second
	}
	return i
}

// SpeechConfig configures the speech-to-text / text-to-speech collaborators
// behind the voice onboarding endpoints.
type SpeechConfig struct {
	APIKey          string        `mapstructure:"api_key"`
	BaseURL         string        `mapstructure:"base_url"`
	TranscribeModel string        `mapstructure:"transcribe_model"`
	SpeechModel     string        `mapstructure:"speech_model"`
	Voice           string        `mapstructure:"voice"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// Normalize applies defaults for unset speech values.
func (s SpeechConfig) Normalize() SpeechConfig {
	if s.BaseURL == "" {
		s.BaseURL = "https://api.openai.com/v1"
	}
	if s.TranscribeModel == "" {
		s.TranscribeModel = "whisper-1"
	}
	if s.SpeechModel == "" {
		s.SpeechModel = "tts-1"
	}
	if s.Voice == "" {
		s.Voice = "alloy"
	}
	if s.Timeout <= 0 {
		s.Timeout = 60 * time.Second
	}
	return s
}

// StorageConfig contains storage and persistence settings
type StorageConfig struct {
	Redis    RedisConfig    `mapstructure:"redis"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// RedisConfig contains Redis connection settings
type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

func (r RedisConfig) Validate() error {
	if strings.TrimSpace(r.Host) == "" {
		return fmt.Errorf("storage.redis.host required")
	}
	if strings.TrimSpace(r.Port) == "" {
		return fmt.Errorf("storage.redis.port required")
	}
	return nil
}

// PostgresConfig contains Postgres connection settings
type PostgresConfig struct {
	URL      string        `mapstructure:"url"`
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	User     string        `mapstructure:"user"`
	Password string        `mapstructure:"password"`
	DBName   string        `mapstructure:"dbname"`
	SSLMode  string        `mapstructure:"sslmode"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

func (p PostgresConfig) Validate() error {
	if strings.TrimSpace(p.URL) != "" {
		return nil
	}
	if strings.TrimSpace(p.Host) == "" {
		return fmt.Errorf("storage.postgres.host required when url is not provided")
	}
	if strings.TrimSpace(p.Port) == "" {
		return fmt.Errorf("storage.postgres.port required when url is not provided")
	}
	if strings.TrimSpace(p.DBName) == "" {
		return fmt.Errorf("storage.postgres.dbname required when url is not provided")
	}
	return nil
}

// DSN builds the connection string from either the url field or its parts.
func (p PostgresConfig) DSN() string {
	if p.URL != "" {
		return p.URL
	}
	port := p.Port
	if port == "" {
		port = "5432"
	}
	ssl := p.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", p.User, p.Password, p.Host, port, p.DBName, ssl)
}

// ScheduleConfig controls the background briefing refresh.
type ScheduleConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Cron    string `mapstructure:"cron"`
}

// Normalize applies defaults for unset schedule values.
func (s ScheduleConfig) Normalize() ScheduleConfig {
	if s.Cron == "" {
		s.Cron = "@daily"
	}
	return s
}

// TelemetryConfig contains metrics settings
type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoadConfig loads config from file
func LoadConfig(path string) *Config {
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("json")   // REQUIRED if the config file does not have the extension in the name
	viper.SetDefault("agent.create_path", "/v1/tasks")
	viper.SetDefault("agent.get_path_template", "/v1/tasks/:id")
	viper.SetDefault("agent.system_prompt", DefaultSystemPrompt)
	viper.SetDefault("schedule.cron", "@daily")
	viper.SetDefault("telemetry.enabled", true)

	if path == "" {
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
		exe, _ := os.Executable()
		exeDir := filepath.Dir(exe)
		viper.AddConfigPath(exeDir)
		viper.AddConfigPath(filepath.Join(exeDir, ".."))
		viper.AddConfigPath(filepath.Join(exeDir, "..", "config"))
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("BRIEFER")
	replacer := strings.NewReplacer(".", "_")
	viper.SetEnvKeyReplacer(replacer)

	viper.AutomaticEnv() // read in environment variables that match (BRIEFER_*)

	err := viper.ReadInConfig() // Find and read the config file
	if err != nil {             // Handle errors reading the config file
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	// unmarshal config
	var config Config

	if err = viper.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}
	config.Agent = config.Agent.Normalize()
	config.Images = config.Images.Normalize()
	config.Speech = config.Speech.Normalize()
	config.Schedule = config.Schedule.Normalize()

	if err := config.Agent.Validate(); err != nil {
		panic(err)
	}
	if err := config.Storage.Redis.Validate(); err != nil {
		panic(err)
	}
	if err := config.Storage.Postgres.Validate(); err != nil {
		panic(err)
	}
	return &config
}
