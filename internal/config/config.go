package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Matchmaking  MatchmakingConfig
	Session      SessionConfig
	Games        GamesConfig
	Logging      LoggingConfig
	GeminiAPIKey string
}

type ServerConfig struct {
	Host         string
	Port         int
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	AccessSecret string
}

type MatchmakingConfig struct {
	// MaxCandidates bounds how deep into the waiting queue a romantic
	// pairing scan looks.
	MaxCandidates int
	InviteTTL     time.Duration
}

type SessionConfig struct {
	AnswerTimeout    time.Duration
	CallAgainTimeout time.Duration
	RoomMaxAge       time.Duration
	SweepInterval    time.Duration
}

type GamesConfig struct {
	StateTTL           time.Duration
	HeadsupTurnTimeout time.Duration
	TriviaWindow       time.Duration
}

type LoggingConfig struct {
	Level string
}

// Load loads configuration from environment variables or .env file
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	// Try to read from .env file, but don't fail if it doesn't exist
	_ = viper.ReadInConfig()

	viper.SetDefault("MATCH_MAX_CANDIDATES", 20)
	viper.SetDefault("MATCH_INVITE_TTL_SEC", 60)
	viper.SetDefault("SESSION_ANSWER_TIMEOUT_SEC", 30)
	viper.SetDefault("SESSION_CALL_AGAIN_TIMEOUT_SEC", 120)
	viper.SetDefault("SESSION_ROOM_MAX_AGE_MIN", 240)
	viper.SetDefault("SESSION_SWEEP_INTERVAL_MIN", 10)
	viper.SetDefault("GAME_STATE_TTL_MIN", 30)
	viper.SetDefault("GAME_HEADSUP_TURN_TIMEOUT_SEC", 60)
	viper.SetDefault("GAME_TRIVIA_WINDOW_SEC", 15)

	config := &Config{
		Server: ServerConfig{
			Host:         viper.GetString("SERVER_HOST"),
			Port:         viper.GetInt("SERVER_PORT"),
			Env:          viper.GetString("ENV"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetInt("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			DBName:   viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			AccessSecret: viper.GetString("JWT_ACCESS_SECRET"),
		},
		Matchmaking: MatchmakingConfig{
			MaxCandidates: viper.GetInt("MATCH_MAX_CANDIDATES"),
			InviteTTL:     time.Duration(viper.GetInt("MATCH_INVITE_TTL_SEC")) * time.Second,
		},
		Session: SessionConfig{
			AnswerTimeout:    time.Duration(viper.GetInt("SESSION_ANSWER_TIMEOUT_SEC")) * time.Second,
			CallAgainTimeout: time.Duration(viper.GetInt("SESSION_CALL_AGAIN_TIMEOUT_SEC")) * time.Second,
			RoomMaxAge:       time.Duration(viper.GetInt("SESSION_ROOM_MAX_AGE_MIN")) * time.Minute,
			SweepInterval:    time.Duration(viper.GetInt("SESSION_SWEEP_INTERVAL_MIN")) * time.Minute,
		},
		Games: GamesConfig{
			StateTTL:           time.Duration(viper.GetInt("GAME_STATE_TTL_MIN")) * time.Minute,
			HeadsupTurnTimeout: time.Duration(viper.GetInt("GAME_HEADSUP_TURN_TIMEOUT_SEC")) * time.Second,
			TriviaWindow:       time.Duration(viper.GetInt("GAME_TRIVIA_WINDOW_SEC")) * time.Second,
		},
		Logging: LoggingConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		GeminiAPIKey: viper.GetString("GEMINI_API_KEY"),
	}

	// Validate critical configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates critical configuration values
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Redis.Host == "" {
		return fmt.Errorf("redis host is required")
	}
	if c.JWT.AccessSecret == "" {
		return fmt.Errorf("JWT access secret is required")
	}
	if len(c.JWT.AccessSecret) < 32 {
		return fmt.Errorf("JWT access secret must be at least 32 characters")
	}
	if c.Matchmaking.MaxCandidates < 1 {
		return fmt.Errorf("matchmaking max candidates must be positive")
	}
	return nil
}

// GetDSN returns PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// GetRedisAddr returns Redis address
func (c *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
