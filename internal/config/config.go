package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
)

type Config struct {
	Server ServerConfig `koanf:"server"`
	OpenAI OpenAIConfig `koanf:"openai"`
	MySQL  MySQLConfig  `koanf:"mysql"`
	Agent  AgentConfig  `koanf:"agent"`
}

type ServerConfig struct {
	Port            int    `koanf:"port"`
	LogLevel        string `koanf:"log_level"`
	ReadTimeout     string `koanf:"read_timeout"`
	WriteTimeout    string `koanf:"write_timeout"`
	IdleTimeout     string `koanf:"idle_timeout"`
	ShutdownTimeout string `koanf:"shutdown_timeout"`
}

type OpenAIConfig struct {
	APIKey  string `koanf:"api_key"`
	BaseURL string `koanf:"base_url"`
	Model   string `koanf:"model"`
}

type MySQLConfig struct {
	Host           string `koanf:"host"`
	Port           int    `koanf:"port"`
	Username       string `koanf:"username"`
	Password       string `koanf:"password"`
	Database       string `koanf:"database"`
	ConnectTimeout string `koanf:"connect_timeout"`
}

type AgentConfig struct {
	MaxIterations  int    `koanf:"max_iterations"`
	WorkerPoolSize int    `koanf:"worker_pool_size"`
	SystemPrompt   string `koanf:"system_prompt"`
}

const (
	DefaultServerPort            = 8765
	DefaultServerLogLevel        = "info"
	DefaultServerReadTimeout     = "30s"
	DefaultServerWriteTimeout    = "0s" // SSE streams stay open indefinitely
	DefaultServerIdleTimeout     = "120s"
	DefaultServerShutdownTimeout = "5s"
	DefaultOpenAIModel           = "gpt-4o"
	DefaultOpenAIBaseURL         = "https://api.openai.com/v1"
	DefaultMySQLHost             = "127.0.0.1"
	DefaultMySQLPort             = 3306
	DefaultMySQLConnectTimeout   = "10s"
	DefaultAgentMaxIterations    = 10
	DefaultAgentWorkerPoolSize   = 4

	DefaultSystemPrompt = `You are MS Console, an intelligent assistant for exploring and analyzing a multiple-sclerosis clinical research database.

Your capabilities:
1. list_tables: explore database structure, list tables, view columns and data types
2. execute_query: run read-only SQL queries (SELECT, SHOW, DESCRIBE, EXPLAIN only)

Guidelines:
- Always start by exploring the database structure if you don't know what tables exist
- Write efficient SQL queries with appropriate LIMIT clauses for large datasets
- Explain your findings in a clear, medical-research-friendly manner
- Respect data privacy: never attempt to export or modify patient data
- When analyzing data, provide statistical context and medical relevance
- If a query fails, explain the error and suggest corrections

You are connected to a MySQL database containing clinical research data. Help researchers explore and analyze this data effectively while maintaining security and data integrity.`
)

func Load(cmd *cobra.Command) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":             DefaultServerPort,
		"server.log_level":        DefaultServerLogLevel,
		"server.read_timeout":     DefaultServerReadTimeout,
		"server.write_timeout":    DefaultServerWriteTimeout,
		"server.idle_timeout":     DefaultServerIdleTimeout,
		"server.shutdown_timeout": DefaultServerShutdownTimeout,
		"openai.model":            DefaultOpenAIModel,
		"openai.base_url":         DefaultOpenAIBaseURL,
		"mysql.host":              DefaultMySQLHost,
		"mysql.port":              DefaultMySQLPort,
		"mysql.connect_timeout":   DefaultMySQLConnectTimeout,
		"agent.max_iterations":    DefaultAgentMaxIterations,
		"agent.worker_pool_size":  DefaultAgentWorkerPoolSize,
		"agent.system_prompt":     DefaultSystemPrompt,
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	// Config file loading
	configPath := ""
	if cmd != nil {
		if flag := cmd.Flags().Lookup("config"); flag != nil {
			configPath = strings.TrimSpace(flag.Value.String())
		}
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, err
		}
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			globalPath := filepath.Join(home, ".msconsole", "config.yaml")
			if err := k.Load(file.Provider(globalPath), yaml.Parser()); err != nil {
				slog.Debug("Global config not found or invalid", "path", globalPath, "error", err)
			}
		}
	}

	// Environment Variables
	k.Load(env.Provider("MSCONSOLE_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "MSCONSOLE_")), "_", ".", -1)
	}), nil)

	// CLI Flags
	if cmd != nil {
		k.Load(posflag.Provider(cmd.Flags(), ".", k), nil)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	applyLegacyEnv(&cfg)

	return &cfg, nil
}

// applyLegacyEnv honors the flat environment variables the Electron client
// has always set, without overriding anything configured explicitly.
func applyLegacyEnv(cfg *Config) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" && cfg.OpenAI.Model == DefaultOpenAIModel {
		cfg.OpenAI.Model = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" && cfg.Server.Port == DefaultServerPort {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("MYSQL_HOST"); v != "" && cfg.MySQL.Host == DefaultMySQLHost {
		cfg.MySQL.Host = v
	}
	if v := os.Getenv("MYSQL_PORT"); v != "" && cfg.MySQL.Port == DefaultMySQLPort {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MySQL.Port = port
		}
	}
	if v := os.Getenv("MYSQL_USERNAME"); v != "" && cfg.MySQL.Username == "" {
		cfg.MySQL.Username = v
	}
	if v := os.Getenv("MYSQL_PASSWORD"); v != "" && cfg.MySQL.Password == "" {
		cfg.MySQL.Password = v
	}
	if v := os.Getenv("MYSQL_DATABASE"); v != "" && cfg.MySQL.Database == "" {
		cfg.MySQL.Database = v
	}
}
