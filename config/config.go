package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/CIDgravity/snakelet"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// config structure
type Config struct {
	API     APIConfig     `mapstructure:"API"`
	Github  GithubConfig  `mapstructure:"GITHUB"`
	Tasks   TasksConfig   `mapstructure:"TASKS"`
	Logs    LogsConfig    `mapstructure:"LOGS"`
	Storage StorageConfig `mapstructure:"STORAGE"`
}

type APIConfig struct {
	ListenPort   string   `mapstructure:"ListenPort"`
	AllowOrigins []string `mapstructure:"AllowOrigins"`
}

// GithubConfig holds everything needed to talk to the Github REST API
// limits are the per_page values sent for each aspect of the repository detail
type GithubConfig struct {
	Token             string        `mapstructure:"Token"`
	BaseURL           string        `mapstructure:"BaseURL"` // empty means api.github.com
	PageSize          int           `mapstructure:"PageSize"`
	CommitsLimit      int           `mapstructure:"CommitsLimit"`
	IssuesLimit       int           `mapstructure:"IssuesLimit"`
	PullRequestsLimit int           `mapstructure:"PullRequestsLimit"`
	ReleasesLimit     int           `mapstructure:"ReleasesLimit"`
	ContributorsLimit int           `mapstructure:"ContributorsLimit"`
	RequestTimeout    time.Duration `mapstructure:"RequestTimeout"`
}

type TasksConfig struct {
	MaxParallelTasksAllowed int `mapstructure:"MaxParallelTasksAllowed"`
}

type LogsConfig struct {
	Level            string `mapstructure:"Level"` // error | warn | info | debug - case insensitive
	OutputLogsAsJSON bool   `mapstructure:"OutputLogsAsJson"`
}

type StorageConfig struct {
	TokenDatabasePath string `mapstructure:"TokenDatabasePath"`
}

// Load
// the config file is optional: without it, defaults are used
// GITHUB_TOKEN from the environment (or a .env file) always wins over the file
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, using process environment only")
	}

	cfg := GetDefault()

	configFilePath, err := findConfigFile()
	if err != nil {
		log.WithError(err).Warning("no config file found, using default configuration")
	} else {
		if _, err := snakelet.InitAndLoad(cfg, configFilePath); err != nil {
			return nil, err
		}
	}

	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		cfg.Github.Token = token
	}

	return cfg, nil
}

// findConfigFile look for config/config.toml next to the binary first, then in the working directory
func findConfigFile() (string, error) {
	dir, err := filepath.Abs(filepath.Dir(os.Args[0]))
	if err != nil {
		return "", err
	}

	configFilePath := dir + "/config/config.toml"

	if _, err := os.Stat(configFilePath); errors.Is(err, os.ErrNotExist) {
		if _, err := os.Stat("config/config.toml"); err != nil {
			return "", err
		}

		configFilePath = "config/config.toml"
	}

	return configFilePath, nil
}

// GetDefault
func GetDefault() *Config {
	return &Config{
		API: APIConfig{
			ListenPort:   "5000",
			AllowOrigins: []string{"*"},
		},
		Github: GithubConfig{
			PageSize:          100,
			CommitsLimit:      20,
			IssuesLimit:       30,
			PullRequestsLimit: 5,
			ReleasesLimit:     5,
			ContributorsLimit: 10,
			RequestTimeout:    30 * time.Second,
		},
		Tasks: TasksConfig{
			MaxParallelTasksAllowed: 8,
		},
		Logs: LogsConfig{
			Level:            "debug",
			OutputLogsAsJSON: false,
		},
		Storage: StorageConfig{
			TokenDatabasePath: "repo-dashboard.db",
		},
	}
}
