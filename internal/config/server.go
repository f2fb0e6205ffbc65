package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Server holds settings for `arcade serve` and the remote client.
// Values come from an optional YAML file, overridden by environment variables.
type Server struct {
	LogLevel  string        `yaml:"log-level" env:"ARCADE_LOG_LEVEL" env-default:"info"`
	HTTPAddr  string        `yaml:"http-addr" env:"ARCADE_HTTP_ADDR" env-default:":5109"`
	SSHAddr   string        `yaml:"ssh-addr" env:"ARCADE_SSH_ADDR" env-default:""`
	HostKey   string        `yaml:"host-key" env:"ARCADE_SSH_HOST_KEY" env-default:".ssh/arcade_ed25519"`
	PollEvery time.Duration `yaml:"poll-interval" env:"ARCADE_POLL_INTERVAL" env-default:"100ms"`
	GamesDir  string        `yaml:"games-dir" env:"ARCADE_GAMES_DIR" env-default:""`
	Scores    Scores        `yaml:"scores"`
	Redis     Redis         `yaml:"redis"`
}

// Scores selects the high score backend.
type Scores struct {
	Backend string `yaml:"backend" env:"ARCADE_SCORES_BACKEND" env-default:"sqlite"` // sqlite, file, redis, memory
	DBPath  string `yaml:"db-path" env:"ARCADE_DB" env-default:"~/.arcade/scores.db"`
	Dir     string `yaml:"dir" env:"ARCADE_SCORES_DIR" env-default:"."`
}

// Redis locates the redis instance used by the redis score backend.
type Redis struct {
	Host string `yaml:"host" env:"ARCADE_REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"ARCADE_REDIS_PORT" env-default:"6379"`
}

// Addr returns host:port.
func (r Redis) Addr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// LoadServer reads server settings. An empty path reads the environment only.
func LoadServer(path string) (*Server, error) {
	cfg := &Server{}

	if path == "" {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("config: unable to read environment: %w", err)
		}
		return cfg, nil
	}

	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return nil, fmt.Errorf("config: unable to load config file: %w", err)
	}
	return cfg, nil
}
