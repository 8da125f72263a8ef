package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/rocketscienceinc/xo-engine/internal/entity"
)

type Config struct {
	LogLevel   string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string `yaml:"socket-port" env:"SOCKET_PORT" env-default:"8080"`
	Redis      Redis  `yaml:"redis"`
	Game       Game   `yaml:"game"`
}

type Redis struct {
	Host       string        `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port       string        `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	SessionTTL time.Duration `yaml:"session-ttl" env:"REDIS_SESSION_TTL" env-default:"24h"`
}

// Game - defaults for new sessions.
type Game struct {
	Size            int    `yaml:"size" env:"GAME_SIZE" env-default:"3"`
	Mode            string `yaml:"mode" env:"GAME_MODE" env-default:"pvai"`
	Difficulty      string `yaml:"difficulty" env:"GAME_DIFFICULTY" env-default:"normal"`
	FirstPlayer     string `yaml:"first-player" env:"GAME_FIRST_PLAYER" env-default:"X"`
	AutomatedPlayer string `yaml:"automated-player" env:"GAME_AUTOMATED_PLAYER" env-default:"O"`
	AutoPlay        bool   `yaml:"auto-play" env:"GAME_AUTO_PLAY" env-default:"false"`
	Seed            uint64 `yaml:"seed" env:"GAME_SEED" env-default:"0"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	if err := config.Game.Validate(); err != nil {
		panic(fmt.Errorf("invalid game config: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

func (that *Game) Settings() entity.Settings {
	return entity.Settings{
		Mode:            entity.Mode(that.Mode),
		FirstPlayer:     entity.Mark(that.FirstPlayer),
		AutomatedPlayer: entity.Mark(that.AutomatedPlayer),
		Difficulty:      entity.Difficulty(that.Difficulty),
		Size:            that.Size,
	}
}

func (that *Game) Validate() error {
	settings := that.Settings()

	if !entity.IsSupportedSize(settings.Size) {
		return fmt.Errorf("unsupported board size %d, want one of %v", settings.Size, entity.SupportedSizes)
	}

	if !settings.IsValid() {
		return fmt.Errorf("bad settings %+v", settings)
	}

	return nil
}
