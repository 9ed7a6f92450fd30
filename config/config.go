package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Game     GameConfig     `mapstructure:"game"`
}

type ServerConfig struct {
	HTTPAddress    string `mapstructure:"http_address"`
	RPCAddress     string `mapstructure:"rpc_address"`
	MetricsAddress string `mapstructure:"metrics_address"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

// GameConfig is the injected rule surface: the two deadline durations, the
// round count and the seat limits. Hand size equals MaxRounds, one card is
// played per round.
type GameConfig struct {
	ChooseCardTimeoutSeconds  int              `mapstructure:"choose_card_timeout_seconds"`
	ChooseStackTimeoutSeconds int              `mapstructure:"choose_stack_timeout_seconds"`
	MaxRounds                 int              `mapstructure:"max_rounds"`
	MinPlayers                int              `mapstructure:"min_players"`
	MaxPlayers                int              `mapstructure:"max_players"`
	RegisteredPlayers         []RegisteredUser `mapstructure:"registered_players"`
}

// RegisteredUser pre-registers a player id for the table. Joining with an
// unknown id is rejected.
type RegisteredUser struct {
	ID       string `mapstructure:"id"`
	Username string `mapstructure:"username"`
}

// ChooseCardTimeout is the D1 deadline for playing a card.
func (g GameConfig) ChooseCardTimeout() time.Duration {
	return time.Duration(g.ChooseCardTimeoutSeconds) * time.Second
}

// ChooseStackTimeout is the D2 deadline for a forced stack choice.
func (g GameConfig) ChooseStackTimeout() time.Duration {
	return time.Duration(g.ChooseStackTimeoutSeconds) * time.Second
}

func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("game.choose_card_timeout_seconds", 30)
	viper.SetDefault("game.choose_stack_timeout_seconds", 15)
	viper.SetDefault("game.max_rounds", 10)
	viper.SetDefault("game.min_players", 2)
	viper.SetDefault("game.max_players", 10)

	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
