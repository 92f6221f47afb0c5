package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/kelseyhightower/envconfig"
)

// Config represents the complete server configuration
type Config struct {
	Server    ServerSettings
	Game      GameSettings
	Directory DirectorySettings
}

// fileConfig mirrors Config for HCL decoding. Pointer blocks make every
// block optional in the file.
type fileConfig struct {
	Server    *ServerSettings    `hcl:"server,block"`
	Game      *GameSettings      `hcl:"game,block"`
	Directory *DirectorySettings `hcl:"directory,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional" envconfig:"POKERD_ADDRESS"`
	Port     int    `hcl:"port,optional" envconfig:"POKERD_PORT"`
	LogLevel string `hcl:"log_level,optional" envconfig:"POKERD_LOG_LEVEL"`
}

// GameSettings contains the table parameters applied to every room
type GameSettings struct {
	RoomSize           int    `hcl:"room_size,optional" envconfig:"POKERD_ROOM_SIZE"`
	BuyIn              int    `hcl:"buy_in,optional" envconfig:"POKERD_BUY_IN"`
	SmallBlind         int    `hcl:"small_blind,optional" envconfig:"POKERD_SMALL_BLIND"`
	BigBlind           int    `hcl:"big_blind,optional" envconfig:"POKERD_BIG_BLIND"`
	Variant            string `hcl:"variant,optional" envconfig:"POKERD_VARIANT"`
	LowestRank         int    `hcl:"lowest_rank,optional" envconfig:"POKERD_LOWEST_RANK"`
	BetTimeoutSeconds  int    `hcl:"bet_timeout_seconds,optional" envconfig:"POKERD_BET_TIMEOUT_SECONDS"`
	IdleTimeoutSeconds int    `hcl:"idle_timeout_seconds,optional" envconfig:"POKERD_IDLE_TIMEOUT_SECONDS"`

	// pacing delays between hand phases, in milliseconds
	WaitAfterCardsMS    int `hcl:"wait_after_cards_ms,optional" envconfig:"POKERD_WAIT_AFTER_CARDS_MS"`
	WaitAfterRoundMS    int `hcl:"wait_after_round_ms,optional" envconfig:"POKERD_WAIT_AFTER_ROUND_MS"`
	WaitAfterShowdownMS int `hcl:"wait_after_showdown_ms,optional" envconfig:"POKERD_WAIT_AFTER_SHOWDOWN_MS"`
	WaitAfterWinnerMS   int `hcl:"wait_after_winner_ms,optional" envconfig:"POKERD_WAIT_AFTER_WINNER_MS"`
}

// DirectorySettings selects the player directory backend
type DirectorySettings struct {
	Driver string `hcl:"driver,optional" envconfig:"POKERD_DIRECTORY_DRIVER"`
	DSN    string `hcl:"dsn,optional" envconfig:"POKERD_DIRECTORY_DSN"`
}

// DefaultConfig returns the default server configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Game: GameSettings{
			RoomSize:           10,
			BuyIn:              1000,
			SmallBlind:         10,
			BigBlind:           20,
			Variant:            "texas-holdem",
			LowestRank:         2,
			BetTimeoutSeconds:  30,
			IdleTimeoutSeconds: 120,

			WaitAfterCardsMS:    1000,
			WaitAfterRoundMS:    1000,
			WaitAfterShowdownMS: 2000,
			WaitAfterWinnerMS:   2000,
		},
		Directory: DirectorySettings{
			Driver: "memory",
		},
	}
}

// LoadConfig loads the configuration from an HCL file, then applies
// environment overrides. A missing file yields the defaults.
func LoadConfig(filename string) (*Config, error) {
	config := DefaultConfig()

	if _, err := os.Stat(filename); err == nil {
		parser := hclparse.NewParser()
		file, diags := parser.ParseHCLFile(filename)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
		}
		var loaded fileConfig
		if diags = gohcl.DecodeBody(file.Body, nil, &loaded); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
		}
		applyLoaded(config, &loaded)
	}

	if err := envconfig.Process("pokerd", config); err != nil {
		return nil, fmt.Errorf("failed to read environment overrides: %w", err)
	}
	return config, nil
}

func applyLoaded(config *Config, loaded *fileConfig) {
	if loaded.Server != nil {
		if loaded.Server.Address != "" {
			config.Server.Address = loaded.Server.Address
		}
		if loaded.Server.Port != 0 {
			config.Server.Port = loaded.Server.Port
		}
		if loaded.Server.LogLevel != "" {
			config.Server.LogLevel = loaded.Server.LogLevel
		}
	}
	if loaded.Game != nil {
		if loaded.Game.RoomSize != 0 {
			config.Game.RoomSize = loaded.Game.RoomSize
		}
		if loaded.Game.BuyIn != 0 {
			config.Game.BuyIn = loaded.Game.BuyIn
		}
		if loaded.Game.SmallBlind != 0 {
			config.Game.SmallBlind = loaded.Game.SmallBlind
		}
		if loaded.Game.BigBlind != 0 {
			config.Game.BigBlind = loaded.Game.BigBlind
		}
		if loaded.Game.Variant != "" {
			config.Game.Variant = loaded.Game.Variant
		}
		if loaded.Game.LowestRank != 0 {
			config.Game.LowestRank = loaded.Game.LowestRank
		}
		if loaded.Game.BetTimeoutSeconds != 0 {
			config.Game.BetTimeoutSeconds = loaded.Game.BetTimeoutSeconds
		}
		if loaded.Game.IdleTimeoutSeconds != 0 {
			config.Game.IdleTimeoutSeconds = loaded.Game.IdleTimeoutSeconds
		}
		if loaded.Game.WaitAfterCardsMS != 0 {
			config.Game.WaitAfterCardsMS = loaded.Game.WaitAfterCardsMS
		}
		if loaded.Game.WaitAfterRoundMS != 0 {
			config.Game.WaitAfterRoundMS = loaded.Game.WaitAfterRoundMS
		}
		if loaded.Game.WaitAfterShowdownMS != 0 {
			config.Game.WaitAfterShowdownMS = loaded.Game.WaitAfterShowdownMS
		}
		if loaded.Game.WaitAfterWinnerMS != 0 {
			config.Game.WaitAfterWinnerMS = loaded.Game.WaitAfterWinnerMS
		}
	}
	if loaded.Directory != nil {
		if loaded.Directory.Driver != "" {
			config.Directory.Driver = loaded.Directory.Driver
		}
		if loaded.Directory.DSN != "" {
			config.Directory.DSN = loaded.Directory.DSN
		}
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Game.SmallBlind <= 0 {
		return fmt.Errorf("small blind must be positive")
	}
	if c.Game.BigBlind <= c.Game.SmallBlind {
		return fmt.Errorf("big blind must be greater than small blind")
	}
	if c.Game.RoomSize < 2 || c.Game.RoomSize > 10 {
		return fmt.Errorf("room size must be between 2 and 10")
	}
	if c.Game.BuyIn < c.Game.BigBlind {
		return fmt.Errorf("buy-in must cover the big blind")
	}
	if c.Game.Variant != "texas-holdem" && c.Game.Variant != "traditional" {
		return fmt.Errorf("unknown variant %q", c.Game.Variant)
	}
	if c.Game.LowestRank < 2 || c.Game.LowestRank > 10 {
		return fmt.Errorf("lowest rank must be between 2 and 10")
	}
	if c.Game.BetTimeoutSeconds <= 0 {
		return fmt.Errorf("bet timeout must be positive")
	}
	if c.Game.WaitAfterCardsMS < 0 || c.Game.WaitAfterRoundMS < 0 ||
		c.Game.WaitAfterShowdownMS < 0 || c.Game.WaitAfterWinnerMS < 0 {
		return fmt.Errorf("pacing delays must not be negative")
	}
	switch c.Directory.Driver {
	case "memory":
	case "postgres":
		if c.Directory.DSN == "" {
			return fmt.Errorf("postgres directory requires a dsn")
		}
	default:
		return fmt.Errorf("unknown directory driver %q", c.Directory.Driver)
	}
	return nil
}

// ListenAddress returns the full listen address
func (c *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// BetTimeout returns the per-action timeout as a duration
func (c *Config) BetTimeout() time.Duration {
	return time.Duration(c.Game.BetTimeoutSeconds) * time.Second
}

// IdleTimeout returns the between-hands idle eviction threshold
func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.Game.IdleTimeoutSeconds) * time.Second
}

// WaitAfterCards returns the pause after dealing hole or shared cards
func (c *Config) WaitAfterCards() time.Duration {
	return time.Duration(c.Game.WaitAfterCardsMS) * time.Millisecond
}

// WaitAfterRound returns the pause after each betting round
func (c *Config) WaitAfterRound() time.Duration {
	return time.Duration(c.Game.WaitAfterRoundMS) * time.Millisecond
}

// WaitAfterShowdown returns the pause after revealing hands
func (c *Config) WaitAfterShowdown() time.Duration {
	return time.Duration(c.Game.WaitAfterShowdownMS) * time.Millisecond
}

// WaitAfterWinner returns the pause after announcing winners
func (c *Config) WaitAfterWinner() time.Duration {
	return time.Duration(c.Game.WaitAfterWinnerMS) * time.Millisecond
}
