package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type Configs struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`

	Database  DatabaseConfigs `toml:"database"`
	ApiServer ServerConfigs   `toml:"api_server"`
	Auth      AuthConfigs     `toml:"auth"`
	Redis     RedisConfigs    `toml:"redis"`
	Kafka     KafkaConfigs    `toml:"kafka"`
	Draw      DrawConfigs     `toml:"draw"`
	Recorder  RecorderConfigs `toml:"recorder"`
	Cron      CronConfigs     `toml:"cron"`
}

type DatabaseConfigs struct {
	// Driver is either mysql or sqlite.
	Driver   string `toml:"driver"`
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Database string `toml:"database"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	LogLevel string `toml:"log_level"`
}

func (d *DatabaseConfigs) ConnectionString() string {
	if d.Driver == "sqlite" {
		return d.Database
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type ServerConfigs struct {
	Host           string   `toml:"host"`
	Port           string   `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
	MaxLimit       int      `toml:"max_limit"`
	DefaultLimit   int      `toml:"default_limit"`
}

func (c ServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

type AuthConfigs struct {
	TokenSecret string       `toml:"token_secret"`
	AccessToken TokenConfigs `toml:"access_token"`
}

type TokenConfigs struct {
	Name       string        `toml:"name"`
	Expiration time.Duration `toml:"expiration"`
}

type RedisConfigs struct {
	Addr    string        `toml:"addr"`
	LockTTL time.Duration `toml:"lock_ttl"`
}

func (c RedisConfigs) Enabled() bool {
	return c.Addr != ""
}

type KafkaConfigs struct {
	Addr  string `toml:"addr"`
	Topic string `toml:"topic"`
	Group string `toml:"group"`
}

type DrawConfigs struct {
	PointsCost    int64  `toml:"points_cost"`
	BaseFreeSpins int    `toml:"base_free_spins"`
	HistoryLimit  int    `toml:"history_limit"`
	ResetTimezone string `toml:"reset_timezone"`
	VIPStacking   string `toml:"vip_stacking"`
	VIPLevel      string `toml:"vip_level"`
	PrizeFile     string `toml:"prize_file"`
	NodeID        int64  `toml:"node_id"`

	// Multipliers and BonusSpins are keyed by membership level name.
	Multipliers map[string]string `toml:"multipliers"`
	BonusSpins  map[string]int    `toml:"bonus_spins"`
}

type RecorderConfigs struct {
	// Mode is one of http, kafka or none.
	Mode         string        `toml:"mode"`
	Endpoint     string        `toml:"endpoint"`
	Token        string        `toml:"token"`
	Secret       string        `toml:"secret"`
	QueueSize    int           `toml:"queue_size"`
	Workers      int           `toml:"workers"`
	MaxRetries   int           `toml:"max_retries"`
	RetryBackoff time.Duration `toml:"retry_backoff"`
}

type CronConfigs struct {
	VIPExpirySchedule string `toml:"vip_expiry_schedule"`
}

// Load reads an optional dotenv file into the process environment, then decodes
// the toml file at path. Values in the form ${VAR} are expanded from the
// environment before decoding.
func Load(path string, envFiles ...string) (Configs, error) {
	if err := godotenv.Load(envFiles...); err != nil && !os.IsNotExist(err) {
		return Configs{}, err
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return Configs{}, err
	}

	cfg := Default()
	if _, err := toml.Decode(os.ExpandEnv(string(b)), &cfg); err != nil {
		return Configs{}, err
	}

	return cfg, nil
}

func Default() Configs {
	return Configs{
		Env:      "local",
		LogLevel: "info",
		Database: DatabaseConfigs{
			Driver:   "sqlite",
			Database: "luckydraw.db",
		},
		ApiServer: ServerConfigs{
			Port:           "8080",
			AllowedOrigins: []string{"*"},
			MaxLimit:       50,
			DefaultLimit:   20,
		},
		Auth: AuthConfigs{
			AccessToken: TokenConfigs{
				Name:       "access_token",
				Expiration: 5 * time.Minute,
			},
		},
		Redis: RedisConfigs{
			LockTTL: 5 * time.Second,
		},
		Kafka: KafkaConfigs{
			Topic: "draw_record",
			Group: "draw_recorder",
		},
		Draw: DrawConfigs{
			PointsCost:    50,
			BaseFreeSpins: 3,
			HistoryLimit:  50,
			ResetTimezone: "UTC",
			VIPStacking:   "extend",
			VIPLevel:      "silver",
			PrizeFile:     "prizes.yaml",
			Multipliers: map[string]string{
				"guest":    "1.0",
				"bronze":   "1.2",
				"silver":   "1.5",
				"gold":     "2.0",
				"platinum": "3.0",
			},
			BonusSpins: map[string]int{
				"guest":    0,
				"bronze":   1,
				"silver":   2,
				"gold":     3,
				"platinum": 5,
			},
		},
		Recorder: RecorderConfigs{
			Mode:         "none",
			QueueSize:    1024,
			Workers:      2,
			MaxRetries:   3,
			RetryBackoff: 500 * time.Millisecond,
		},
		Cron: CronConfigs{
			VIPExpirySchedule: "@every 1m",
		},
	}
}
