package config

import (
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	mu sync.RWMutex `yaml:"-"`

	Fleet     FleetConfig     `yaml:"fleet"`
	Battery   BatteryConfig   `yaml:"battery"`
	Inventory InventoryConfig `yaml:"inventory"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Logs      LogsConfig      `yaml:"logs"`
	Report    ReportConfig    `yaml:"report"`
	Journal   JournalConfig   `yaml:"journal"`
	Messaging MessagingConfig `yaml:"messaging"`
	Web       WebConfig       `yaml:"web"`
}

type FleetConfig struct {
	RobotCount   int           `yaml:"robot_count"`
	StationCount int           `yaml:"station_count"`
	TaskDuration time.Duration `yaml:"task_duration"`
	IdlePoll     time.Duration `yaml:"idle_poll"`
}

type BatteryConfig struct {
	Max             int           `yaml:"max"`
	LowThreshold    int           `yaml:"low_threshold"`
	AvgDrain        int           `yaml:"avg_drain"`
	ChargeTick      time.Duration `yaml:"charge_tick"`
	ChargePerTick   int           `yaml:"charge_per_tick"`
	ChargingTimeout time.Duration `yaml:"charging_timeout"`
}

type InventoryConfig struct {
	Capacity int `yaml:"capacity"`
}

type IngestConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Path         string        `yaml:"path"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

type LogsConfig struct {
	Dir string `yaml:"dir"`
}

type ReportConfig struct {
	Path string `yaml:"path"`
}

type JournalConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Driver   string         `yaml:"driver"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type MessagingConfig struct {
	Enabled       bool        `yaml:"enabled"`
	Backend       string      `yaml:"backend"`
	MQTT          MQTTConfig  `yaml:"mqtt"`
	Kafka         KafkaConfig `yaml:"kafka"`
	RequestTopic  string      `yaml:"request_topic"`
	TerminalTopic string      `yaml:"terminal_topic"`
	StationID     string      `yaml:"station_id"`
}

type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	Port     int    `yaml:"port"`
	ClientID string `yaml:"client_id"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	GroupID string   `yaml:"group_id"`
}

type WebConfig struct {
	Host              string `yaml:"host"`
	Port              int    `yaml:"port"`
	SessionSecret     string `yaml:"session_secret"`
	AdminPasswordHash string `yaml:"admin_password_hash"`
}

func Defaults() *Config {
	return &Config{
		Fleet: FleetConfig{
			RobotCount:   4,
			StationCount: 2,
			TaskDuration: 10 * time.Second,
			IdlePoll:     1 * time.Second,
		},
		Battery: BatteryConfig{
			Max:             100,
			LowThreshold:    25,
			AvgDrain:        40,
			ChargeTick:      1 * time.Second,
			ChargePerTick:   10,
			ChargingTimeout: 15 * time.Second,
		},
		Inventory: InventoryConfig{
			Capacity: 500,
		},
		Ingest: IngestConfig{
			Enabled:      true,
			Path:         "pending_requests.txt",
			PollInterval: 5 * time.Second,
		},
		Logs: LogsConfig{
			Dir: "Logs",
		},
		Report: ReportConfig{
			Path: "completed_report.dat",
		},
		Journal: JournalConfig{
			Enabled: true,
			Driver:  "sqlite",
			SQLite:  SQLiteConfig{Path: "warebot.db"},
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     5432,
				Database: "warebot",
				User:     "warebot",
				Password: "",
				SSLMode:  "disable",
			},
		},
		Messaging: MessagingConfig{
			Enabled: false,
			Backend: "mqtt",
			MQTT: MQTTConfig{
				Broker:   "localhost",
				Port:     1883,
				ClientID: "warebot",
			},
			Kafka: KafkaConfig{
				Brokers: []string{"localhost:9092"},
				GroupID: "warebot",
			},
			RequestTopic:  "warebot.requests",
			TerminalTopic: "warebot.terminal",
			StationID:     "sim",
		},
		Web: WebConfig{
			Host:          "0.0.0.0",
			Port:          8084,
			SessionSecret: "change-me-in-production",
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Save(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Lock()   { c.mu.Lock() }
func (c *Config) Unlock() { c.mu.Unlock() }
