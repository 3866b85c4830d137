// Package config loads device configuration from a YAML file, following
// the teacher's Config-struct-plus-DefaultX idiom (DeviceParams/
// DefaultParams) generalized to a process-wide settings object.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable the three workers need at construction time.
type Config struct {
	Backend  BackendConfig  `yaml:"backend"`
	Printer  PrinterConfig  `yaml:"printer"`
	Sound    SoundConfig    `yaml:"sound"`
	GPIO     GPIOConfig     `yaml:"gpio"`
	Sequence SequenceConfig `yaml:"sequence"`
	Network  NetworkConfig  `yaml:"network"`
	LogLevel string         `yaml:"log_level"`
}

type BackendConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type PrinterConfig struct {
	DevicePath string `yaml:"device_path"`
	BaudRate   int    `yaml:"baud_rate"`
}

type SoundConfig struct {
	AssetDir string `yaml:"asset_dir"`
	Player   string `yaml:"player"` // e.g. "aplay"
}

type GPIOConfig struct {
	LoopSensorPin int    `yaml:"loop_sensor_pin"`
	ButtonPins    [4]int `yaml:"button_pins"`
	GatePin       int    `yaml:"gate_pin"`
	IndicatorPin  int    `yaml:"indicator_pin"`
}

type SequenceConfig struct {
	FilePath string `yaml:"file_path"`
}

type NetworkConfig struct {
	PendingQueueCapacity int           `yaml:"pending_queue_capacity"`
	HealthCheckInterval  time.Duration `yaml:"health_check_interval"`
	QueueInfoTimeout      time.Duration `yaml:"queue_info_timeout"`
	MailboxCapacity       int           `yaml:"mailbox_capacity"`
}

// Default returns the out-of-the-box configuration for the reference
// hardware layout, mirroring the teacher's DefaultParams.
func Default() Config {
	return Config{
		Backend: BackendConfig{
			BaseURL: "http://localhost:8080",
			Timeout: 5 * time.Second,
		},
		Printer: PrinterConfig{
			DevicePath: "/dev/ttyUSB0",
			BaudRate:   9600,
		},
		Sound: SoundConfig{
			AssetDir: "/opt/dispenser/sounds",
			Player:   "aplay",
		},
		GPIO: GPIOConfig{
			LoopSensorPin: 17,
			ButtonPins:    [4]int{27, 22, 23, 24},
			GatePin:       25,
			IndicatorPin:  26,
		},
		Sequence: SequenceConfig{
			FilePath: "/var/lib/dispenser/last_ticket_seq.txt",
		},
		Network: NetworkConfig{
			PendingQueueCapacity: 50,
			HealthCheckInterval:  10 * time.Second,
			QueueInfoTimeout:     5 * time.Second,
			MailboxCapacity:      16,
		},
		LogLevel: "info",
	}
}

// Load reads and parses a YAML config file, filling any unset fields from
// Default().
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
