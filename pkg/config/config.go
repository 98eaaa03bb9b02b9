// Package config loads node configuration from YAML: the tunables the
// consensus driver, WAL manager, and buffer pool read at startup, plus the
// bootstrap fields (node identity, peer list, data directory) a runnable
// node needs.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the durability core's node configuration. Duration fields are
// expressed in the file as plain milliseconds (e.g. `connectionTimeoutMs:
// 3000`) and converted to time.Duration for the rest of the program to
// consume.
type Config struct {
	// NodeHost/NodePort identify this node's own address.
	NodeHost string `yaml:"nodeHost"`
	NodePort uint16 `yaml:"nodePort"`

	// Peers lists every other known cluster member at startup. Membership
	// changes beyond this initial set (dynamic reconfiguration) are not
	// supported.
	Peers []PeerConfig `yaml:"peers"`

	DataDir string `yaml:"dataDir"`

	EnableWAL                         bool `yaml:"enableWal"`
	ForceWalPeriodInMs                int  `yaml:"forceWalPeriodInMs"`
	RegisterBufferSleepIntervalInMs   int  `yaml:"registerBufferSleepIntervalInMs"`
	RegisterBufferRejectThresholdInMs int  `yaml:"registerBufferRejectThresholdInMs"`
	ConnectionTimeoutMs               int  `yaml:"connectionTimeoutMs"`

	// HeartbeatIntervalMs, ElectionLeastMs, ElectionRandomMs expose the
	// consensus driver's heartbeat and election-backoff timing as tunables
	// rather than hard-coding them.
	HeartbeatIntervalMs int `yaml:"heartbeatIntervalMs"`
	ElectionLeastMs     int `yaml:"electionLeastMs"`
	ElectionRandomMs    int `yaml:"electionRandomMs"`

	BufferPoolSize int `yaml:"bufferPoolSize"`
}

// PeerConfig is one entry of the static peer list.
type PeerConfig struct {
	Host string `yaml:"host"`
	Port uint16 `yaml:"port"`
}

// Default returns a Config with conservative defaults (1s heartbeats,
// 5-10s election backoff) for callers that only need to override a few
// fields.
func Default() Config {
	return Config{
		NodeHost:                          "127.0.0.1",
		DataDir:                           "./data",
		EnableWAL:                         true,
		ForceWalPeriodInMs:                10_000,
		RegisterBufferSleepIntervalInMs:   50,
		RegisterBufferRejectThresholdInMs: 30_000,
		ConnectionTimeoutMs:               3_000,
		HeartbeatIntervalMs:               1_000,
		ElectionLeastMs:                   5_000,
		ElectionRandomMs:                  5_000,
		BufferPoolSize:                    64,
	}
}

// Load reads and parses a YAML configuration file, applying Default() for
// any zero-valued field the file omits.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration's invariants:
// registerBufferRejectThresholdInMs must exceed the sleep interval, and
// every positive-integer field must actually be positive.
func (c Config) Validate() error {
	if c.RegisterBufferSleepIntervalInMs <= 0 {
		return fmt.Errorf("registerBufferSleepIntervalInMs must be > 0")
	}
	if c.RegisterBufferRejectThresholdInMs <= c.RegisterBufferSleepIntervalInMs {
		return fmt.Errorf("registerBufferRejectThresholdInMs must be > registerBufferSleepIntervalInMs")
	}
	if c.ConnectionTimeoutMs <= 0 {
		return fmt.Errorf("connectionTimeoutMs must be > 0")
	}
	if c.ForceWalPeriodInMs < 0 {
		return fmt.Errorf("forceWalPeriodInMs must be >= 0")
	}
	return nil
}

// ConnectionTimeout returns ConnectionTimeoutMs as a time.Duration.
func (c Config) ConnectionTimeout() time.Duration {
	return time.Duration(c.ConnectionTimeoutMs) * time.Millisecond
}

// HeartbeatInterval returns HeartbeatIntervalMs as a time.Duration.
func (c Config) HeartbeatInterval() time.Duration {
	return time.Duration(c.HeartbeatIntervalMs) * time.Millisecond
}

// ElectionBackoffRange returns the [least, least+random) election backoff
// window.
func (c Config) ElectionBackoffRange() (least, random time.Duration) {
	return time.Duration(c.ElectionLeastMs) * time.Millisecond,
		time.Duration(c.ElectionRandomMs) * time.Millisecond
}

// ForceWalPeriod returns ForceWalPeriodInMs as a time.Duration. Zero means
// the periodic force-sync sweep is disabled.
func (c Config) ForceWalPeriod() time.Duration {
	return time.Duration(c.ForceWalPeriodInMs) * time.Millisecond
}

// RegisterBufferSleepInterval returns RegisterBufferSleepIntervalInMs as a
// time.Duration.
func (c Config) RegisterBufferSleepInterval() time.Duration {
	return time.Duration(c.RegisterBufferSleepIntervalInMs) * time.Millisecond
}

// RegisterBufferRejectThreshold returns RegisterBufferRejectThresholdInMs as
// a time.Duration.
func (c Config) RegisterBufferRejectThreshold() time.Duration {
	return time.Duration(c.RegisterBufferRejectThresholdInMs) * time.Millisecond
}
