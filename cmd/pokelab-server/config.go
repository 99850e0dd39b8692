package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// WebhookConfig pre-registers a webhook notifier at startup.
type WebhookConfig struct {
	ID      string            `yaml:"id" validate:"required"`
	URL     string            `yaml:"url" validate:"required,url"`
	Headers map[string]string `yaml:"headers"`
}

// ServerConfig holds the server configuration
type ServerConfig struct {
	Addr            string `validate:"required"`
	ConfigFile      string
	DatasetFile     string
	SnapshotDir     string
	LogLevel        string          `validate:"oneof=debug info warn warning error"`
	ShutdownTimeout time.Duration   `validate:"gt=0"`
	Webhooks        []WebhookConfig `validate:"dive"`
}

// fileConfig is the YAML config file layout. Every field is optional and
// sits below flags and environment variables in precedence.
type fileConfig struct {
	Addr            string          `yaml:"addr"`
	DatasetFile     string          `yaml:"dataset_file"`
	SnapshotDir     string          `yaml:"snapshot_dir"`
	LogLevel        string          `yaml:"log_level"`
	ShutdownTimeout string          `yaml:"shutdown_timeout"`
	Webhooks        []WebhookConfig `yaml:"webhooks"`
}

// snapshotDirDisabled turns snapshot persistence off.
const snapshotDirDisabled = "none"

// configResolver defines how to resolve a single configuration value
type configResolver struct {
	flagName    string
	envVarName  string
	defaultVal  string
	description string
	fromFile    func(fileConfig) string
	setter      func(*ServerConfig, string) error
}

var configValidate = validator.New()

func resolvers() []configResolver {
	return []configResolver{
		{
			flagName:    "addr",
			envVarName:  "POKELAB_ADDR",
			defaultVal:  ":8080",
			description: "HTTP listen address (e.g. :8080, 0.0.0.0:8080)",
			fromFile:    func(f fileConfig) string { return f.Addr },
			setter:      func(c *ServerConfig, v string) error { c.Addr = v; return nil },
		},
		{
			flagName:    "dataset-file",
			envVarName:  "POKELAB_DATASET_FILE",
			defaultVal:  "",
			description: "optional JSON or YAML dataset served as the default dataset instead of the bundled one",
			fromFile:    func(f fileConfig) string { return f.DatasetFile },
			setter:      func(c *ServerConfig, v string) error { c.DatasetFile = v; return nil },
		},
		{
			flagName:    "snapshot-dir",
			envVarName:  "POKELAB_SNAPSHOT_DIR",
			defaultVal:  "./data",
			description: "directory where uploaded datasets are persisted; \"" + snapshotDirDisabled + "\" disables persistence",
			fromFile:    func(f fileConfig) string { return f.SnapshotDir },
			setter: func(c *ServerConfig, v string) error {
				if v == snapshotDirDisabled {
					v = ""
				}
				c.SnapshotDir = v
				return nil
			},
		},
		{
			flagName:    "log-level",
			envVarName:  "POKELAB_LOG_LEVEL",
			defaultVal:  "info",
			description: "log level: debug, info, warn, error",
			fromFile:    func(f fileConfig) string { return f.LogLevel },
			setter:      func(c *ServerConfig, v string) error { c.LogLevel = v; return nil },
		},
		{
			flagName:    "shutdown-timeout",
			envVarName:  "POKELAB_SHUTDOWN_TIMEOUT",
			defaultVal:  "10s",
			description: "how long to wait for in-flight requests on shutdown",
			fromFile:    func(f fileConfig) string { return f.ShutdownTimeout },
			setter: func(c *ServerConfig, v string) error {
				d, err := time.ParseDuration(v)
				if err != nil {
					return fmt.Errorf("invalid shutdown-timeout %q: %w", v, err)
				}
				c.ShutdownTimeout = d
				return nil
			},
		},
	}
}

// loadServerConfig resolves each option from, in order: command line flag,
// environment variable, config file, built-in default.
func loadServerConfig(args []string, getenv func(string) string) (ServerConfig, error) {
	fs := flag.NewFlagSet("pokelab-server", flag.ContinueOnError)
	configFlag := fs.String("config", "", "optional YAML config file")

	rs := resolvers()
	flagVars := make(map[string]*string, len(rs))
	for _, r := range rs {
		flagVars[r.flagName] = fs.String(r.flagName, "", r.description)
	}
	if err := fs.Parse(args); err != nil {
		return ServerConfig{}, err
	}

	cfg := ServerConfig{ConfigFile: *configFlag}
	if cfg.ConfigFile == "" {
		cfg.ConfigFile = getenv("POKELAB_CONFIG_FILE")
	}

	var file fileConfig
	if cfg.ConfigFile != "" {
		var err error
		if file, err = readConfigFile(cfg.ConfigFile); err != nil {
			return ServerConfig{}, err
		}
	}

	for _, r := range rs {
		var value string
		if v := *flagVars[r.flagName]; v != "" {
			value = v
		} else if v := getenv(r.envVarName); v != "" {
			value = v
		} else if v := r.fromFile(file); v != "" {
			value = v
		} else {
			value = r.defaultVal
		}
		if err := r.setter(&cfg, value); err != nil {
			return ServerConfig{}, err
		}
	}
	cfg.Webhooks = file.Webhooks

	if err := configValidate.Struct(cfg); err != nil {
		return ServerConfig{}, fmt.Errorf("invalid server config: %w", err)
	}
	return cfg, nil
}

func readConfigFile(path string) (fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, fmt.Errorf("failed to read config file: %w", err)
	}
	var file fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return fileConfig{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return file, nil
}
