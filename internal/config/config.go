package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	liteTableDir   = ".litetable"
	configFileName = "ltmap.conf"
)

// Config is read from a file of key=value lines:
//
//	# comments and blank lines are skipped
//	schema_file = ./schema.yaml
//	debug = true
//	litetable_address = localhost:9090
//	timeout = 5
type Config struct {
	SchemaFile       string
	Debug            bool
	LiteTableAddress string
	// Timeout of a single LiteTable call.
	Timeout time.Duration
}

// DefaultPath is the ltmap.conf inside the LiteTable directory of the user's home.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, liteTableDir, configFileName), nil
}

// Load reads the configuration file at path. Relative schema files are
// resolved against the directory of path.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("configuration file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg, err := Parse(file)
	if err != nil {
		return nil, err
	}
	if cfg.SchemaFile != "" && !filepath.IsAbs(cfg.SchemaFile) {
		cfg.SchemaFile = filepath.Join(filepath.Dir(path), cfg.SchemaFile)
	}
	return cfg, nil
}

// Parse reads key=value lines. Unknown keys are ignored.
func Parse(r io.Reader) (*Config, error) {
	config := &Config{}
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and empty lines
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch key {
		case "schema_file":
			config.SchemaFile = value
		case "debug":
			config.Debug = value == "true"
		case "litetable_address":
			config.LiteTableAddress = value
		case "timeout":
			seconds, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("invalid timeout value: %w", err)
			}
			if seconds < 0 {
				return nil, fmt.Errorf("invalid timeout value: %d is negative", seconds)
			}
			config.Timeout = time.Duration(seconds) * time.Second
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	return config, nil
}
