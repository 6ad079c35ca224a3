// Package config provides application configuration management with
// support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Data     DataConfig
	Rules    RulesConfig
	Analysis AnalysisConfig
	Review   ReviewConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig holds data storage configuration. The vocabulary database,
// album catalog, and search index all live under BasePath.
type DataConfig struct {
	BasePath string
}

// RulesConfig holds normalization rule configuration.
type RulesConfig struct {
	// Path to a JSON rules file. Empty means built-in defaults.
	Path string
	// Watch reloads the rules when the file changes on disk.
	Watch bool
}

// AnalysisConfig holds similarity scoring configuration.
type AnalysisConfig struct {
	StringWeight        float64
	CooccurrenceWeight  float64
	NetworkWeight       float64
	SimilarityThreshold float64
}

// ReviewConfig holds correction workflow configuration.
type ReviewConfig struct {
	HighConfidence   float64
	MediumConfidence float64
	MinSimilarity    float64
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := flag.String("data-path", "", "Base path for data storage")
	rulesPath := flag.String("rules", "", "Path to JSON normalization rules (default: built-in)")
	rulesWatch := flag.String("rules-watch", "", "Reload rules on file change (default: true)")

	similarityThreshold := flag.String("similarity-threshold", "", "Similarity suggestion threshold (default: 0.5)")
	highConfidence := flag.String("high-confidence", "", "High confidence cutoff (default: 0.8)")
	mediumConfidence := flag.String("medium-confidence", "", "Medium confidence cutoff (default: 0.5)")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			BasePath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Rules: RulesConfig{
			Path:  getConfigValue(*rulesPath, "RULES_PATH", ""),
			Watch: getBoolConfigValue(*rulesWatch, "RULES_WATCH", true),
		},
		Analysis: AnalysisConfig{
			StringWeight:        getFloatConfigValue("", "STRING_WEIGHT", 0.3),
			CooccurrenceWeight:  getFloatConfigValue("", "COOCCURRENCE_WEIGHT", 0.4),
			NetworkWeight:       getFloatConfigValue("", "NETWORK_WEIGHT", 0.3),
			SimilarityThreshold: getFloatConfigValue(*similarityThreshold, "SIMILARITY_THRESHOLD", 0.5),
		},
		Review: ReviewConfig{
			HighConfidence:   getFloatConfigValue(*highConfidence, "HIGH_CONFIDENCE", 0.8),
			MediumConfidence: getFloatConfigValue(*mediumConfidence, "MEDIUM_CONFIDENCE", 0.5),
			MinSimilarity:    getFloatConfigValue("", "MIN_SIMILARITY", 0.3),
		},
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}
	if err := cfg.expandRulesPath(); err != nil {
		return nil, fmt.Errorf("invalid rules path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.BasePath == "" {
		return errors.New("data base path cannot be empty after expansion")
	}

	for name, v := range map[string]float64{
		"similarity threshold": c.Analysis.SimilarityThreshold,
		"high confidence":      c.Review.HighConfidence,
		"medium confidence":    c.Review.MediumConfidence,
		"min similarity":       c.Review.MinSimilarity,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be in [0,1], got %v", name, v)
		}
	}
	if c.Review.MediumConfidence > c.Review.HighConfidence {
		return errors.New("medium confidence cutoff cannot exceed high confidence cutoff")
	}

	return nil
}

// VocabDBPath is the badger database directory for the vocabulary.
func (c *Config) VocabDBPath() string {
	return filepath.Join(c.Data.BasePath, "vocab")
}

// CatalogDBPath is the SQLite album catalog file.
func (c *Config) CatalogDBPath() string {
	return filepath.Join(c.Data.BasePath, "catalog.db")
}

// SearchIndexPath is the directory holding the vocabulary search index.
func (c *Config) SearchIndexPath() string {
	return filepath.Join(c.Data.BasePath, "search")
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPath expands ~ and makes the path absolute.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "AlbumAtlas", "data")

	expanded, err := expandPath(c.Data.BasePath, defaultPath)
	if err != nil {
		return err
	}
	c.Data.BasePath = expanded
	return nil
}

// expandRulesPath expands ~ and makes the path absolute.
// Empty stays empty: built-in rules apply.
func (c *Config) expandRulesPath() error {
	if c.Rules.Path == "" {
		return nil
	}

	expanded, err := expandPath(c.Rules.Path, "")
	if err != nil {
		return err
	}
	c.Rules.Path = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getFloatConfigValue returns a float64 from flag, env var, or default.
func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.ParseFloat(strValue, 64)
	if err != nil {
		return defaultValue
	}
	return result
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)

		// Env vars take precedence over .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
