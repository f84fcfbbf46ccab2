// Package config loads the export job configuration.
//
// Values are merged from three flat key/value sources, later ones winning:
// an optional YAML file named by CONFIG_FILE, a dotenv file (ENV_FILE, default
// ".env") and the process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EndpointPath is appended to DOMAIN when URL is not configured.
const EndpointPath = "/webservice/rest/server.php"

// Supported export formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatJSON = "json"
)

// Formats lists every value EXPORT_FORMAT accepts.
var Formats = []string{FormatCSV, FormatXLSX, FormatJSON}

// Config holds all job configuration. It is built once and never mutated.
type Config struct {
	Moodle MoodleConfig
	Export ExportConfig
	Log    LogConfig
	Debug  bool
}

// MoodleConfig holds the remote web-service settings.
type MoodleConfig struct {
	URL            string
	Token          string
	Category       string
	IgnoredCourses []string
	FeedbackNames  []string // optional substring filter on feedback names
	Timeout        time.Duration
}

// ExportConfig holds output settings.
type ExportConfig struct {
	OutputDir string
	Format    string
	BOM       bool
	Named     bool // export attributed attempts when a feedback has no anonymous ones
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
	File   string
}

// MissingKeyError reports a required key absent from every source.
type MissingKeyError struct {
	Key string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("required configuration key %s is not set", e.Key)
}

// Load reads and merges every configuration source.
func Load() (*Config, error) {
	vals, err := readValues(os.Getenv("CONFIG_FILE"), envOr("ENV_FILE", ".env"), os.Environ())
	if err != nil {
		return nil, err
	}
	return FromValues(vals), nil
}

// FromValues builds a Config from an already merged key/value mapping.
func FromValues(vals map[string]string) *Config {
	debug := envBool(vals, "DEBUG", false)
	level := envStr(vals, "LOG_LEVEL", "info")
	if debug {
		level = "debug"
	}

	return &Config{
		Moodle: MoodleConfig{
			URL:            endpoint(envStr(vals, "URL", ""), envStr(vals, "DOMAIN", "")),
			Token:          envStr(vals, "TOKEN", ""),
			Category:       envStr(vals, "CATEGORY", ""),
			IgnoredCourses: envList(vals, "IGNORED_COURSES"),
			FeedbackNames:  envList(vals, "FEEDBACK_NAMES"),
			Timeout:        time.Duration(envInt(vals, "HTTP_TIMEOUT", 30)) * time.Second,
		},
		Export: ExportConfig{
			OutputDir: envStr(vals, "OUTPUT_DIR", "data"),
			Format:    strings.ToLower(envStr(vals, "EXPORT_FORMAT", FormatCSV)),
			BOM:       envBool(vals, "CSV_BOM", false),
			Named:     envBool(vals, "EXPORT_NAMED", true),
		},
		Log: LogConfig{
			Level:  level,
			Format: envStr(vals, "LOG_FORMAT", "json"),
			File:   envStr(vals, "LOG_FILE", ""),
		},
		Debug: debug,
	}
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Moodle.URL == "" {
		return &MissingKeyError{Key: "URL or DOMAIN"}
	}
	if c.Moodle.Token == "" {
		return &MissingKeyError{Key: "TOKEN"}
	}
	if c.Moodle.Category == "" {
		return &MissingKeyError{Key: "CATEGORY"}
	}

	if !slices.Contains(Formats, c.Export.Format) {
		return fmt.Errorf("EXPORT_FORMAT must be one of %s, got %q", strings.Join(Formats, ", "), c.Export.Format)
	}

	if c.Moodle.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.Moodle.Timeout)
	}

	return nil
}

func readValues(configFile, envFile string, environ []string) (map[string]string, error) {
	vals := make(map[string]string)

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		var fileVals map[string]string
		if err := yaml.Unmarshal(data, &fileVals); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", configFile, err)
		}
		maps.Copy(vals, fileVals)
	}

	if envFile != "" {
		dotenv, err := godotenv.Read(envFile)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// The dotenv file is optional.
		case err != nil:
			return nil, fmt.Errorf("reading env file %s: %w", envFile, err)
		default:
			maps.Copy(vals, dotenv)
		}
	}

	for _, kv := range environ {
		// A variable set to the empty string still overrides the files.
		if k, v, ok := strings.Cut(kv, "="); ok {
			vals[k] = v
		}
	}

	return vals, nil
}

func endpoint(url, domain string) string {
	if url != "" || domain == "" {
		return url
	}
	if !strings.Contains(domain, "://") {
		domain = "https://" + domain
	}
	return strings.TrimSuffix(domain, "/") + EndpointPath
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envStr(vals map[string]string, key, fallback string) string {
	if v := strings.TrimSpace(vals[key]); v != "" {
		return v
	}
	return fallback
}

func envInt(vals map[string]string, key string, fallback int) int {
	if v := strings.TrimSpace(vals[key]); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(vals map[string]string, key string, fallback bool) bool {
	if v := strings.TrimSpace(vals[key]); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return fallback
}

// envList splits a comma separated value, dropping blanks.
func envList(vals map[string]string, key string) []string {
	var out []string
	for _, part := range strings.Split(vals[key], ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
