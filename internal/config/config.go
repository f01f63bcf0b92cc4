package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	// FreeLimit is the history ceiling without the pro capability.
	FreeLimit int `json:"free_limit"`

	// ProLimit is the history ceiling with the pro capability.
	// 0 means unbounded.
	ProLimit int `json:"pro_limit"`

	// MaxTextBytes is the capture ceiling for text and file-list payloads.
	// Oversized content is dropped, not truncated.
	MaxTextBytes int `json:"max_text_bytes"`

	// MaxImageBytes is the capture ceiling for encoded image payloads.
	MaxImageBytes int `json:"max_image_bytes"`

	// PollIntervalMS is the clipboard poll cadence in milliseconds.
	PollIntervalMS int `json:"poll_interval_ms"`

	// MinImagePx rejects captured images narrower or shorter than this
	// in either dimension (treated as UI chrome, not user content).
	MinImagePx int `json:"min_image_px"`

	// PreviewChars bounds the derived preview length in runes.
	PreviewChars int `json:"preview_chars"`

	// IsPro is the externally supplied subscription capability. clipd
	// never verifies it; it only selects the effective history limit.
	IsPro bool `json:"is_pro,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from
	// registration. Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	// 0 means use sql.DB default.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		FreeLimit:      9,
		ProLimit:       100,
		MaxTextBytes:   1 << 20,  // 1 MiB
		MaxImageBytes:  10 << 20, // 10 MiB
		PollIntervalMS: 500,
		MinImagePx:     16,
		PreviewChars:   120,
	}
}

// PollInterval returns the poll cadence as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.clipd.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	merged := func(overlayVal, baseVal int) int {
		if overlayVal != 0 {
			return overlayVal
		}
		return baseVal
	}

	result.FreeLimit = merged(overlay.FreeLimit, base.FreeLimit)
	result.ProLimit = merged(overlay.ProLimit, base.ProLimit)
	result.MaxTextBytes = merged(overlay.MaxTextBytes, base.MaxTextBytes)
	result.MaxImageBytes = merged(overlay.MaxImageBytes, base.MaxImageBytes)
	result.PollIntervalMS = merged(overlay.PollIntervalMS, base.PollIntervalMS)
	result.MinImagePx = merged(overlay.MinImagePx, base.MinImagePx)
	result.PreviewChars = merged(overlay.PreviewChars, base.PreviewChars)
	result.DBMaxOpenConns = merged(overlay.DBMaxOpenConns, base.DBMaxOpenConns)
	result.DBMaxIdleConns = merged(overlay.DBMaxIdleConns, base.DBMaxIdleConns)

	// Booleans: overlay wins if true, else base
	result.IsPro = base.IsPro || overlay.IsPro

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
