package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"tasktimer/internal/calendar"
	"tasktimer/internal/timer"
)

// EnvPrefix prefixes every environment variable that overrides the file.
const EnvPrefix = "TASK_TIMER_"

// BasicAuthConfig holds HTTP Basic Auth credentials for the status API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Timer holds work/break lengths in seconds and the long-break interval.
	Timer timer.Settings `yaml:"timer" json:"timer"`

	// Calendar lists the CalDAV endpoints and their credentials.
	Calendar calendar.Settings `yaml:"calendar" json:"calendar"`

	// Listen is the HTTP listen address of the status API. Empty disables it.
	Listen string `yaml:"listen" json:"listen"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`

	// RefreshCron is a cron-style schedule (e.g. "*/15 * * * *") for
	// reloading the calendars. Empty disables automatic reloads.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// Notifications toggles desktop notifications on phase changes.
	Notifications bool `yaml:"notifications" json:"notifications"`

	// LogLevel is one of debug, info, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// LogFile, if set, receives log output instead of stderr.
	LogFile string `yaml:"log_file,omitempty" json:"log_file,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Timer:         timer.DefaultSettings(),
		Calendar:      calendar.Settings{URLs: []string{}},
		Listen:        "",
		RefreshCron:   "",
		Notifications: true,
		LogLevel:      "info",
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	def := timer.DefaultSettings()
	if c.Timer.WorkTime <= 0 {
		c.Timer.WorkTime = def.WorkTime
	}
	if c.Timer.ShortRestTime <= 0 {
		c.Timer.ShortRestTime = def.ShortRestTime
	}
	if c.Timer.LongRestTime <= 0 {
		c.Timer.LongRestTime = def.LongRestTime
	}
	if c.Timer.LongRestInterval == 0 {
		c.Timer.LongRestInterval = def.LongRestInterval
	}
	if c.Calendar.URLs == nil {
		c.Calendar.URLs = []string{}
	}
	c.RefreshCron = strings.TrimSpace(c.RefreshCron)
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// ApplyEnv overrides fields from TASK_TIMER_* variables found via lookup
// (normally os.LookupEnv).
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvPrefix + "CALENDARS"); ok {
		urls := make([]string, 0)
		for _, u := range strings.Split(v, ",") {
			if u = strings.TrimSpace(u); u != "" {
				urls = append(urls, u)
			}
		}
		c.Calendar.URLs = urls
	}
	if v, ok := lookup(EnvPrefix + "USERNAME"); ok {
		c.Calendar.Username = v
	}
	if v, ok := lookup(EnvPrefix + "PASSWORD"); ok {
		c.Calendar.Password = v
	}
	if v, ok := lookup(EnvPrefix + "TOKEN"); ok {
		c.Calendar.Token = v
	}
	if v, ok := lookup(EnvPrefix + "LISTEN"); ok {
		c.Listen = v
	}
	if v, ok := lookup(EnvPrefix + "LOG_LEVEL"); ok {
		c.LogLevel = v
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML over the defaults
//   - normalize
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600, since it may hold credentials.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".tasktimer-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	// Flush and close before chmod/rename.
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
