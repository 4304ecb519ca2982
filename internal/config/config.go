// Package config loads skinlog settings from config.yaml, a .env file and
// SKINLOG_* environment variables, in increasing order of precedence.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/julianstephens/skinlog/internal/constants"
	"github.com/julianstephens/skinlog/internal/utils"
	"github.com/julianstephens/skinlog/internal/watch"
)

type Config struct {
	// Database is a sqlite file path or a PostgreSQL connection string.
	Database        string `json:"database" yaml:"database"`
	Timezone        string `json:"timezone" yaml:"timezone"`
	Debug           bool   `json:"debug" yaml:"debug"`
	CredentialsFile string `json:"credentialsFile" yaml:"credentialsFile"`

	Log struct {
		Level string `json:"level" yaml:"level"`
	} `json:"log" yaml:"log"`

	Watch struct {
		Enabled  bool          `json:"enabled" yaml:"enabled"`
		Debounce time.Duration `json:"debounce" yaml:"debounce"`
	} `json:"watch" yaml:"watch"`

	Backup struct {
		Enabled bool `json:"enabled" yaml:"enabled"`
	} `json:"backup" yaml:"backup"`
}

// knownKeys lets env keys such as SKINLOG_CREDENTIALS_FILE resolve to
// credentialsFile even when config.yaml omits them.
var knownKeys = map[string]any{
	"database":        nil,
	"timezone":        nil,
	"debug":           nil,
	"credentialsFile": nil,
	"log":             map[string]any{"level": nil},
	"watch":           map[string]any{"enabled": nil, "debounce": nil},
	"backup":          map[string]any{"enabled": nil},
}

// Default returns the settings used when nothing is configured.
func Default(configDir string) Config {
	var c Config
	c.Database = filepath.Join(configDir, constants.DefaultDBName)
	c.Timezone = "Local"
	c.CredentialsFile = filepath.Join(configDir, constants.DefaultCredentialsFile)
	c.Log.Level = "warn"
	c.Watch.Enabled = true
	c.Watch.Debounce = watch.DefaultDebounce
	c.Backup.Enabled = true
	return c
}

// DefaultDir returns the expanded default config directory.
func DefaultDir() string {
	return ExpandHome(constants.DefaultConfigDir)
}

// Load reads configDir/config.yaml (or path, when set), then configDir/.env,
// then the environment. A missing config file is not an error.
func Load(configDir, path string) (*Config, error) {
	configDir = ExpandHome(configDir)
	if path == "" {
		path = filepath.Join(configDir, constants.DefaultConfigFile)
	}
	path = ExpandHome(path)

	cfg := Default(configDir)
	k := koanf.New(".")

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "read config %s failed", path)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "stat config")
	}

	dotenv := filepath.Join(filepath.Dir(path), ".env")
	if _, err := os.Stat(dotenv); err == nil {
		if err := godotenv.Load(dotenv); err != nil {
			return nil, errors.Wrapf(err, "load %s failed", dotenv)
		}
	}

	existing := mergeKeys(knownKeys, k.Raw())
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: constants.EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.TrimPrefix(key, constants.EnvPrefix)
			return canonicalizeEnvKey(key, existing), value
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrap(err, "unmarshal config failed")
	}

	if !IsPostgres(cfg.Database) {
		cfg.Database = ExpandHome(cfg.Database)
	}
	cfg.CredentialsFile = ExpandHome(cfg.CredentialsFile)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database) == "" {
		return errors.New("database must not be empty")
	}
	if !utils.ValidateTimezone(c.Timezone) {
		return errors.Errorf("invalid timezone %q", c.Timezone)
	}
	if c.Watch.Debounce < 0 {
		return errors.Errorf("watch.debounce must not be negative, got %s", c.Watch.Debounce)
	}
	return nil
}

func (c *Config) Location() (*time.Location, error) {
	return utils.LoadLocation(c.Timezone)
}

// IsPostgres reports whether the configured database is PostgreSQL. The
// keyring only holds PostgreSQL connection strings.
func (c *Config) IsPostgres() bool {
	return c.Database == constants.KeyringDatabase || IsPostgres(c.Database)
}

func IsPostgres(database string) bool {
	return strings.HasPrefix(database, "postgres://") || strings.HasPrefix(database, "postgresql://") ||
		strings.Contains(database, "host=") || strings.Contains(database, "dbname=")
}

// Save writes c as YAML with owner-only permissions.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return errors.Wrap(err, "create config directory")
	}
	return errors.Wrap(os.WriteFile(path, data, 0600), "write config")
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func mergeKeys(base, overlay map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		if bm, ok := out[k].(map[string]any); ok {
			if om, ok := v.(map[string]any); ok {
				out[k] = mergeKeys(bm, om)
				continue
			}
		}
		out[k] = v
	}
	return out
}

// canonicalizeEnvKey maps WATCH_DEBOUNCE to watch.debounce, aligning each
// segment with the existing key tree. Adjacent segments may join to match
// a camelCase key, so CREDENTIALS_FILE becomes credentialsFile.
func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	var segments []string
	for _, s := range strings.Split(strings.ToLower(rawKey), "_") {
		if s != "" {
			segments = append(segments, s)
		}
	}

	canonical := make([]string, 0, len(segments))
	current := existing
	for i := 0; i < len(segments); {
		matched := false
		for j := len(segments); j > i; j-- {
			if key, next, ok := findExistingSegment(current, strings.Join(segments[i:j], "")); ok {
				canonical = append(canonical, key)
				current = next
				i = j
				matched = true
				break
			}
		}
		if !matched {
			canonical = append(canonical, segments[i])
			current = nil
			i++
		}
	}
	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (string, map[string]any, bool) {
	if len(current) == 0 {
		return "", nil, false
	}
	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}
		child, _ := value.(map[string]any)
		return key, child, true
	}
	return "", nil, false
}

func normalizeToken(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
