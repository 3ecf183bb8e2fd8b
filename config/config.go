package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	defaultPath               = "."
	defaultMaxRequestBodySize = "100KB"
	defaultTokenTTL           = 24 * time.Hour
	defaultBcryptCost         = 10
	defaultPageSize           = 5
	defaultMaxPageSize        = 100
	defaultSendBuffer         = 64
	defaultMaxMessageSize     = 4096
	defaultWriteTimeout       = 10 * time.Second
	defaultPingInterval       = 30 * time.Second

	// StorageMemory keeps every repository in process memory.
	StorageMemory = "memory"
	// StoragePostgres persists repositories through GORM.
	StoragePostgres = "postgres"
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port               int    `json:"port" yaml:"port"`
		MaxRequestBodySize string `json:"maxRequestBodySize" yaml:"maxRequestBodySize"`
		Timeouts           struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	Storage struct {
		Driver string `json:"driver" yaml:"driver"`
	} `json:"storage" yaml:"storage"`

	Postgres *PostgresConfig `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	SecretKey struct {
		Access string `json:"access" yaml:"access"`
	} `json:"secretKey" yaml:"secretKey"`

	Auth *AuthConfig `json:"auth" yaml:"auth"`

	PasswordStrength *PasswordStrengthConfig `json:"passwordStrength" yaml:"passwordStrength"`

	Pagination *PaginationConfig `json:"pagination" yaml:"pagination"`

	// Relay configures the websocket notification relay
	Relay *RelayConfig `json:"relay" yaml:"relay"`
}

// PostgresConfig holds connection and pool settings for the postgres storage driver
type PostgresConfig struct {
	Host            string        `json:"host" yaml:"host"`
	Port            string        `json:"port" yaml:"port"`
	UserName        string        `json:"userName" yaml:"userName"`
	Password        string        `json:"password" yaml:"password"`
	DBName          string        `json:"dbName" yaml:"dbName"`
	SSLMode         string        `json:"sslMode" yaml:"sslMode"`
	TimeZone        string        `json:"timeZone" yaml:"timeZone"`
	MaxOpenConns    int           `json:"maxOpenConns" yaml:"maxOpenConns"`
	MaxIdleConns    int           `json:"maxIdleConns" yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `json:"connMaxLifetime" yaml:"connMaxLifetime"`
	AutoMigrate     bool          `json:"autoMigrate" yaml:"autoMigrate"`
}

// DSN renders the settings as a libpq keyword/value connection string.
func (p *PostgresConfig) DSN() string {
	parts := []string{
		"host=" + p.Host,
		"port=" + p.Port,
		"user=" + p.UserName,
		"password=" + p.Password,
		"dbname=" + p.DBName,
	}
	if p.SSLMode != "" {
		parts = append(parts, "sslmode="+p.SSLMode)
	}
	if p.TimeZone != "" {
		parts = append(parts, "TimeZone="+p.TimeZone)
	}

	return strings.Join(parts, " ")
}

// AuthConfig defines authentication-related configuration
type AuthConfig struct {
	BcryptCost int           `json:"bcryptCost" yaml:"bcryptCost"`
	TokenTTL   time.Duration `json:"tokenTTL" yaml:"tokenTTL"`
}

// PasswordStrengthConfig defines password strength requirements
type PasswordStrengthConfig struct {
	MinLength        int      `json:"minLength" yaml:"minLength"`
	MaxLength        int      `json:"maxLength" yaml:"maxLength"`
	RequireUppercase bool     `json:"requireUppercase" yaml:"requireUppercase"`
	RequireLowercase bool     `json:"requireLowercase" yaml:"requireLowercase"`
	RequireNumbers   bool     `json:"requireNumbers" yaml:"requireNumbers"`
	RequireSpecial   bool     `json:"requireSpecial" yaml:"requireSpecial"`
	ForbiddenWords   []string `json:"forbiddenWords" yaml:"forbiddenWords"`
}

// PaginationConfig bounds list views
type PaginationConfig struct {
	DefaultSize int `json:"defaultSize" yaml:"defaultSize"`
	MaxSize     int `json:"maxSize" yaml:"maxSize"`
}

// RelayConfig defines the websocket relay limits
type RelayConfig struct {
	RequireAuth    bool          `json:"requireAuth" yaml:"requireAuth"`
	SendBuffer     int           `json:"sendBuffer" yaml:"sendBuffer"`
	MaxMessageSize int64         `json:"maxMessageSize" yaml:"maxMessageSize"`
	WriteTimeout   time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
	PingInterval   time.Duration `json:"pingInterval" yaml:"pingInterval"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			searchPaths = append(searchPaths, filepath.Join(pwd, path))
		}
	}

	configFile, found := findConfigFile(searchPaths, currEnv+".yaml")
	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Env overrides. POSTGRES_SSLMODE lands on postgres.sslMode, not postgres.sslmode.
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			return canonicalizeEnvKey(k, existingConfigMap), v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func findConfigFile(searchPaths []string, name string) (string, bool) {
	for _, path := range searchPaths {
		candidate := filepath.Join(path, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}

	return "", false
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyDefaults fills every unset knob with its documented default.
func (c *Config) ApplyDefaults() {
	if strings.TrimSpace(c.HTTP.MaxRequestBodySize) == "" {
		c.HTTP.MaxRequestBodySize = defaultMaxRequestBodySize
	}

	if c.Storage.Driver == "" {
		c.Storage.Driver = StorageMemory
	}
	c.Storage.Driver = strings.ToLower(c.Storage.Driver)

	if c.Auth == nil {
		c.Auth = &AuthConfig{}
	}
	if c.Auth.BcryptCost == 0 {
		c.Auth.BcryptCost = defaultBcryptCost
	}
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = defaultTokenTTL
	}

	if c.PasswordStrength == nil {
		c.PasswordStrength = &PasswordStrengthConfig{}
	}
	if c.PasswordStrength.MinLength == 0 {
		c.PasswordStrength.MinLength = 6
	}
	if c.PasswordStrength.MaxLength == 0 {
		// bcrypt ignores everything past 72 bytes
		c.PasswordStrength.MaxLength = 72
	}

	if c.Pagination == nil {
		c.Pagination = &PaginationConfig{}
	}
	if c.Pagination.DefaultSize <= 0 {
		c.Pagination.DefaultSize = defaultPageSize
	}
	if c.Pagination.MaxSize <= 0 {
		c.Pagination.MaxSize = defaultMaxPageSize
	}

	if c.Relay == nil {
		c.Relay = &RelayConfig{}
	}
	if c.Relay.SendBuffer <= 0 {
		c.Relay.SendBuffer = defaultSendBuffer
	}
	if c.Relay.MaxMessageSize <= 0 {
		c.Relay.MaxMessageSize = defaultMaxMessageSize
	}
	if c.Relay.WriteTimeout <= 0 {
		c.Relay.WriteTimeout = defaultWriteTimeout
	}
	if c.Relay.PingInterval <= 0 {
		c.Relay.PingInterval = defaultPingInterval
	}
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.SecretKey.Access) == "" {
		return errors.New("secretKey.access must be provided")
	}

	switch c.Storage.Driver {
	case StorageMemory:
	case StoragePostgres:
		if c.Postgres == nil {
			return errors.New("postgres section is required when storage.driver is postgres")
		}
	default:
		return errors.Errorf("unknown storage driver: %s", c.Storage.Driver)
	}

	if c.PasswordStrength.MinLength > c.PasswordStrength.MaxLength {
		return errors.Errorf("passwordStrength.minLength (%d) exceeds maxLength (%d)",
			c.PasswordStrength.MinLength, c.PasswordStrength.MaxLength)
	}

	return nil
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
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
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}
