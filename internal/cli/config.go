package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	guacamole "github.com/guacops/go-guacamole"
)

// DefaultConfigFile is the default name of the config file
const DefaultConfigFile = "config.yaml"

// envPrefix is the prefix for environment variable overrides, e.g.
// GUACCTL_PASSWORD.
const envPrefix = "GUACCTL_"

// Config holds the gateway connection settings for guacctl. Values come
// from the YAML config file; GUACCTL_* environment variables override
// individual fields.
type Config struct {
	Hostname   string `yaml:"hostname" mapstructure:"hostname"`
	Port       int    `yaml:"port" mapstructure:"port"`
	Protocol   string `yaml:"protocol" mapstructure:"protocol"`
	Username   string `yaml:"username" mapstructure:"username"`
	Password   string `yaml:"password" mapstructure:"password"`
	Secret     string `yaml:"secret" mapstructure:"secret"`
	Datasource string `yaml:"datasource" mapstructure:"datasource"`
	BasePath   string `yaml:"base_path" mapstructure:"base_path"`
	Insecure   bool   `yaml:"insecure" mapstructure:"insecure"`
	LogLevel   string `yaml:"log_level" mapstructure:"log_level"`
}

// configFields lists the keys recognized in environment overrides.
var configFields = []string{
	"hostname", "port", "protocol", "username", "password",
	"secret", "datasource", "base_path", "insecure", "log_level",
}

var config *Config

// GetDefaultConfigPath returns the default path for the config file,
// under the OS-specific user config directory.
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get user config directory")
	}
	return filepath.Join(configDir, "guacctl", DefaultConfigFile), nil
}

// LoadConfig loads the configuration file and applies environment
// overrides. A missing file is not an error when the environment provides
// the required fields.
func LoadConfig(file string) error {
	// a local .env is picked up for the GUACCTL_* overrides
	_ = godotenv.Load()

	if file == "" {
		var err error
		file, err = GetDefaultConfigPath()
		if err != nil {
			return err
		}
	}

	c := Config{}
	yamlStr, err := os.ReadFile(file)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(yamlStr, &c); err != nil {
			return errors.Wrap(err, "unable to parse config file")
		}
	case os.IsNotExist(err):
		// fall through to environment-only configuration
	default:
		return errors.Wrap(err, "unable to read config file")
	}

	if err := applyEnvOverrides(&c); err != nil {
		return err
	}

	if c.Hostname == "" || c.Username == "" || c.Password == "" {
		return errors.New("hostname, username and password are required (config file or GUACCTL_* environment)")
	}

	config = &c
	return nil
}

// applyEnvOverrides merges GUACCTL_* environment variables into the config.
// Values are strings in the environment; mapstructure's weak typing converts
// port numbers and booleans.
func applyEnvOverrides(cfg *Config) error {
	overrides := map[string]any{}
	for _, field := range configFields {
		if v, ok := os.LookupEnv(envPrefix + strings.ToUpper(field)); ok {
			overrides[field] = v
		}
	}
	if len(overrides) == 0 {
		return nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           cfg,
	})
	if err != nil {
		return errors.Wrap(err, "failed to build config decoder")
	}
	if err := dec.Decode(overrides); err != nil {
		return errors.Wrap(err, "invalid GUACCTL_* environment value")
	}
	return nil
}

// GetConfig returns the current configuration
func GetConfig() *Config {
	return config
}

// Client authenticates against the configured gateway.
func (cfg *Config) Client() (*guacamole.Client, error) {
	return guacamole.New(guacamole.Options{
		Hostname:      cfg.Hostname,
		Port:          cfg.Port,
		Protocol:      cfg.Protocol,
		Username:      cfg.Username,
		Password:      cfg.Password,
		Secret:        cfg.Secret,
		Datasource:    cfg.Datasource,
		BasePath:      cfg.BasePath,
		SkipTLSVerify: cfg.Insecure,
		LogLevel:      cfg.LogLevel,
	})
}

// newClient loads the configuration if needed and authenticates.
func newClient() (*guacamole.Client, error) {
	if config == nil {
		if err := LoadConfig(configFile); err != nil {
			return nil, err
		}
	}
	return config.Client()
}
