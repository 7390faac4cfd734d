package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/rileyhilliard/b2gmon/internal/errors"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = ".b2gmon.yaml"
	// GlobalConfigDir is the directory for global config.
	GlobalConfigDir = ".config/b2gmon"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
	// EnvPrefix prefixes environment overrides (B2GMON_INTERVAL, B2GMON_SSH_HOST).
	EnvPrefix = "B2GMON"
)

// Load reads config from the specified path. Environment overrides apply
// on top of the file.
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Run 'b2gmon init' to create a config file, or specify one with --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}

	return parseConfig(v, path)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .b2gmon.yaml in current directory
// 3. .b2gmon.yaml in parent directories (stops at git root or home)
// 4. ~/.config/b2gmon/config.yaml (global defaults)
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	localConfig := filepath.Join(cwd, ConfigFileName)
	if _, err := os.Stat(localConfig); err == nil {
		return localConfig, nil
	}

	home, _ := os.UserHomeDir()
	dir := cwd
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		if home != "" && parent == home {
			break
		}
		dir = parent

		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			break
		}
	}

	if home != "" {
		globalConfig := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
		if _, err := os.Stat(globalConfig); err == nil {
			return globalConfig, nil
		}
	}

	return "", nil
}

// LoadOrDefault finds and loads the config, or returns defaults (plus
// environment overrides) when there is none. The returned path is empty
// in that case.
func LoadOrDefault(explicit string) (*Config, string, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}

	if path == "" {
		cfg, err := parseConfig(newViper(), "environment")
		return cfg, "", err
	}

	cfg, err := Load(path)
	return cfg, path, err
}

// newViper creates a viper instance with defaults and environment
// overrides registered for every key.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("version", CurrentConfigVersion)
	v.SetDefault("apps", []string{})
	v.SetDefault("interval", FormatDuration(DefaultInterval))
	v.SetDefault("duration", FormatDuration(DefaultDuration))
	v.SetDefault("output", DefaultOutput)
	v.SetDefault("serial", "")
	v.SetDefault("adb", DefaultConfig().ADB)
	v.SetDefault("display", DisplayConsole)
	v.SetDefault("log_file", "")
	v.SetDefault("ssh.host", "")
	v.SetDefault("ssh.timeout", FormatDuration(DefaultSSHTimeout))
	v.SetDefault("ssh.insecure_ignore_host_key", false)
	return v
}

// parseConfig converts viper config to our Config struct with defaults merged in.
func parseConfig(v *viper.Viper, source string) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg, viper.DecodeHook(decodeHook())); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+source)
	}

	cfg.Display = strings.ToLower(strings.TrimSpace(cfg.Display))
	cfg.Apps = cleanApps(cfg.Apps)
	return cfg, nil
}

// cleanApps trims names and drops empty entries.
func cleanApps(apps []string) []string {
	out := make([]string, 0, len(apps))
	for _, a := range apps {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}
