package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"github.com/auditry/auditry-go/common/env"
	"github.com/auditry/auditry-go/common/logger"
)

const (
	fileFormat   = ".yaml"     // File format of the config files
	relativePath = "./config"  // Default relative path for config files (base path)
	envVarPrefix = "env://"    // Prefix for environment variable placeholders
)

// YamlReadConfig holds the configuration paths (relative and absolute).
type YamlReadConfig struct {
	RelativePath string // Path relative to the current directory
	AbsolutePath string // Absolute path if provided
}

// ReadConfigOption is a function signature used to set configuration options.
type ReadConfigOption func(*YamlReadConfig)

// WithRelativePath sets a relative path for the config file.
func WithRelativePath(path string) ReadConfigOption {
	return func(config *YamlReadConfig) {
		config.RelativePath = path
	}
}

// WithAbsolutePath sets an absolute path for the config file.
func WithAbsolutePath(path string) ReadConfigOption {
	return func(config *YamlReadConfig) {
		config.AbsolutePath = path
	}
}

// LoadConfig loads the YAML configuration file based on the environment and provided options.
// Config files are named after the environment (e.g. development.yaml) and values prefixed
// with "env://" are substituted from environment variables.
func LoadConfig(conf interface{}, log *logger.Logger, options ...ReadConfigOption) error {
	// Default path setup
	config := &YamlReadConfig{RelativePath: relativePath}

	// Apply any configuration options provided
	for _, option := range options {
		option(config)
	}

	// Determine whether to use the relative or absolute path for the config file
	pathToConfigDir := config.RelativePath
	if config.AbsolutePath != "" {
		pathToConfigDir = config.AbsolutePath
	}

	// Get the current environment (like 'development', 'production')
	currentEnv, err := env.GetApplicationEnv()
	if err != nil {
		return errors.Wrap(err, "invalid environment")
	}

	// Construct the file path using the environment
	filePath := fmt.Sprintf("%s/%s%s", pathToConfigDir, currentEnv, fileFormat)
	log.Info("Reading config file", logger.String("path", filePath))

	// Set up Viper to read the config file
	v := viper.New()
	v.SetConfigFile(filePath)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv() // Automatically map environment variables

	// Read the configuration file
	if err := v.ReadInConfig(); err != nil {
		return errors.Wrap(err, "failed to read configuration file")
	}

	// Replace any "env://VAR" placeholders with actual values
	for _, key := range v.AllKeys() {
		setEnvVariableFromString(v, key, v.Get(key), log)
	}

	// Unmarshal the config values into the provided struct
	if err := v.Unmarshal(conf); err != nil {
		return errors.Wrap(err, "failed to unmarshal configuration")
	}

	return nil
}

func setEnvVariableFromString(v *viper.Viper, key string, value interface{}, log *logger.Logger) {
	str, ok := value.(string)
	if !ok || !strings.HasPrefix(str, envVarPrefix) {
		return
	}

	// Extract the environment variable name (everything after "env://")
	envVar := str[len(envVarPrefix):]

	envValue, exists := os.LookupEnv(envVar)
	if exists {
		v.Set(key, envValue)
		log.Info("set value from environment variable", logger.String("variableName", envVar))
	} else {
		v.Set(key, "") // Set to empty string if env var is missing
		log.Warn("environment variable not found", logger.String("variableName", envVar))
	}
}
