package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/kstonekuan/splatter-mcp-app/internal/utils/pathutil"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	FilesystemLocal = "local"
	FilesystemS3    = "s3"
)

const envPrefix = "SHARP"

type Config struct {
	Port        int    `mapstructure:"port"`
	Host        string `mapstructure:"host"`
	Environment string `mapstructure:"environment"`

	SharpHome string `mapstructure:"sharp_home"`
	TempDir   string `mapstructure:"temp_dir"`
	AssetsDir string `mapstructure:"assets_dir"`
	CacheDir  string `mapstructure:"cache_dir"`

	// Adapter-side settings. EndpointUrl points at a remote prediction
	// deployment; when empty, AllowMockInference decides whether requests
	// are served with a placeholder artifact instead.
	EndpointUrl        string  `mapstructure:"endpoint_url"`
	TimeoutSeconds     float64 `mapstructure:"timeout_seconds"`
	AllowMockInference string  `mapstructure:"allow_mock_inference"`

	// Engine-side settings.
	SharpBinary        string `mapstructure:"sharp_binary"`
	CheckpointUrl      string `mapstructure:"checkpoint_url"`
	CheckpointFilename string `mapstructure:"checkpoint_filename"`
	TierWorkers        int    `mapstructure:"tier_workers"`

	FilesystemType string    `mapstructure:"filesystem_type"`
	S3             *S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Folder      string `mapstructure:"folder"`
	Region      string `mapstructure:"region_name"`
	Bucket      string `mapstructure:"bucket_name"`
	AccessKey   string `mapstructure:"access_key"`
	SecretKey   string `mapstructure:"secret_key"`
	PublicUrl   string `mapstructure:"public_url"`
	EndpointUrl string `mapstructure:"endpoint_url"`
}

var config *Config

// LoadEnvAndConfigFiles resolves the sharp home directory, loads the .env
// file if one exists, and reads the optional config.yaml before
// unmarshalling everything into the package-level Config.
func LoadEnvAndConfigFiles() error {
	sharpHome, err := getSharpHome()
	if err != nil {
		return err
	}

	viper.Set("sharp_home", sharpHome)
	setDerivedDir("temp_dir", sharpHome, "temp")
	setDerivedDir("assets_dir", sharpHome, "assets")
	setDerivedDir("cache_dir", sharpHome, "models")

	envFile := viper.GetString("env_file")
	if envFile == "" {
		envFile = filepath.Join(sharpHome, ".env")
	}
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("failed to load env file: %w", err)
		}
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`, `-`, `_`))
	viper.AutomaticEnv()

	configFile := viper.GetString("config_file")
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
		viper.AddConfigPath(sharpHome)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingConfigFile(err) {
			return fmt.Errorf("error reading config: %w", err)
		}
	}

	config = &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshalling config: %w", err)
	}

	return nil
}

func GetConfig() *Config {
	return config
}

func MustGetConfig() *Config {
	if config == nil {
		panic("config not loaded")
	}

	return config
}

// Only a genuinely absent file is tolerated; permission or I/O errors on an
// explicitly requested config file must surface.
func isMissingConfigFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// Returns the sharp home directory path, from the first of:
// 1. The `sharp_home` flag from viper.
// 2. The `SHARP_HOME` environment variable.
// 3. The default sharp home directory.
func getSharpHome() (string, error) {
	sharpHome := viper.GetString("sharp_home")
	if sharpHome == "" {
		sharpHome = os.Getenv("SHARP_HOME")
		if sharpHome == "" {
			sharpHome = DefaultSharpHome
		}
	}

	if sharpHome == "" {
		return "", ErrSharpHomeNotSet
	}

	sharpHome, err := pathutil.ExpandPath(sharpHome)
	if err != nil {
		return "", ErrSharpHomeExpandFailed
	}

	return sharpHome, nil
}

func setDerivedDir(key, sharpHome, subdir string) {
	dir := viper.GetString(key)
	if dir == "" {
		dir = filepath.Join(sharpHome, subdir)
	}

	viper.Set(key, dir)
}
