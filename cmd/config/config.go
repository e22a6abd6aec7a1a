package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "AUTOSUBMIT"
	FileName  = ".autosubmit"
)

type Configuration struct {
	Informatics Informatics
	Problem     string
	Source      string
	Language    int
	HTTP        HTTP
	Retry       Retry
	Telegram    Telegram
	Archive     Archive
	Log         Log
}

type Informatics struct {
	URL      string
	Username string
	Password string
}

type HTTP struct {
	Timeout       time.Duration
	SubmitTimeout time.Duration     `mapstructure:"submit_timeout"`
	UserAgent     string            `mapstructure:"user_agent"`
	Headers       map[string]string // keys are lowercased by viper
}

type Retry struct {
	Interval      time.Duration
	MaxAttempts   int           `mapstructure:"max_attempts"`
	MaxElapsed    time.Duration `mapstructure:"max_elapsed"`
	RejectedLogin bool          `mapstructure:"rejected_login"`
}

type Telegram struct {
	Token  string
	ChatId int64 `mapstructure:"chat_id"`
}

type Archive struct {
	Dir string
}

type Log struct {
	Level       string
	Development bool
}

// Defaults registers default values, every key must have one for environment variables to be decoded
func Defaults(v *viper.Viper) {
	v.SetDefault("informatics.url", "https://informatics.msk.ru")
	v.SetDefault("informatics.username", "")
	v.SetDefault("informatics.password", "")
	v.SetDefault("problem", "")
	v.SetDefault("source", "")
	v.SetDefault("language", 0)
	v.SetDefault("http.timeout", 10*time.Second)
	v.SetDefault("http.submit_timeout", time.Second)
	v.SetDefault("http.user_agent", "autosubmit/1.0")
	v.SetDefault("retry.interval", time.Second)
	v.SetDefault("retry.max_attempts", 0)
	v.SetDefault("retry.max_elapsed", time.Duration(0))
	v.SetDefault("retry.rejected_login", true)
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.chat_id", 0)
	v.SetDefault("archive.dir", "")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.development", false)
}

// Load reads configuration. Sources in increasing priority: defaults, config file, .env file, environment
// variables and flags already bound to v. Missing config and .env files are not an error unless the file is given
// explicitly.
func Load(v *viper.Viper, file string) (*Configuration, error) {
	Defaults(v)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("unable to load .env: %w", err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(home)
			v.AddConfigPath(filepath.Join(home, ".config"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var missing viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &missing) {
			return nil, fmt.Errorf("unable to read config: %w", err)
		}
	}

	conf := &Configuration{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return conf, nil
}
