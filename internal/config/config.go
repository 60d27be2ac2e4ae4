package config

import (
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Kiwoom  KiwoomConfig
	Session SessionConfig
	Bot     BotConfig
	Storage StorageConfig
	Runtime RuntimeConfig
}

type KiwoomConfig struct {
	RestURL   string
	WSURL     string
	AppKey    string
	Secret    string
	AccountNo string
}

type SessionConfig struct {
	StartHour    int
	StartMinute  int
	EndHour      int
	EndMinute    int
	PollInterval time.Duration
	Overnight    bool
}

type BotConfig struct {
	OrderTimeout     time.Duration
	LiquidationPause time.Duration
}

type StorageConfig struct {
	Path string
}

type RuntimeConfig struct {
	Log LogConfig
}

type LogConfig struct {
	Level      string
	Format     string
	File       string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

func Load() (*Config, error) {

	cfg := &Config{}
	viper.AddConfigPath("configs")
	viper.SetConfigName("config")
	viper.ReadInConfig()

	viper.SetDefault("kiwoom.rest_url", "https://mockapi.kiwoom.com")
	viper.SetDefault("kiwoom.ws_url", "wss://mockapi.kiwoom.com:10000")
	viper.SetDefault("session.start_hour", 9)
	viper.SetDefault("session.start_minute", 1)
	viper.SetDefault("session.end_hour", 15)
	viper.SetDefault("session.end_minute", 30)
	viper.SetDefault("session.poll_interval", "60s")
	viper.SetDefault("session.overnight", true)
	viper.SetDefault("bot.order_timeout", "5m")
	viper.SetDefault("bot.liquidation_pause", "500ms")
	viper.SetDefault("storage.path", "data/kiwoombot.db")
	viper.SetDefault("runtime.log.level", "info")

	cfg.Kiwoom = KiwoomConfig{
		RestURL:   viper.GetString("kiwoom.rest_url"),
		WSURL:     viper.GetString("kiwoom.ws_url"),
		AppKey:    envSub("kiwoom.app_key"),
		Secret:    envSub("kiwoom.secret"),
		AccountNo: envSub("kiwoom.account_no"),
	}

	cfg.Session = SessionConfig{
		StartHour:    viper.GetInt("session.start_hour"),
		StartMinute:  viper.GetInt("session.start_minute"),
		EndHour:      viper.GetInt("session.end_hour"),
		EndMinute:    viper.GetInt("session.end_minute"),
		PollInterval: viper.GetDuration("session.poll_interval"),
		Overnight:    viper.GetBool("session.overnight"),
	}

	cfg.Bot = BotConfig{
		OrderTimeout:     viper.GetDuration("bot.order_timeout"),
		LiquidationPause: viper.GetDuration("bot.liquidation_pause"),
	}

	cfg.Storage = StorageConfig{
		Path: viper.GetString("storage.path"),
	}

	cfg.Runtime = RuntimeConfig{
		Log: LogConfig{
			Level:      viper.GetString("runtime.log.level"),
			Format:     viper.GetString("runtime.log.format"),
			File:       viper.GetString("runtime.log.file"),
			MaxSize:    viper.GetInt("runtime.log.max_size"),
			MaxBackups: viper.GetInt("runtime.log.max_backups"),
			MaxAge:     viper.GetInt("runtime.log.max_age"),
			Compress:   viper.GetBool("runtime.log.compress"),
		},
	}

	return cfg, nil
}

func envSub(key string) string {
	val := viper.GetString(key)
	if val == "" {
		return ""
	}

	re := regexp.MustCompile(`\$\{(\w+)\}`)
	return re.ReplaceAllStringFunc(val, func(match string) string {
		envKey := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		return os.Getenv(envKey)
	})
}
