package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"goflare.io/ember"
	emberConfig "goflare.io/ember/config"
	"goflare.io/ignite"
)

const (
	DefaultPort = "3000"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Provider   ProviderConfig   `mapstructure:"provider"`
	SumUp      SumUpConfig      `mapstructure:"sumup"`
	Stripe     StripeConfig     `mapstructure:"stripe"`
	Checkout   CheckoutConfig   `mapstructure:"checkout"`
	Registry   RegistryConfig   `mapstructure:"registry"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Dispatcher DispatcherConfig `mapstructure:"dispatcher"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	// BaseURL is the public URL of this service, used to build callback and
	// outcome page links.
	BaseURL string `mapstructure:"base_url"`
}

type ProviderConfig struct {
	Name string `mapstructure:"name"`
}

type SumUpConfig struct {
	APIKey        string `mapstructure:"api_key"`
	ClientID      string `mapstructure:"client_id"`
	ClientSecret  string `mapstructure:"client_secret"`
	MerchantCode  string `mapstructure:"merchant_code"`
	WebhookSecret string `mapstructure:"webhook_secret"`
	APIURL        string `mapstructure:"api_url"`
}

type StripeConfig struct {
	SecretKey     string `mapstructure:"secret_key"`
	WebhookSecret string `mapstructure:"webhook_secret"`
	APIURL        string `mapstructure:"api_url"`
}

type CheckoutConfig struct {
	Mode            string `mapstructure:"mode"`
	DefaultCurrency string `mapstructure:"default_currency"`
}

type RegistryConfig struct {
	Backend string        `mapstructure:"backend"`
	TTL     time.Duration `mapstructure:"ttl"`
	Size    int           `mapstructure:"size"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DispatcherConfig struct {
	Workers   int `mapstructure:"workers"`
	QueueSize int `mapstructure:"queue_size"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// environment variables recognised besides the nested SECTION_KEY form
var envBindings = map[string]string{
	"server.port":               "PORT",
	"server.base_url":           "BASE_URL",
	"provider.name":             "PAYMENT_PROVIDER",
	"sumup.api_key":             "SUMUP_API_KEY",
	"sumup.client_id":           "SUMUP_CLIENT_ID",
	"sumup.client_secret":       "SUMUP_CLIENT_SECRET",
	"sumup.merchant_code":       "SUMUP_MERCHANT_CODE",
	"sumup.webhook_secret":      "SUMUP_WEBHOOK_SECRET",
	"sumup.api_url":             "SUMUP_API_URL",
	"stripe.secret_key":         "STRIPE_SECRET_KEY",
	"stripe.webhook_secret":     "STRIPE_WEBHOOK_SECRET",
	"stripe.api_url":            "STRIPE_API_URL",
	"checkout.mode":             "CHECKOUT_MODE",
	"checkout.default_currency": "CHECKOUT_DEFAULT_CURRENCY",
	"registry.backend":          "REGISTRY_BACKEND",
	"registry.ttl":              "REGISTRY_TTL",
	"registry.size":             "REGISTRY_SIZE",
	"redis.addr":                "REDIS_ADDR",
	"redis.password":            "REDIS_PASSWORD",
	"redis.db":                  "REDIS_DB",
	"dispatcher.workers":        "DISPATCHER_WORKERS",
	"dispatcher.queue_size":     "DISPATCHER_QUEUE_SIZE",
	"log.level":                 "LOG_LEVEL",
	"log.development":           "LOG_DEVELOPMENT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("provider.name", "sumup")
	v.SetDefault("sumup.api_url", "https://api.sumup.com")
	v.SetDefault("checkout.mode", "page")
	v.SetDefault("registry.backend", "memory")
	v.SetDefault("registry.ttl", 24*time.Hour)
	v.SetDefault("registry.size", 10000)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("dispatcher.workers", 4)
	v.SetDefault("dispatcher.queue_size", 256)
	v.SetDefault("log.level", "info")
}

// Load reads configuration from defaults, an optional YAML file and the
// environment, in increasing order of precedence. A missing file is not an
// error when path is empty.
func Load(path string) (*Config, error) {

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, name := range envBindings {
		if err := v.BindEnv(key, name); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.Server.BaseURL = strings.TrimRight(config.Server.BaseURL, "/")
	config.Checkout.DefaultCurrency = strings.ToUpper(config.Checkout.DefaultCurrency)

	return &config, nil
}

// Path is the optional YAML configuration file given on the command line.
type Path string

func ProvideApplicationConfig(path Path) (*Config, error) {
	return Load(string(path))
}

// PayeeCode is the merchant code checkouts are paid to. The client id is
// used when no explicit merchant code is configured.
func (c *Config) PayeeCode() string {
	if c.SumUp.MerchantCode != "" {
		return c.SumUp.MerchantCode
	}
	return c.SumUp.ClientID
}

func ProvideRedis(appConfig *Config) (*redis.Client, error) {

	client := redis.NewClient(&redis.Options{
		Addr:     appConfig.Redis.Addr,
		Password: appConfig.Redis.Password,
		DB:       appConfig.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", appConfig.Redis.Addr, err)
	}

	return client, nil
}

// ProvideEmber builds a redis-only ember cache. The local tier stays off so
// every instance reads the same entries, and a missing key does not count
// against the per-key circuit breaker.
func ProvideEmber(appConfig *Config, conn *redis.Client, logger *zap.Logger) (*ember.MultiCache, error) {
	if conn == nil {
		return nil, errors.New("ember requires a redis connection")
	}

	config := emberConfig.NewConfig()
	config.EnableLocalCache = false
	config.CacheBehaviorConfig.EnablePrefetch = false
	config.CacheBehaviorConfig.EnableAdaptiveTTL = false
	if appConfig.Registry.TTL > 0 {
		config.DefaultExpiration = appConfig.Registry.TTL
	}
	config.ResilienceConfig.KeyCircuitBreaker.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, redis.Nil)
	}
	config.Logger = logger

	cache, err := ember.NewMultiCache(context.Background(), &config, conn)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}
	return cache, nil
}

func ProvideIgnite() ignite.Manager {
	return ignite.NewManager()
}

func NewLogger(appConfig *Config) (*zap.Logger, error) {

	zapConfig := zap.NewProductionConfig()
	if appConfig.Log.Development {
		zapConfig = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(appConfig.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", appConfig.Log.Level, err)
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)

	return zapConfig.Build()
}
