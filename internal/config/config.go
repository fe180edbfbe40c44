package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Shopify   ShopifyConfig
	Linnworks LinnworksConfig
	GoPuff    GoPuffConfig
	Cache     CacheConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type ShopifyConfig struct {
	StoreDomain string
	AccessToken string
	APIVersion  string
}

type LinnworksConfig struct {
	AppID        string
	AppSecret    string
	InstallToken string
	AuthURL      string
}

type GoPuffConfig struct {
	SpreadsheetID   string
	ReadRange       string
	CredentialsJSON string
}

type CacheConfig struct {
	OrderTTLSeconds  int
	RetailTTLSeconds int
	CostTTLSeconds   int
	FeedTTLSeconds   int
	RefreshHour      int
	ViewCacheEnabled bool
	RedisURL         string
	RedisHost        string
	RedisPort        string
	RedisPassword    string
	RedisDB          int
	ViewTTLSeconds   int
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 30)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 120)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("SHOPIFY_API_VERSION", "2024-07")
		viper.SetDefault("LINNWORKS_AUTH_URL", "https://api.linnworks.net")
		viper.SetDefault("GOPUFF_SHEET_RANGE", "Raw Data!A:Z")
		viper.SetDefault("CACHE_ORDER_TTL_SECONDS", 300)
		viper.SetDefault("CACHE_RETAIL_TTL_SECONDS", 600)
		viper.SetDefault("CACHE_COST_TTL_SECONDS", 3600)
		viper.SetDefault("CACHE_FEED_TTL_SECONDS", 600)
		viper.SetDefault("CACHE_REFRESH_HOUR", 8)
		viper.SetDefault("CACHE_VIEW_ENABLED", false)
		viper.SetDefault("CACHE_VIEW_TTL_SECONDS", 120)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)

		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Shopify: ShopifyConfig{
				StoreDomain: viper.GetString("SHOPIFY_STORE_DOMAIN"),
				AccessToken: viper.GetString("SHOPIFY_ACCESS_TOKEN"),
				APIVersion:  viper.GetString("SHOPIFY_API_VERSION"),
			},
			Linnworks: LinnworksConfig{
				AppID:        viper.GetString("LINNWORKS_APP_ID"),
				AppSecret:    viper.GetString("LINNWORKS_APP_SECRET"),
				InstallToken: viper.GetString("LINNWORKS_INSTALL_TOKEN"),
				AuthURL:      viper.GetString("LINNWORKS_AUTH_URL"),
			},
			GoPuff: GoPuffConfig{
				SpreadsheetID:   viper.GetString("GOPUFF_SHEET_ID"),
				ReadRange:       viper.GetString("GOPUFF_SHEET_RANGE"),
				CredentialsJSON: viper.GetString("GOOGLE_CREDENTIALS_JSON"),
			},
			Cache: CacheConfig{
				OrderTTLSeconds:  viper.GetInt("CACHE_ORDER_TTL_SECONDS"),
				RetailTTLSeconds: viper.GetInt("CACHE_RETAIL_TTL_SECONDS"),
				CostTTLSeconds:   viper.GetInt("CACHE_COST_TTL_SECONDS"),
				FeedTTLSeconds:   viper.GetInt("CACHE_FEED_TTL_SECONDS"),
				RefreshHour:      viper.GetInt("CACHE_REFRESH_HOUR"),
				ViewCacheEnabled: viper.GetBool("CACHE_VIEW_ENABLED"),
				RedisURL:         viper.GetString("REDIS_URL"),
				RedisHost:        viper.GetString("REDIS_HOST"),
				RedisPort:        viper.GetString("REDIS_PORT"),
				RedisPassword:    viper.GetString("REDIS_PASSWORD"),
				RedisDB:          viper.GetInt("REDIS_DB"),
				ViewTTLSeconds:   viper.GetInt("CACHE_VIEW_TTL_SECONDS"),
			},
		}
	})

	return instance
}
