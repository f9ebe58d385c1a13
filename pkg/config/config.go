package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Etcd        EtcdConfig        `mapstructure:"etcd"`
	Redis       RedisConfig       `mapstructure:"redis"`
	MySQL       MySQLConfig       `mapstructure:"mysql"`
	MongoDB     MongoDBConfig     `mapstructure:"mongodb"`
	Gateway     GatewayConfig     `mapstructure:"gateway"`
	Log         LogConfig         `mapstructure:"log"`
	MercadoPago MercadoPagoConfig `mapstructure:"mercadopago"`
	Email       EmailConfig       `mapstructure:"email"`
	WhatsApp    WhatsAppConfig    `mapstructure:"whatsapp"`
	Admin       AdminConfig       `mapstructure:"admin"`
	Shipping    ShippingConfig    `mapstructure:"shipping"`
}

type ServerConfig struct {
	Name string `mapstructure:"name"`
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

type EtcdConfig struct {
	Endpoints   []string      `mapstructure:"endpoints"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	Prefix      string        `mapstructure:"prefix"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	PoolSize int           `mapstructure:"pool_size"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type MySQLConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type MongoDBConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

type GatewayConfig struct {
	Port    int    `mapstructure:"port"`
	Host    string `mapstructure:"host"`
	Swagger bool   `mapstructure:"swagger"`
}

type LogConfig struct {
	Level       string   `mapstructure:"level"`
	Encoding    string   `mapstructure:"encoding"`
	OutputPaths []string `mapstructure:"output_paths"`
}

// MercadoPagoConfig holds the checkout preference settings. An empty
// AccessToken disables the provider path.
type MercadoPagoConfig struct {
	AccessToken     string        `mapstructure:"access_token"`
	BaseURL         string        `mapstructure:"base_url"`
	Currency        string        `mapstructure:"currency"`
	SuccessURL      string        `mapstructure:"success_url"`
	FailureURL      string        `mapstructure:"failure_url"`
	PendingURL      string        `mapstructure:"pending_url"`
	NotificationURL string        `mapstructure:"notification_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

type EmailConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	From        string        `mapstructure:"from"`
	AdminEmails []string      `mapstructure:"admin_emails"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type WhatsAppConfig struct {
	Phone string `mapstructure:"phone"`
}

type AdminConfig struct {
	Tokens []string `mapstructure:"tokens"`
}

// ShippingConfig lists the delivery zones and their flat fees.
type ShippingConfig struct {
	Zones []ShippingZone `mapstructure:"zones"`
}

type ShippingZone struct {
	Name string  `mapstructure:"name" json:"name"`
	Fee  float64 `mapstructure:"fee" json:"fee"`
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("FOODSHOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.name", "order-service")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 50052)
	v.SetDefault("gateway.host", "0.0.0.0")
	v.SetDefault("gateway.port", 8080)
	v.SetDefault("etcd.dial_timeout", 5)
	v.SetDefault("etcd.prefix", "/services/")
	v.SetDefault("redis.cache_ttl", 10*time.Minute)
	v.SetDefault("mysql.max_idle_conns", 5)
	v.SetDefault("mysql.max_open_conns", 25)
	v.SetDefault("mysql.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("mongodb.collection", "activity_log")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "json")
	v.SetDefault("mercadopago.base_url", "https://api.mercadopago.com")
	v.SetDefault("mercadopago.currency", "ARS")
	v.SetDefault("mercadopago.timeout", 15*time.Second)
	v.SetDefault("email.base_url", "https://api.resend.com")
	v.SetDefault("email.timeout", 10*time.Second)
}

func (c *MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.Username, c.Password, c.Host, c.Port, c.Database)
}

// Zone returns the zone matching city, compared case-insensitively.
func (c *ShippingConfig) Zone(city string) (ShippingZone, bool) {
	city = strings.TrimSpace(city)
	for _, z := range c.Zones {
		if strings.EqualFold(z.Name, city) {
			return z, true
		}
	}
	return ShippingZone{}, false
}
