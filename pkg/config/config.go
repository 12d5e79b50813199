package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Logging  LoggingConfig
	Company  CompanyConfig
	Tax      TaxConfig
	Bank     BankConfig
	Invoice  NumberingConfig
	Quote    QuoteConfig
	Locale   LocaleConfig
}

type ServerConfig struct {
	HTTPPort    int           `mapstructure:"http_port"`
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	SSLMode      string `mapstructure:"ssl_mode"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	AutoMigrate  bool   `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

// CompanyConfig is the company identity printed on quotes and invoices.
type CompanyConfig struct {
	Name         string `mapstructure:"name"`
	LegalName    string `mapstructure:"legal_name"`
	AddressLine1 string `mapstructure:"address_line_1"`
	AddressLine2 string `mapstructure:"address_line_2"`
	PostalCode   string `mapstructure:"postal_code"`
	City         string `mapstructure:"city"`
	Country      string `mapstructure:"country"`
	Email        string `mapstructure:"email"`
	Phone        string `mapstructure:"phone"`
	Website      string `mapstructure:"website"`
}

// TaxConfig holds tax identifiers and rates as percentages (19.0 = 19%).
type TaxConfig struct {
	TaxNumber   string  `mapstructure:"tax_number"`
	VATID       string  `mapstructure:"vat_id"`
	DefaultRate float64 `mapstructure:"default_rate"`
	ReducedRate float64 `mapstructure:"reduced_rate"`
}

type BankConfig struct {
	Name          string `mapstructure:"name"`
	AccountHolder string `mapstructure:"account_holder"`
	IBAN          string `mapstructure:"iban"`
	BIC           string `mapstructure:"bic"`
}

// NumberingConfig controls document number generation, e.g. INV-2026-0001.
type NumberingConfig struct {
	NumberPrefix        string `mapstructure:"number_prefix"`
	NumberPadding       int    `mapstructure:"number_padding"`
	DefaultPaymentTerms int    `mapstructure:"default_payment_terms"`
	FooterText          string `mapstructure:"footer_text"`
}

type QuoteConfig struct {
	NumberPrefix        string `mapstructure:"number_prefix"`
	NumberPadding       int    `mapstructure:"number_padding"`
	DefaultValidityDays int    `mapstructure:"default_validity_days"`
	FooterText          string `mapstructure:"footer_text"`
}

type LocaleConfig struct {
	Locale         string `mapstructure:"locale"`
	Currency       string `mapstructure:"currency"`
	CurrencySymbol string `mapstructure:"currency_symbol"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/etc/clientdesk/")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("CRM")
	viper.AutomaticEnv()

	viper.SetDefault("server.http_port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.auto_migrate", true)
	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.address", "localhost:6379")
	viper.SetDefault("redis.pool_size", 100)
	viper.SetDefault("auth.token_ttl", "24h")
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("company.country", "Germany")
	viper.SetDefault("tax.default_rate", 19.0)
	viper.SetDefault("tax.reduced_rate", 7.0)
	viper.SetDefault("invoice.number_prefix", "INV")
	viper.SetDefault("invoice.number_padding", 4)
	viper.SetDefault("invoice.default_payment_terms", 30)
	viper.SetDefault("quote.number_prefix", "Q")
	viper.SetDefault("quote.number_padding", 4)
	viper.SetDefault("quote.default_validity_days", 30)
	viper.SetDefault("locale.locale", "de")
	viper.SetDefault("locale.currency", "EUR")
	viper.SetDefault("locale.currency_symbol", "€")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
