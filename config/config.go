package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
)

const (
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

type Config struct {
	APIBaseURL string
	APITimeout time.Duration

	Env      string
	LogLevel string

	Store       string
	SessionFile string
	Profile     string

	RedisAddr string
	RedisTTL  time.Duration

	KafkaBroker string
	KafkaTopic  string
	KafkaGroup  string
	InstanceID  string

	HTTPAddr    string
	CORSOrigins []string

	QRISPayload   string
	MerchantName  string
	BankName      string
	BankAccount   string
	AccountHolder string
}

// Load reads the storefront configuration from the environment.
func Load() Config {
	host, _ := os.Hostname()
	return Config{
		APIBaseURL: getEnv("STOREFRONT_API_URL", "http://localhost:8000"),
		APITimeout: getDuration("STOREFRONT_API_TIMEOUT", 15*time.Second),

		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		Store:       getEnv("STOREFRONT_STORE", StoreFile),
		SessionFile: getEnv("STOREFRONT_SESSION_FILE", defaultSessionFile()),
		Profile:     getEnv("STOREFRONT_PROFILE", "default"),

		RedisAddr: getEnv("REDIS_HOST", "localhost") + ":" + getEnv("REDIS_PORT", "6379"),
		RedisTTL:  getDuration("STOREFRONT_SESSION_TTL", 24*time.Hour),

		KafkaBroker: os.Getenv("KAFKA_BROKER"),
		KafkaTopic:  getEnv("STOREFRONT_SIGNAL_TOPIC", "storefront-signals"),
		KafkaGroup:  getEnv("STOREFRONT_SIGNAL_GROUP", "storefront-"+host),
		InstanceID:  getEnv("STOREFRONT_INSTANCE_ID", host+"-"+strconv.Itoa(os.Getpid())),

		HTTPAddr:    getEnv("STOREFRONT_HTTP_ADDR", "127.0.0.1:8090"),
		CORSOrigins: getList("STOREFRONT_CORS_ORIGINS"),

		QRISPayload:   os.Getenv("STOREFRONT_QRIS_PAYLOAD"),
		MerchantName:  getEnv("STOREFRONT_MERCHANT_NAME", "Storefront"),
		BankName:      getEnv("STOREFRONT_BANK_NAME", "BCA"),
		BankAccount:   os.Getenv("STOREFRONT_BANK_ACCOUNT"),
		AccountHolder: getEnv("STOREFRONT_BANK_HOLDER", "Storefront"),
	}
}

func (c Config) Validate() error {
	if !strings.HasPrefix(c.APIBaseURL, "http://") && !strings.HasPrefix(c.APIBaseURL, "https://") {
		return fmt.Errorf("api url %q must start with http:// or https://", c.APIBaseURL)
	}
	switch c.Store {
	case StoreFile, StoreRedis, StoreMemory:
	default:
		return fmt.Errorf("unknown session store %q", c.Store)
	}
	return nil
}

// SignalsEnabled reports whether cross-instance signals go through Kafka.
func (c Config) SignalsEnabled() bool {
	return c.KafkaBroker != ""
}

func InitRedis(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

func NewKafkaReader(broker, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{broker},
		Topic:   topic,
		GroupID: groupID,
	})
}

func NewKafkaWriter(broker, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(broker),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return defaultValue
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".storefront-session.json"
	}
	return filepath.Join(dir, "storefront", "session.json")
}
