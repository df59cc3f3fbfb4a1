package config

import (
	"errors"
	"github.com/ZilDuck/nft-marketplace/internal/log"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"io/fs"
	"math/big"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Env       string
	Debug     bool
	LogPath   string
	SentryDsn string
	DataDir   string

	Admin              string
	CollectionAddress  string
	MarketplaceAddress string
	MintPrice          string
	Name               string
	Symbol             string
	BaseUri            string

	ApiPort string
	Caller  string

	AmqpUri     string
	IpfsHosts   []string
	IpfsTimeout int

	Payout PayoutConfig
}

type PayoutConfig struct {
	Mode       string
	WebhookUrl string
	Retries    int
}

const (
	PayoutModeWallet  = "wallet"
	PayoutModeWebhook = "webhook"
)

var ipfsHosts = []string{
	"https://gateway.pinata.cloud",
	"https://cloudflare-ipfs.com",
	"https://gateway.ipfs.io",
}

func Init(name string) {
	err := godotenv.Load(".env")
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		zap.L().With(zap.Error(err)).Fatal("Unable to init config")
	}

	initLogger(name)
}

func initLogger(name string) {
	path := Get().LogPath
	if path != "" {
		path = strings.TrimSuffix(path, "/") + "/" + name + ".log"
	}

	log.NewLogger(path, Get().Debug, Get().SentryDsn)
}

func Get() *Config {
	return &Config{
		Env:                getString("ENV", "dev"),
		Debug:              getBool("DEBUG", false),
		LogPath:            getString("LOG_PATH", ""),
		SentryDsn:          getString("SENTRY_DSN", ""),
		DataDir:            getString("DATA_DIR", "./var/data"),
		Admin:              getString("ADMIN_ADDRESS", "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"),
		CollectionAddress:  getString("COLLECTION_ADDRESS", "0x5FbDB2315678afecb367f032d93F642f64180aa3"),
		MarketplaceAddress: getString("MARKETPLACE_ADDRESS", "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512"),
		MintPrice:          getString("MINT_PRICE", "0.01"),
		Name:               getString("COLLECTION_NAME", "Monster NFT"),
		Symbol:             getString("COLLECTION_SYMBOL", "MNFT"),
		BaseUri:            getString("BASE_URI", "ipfs://QmXztwDKYaBkyAqZj8LYby6aUfyAzSR4UkSnxpU4aqHnUU/"),
		ApiPort:            getString("API_PORT", "8080"),
		Caller:             getString("CALLER_ADDRESS", ""),
		AmqpUri:            getString("AMQP_URI", ""),
		IpfsHosts:          getSlice("IPFS_HOSTS", ipfsHosts, ","),
		IpfsTimeout:        getInt("IPFS_TIMEOUT", 10),
		Payout: PayoutConfig{
			Mode:       getString("PAYOUT_MODE", PayoutModeWallet),
			WebhookUrl: getString("PAYOUT_WEBHOOK_URL", ""),
			Retries:    getInt("PAYOUT_RETRIES", 3),
		},
	}
}

func getString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultValue
}

func getInt(key string, defaultValue int) int {
	valStr := getString(key, "")
	val, _, err := big.ParseFloat(valStr, 10, 0, big.ToNearestEven)
	if err != nil {
		return defaultValue
	}

	intVal, _ := val.Int64()
	return int(intVal)
}

func getBool(key string, defaultValue bool) bool {
	valStr := getString(key, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}

	return defaultValue
}

func getSlice(key string, defaultVal []string, sep string) []string {
	valStr := getString(key, "")
	if valStr == "" {
		return defaultVal
	}

	return strings.Split(valStr, sep)
}
