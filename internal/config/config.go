package config

import (
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ZilDuck/nft-marketplace/internal/log"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	Env     string
	Debug   bool
	ApiPort string

	Market MarketConfig
	Chain  ChainConfig
}

type MarketConfig struct {
	// Account the marketplace operates as; receives the protocol fee.
	Account string

	SupportedCurrencies []string
	BidHistoryLength    int
	StoragePerSale      uint64
	MaxPayoutEntries    int

	FeeDenominator  uint64
	ProtocolFee     uint64
	MaxTotalOrigins uint64

	ExtensionDuration  time.Duration
	MaxAuctionDuration time.Duration
}

type ChainConfig struct {
	Url     string
	Debug   bool
	Timeout int
	Retries int
}

func Init(logName string) {
	err := godotenv.Load(".env")
	if err != nil {
		zap.L().With(zap.Error(err)).Warn("Unable to load .env")
	}

	initLogger(logName)
}

func initLogger(logName string) {
	log.NewLogger(getString("LOG_PATH", "./var/"+logName+".log"), Get().Debug)
}

func Get() *Config {
	return &Config{
		Env:     getString("ENV", ""),
		Debug:   getBool("DEBUG", false),
		ApiPort: getString("API_PORT", "8080"),
		Market: MarketConfig{
			Account:             getString("MARKET_ACCOUNT", "marketplace"),
			SupportedCurrencies: getSlice("SUPPORTED_CURRENCIES", []string{"zil"}, ","),
			BidHistoryLength:    getInt("BID_HISTORY_LENGTH", 5),
			StoragePerSale:      uint64(getInt("STORAGE_PER_SALE", 10000)),
			MaxPayoutEntries:    getInt("MAX_PAYOUT_ENTRIES", 10),
			FeeDenominator:      uint64(getInt("FEE_DENOMINATOR", 10000)),
			ProtocolFee:         uint64(getInt("PROTOCOL_FEE", 300)),
			MaxTotalOrigins:     uint64(getInt("MAX_TOTAL_ORIGINS", 4700)),
			ExtensionDuration:   getDuration("EXTENSION_DURATION", 15*time.Minute),
			MaxAuctionDuration:  getDuration("MAX_AUCTION_DURATION", 1000*24*time.Hour),
		},
		Chain: ChainConfig{
			Url:     getString("CHAIN_URL", ""),
			Timeout: getInt("CHAIN_TIMEOUT", 30),
			Retries: getInt("CHAIN_RETRIES", 3),
			Debug:   getBool("CHAIN_DEBUG", false),
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

func getDuration(key string, defaultValue time.Duration) time.Duration {
	valStr := getString(key, "")
	if val, err := time.ParseDuration(valStr); err == nil {
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
