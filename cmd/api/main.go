package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"rentora/internal/flow"
	"rentora/internal/gateway"
	"rentora/internal/marketplace"
	"rentora/internal/media"
	"rentora/internal/ratelimiter"
)

// LoadRateLimiterConfig retrieves rate limiter settings from environment variables
func LoadRateLimiterConfig() ratelimiter.Config {
	// Default values
	defaultRequests := 200
	defaultEnabled := false

	// Retrieve request count with error handling
	requestsPerTimeFrame := defaultRequests
	if val, exists := os.LookupEnv("RATELIMITER_REQUESTS_COUNT"); exists {
		if parsedVal, err := strconv.Atoi(val); err == nil {
			requestsPerTimeFrame = parsedVal
		} else {
			fmt.Println("Invalid RATELIMITER_REQUESTS_COUNT, defaulting to", defaultRequests)
		}
	}

	// Retrieve enabled flag with error handling
	enabled := defaultEnabled
	if val, exists := os.LookupEnv("RATE_LIMITER_ENABLED"); exists {
		if parsedVal, err := strconv.ParseBool(val); err == nil {
			enabled = parsedVal
		} else {
			fmt.Println("Invalid RATE_LIMITER_ENABLED, defaulting to", defaultEnabled)
		}
	}

	return ratelimiter.Config{
		RequestsPerTimeFrame: requestsPerTimeFrame,
		TimeFrame:            5 * time.Second,
		Enabled:              enabled,
	}
}

// NewLogger creates a new zap logger with color.
func NewLogger() (*zap.SugaredLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)

	level := zapcore.InfoLevel

	core := zapcore.NewCore(consoleEncoder, zapcore.NewMultiWriteSyncer(zapcore.AddSync(os.Stdout)), level)

	logger := zap.New(core)

	return logger.Sugar(), nil
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	val, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		fmt.Printf("Invalid %s, defaulting to %s\n", key, fallback)
		return fallback
	}
	return parsed
}

var version = "0.3.0"

//	@title			Rentora Flow API
//	@description	Checkout and property-listing flows for the Rentora rental marketplace.

//	@BasePath					/v1
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						Authorization
//	@description

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Fatalf("Error loading .env file: %v", err)
	}

	redisDB := 0
	if raw := os.Getenv("REDIS_DB"); raw != "" {
		redisDB, err = strconv.Atoi(raw)
		if err != nil {
			log.Fatalf("Invalid value for REDIS_DB: %v", err)
		}
	}

	cfg := config{
		addr:        os.Getenv("ADDR"),
		env:         os.Getenv("ENV"),
		frontendURL: os.Getenv("FRONTEND_URL"),
		marketplace: marketplaceConfig{
			baseURL: os.Getenv("MARKETPLACE_URL"),
			timeout: durationEnv("MARKETPLACE_TIMEOUT", 30*time.Second),
		},
		auth: authConfig{
			basic: basicConfig{
				user: os.Getenv("AUTH_BASIC_USER"),
				pass: os.Getenv("AUTH_BASIC_PASS"),
			},
		},
		redis: redisConfig{
			addr:     os.Getenv("REDIS_ADDR"),
			password: os.Getenv("REDIS_PASSWORD"),
			db:       redisDB,
		},
		media: mediaConfig{
			spoolDir:      os.Getenv("MEDIA_SPOOL_DIR"),
			sweepInterval: durationEnv("MEDIA_SWEEP_INTERVAL", 15*time.Minute),
		},
		sessionTTL:  durationEnv("SESSION_TTL", 2*time.Hour),
		ratelimiter: LoadRateLimiterConfig(),
	}
	if cfg.media.spoolDir == "" {
		cfg.media.spoolDir = os.TempDir() + "/rentora-spool"
	}

	logger, err := NewLogger()
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Sync()

	redisClient, err := flow.NewRedisClient(cfg.redis.addr, cfg.redis.password, cfg.redis.db)
	if err != nil {
		logger.Fatalf("Error connecting to Redis: %v", err)
	}
	defer redisClient.Close()

	spool, err := media.NewSpool(cfg.media.spoolDir)
	if err != nil {
		logger.Fatalf("Error creating media spool: %v", err)
	}

	refs, err := gateway.NewReferenceGenerator(
		os.Getenv("PAYMENT_REFERENCE_SECRET"),
		os.Getenv("PAYMENT_REFERENCE_SALT"),
	)
	if err != nil {
		logger.Fatalf("Error building reference generator: %v", err)
	}

	gateways := gateway.NewManager()
	gateways.Register("bank-transfer", "Bank Transfer", true, gateway.NewBankTransferAdapter(
		os.Getenv("BANK_TRANSFER_BANK"),
		os.Getenv("BANK_TRANSFER_ACCOUNT_NAME"),
		os.Getenv("BANK_TRANSFER_ACCOUNT_NUMBER"),
	))

	paystackActive := true
	if raw := os.Getenv("PAYSTACK_ENABLED"); raw != "" {
		paystackActive, err = strconv.ParseBool(raw)
		if err != nil {
			logger.Fatalf("Invalid value for PAYSTACK_ENABLED: %v", err)
		}
	}
	gateways.Register("paystack", "Paystack", paystackActive, gateway.NewPaystackAdapter(
		os.Getenv("PAYSTACK_SECRET_KEY"),
		os.Getenv("PAYSTACK_CALLBACK_URL"),
		"",
	))

	app := &application{
		config:      cfg,
		logger:      logger,
		flows:       flow.NewRedisStore(redisClient),
		market:      marketplace.NewClient(cfg.marketplace.baseURL, cfg.marketplace.timeout),
		gateways:    gateways,
		spool:       spool,
		refs:        refs,
		ratelimiter: ratelimiter.NewFixedWindowLimiter(cfg.ratelimiter.RequestsPerTimeFrame, cfg.ratelimiter.TimeFrame),
	}

	app.sweepSpoolEvery(cfg.media.sweepInterval)

	mux := app.mount()
	logger.Fatal(app.run(mux))
}
