package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"oxygate/internal/callback"
	"oxygate/internal/connect"
	"oxygate/internal/db"
	"oxygate/internal/gateway"
	"oxygate/internal/store"
)

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

var version = "1.0.0"

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := config{
		addr:        getenv("ADDR", ":3030"),
		env:         getenv("ENV", "development"),
		dbPath:      getenv("DB_PATH", "database.sqlite"),
		signKey:     os.Getenv("SIGN_KEY"),
		businessURL: getenv("BUSINESS_URL", "https://business.paysure.global"),
		callbackURL: os.Getenv("CALLBACK_URL"),
	}

	logger, err := NewLogger()
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer logger.Sync()

	// A malformed signing key or unreachable storage is fatal at startup.
	signer, err := callback.NewSigner([]byte(cfg.signKey))
	if err != nil {
		logger.Fatalw("invalid SIGN_KEY", "error", err)
	}

	conn, err := db.New(cfg.dbPath)
	if err != nil {
		logger.Fatalw("database is not available", "path", cfg.dbPath, "error", err)
	}
	defer conn.Close()
	logger.Infow("database ready", "path", cfg.dbPath)

	storage := store.NewStorage(conn)

	gw := gateway.NewClient(gateway.Config{}, logger)

	app := &application{
		config:     cfg,
		logger:     logger,
		store:      storage,
		connect:    connect.NewService(gw, storage, cfg.callbackURL, logger),
		dispatcher: callback.NewDispatcher(signer, cfg.businessURL, logger),
	}

	mux := app.mount()

	logger.Fatal(app.run(mux))
}
