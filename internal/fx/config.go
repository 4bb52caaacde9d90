package fx

import (
	"log"
	"time"

	"Parking/config"
	"Parking/internal/logger"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		loadConfig,
		newLocation,
	),
	fx.Invoke(
		initLogger,
	),
)

// loadConfig reads .env files before envconfig so they feed the same lookup.
func loadConfig() (*config.Config, error) {
	loadEnvFiles()
	return config.Load()
}

func loadEnvFiles() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env in working directory: %v", err)
	}
	if err := godotenv.Load("../../.env"); err != nil {
		log.Printf("no ../../.env: %v", err)
	}
}

func newLocation(cfg *config.Config) (*time.Location, error) {
	return cfg.Location()
}

func initLogger(cfg *config.Config) {
	logger.Init(cfg)
}
