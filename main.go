package main

import (
	"easytavern/db"
	"easytavern/ui"
	"easytavern/utils"
	"flag"
	"fmt"
	"os"

	"github.com/caarlos0/env/v9"
)

var (
	version = "0.1.0"
)

// envOverrides are environment variables that take precedence over the
// config file, mainly for portable installs and tests
type envOverrides struct {
	ConfigPath string `env:"EASYTAVERN_CONFIG"`
	DataDir    string `env:"EASYTAVERN_DATA_DIR"`
	DBPath     string `env:"EASYTAVERN_DB_PATH"`
}

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("EasyTavern v%s\n", version)
		os.Exit(0)
	}

	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		fmt.Printf("Failed to parse environment: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := utils.NewLogger(utils.GetLogPath())
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	logger.Info("Starting EasyTavern v%s", version)

	// Resolve configuration path: flag wins, then environment, then default
	actualConfigPath := *configPath
	if actualConfigPath == "" {
		actualConfigPath = overrides.ConfigPath
	}
	if actualConfigPath == "" {
		actualConfigPath, err = utils.EnsureDefaultConfig()
		if err != nil {
			logger.Error("Failed to create default config: %v", err)
			os.Exit(1)
		}
	}
	logger.Info("Using config file: %s", actualConfigPath)

	config, err := utils.LoadConfig(actualConfigPath)
	if err != nil {
		logger.Error("Failed to load config: %v", err)
		os.Exit(1)
	}

	if overrides.DataDir != "" {
		config.Data.DataDir = overrides.DataDir
	}
	if overrides.DBPath != "" {
		config.Data.DBPath = overrides.DBPath
	}

	// Initialize database
	database, err := db.New(config.Data.DBPath)
	if err != nil {
		logger.Error("Failed to initialize database: %v", err)
		os.Exit(1)
	}
	defer database.Close()

	logger.Info("Database initialized: %s", config.Data.DBPath)

	// Create and run application
	app := ui.NewApp(config, actualConfigPath, database, logger)
	defer app.Cleanup()

	logger.Info("Application started")
	app.Run()
	logger.Info("Application stopped")
}
