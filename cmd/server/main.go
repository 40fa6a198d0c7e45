package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/yourorg/gasbench-api/internal/app"
	"github.com/yourorg/gasbench-api/internal/config"
)

func setupLogging() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(config.GetEnvOrDefault("LOG_LEVEL", "info"))
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

func main() {
	setupLogging()

	cfg := config.Load()
	if err := app.Run(cfg); err != nil {
		logrus.Fatalf("Server failed: %v", err)
	}
}
