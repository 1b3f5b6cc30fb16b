package main

import (
	"log"
	"os"

	"github.com/BartekS5/assetimport/internal/cli"
	"github.com/BartekS5/assetimport/pkg/logger"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	if err := logger.InitLogger(os.Getenv("LOG_FILE"), logger.ParseLevel(os.Getenv("LOG_LEVEL"))); err != nil {
		log.Printf("Could not open log file, logging to console only: %v", err)
		logger.Init()
	}
	defer logger.Close()

	rootCmd := cli.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		logger.Close()
		os.Exit(1)
	}
}
