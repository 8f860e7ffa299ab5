package main

import (
	"log"

	"github.com/joho/godotenv"

	corecmd "github.com/m3rciful/pomobot/core/cmd"
	"github.com/m3rciful/pomobot/internal/bot"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	if err := corecmd.Run(corecmd.Options{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "config.yaml",
		LoadConfig:        bot.LoadConfigCarrier,
		Bootstrap:         bot.BootstrapApp,
	}); err != nil {
		log.Fatal(err)
	}
}
