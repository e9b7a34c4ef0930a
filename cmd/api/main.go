package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"goflare.io/checkout/config"
)

func main() {

	configPath := pflag.String("config", "", "path to an optional YAML configuration file")
	pflag.Parse()

	// a missing .env file is fine outside local development
	_ = godotenv.Load()

	server, err := InitializeServer(config.Path(*configPath))
	if err != nil {
		log.Fatal(err)
		return
	}

	if err = server.Run(server.Address()); err != nil {
		log.Fatal(err.Error())
	}

}
