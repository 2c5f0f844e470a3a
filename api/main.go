// @title Chattik Messenger
// @version 1.0
// @description Chattik messenger backend: users, chats, groups, messages, contacts, AI assistant and uploads.

// @host localhost:8080
// @BasePath /
// @query.collection.format multi
// @schemes http

package main

import (
	"log"

	_ "tush00nka/chattik/docs"
	"tush00nka/chattik/internal/app"
	"tush00nka/chattik/internal/config"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	if err := app.Run(cfg); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
