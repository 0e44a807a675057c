package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Tyrowin/chatrelay/internal/server"
)

func main() {
	fmt.Println("Starting Chat Relay...")

	// Load local .env (dev only)
	_ = godotenv.Load()

	config := server.NewConfigFromEnv()

	srv, err := server.New(config)
	if err != nil {
		log.Fatal(err)
	}

	if err := srv.Start(); err != nil {
		log.Fatal(err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	if err := srv.Shutdown(10 * time.Second); err != nil {
		log.Printf("Shutdown incomplete: %v", err)
	}
}
