package main

import (
	"log"

	"github.com/skymaps/tilefinder/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("tilefinder failed to start: %v", err)
	}
}
