package main

import (
	"log"

	"github.com/FilipeDoria/genetic-load-manager/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatalf("genetic-load-manager: %v", err)
	}
}
