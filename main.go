package main

import (
	"log"

	"github.com/revtrace/revtrace/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		log.Fatalf("revtrace: %v", err)
	}
}
