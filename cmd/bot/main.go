package main

import (
	"log"

	"apply_bot/internal/applybot"
)

func main() {
	if err := applybot.Run(); err != nil {
		log.Fatal(err)
	}
}
