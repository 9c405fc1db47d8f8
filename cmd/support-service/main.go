package main

import (
	"log"

	"github.com/topup-desk/support-service/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
