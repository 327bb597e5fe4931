package main

import (
	"os"

	"github.com/lalo8115/proyecto-vuelos/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
