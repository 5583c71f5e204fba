// Command shuriken renders the rotating shuriken colored by its vertex colors.
package main

import (
	"os"

	"shuriken/app"
	"shuriken/config"
)

func main() {
	os.Exit(app.Main(config.VariantColor, os.Args[1:]))
}
