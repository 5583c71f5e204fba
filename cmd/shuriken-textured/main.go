// Command shuriken-textured renders the rotating shuriken with a texture modulating the vertex colors.
package main

import (
	"os"

	"shuriken/app"
	"shuriken/config"
)

func main() {
	os.Exit(app.Main(config.VariantTextured, os.Args[1:]))
}
