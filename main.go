// main.go - Application entry point
package main

import "github.com/valpere/tile_render/cmd"

func main() {
	cmd.Execute()
}
