// Command imgpad pads every image in a folder onto a fixed-size canvas.
//
// Usage:
//
//	imgpad <folder_path> [-o|--output_folder OUTPUT] [-s|--size WIDTH HEIGHT]
package main

import "github.com/nvr-ai/imgpad/cli"

func main() {
	cli.Execute()
}
