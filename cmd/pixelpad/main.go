// PixelPad - A colour extraction preview service
//
// PixelPad creates colour sessions from uploaded images and renders PNG
// previews of the detected palette.
//
// Copyright (c) 2025 John Mylchreest
// Licensed under the MIT License
package main

import (
	"os"

	"github.com/jmylchreest/pixelpad/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
