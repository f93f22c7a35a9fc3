/*
Package doodle is a freehand raster drawing board. Pointer input is turned into
anti-aliased brush strokes on an in-memory canvas, with a bounded undo/redo
history of canvas snapshots, image drops and export to PNG, JPEG, BMP or PDF.

The package provides a command line interface which can replay recorded
interaction scripts or open an interactive window. To check the supported
commands type:

	$ doodle --help

In case you wish to integrate the API in a self constructed environment here is a simple example:

	package main

	import (
		"context"
		"os"

		"github.com/esimov/doodle"
	)

	func main() {
		s, err := doodle.NewSession(doodle.WithSize(640, 480))
		if err != nil {
			panic(err)
		}

		s.PointerDown(10, 10)
		s.PointerMove(200, 120)
		s.PointerUp()

		f, _ := os.Create("drawing.png")
		defer f.Close()
		s.Save(context.Background(), f, doodle.FormatPNG)
	}
*/
package doodle
