package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"xmas/plugins/christmas"

	"github.com/disintegration/imaging"
)

func main() {
	var (
		size    = flag.Int("size", 32, "Tree edge in pixels.")
		outPath = flag.String("out", "assets/christmas_tree.png", "Output PNG.")
		rgb     = flag.String("color", "0,128,0", "Foliage color as r,g,b.")
	)
	flag.Parse()

	if *size < christmas.MinTreeSize || *size > 1024 {
		fatalf("size out of range: %d", *size)
	}

	var r, g, b uint8
	if _, err := fmt.Sscanf(*rgb, "%d,%d,%d", &r, &g, &b); err != nil {
		fatalf("color: %v", err)
	}

	if err := writeTree(*outPath, *size, christmas.RGB{R: r, G: g, B: b}); err != nil {
		fatalf("mktree: %v", err)
	}
}

func writeTree(path string, size int, foliage christmas.RGB) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	img := christmas.DrawTree(size, size, foliage.Color())
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	fmt.Printf("wrote %s (%dx%d)\n", path, size, size)
	return nil
}

func fatalf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(2)
}
