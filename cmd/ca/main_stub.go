//go:build !ebiten

package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(os.Stderr, "ca: this binary was built without window support.")
	fmt.Fprintln(os.Stderr, "Rebuild with `go build -tags ebiten ./cmd/ca`, or run models headless with `./cmd/rewrite run <model>`.")
	os.Exit(2)
}
