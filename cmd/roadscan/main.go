// Package main is the roadscan command line tool.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "roadscan:", err)
		os.Exit(1)
	}
}
