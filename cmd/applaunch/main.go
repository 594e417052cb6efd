// Command applaunch starts an application, waits until its URL accepts
// connections and keeps it running until interrupted.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "applaunch:", err)
		os.Exit(1)
	}
}
