// Command partnerctl shows the partnership dashboard and manages records
// from a terminal, talking to the partnership API directly.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(&cli{}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
