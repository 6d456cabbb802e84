// Command admin is the operator tool for the upload endpoint database:
// migrations, user accounts and password hashes.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
