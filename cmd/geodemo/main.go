// Command geodemo builds geometry described by a YAML scene, captures
// fields onto it and prints the resulting attribute values.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
