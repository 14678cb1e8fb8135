// Command promptdump prints the generation metadata stored in AI images.
//
// Usage:
//
//	promptdump [flags] <image>...
//	promptdump blobs <image>...
//	promptdump version
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
