// Command scribe is the command line front end for the document edit
// engine: upload PDFs, inspect and mutate their text elements, render
// previews, and run OCR over embedded images.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
