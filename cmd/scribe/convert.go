package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tsawler/scribe/convert"
	"github.com/tsawler/scribe/format"
)

var exportTextCmd = &cobra.Command{
	Use:   "export-text [doc-id]",
	Short: "Extract the document's plain text",
	Args:  cobra.ExactArgs(1),
	RunE:  runExportText,
}

var importImageCmd = &cobra.Command{
	Use:   "import-image [file.png|file.jpg]",
	Short: "Wrap a raster image in a single-page PDF and store it",
	Args:  cobra.ExactArgs(1),
	RunE:  runImportImage,
}

var importOwner string

func init() {
	importImageCmd.Flags().StringVar(&importOwner, "owner", "", "owner id to tag the document with")

	rootCmd.AddCommand(exportTextCmd)
	rootCmd.AddCommand(importImageCmd)
}

func runExportText(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	data, _, err := e.store.Retrieve(args[0])
	if err != nil {
		return err
	}
	text, err := convert.TextExtractor{}.Convert(data)
	if err != nil {
		return err
	}
	fmt.Println(string(text))
	return nil
}

func runImportImage(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	conv := convert.ImagePDF{}
	if !conv.Accepts(format.DetectFromMagic(data)) {
		return fmt.Errorf("%s: not a PNG or JPEG", args[0])
	}
	pdf, err := conv.Convert(data)
	if err != nil {
		return err
	}

	base := filepath.Base(args[0])
	name := strings.TrimSuffix(base, filepath.Ext(base)) + ".pdf"
	docID, doc, err := e.arena.Upload(name, pdf, importOwner)
	if err != nil {
		return err
	}
	fmt.Println(docID)
	fmt.Printf("%d page(s), %d image(s)\n", doc.PageCount, len(doc.Images))
	return nil
}
