package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tsawler/scribe/ocr"
	"github.com/tsawler/scribe/render"
)

var renderCmd = &cobra.Command{
	Use:   "render [doc-id] [page]",
	Short: "Render a page preview to a PNG file",
	Args:  cobra.ExactArgs(2),
	RunE:  runRender,
}

var ocrCmd = &cobra.Command{
	Use:   "ocr [doc-id]",
	Short: "Recognize text in the document's images",
	Long:  `Requires a binary built with -tags ocr and Tesseract installed.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runOCR,
}

var (
	renderZoom    float64
	renderOut     string
	renderDataURI bool
)

func init() {
	renderCmd.Flags().Float64Var(&renderZoom, "zoom", 0, "zoom factor (default from config)")
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "output file (default page-N.png)")
	renderCmd.Flags().BoolVar(&renderDataURI, "data-uri", false, "print a data URI instead of writing a file")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(ocrCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	var page int
	if _, err := fmt.Sscanf(args[1], "%d", &page); err != nil {
		return fmt.Errorf("page: %w", err)
	}
	zoom := renderZoom
	if zoom == 0 {
		zoom = e.cfg.Render.DefaultZoom
	}

	png, err := e.arena.RenderPage(args[0], page, zoom)
	if err != nil {
		return err
	}

	if renderDataURI {
		fmt.Println(render.DataURI(png))
		return nil
	}
	out := renderOut
	if out == "" {
		out = fmt.Sprintf("page-%d.png", page)
	}
	if err := os.WriteFile(out, png, 0o644); err != nil {
		return err
	}
	fmt.Println("wrote", out)
	return nil
}

func runOCR(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	client, err := ocr.New()
	if err != nil {
		return err
	}
	defer client.Close()
	if e.cfg.OCR.Language != "" {
		if err := client.SetLanguage(e.cfg.OCR.Language); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), e.cfg.OCR.Timeout)
	defer cancel()

	results, err := e.arena.OCRImages(ctx, args[0], client)
	if err != nil {
		return err
	}
	for _, res := range results {
		if res.Err != "" {
			fmt.Printf("%s: error: %s\n", res.ElementID, res.Err)
			continue
		}
		fmt.Printf("%s: %s\n", res.ElementID, res.Text)
	}
	return nil
}
