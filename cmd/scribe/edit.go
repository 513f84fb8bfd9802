package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tsawler/scribe/edit"
	"github.com/tsawler/scribe/model"
)

var editCmd = &cobra.Command{
	Use:   "edit [doc-id] [element-id] [new text]",
	Short: "Replace the text of one element",
	Args:  cobra.ExactArgs(3),
	RunE:  runEdit,
}

var replaceCmd = &cobra.Command{
	Use:   "replace [doc-id] [term] [replacement]",
	Short: "Replace a term in every element containing it",
	Long: `Substitutes the term inside every element whose text contains it,
preserving the surrounding text. Matching is at word granularity; a
term spanning two elements will not match.`,
	Args: cobra.ExactArgs(3),
	RunE: runReplace,
}

var addTextCmd = &cobra.Command{
	Use:   "add-text [doc-id] [page] [x] [y] [text]",
	Short: "Draw new text on a page",
	Long: `Draws text at (x, y) in page points, y measured up from the bottom
edge to the baseline. The run becomes addressable after the rewrite.`,
	Args: cobra.ExactArgs(5),
	RunE: runAddText,
}

var (
	editFontSize float64
	editColor    string
	addSize      float64
	addColor     string
)

func init() {
	editCmd.Flags().Float64Var(&editFontSize, "size", 0, "font size override in points")
	editCmd.Flags().StringVar(&editColor, "color", "", "color override as #rrggbb")
	addTextCmd.Flags().Float64Var(&addSize, "size", 12, "font size in points")
	addTextCmd.Flags().StringVar(&addColor, "color", "#000000", "text color as #rrggbb")

	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(replaceCmd)
	rootCmd.AddCommand(addTextCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	opts := edit.Options{FontSize: editFontSize}
	if editColor != "" {
		c, err := parseHexColor(editColor)
		if err != nil {
			return err
		}
		opts.Color = &c
	}

	doc, err := e.arena.UpdateElement(args[0], args[1], args[2], opts)
	if err != nil {
		return err
	}
	fmt.Printf("updated; document now has %d text elements\n", len(doc.TextElements))
	return nil
}

func runReplace(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	count, _, err := e.arena.SearchReplace(args[0], args[1], args[2])
	if err != nil {
		return err
	}
	fmt.Printf("replaced %d occurrence(s)\n", count)
	return nil
}

func runAddText(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	page, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("page: %w", err)
	}
	x, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("x: %w", err)
	}
	y, err := strconv.ParseFloat(args[3], 64)
	if err != nil {
		return fmt.Errorf("y: %w", err)
	}
	color, err := parseHexColor(addColor)
	if err != nil {
		return err
	}

	doc, err := e.arena.AddText(args[0], page, x, y, args[4], addSize, color)
	if err != nil {
		return err
	}
	fmt.Printf("added; document now has %d text elements\n", len(doc.TextElements))
	return nil
}

func parseHexColor(s string) (model.Color, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return model.Color{}, fmt.Errorf("color %q: want rrggbb", s)
	}
	packed, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return model.Color{}, fmt.Errorf("color %q: %w", s, err)
	}
	return model.ColorFromPacked(uint32(packed)), nil
}
