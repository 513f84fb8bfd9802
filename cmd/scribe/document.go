package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload [file.pdf]",
	Short: "Store a PDF and extract its elements",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpload,
}

var infoCmd = &cobra.Command{
	Use:   "info [doc-id]",
	Short: "Show the document summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored documents",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Remove a document and its content",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var elementsCmd = &cobra.Command{
	Use:   "elements [doc-id]",
	Short: "List text elements, optionally for one page",
	Args:  cobra.ExactArgs(1),
	RunE:  runElements,
}

var (
	elementsPage int
	uploadOwner  string
)

func init() {
	elementsCmd.Flags().IntVarP(&elementsPage, "page", "p", -1, "limit to one page (zero-based)")
	uploadCmd.Flags().StringVar(&uploadOwner, "owner", "", "owner id to tag the document with")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(elementsCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	docID, doc, err := e.arena.Upload(filepath.Base(args[0]), data, uploadOwner)
	if err != nil {
		return err
	}

	fmt.Println(docID)
	fmt.Printf("%d pages, %d text elements, %d images\n",
		doc.PageCount, len(doc.TextElements), len(doc.Images))
	return nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	summary, err := e.arena.Summary(args[0])
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	recs, err := e.store.List()
	if err != nil {
		return err
	}
	for _, rec := range recs {
		fmt.Printf("%s  %-10s %8d bytes  %s\n",
			rec.DocumentID, rec.Status, rec.Size, rec.Filename)
	}
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	if err := e.store.Delete(args[0]); err != nil {
		return err
	}
	e.arena.Forget(args[0])
	fmt.Println("deleted", args[0])
	return nil
}

func runElements(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	doc, err := e.arena.Load(args[0])
	if err != nil {
		return err
	}
	elements := doc.TextElements
	if elementsPage >= 0 {
		elements = doc.ElementsOnPage(elementsPage)
	}
	for _, el := range elements {
		fmt.Printf("%-16s %-32q %s %s\n", el.ID, el.Text, el.Color.Hex(), el.FontLabel())
	}
	return nil
}
