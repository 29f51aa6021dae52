package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scopogger/healthypdf/internal/document"
	"github.com/scopogger/healthypdf/internal/editmodel"
)

var (
	saveDelete string
	saveRotate string
)

var saveCmd = &cobra.Command{
	Use:   "save <in.pdf> <out.pdf>",
	Short: "Apply edits and write a new document",
	Long: `Apply page deletions and rotations to a document and write the
result to a new file. The input file is never modified.

Pages are addressed by their 1-based number in the input.

Examples:
  healthypdf save --delete 2,5 in.pdf out.pdf
  healthypdf save --rotate 1:90,4:-90 in.pdf out.pdf`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		doc, err := document.Open(args[0], password, logger)
		if err != nil {
			return err
		}
		defer doc.Close()

		model := editmodel.New(doc.PageCount())

		deletes, err := parsePageList(saveDelete, doc.PageCount())
		if err != nil {
			return err
		}
		if saveDelete != "" {
			for _, id := range deletes {
				if err := model.Delete(id); err != nil {
					return fmt.Errorf("delete page %d: %w", int(id)+1, err)
				}
			}
		}

		rotations, err := parseRotations(saveRotate, doc.PageCount())
		if err != nil {
			return err
		}
		for id, deg := range rotations {
			// The model accumulates quarter turns; 270 is one turn back.
			steps := []int{}
			switch deg {
			case 90:
				steps = []int{90}
			case 180:
				steps = []int{90, 90}
			case 270:
				steps = []int{-90}
			}
			for _, s := range steps {
				if _, err := model.Rotate(id, s); err != nil {
					return fmt.Errorf("rotate page %d: %w", int(id)+1, err)
				}
			}
		}

		if err := doc.Materialize(model.Plan(), args[1]); err != nil {
			return err
		}
		fmt.Printf("wrote %s: %d pages\n", args[1], model.VisibleCount())
		return nil
	},
}

func init() {
	saveCmd.Flags().StringVar(&saveDelete, "delete", "", "pages to drop, e.g. 2,5 or 3-6")
	saveCmd.Flags().StringVar(&saveRotate, "rotate", "", "rotations as page:degrees, e.g. 1:90,4:-90")

	rootCmd.AddCommand(saveCmd)
}
