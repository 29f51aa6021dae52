package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/scopogger/healthypdf/internal/document"
)

type pageInfo struct {
	Page   int     `yaml:"page"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type docInfo struct {
	Path  string     `yaml:"path"`
	Pages int        `yaml:"pages"`
	Sizes []pageInfo `yaml:"sizes"`
}

var infoCmd = &cobra.Command{
	Use:   "info <file.pdf>",
	Short: "Inspect a document's pages",
	Long: `Open a document and print its page count and page dimensions in
points. Use --password for encrypted files.

Examples:
  healthypdf info book.pdf
  healthypdf info --password hunter2 locked.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		doc, err := document.Open(args[0], password, logger)
		if err != nil {
			return err
		}
		defer doc.Close()

		info := docInfo{
			Path:  doc.Path(),
			Pages: doc.PageCount(),
		}
		for _, g := range doc.Geometry() {
			info.Sizes = append(info.Sizes, pageInfo{
				Page:   int(g.ID) + 1,
				Width:  g.Width,
				Height: g.Height,
			})
		}

		data, err := yaml.Marshal(info)
		if err != nil {
			return fmt.Errorf("marshal info: %w", err)
		}
		_, err = os.Stdout.Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
