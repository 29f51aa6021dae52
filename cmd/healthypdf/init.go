package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scopogger/healthypdf/internal/config"
	"github.com/scopogger/healthypdf/internal/home"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the home directory and default config",
	Long: `Create the healthypdf home directory (~/.healthypdf by default) with
its exports subdirectory, and write a default config.yaml if none exists.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}

		if h.ConfigExists() {
			fmt.Printf("config already exists at %s\n", h.ConfigPath())
			return nil
		}
		if err := config.WriteDefault(h.ConfigPath()); err != nil {
			return err
		}
		fmt.Printf("wrote default config to %s\n", h.ConfigPath())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
