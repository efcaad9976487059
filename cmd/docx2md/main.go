// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the docx2md CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the docx2md CLI.
var rootCmd = &cobra.Command{
	Use:   "docx2md",
	Short: "Batch-convert Word documents to Markdown with pandoc",
	Long: `docx2md converts every .docx file in a folder to Markdown by running pandoc,
extracts embedded images into a media directory, and strips the {width=...}
attribute blocks pandoc appends to image references.

Use "convert" for a folder, "fix" to clean up existing Markdown files, and
"history" to inspect runs recorded with --ledger.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if viper.GetBool("no_color") {
			color.NoColor = true
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./docx2md.yaml or ~/.config/docx2md/docx2md.yaml)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	rootCmd.PersistentFlags().String("ledger", "", "SQLite file recording run history (disabled when empty)")

	mustBind("no_color", rootCmd.PersistentFlags().Lookup("no-color"))
	mustBind("ledger", rootCmd.PersistentFlags().Lookup("ledger"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("docx2md")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "docx2md"))
		}
	}

	viper.SetEnvPrefix("DOCX2MD")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
