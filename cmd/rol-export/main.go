// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the rol-export CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/rol-export/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the rol-export CLI.
var rootCmd = &cobra.Command{
	Use:   "rol-export",
	Short: "Export the ANS procedures annex to CSV",
	Long: `rol-export downloads the annexes of the ANS "Rol de Procedimentos e
Eventos em Saúde" and turns the procedure table of Anexo I into a CSV file
bundled in a ZIP archive.

The two stages are independent subcommands: fetch downloads the annex PDFs,
extract reads one PDF and writes the CSV. history and search read the ledger
of past extraction runs.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetVerbose(viper.GetBool("verbose"))
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./rol-export.yaml or ~/.config/rol-export/rol-export.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "print diagnostic messages to stderr")
	bindFlags(rootCmd.PersistentFlags(), map[string]string{"verbose": "verbose"})

	setDefaults()
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("rol-export")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "rol-export"))
		}
	}

	viper.SetEnvPrefix("ROL_EXPORT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Reading config file %s: %v\n", cfgFile, err)
		os.Exit(1)
	}
}

// signalContext returns a context cancelled on Ctrl-C or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
