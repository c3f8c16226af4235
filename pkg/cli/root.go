// Package cli provides the command-line interface for babysh
package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/babysh/babysh/pkg/config"
)

var (
	cfgFile   string
	verbosity string
	version   string
)

// rootCmd represents the base command. Running babysh with no subcommand
// starts the interactive shell.
var rootCmd = &cobra.Command{
	Use:   "babysh",
	Short: "A small interactive command interpreter with job control",
	Long: `babysh is a small interactive shell. It runs external commands in the
foreground or background, supports input and output redirection, tracks
background jobs in a bounded table, and reports how the last foreground
command ended.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Printf("babysh v%s\n", version)
			return nil
		}
		return runShell()
	},
}

// Execute runs the CLI
func Execute(v string) error {
	version = v

	// Initialize the root command explicitly (avoiding init())
	initializeRootCommand()

	return rootCmd.Execute()
}

// initializeRootCommand sets up the root command and its flags.
// This replaces the init() function to make initialization explicit and testable.
func initializeRootCommand() {
	cobra.OnInitialize(initViper)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: babysh.config.json)")
	rootCmd.PersistentFlags().StringVarP(&verbosity, "verbosity", "v", "info", "log level (debug, info, warn, error)")

	rootCmd.Flags().Bool("version", false, "Print version information and quit")

	rootCmd.AddCommand(newVersionCmd())
}

func initViper() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("babysh.config")
		viper.SetConfigType("json")
	}

	// Read in environment variables
	viper.SetEnvPrefix("BABYSH")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if verbosity == "debug" {
			fmt.Println("Using config file:", viper.ConfigFileUsed())
		}
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of babysh",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("babysh v%s\n", version)
		},
	}
}

// Helper functions

func printError(message string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", color.RedString("[babysh]"), message)
}

func printInfo(message string) {
	fmt.Printf("%s %s\n", color.CyanString("[babysh]"), message)
}

func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath()
}
