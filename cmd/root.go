// Package cmd provides command-line interface functionality for psxstr.
// psxstr scans PlayStation CD images for CD-XA audio and STR video streams.
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/hansbonini/psxstr/pkg"
	"github.com/hansbonini/psxstr/pkg/common"
	"github.com/spf13/cobra"
)

var (
	// cfg is loaded before any subcommand runs.
	cfg pkg.Config

	logCloser io.Closer
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "psxstr",
	Short: "Find XA audio and STR video streams in PlayStation CD images",
	Long: `psxstr - Index the CD-XA audio and STR video streams of PlayStation
disc images.

Currently supports:
  - Raw (2352), Mode 2 (2336) and cooked (2048) sector images
  - XA ADPCM audio stream detection with disc speed inference
  - STR video stream detection with sectors/frame inference
  - YAML and PDF scan reports

Examples:
  psxstr scan movie.bin
  psxstr scan -v --yaml report.yaml --pdf report.pdf movie.bin
  psxstr bits --le frame.bin 0 16
  psxstr speed 37800 stereo 8

Use 'psxstr [command] --help' for more information about a command.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logCloser != nil {
			return logCloser.Close()
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main() and serves as the entry point for command execution.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// setup loads the configuration and applies the global flags on top of it.
func setup(cmd *cobra.Command) error {
	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("error getting config flag: %w", err)
	}
	cfg, err = pkg.LoadConfig(configFile)
	if err != nil {
		return err
	}

	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return fmt.Errorf("error getting verbose flag: %w", err)
	}
	common.SetVerboseMode(verbose)

	if cmd.Flags().Changed("lang") {
		if cfg.Language, err = cmd.Flags().GetString("lang"); err != nil {
			return fmt.Errorf("error getting lang flag: %w", err)
		}
	}
	if !common.SetLanguage(cfg.Language) {
		common.LogWarn(common.NewMessage(common.MsgUnknownLanguage, cfg.Language).English())
	}

	if cmd.Flags().Changed("log-file") {
		if cfg.Logs.File, err = cmd.Flags().GetString("log-file"); err != nil {
			return fmt.Errorf("error getting log-file flag: %w", err)
		}
	}
	logCloser, err = common.SetupLogFile(cfg.LogFileOptions())
	if err != nil {
		return err
	}
	if cfg.Logs.File != "" {
		common.LogDebug(common.InfoLogFileEnabled, cfg.Logs.File)
	}
	return nil
}

// init initializes the root command with the global flags.
func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output (show debug messages)")
	rootCmd.PersistentFlags().String("lang", pkg.DefaultLanguage, "Language of report and summary messages (en, pt)")
	rootCmd.PersistentFlags().String("log-file", "", "Also write the log to this rotating file")
}
