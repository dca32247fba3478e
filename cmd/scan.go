// Package cmd provides command-line interface for disc image scanning.
// This file contains the scan command, which lists the XA audio and STR
// video streams of a PlayStation CD image.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/hansbonini/psxstr/pkg"
	"github.com/hansbonini/psxstr/pkg/common"
	"github.com/hansbonini/psxstr/pkg/psx"
	"github.com/spf13/cobra"
)

// scanCmd indexes every sector of a disc image.
var scanCmd = &cobra.Command{
	Use:   "scan [image.bin]",
	Short: "List the XA audio and STR video streams of a CD image",
	Long: `List the XA audio and STR video streams of a CD image.

The sector size is detected from the image size (2352, 2336 or 2048 bytes).
Every sector is classified, consecutive sectors of one channel are grouped
into streams, and the disc speed of XA streams and the sectors/frame of
video streams are inferred.

When verbose mode is enabled (-v) every sector is logged with its
classification.

Audio tracks are read from a cue sheet given with --cue, or from a .cue
file next to the image with the same base name.

Flags:
      --cue         Cue sheet describing the tracks of the image
  -y, --yaml        Write the scan report to a YAML file
  -p, --pdf         Write the scan report to a PDF file
  -w, --workers     Goroutines used for the video stream summaries

Examples:
  psxstr scan movie.bin
  psxstr scan -v movie.bin
  psxstr scan --yaml report.yaml --pdf report.pdf movie.bin`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		imageFile := args[0]

		yamlFile, err := cmd.Flags().GetString("yaml")
		if err != nil {
			return fmt.Errorf("error getting yaml flag: %w", err)
		}
		pdfFile, err := cmd.Flags().GetString("pdf")
		if err != nil {
			return fmt.Errorf("error getting pdf flag: %w", err)
		}
		workers := cfg.Scan.Workers
		if cmd.Flags().Changed("workers") {
			if workers, err = cmd.Flags().GetInt("workers"); err != nil {
				return fmt.Errorf("error getting workers flag: %w", err)
			}
		}

		cueFile, err := cmd.Flags().GetString("cue")
		if err != nil {
			return fmt.Errorf("error getting cue flag: %w", err)
		}
		if cueFile == "" {
			sibling := strings.TrimSuffix(imageFile, filepath.Ext(imageFile)) + ".cue"
			if _, err := os.Stat(sibling); err == nil && sibling != imageFile {
				cueFile = sibling
			}
		}

		reader, err := psx.NewCDReader(imageFile)
		if err != nil {
			return err
		}
		defer reader.Close()

		if cueFile != "" {
			tracks, err := psx.LoadCueSheet(cueFile)
			if err != nil {
				return err
			}
			if err := reader.SetTracks(tracks); err != nil {
				return err
			}
			for _, t := range tracks {
				if t.Audio {
					common.LogDebug(common.DebugAudioTrack, t.Number, t.Start)
				}
			}
		}

		common.LogInfo(common.InfoScanningImage, imageFile, reader.Sectors(), reader.SectorSize())

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		result, err := pkg.NewIndexer(reader, workers).Scan(ctx)
		if err != nil {
			return fmt.Errorf("failed to scan %s: %w", imageFile, err)
		}

		for _, s := range result.XAStreams {
			fmt.Println(s.Summary())
		}
		for _, s := range result.VideoStreams {
			fmt.Println(s.Summary())
		}
		fmt.Println(result.Summary())

		if yamlFile == "" && pdfFile == "" {
			return nil
		}

		hash, err := pkg.HashImage(imageFile)
		if err != nil {
			return err
		}
		report := pkg.NewScanReport(imageFile, hash, reader.SectorSize(), result)
		if yamlFile != "" {
			if err := report.SaveYAML(yamlFile); err != nil {
				return err
			}
		}
		if pdfFile != "" {
			if err := report.SavePDF(pdfFile); err != nil {
				return err
			}
		}
		return nil
	},
}

// init initializes the scan command with its flags.
func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().String("cue", "", "Cue sheet describing the tracks of the image")
	scanCmd.Flags().StringP("yaml", "y", "", "Write the scan report to a YAML file")
	scanCmd.Flags().StringP("pdf", "p", "", "Write the scan report to a PDF file")
	scanCmd.Flags().IntP("workers", "w", 0, "Goroutines used for the video stream summaries (default from config)")
}
