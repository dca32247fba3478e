// Package cmd provides command-line interface for XA disc speed calculation.
package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hansbonini/psxstr/pkg/sectors"
	"github.com/spf13/cobra"
)

// speedCmd infers the disc speed of an XA stream from its format and stride.
var speedCmd = &cobra.Command{
	Use:   "speed [samples_per_second] [stereo|mono] [stride]",
	Short: "Compute the disc speed of an XA stream",
	Long: `Compute the disc speed implied by an XA audio format and the number
of sectors between two sectors of the stream.

Examples:
  psxstr speed 37800 stereo 8     # 2x
  psxstr speed 18900 mono 16      # 1x`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		rate, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid sample rate %q: %w", args[0], err)
		}

		var stereo bool
		switch strings.ToLower(args[1]) {
		case "stereo", "s", "2":
			stereo = true
		case "mono", "m", "1":
			stereo = false
		default:
			return fmt.Errorf("invalid channel mode %q: use stereo or mono", args[1])
		}

		stride, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid stride %q: %w", args[2], err)
		}

		speed := sectors.DiscSpeed(rate, stereo, stride)
		if speed == sectors.DiscSpeedInvalid {
			fmt.Println("invalid")
			return nil
		}
		fmt.Printf("%dx\n", speed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(speedCmd)
}
