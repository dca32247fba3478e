// Package cmd provides command-line interface for bitstream inspection.
// This file contains the bits command, which dumps bits of a demuxed frame.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/hansbonini/psxstr/pkg/bitstream"
	"github.com/hansbonini/psxstr/pkg/common"
	"github.com/spf13/cobra"
)

// bitsCmd prints bits of a file as '0' and '1' characters.
var bitsCmd = &cobra.Command{
	Use:   "bits [input_file] [offset] [count]",
	Short: "Dump bits of a demuxed frame file",
	Long: `Dump bits of a demuxed frame file.

Bits are read MSB first from 16-bit words starting at the byte offset, which
must be even. The output stops early at the end of the file. When the file
starts with a frame header it is printed first.

Flags:
  --le    Read 16-bit words little-endian (default from config)

Examples:
  psxstr bits frame.bin 0 64
  psxstr bits --le frame.bin 8 100`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputFile := args[0]
		offset, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid offset %q: %w", args[1], err)
		}
		count, err := strconv.Atoi(args[2])
		if err != nil || count < 0 {
			return fmt.Errorf("invalid bit count %q", args[2])
		}

		littleEndian := cfg.Scan.LittleEndianBits
		if cmd.Flags().Changed("le") {
			if littleEndian, err = cmd.Flags().GetBool("le"); err != nil {
				return fmt.Errorf("error getting le flag: %w", err)
			}
		}

		data, err := os.ReadFile(inputFile)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", inputFile, err)
		}

		if header, err := bitstream.ReadFrameHeader(data); err == nil {
			fmt.Printf("Frame header: run-length codes %d, quant scale %d, version %d\n",
				header.RunLengthCodes, header.QuantScale, header.Version)
		}

		reader, err := bitstream.NewReader(data, littleEndian, offset)
		if err != nil {
			return err
		}
		fmt.Printf("%d bits available from offset %d\n", reader.BitsRemaining(), offset)

		if err := dumpBits(os.Stdout, reader, count); err != nil {
			return err
		}
		fmt.Println()
		return nil
	},
}

// dumpBits writes up to count bits from reader as '0' and '1' characters.
// It stops quietly at the end of the data, including a stray trailing byte
// that cannot form a whole word.
func dumpBits(w io.Writer, reader *bitstream.Reader, count int) error {
	for count > 0 && reader.BitsRemaining() > 0 {
		n := min(count, bitstream.MaxBits)
		bits, err := reader.ReadBitsToString(n)
		if errors.Is(err, common.ErrEndOfStream) {
			return nil
		}
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w, bits); err != nil {
			return err
		}
		count -= n
	}
	return nil
}

// init initializes the bits command with its flags.
func init() {
	rootCmd.AddCommand(bitsCmd)

	bitsCmd.Flags().Bool("le", false, "Read 16-bit words little-endian")
}
