package common

import (
	"fmt"
	"log"
)

// Global variable to control debug output
var VerboseMode bool = false

// SetVerboseMode enables or disables verbose/debug output
func SetVerboseMode(verbose bool) {
	VerboseMode = verbose
}

// Error messages
const (
	ErrFailedToOpenImage      = "failed to open disc image"
	ErrFailedToReadSector     = "failed to read sector"
	ErrFailedToCreateReport   = "failed to create report file"
	ErrFailedToWriteReport    = "failed to write report"
	ErrFailedToLoadConfig     = "failed to load configuration"
	ErrFailedToSetupLogFile   = "failed to set up log file"
	ErrUnrecognizedSectorSize = "unrecognized sector size"
	ErrSectorIndexOutOfBounds = "sector index out of bounds"
	ErrOddReadStart           = "data start must be on word boundary"
	ErrBitCountOutOfRange     = "bit count must be between 0 and 31"
	ErrSectorsNotIncreasing   = "sector numbers must strictly increase"
	ErrFramesDecreasing       = "frame numbers must not decrease"
	ErrNegativeSeed           = "sector and frame must not be negative"
	ErrFrameBufferTooSmall    = "frame buffer too small for demuxed payload"
	ErrUnsupportedCueSheet    = "unsupported cue sheet"
)

// Info messages
const (
	InfoScanningImage  = "Scanning %s (%d sectors of %d bytes)"
	InfoScanComplete   = "Scan complete: %d XA stream(s), %d video stream(s), %d failure(s)"
	InfoReportWritten  = "Report written to: %s"
	InfoLogFileEnabled = "Logging to file: %s"
	InfoConfigLoaded   = "Configuration loaded from: %s"
)

// Debug messages
const (
	DebugSectorClassified = "Sector %d [%s]: %s"
	DebugXAStreamOpened   = "Channel %d: XA stream opened at sector %d"
	DebugXAStreamClosed   = "Channel %d: XA stream closed at sector %d (%d sectors)"
	DebugVideoFrame       = "Channel %d: frame %d starts at sector %d"
	DebugCadenceResolved  = "Channel %d: possible sectors/frame %v"
	DebugSectorRejected   = "Sector %d is not %s: %v"
	DebugXAParameters     = "Sector %d: %d mismatched XA sound parameter copies"
	DebugAudioTrack       = "Track %d: CD audio from sector %d"
)

// LogInfo logs an informational message
func LogInfo(message string, args ...interface{}) {
	if len(args) > 0 {
		log.Printf("[INFO] "+message, args...)
	} else {
		log.Printf("[INFO] %s", message)
	}
}

// LogWarn logs a warning message
func LogWarn(message string, args ...interface{}) {
	if len(args) > 0 {
		log.Printf("[WARN] "+message, args...)
	} else {
		log.Printf("[WARN] %s", message)
	}
}

// LogError logs an error message
func LogError(message string, args ...interface{}) {
	if len(args) > 0 {
		log.Printf("[ERROR] "+message, args...)
	} else {
		log.Printf("[ERROR] %s", message)
	}
}

// LogDebug logs a debug message (only if VerboseMode is enabled)
func LogDebug(message string, args ...interface{}) {
	if !VerboseMode {
		return
	}
	if len(args) > 0 {
		log.Printf("[DEBUG] "+message, args...)
	} else {
		log.Printf("[DEBUG] %s", message)
	}
}

// FormatError creates a formatted error with additional context
func FormatError(baseMessage string, details interface{}) error {
	if err, ok := details.(error); ok {
		return fmt.Errorf("%s: %w", baseMessage, err)
	}
	return fmt.Errorf("%s: %v", baseMessage, details)
}
