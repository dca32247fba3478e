package common

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetupLogFile(t *testing.T) {
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(log.LstdFlags)
	})

	path := filepath.Join(t.TempDir(), "logs", "psxstr.log")
	closer, err := SetupLogFile(LogFileOptions{Filename: path, MaxSizeMB: 1})
	if err != nil {
		t.Fatalf("SetupLogFile() error: %v", err)
	}
	LogInfo("written to %s", "file")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	log.SetOutput(os.Stderr)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not created: %v", err)
	}
	if !strings.Contains(string(data), "[INFO] written to file") {
		t.Errorf("log file content = %q", data)
	}
}

func TestSetupLogFile_Disabled(t *testing.T) {
	closer, err := SetupLogFile(LogFileOptions{})
	if err != nil {
		t.Fatalf("SetupLogFile() error: %v", err)
	}
	if err := closer.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}
