package pkg

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Language != DefaultLanguage {
		t.Errorf("Language = %q, want %q", cfg.Language, DefaultLanguage)
	}
	if cfg.Logs.File != "" {
		t.Errorf("Logs.File = %q, want empty", cfg.Logs.File)
	}
	if cfg.Logs.MaxSizeMB != DefaultLogMaxSizeMB || cfg.Logs.MaxAgeDays != DefaultLogMaxAgeDays || cfg.Logs.MaxBackups != DefaultLogMaxBackups {
		t.Errorf("Logs = %+v, want defaults", cfg.Logs)
	}
	if cfg.Scan.Workers != runtime.NumCPU() {
		t.Errorf("Scan.Workers = %d, want %d", cfg.Scan.Workers, runtime.NumCPU())
	}
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		check   func(t *testing.T, cfg Config, dir string)
		wantErr bool
	}{
		{
			name: "full",
			content: `language: pt
logs:
  file: logs/psxstr.log
  maxSizeMB: 10
  compress: true
scan:
  workers: 3
  littleEndianBits: true
`,
			check: func(t *testing.T, cfg Config, dir string) {
				if cfg.Language != "pt" {
					t.Errorf("Language = %q, want pt", cfg.Language)
				}
				if want := filepath.Join(dir, "logs", "psxstr.log"); cfg.Logs.File != want {
					t.Errorf("Logs.File = %q, want %q", cfg.Logs.File, want)
				}
				if cfg.Logs.MaxSizeMB != 10 || !cfg.Logs.Compress || cfg.Logs.MaxBackups != DefaultLogMaxBackups {
					t.Errorf("Logs = %+v", cfg.Logs)
				}
				if cfg.Scan.Workers != 3 || !cfg.Scan.LittleEndianBits {
					t.Errorf("Scan = %+v", cfg.Scan)
				}
				opts := cfg.LogFileOptions()
				if opts.Filename != cfg.Logs.File || opts.MaxSizeMB != 10 || !opts.Compress {
					t.Errorf("LogFileOptions() = %+v", opts)
				}
			},
		},
		{
			name:    "empty file",
			content: "",
			wantErr: true,
		},
		{
			name:    "unknown key",
			content: "colour: red\n",
			wantErr: true,
		},
		{
			name:    "defaults",
			content: "scan:\n  workers: 0\n",
			check: func(t *testing.T, cfg Config, dir string) {
				if cfg.Language != DefaultLanguage || cfg.Scan.Workers != runtime.NumCPU() {
					t.Errorf("cfg = %+v, want defaults", cfg)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "psxstr.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
				t.Fatal(err)
			}
			cfg, err := LoadConfig(path)
			if tt.wantErr {
				if err == nil {
					t.Error("LoadConfig() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadConfig() error: %v", err)
			}
			tt.check(t, cfg, dir)
		})
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadConfig() expected error for missing file")
	}
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig(\"\") error: %v", err)
	}
	if cfg.Language != DefaultLanguage {
		t.Errorf("Language = %q, want %q", cfg.Language, DefaultLanguage)
	}
}
