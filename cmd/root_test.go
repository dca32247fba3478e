package cmd

import (
	"strings"
	"testing"

	"github.com/hansbonini/psxstr/pkg/common"
	"github.com/spf13/cobra"
)

// newSetupCmd registers the global flags on a fresh command. badFlag is
// registered with the wrong type so reading it as a string fails.
func newSetupCmd(badFlag string) *cobra.Command {
	c := &cobra.Command{Use: "test"}
	c.Flags().String("config", "", "")
	c.Flags().Bool("verbose", false, "")
	for _, name := range []string{"lang", "log-file"} {
		if name == badFlag {
			c.Flags().Int(name, 0, "")
		} else {
			c.Flags().String(name, "", "")
		}
	}
	return c
}

func TestSetup(t *testing.T) {
	t.Cleanup(func() { common.SetLanguage(string(common.LangEnglish)) })

	tests := []struct {
		name    string
		badFlag string
		wantErr string
	}{
		{"valid flags", "", ""},
		{"lang flag", "lang", "error getting lang flag"},
		{"log-file flag", "log-file", "error getting log-file flag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newSetupCmd(tt.badFlag)
			if tt.badFlag == "lang" {
				c.Flags().Set("lang", "1")
			} else {
				c.Flags().Set("lang", "pt")
			}
			if tt.badFlag == "log-file" {
				c.Flags().Set("log-file", "2")
			}

			err := setup(c)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("setup() error: %v", err)
				}
				if cfg.Language != "pt" {
					t.Errorf("cfg.Language = %q, want pt", cfg.Language)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("setup() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}
