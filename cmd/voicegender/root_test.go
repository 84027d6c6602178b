package main

import "testing"

func TestRootRequiresExactlyOneArg(t *testing.T) {
	tests := []struct {
		name string
		args []string
		ok   bool
	}{
		{"no args", nil, false},
		{"one arg", []string{"clip.mp3"}, true},
		{"two args", []string{"a.mp3", "b.mp3"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rootCmd.Args(rootCmd, tt.args)
			if tt.ok && err != nil {
				t.Errorf("Expected args %v to be accepted, got %v", tt.args, err)
			}
			if !tt.ok {
				if err == nil {
					t.Fatalf("Expected args %v to be rejected", tt.args)
				}
				if err.Error() != "Audio file path required" {
					t.Errorf("Expected exact error message, got %q", err.Error())
				}
			}
		})
	}
}

func TestRootSilencesCobraOutput(t *testing.T) {
	// The binary formats errors itself; cobra must not print usage or
	// duplicate the error.
	if !rootCmd.SilenceUsage || !rootCmd.SilenceErrors {
		t.Error("Expected usage and error output to be silenced")
	}
}
