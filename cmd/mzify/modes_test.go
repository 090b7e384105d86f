package main

import (
	"os"
	"testing"
)

func TestParseSwitchMode(t *testing.T) {
	cases := []struct {
		in   string
		want switchMode
	}{
		{"", modeAuto},
		{"AUTO", modeAuto},
		{" on ", modeOn},
		{"off", modeOff},
	}
	for _, tc := range cases {
		got, err := parseSwitchMode("ui", tc.in)
		if err != nil || got != tc.want {
			t.Fatalf("parseSwitchMode(%q) = %q, %v", tc.in, got, err)
		}
	}
	if _, err := parseSwitchMode("ui", "maybe"); err == nil {
		t.Fatalf("expected error for invalid value")
	}
}

func TestSwitchModeEnabled(t *testing.T) {
	if !modeOn.enabled(os.Stdout) {
		t.Fatalf("on must be enabled")
	}
	if modeOff.enabled(os.Stdout) {
		t.Fatalf("off must be disabled")
	}
}
