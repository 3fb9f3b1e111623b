// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{"fits exactly", "hello", 5, "hello"},
		{"fits with room", "hi", 10, "hi"},
		{"needs cut", "hello world", 8, "hello w…"},
		{"zero width", "hello", 0, ""},
		{"negative width", "hello", -1, ""},
		{"width one", "hello", 1, "h"},
		{"empty string", "", 5, ""},
		{"wide runes", "日本語のテスト", 6, "日本…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.in, tt.width)
			if got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
			}
			if Width(got) > tt.width && tt.width > 0 {
				t.Errorf("Truncate(%q, %d) width = %d, exceeds limit", tt.in, tt.width, Width(got))
			}
		})
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"no cut", "short", 10, "short"},
		{"cut with ellipsis", "a very long summary line", 10, "a very ..."},
		{"tiny budget", "hello", 2, "he"},
		{"zero", "hello", 0, ""},
		{"multibyte safe", "héllo wörld", 8, "héllo..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateRunes(tt.in, tt.n); got != tt.want {
				t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
		})
	}
}

func TestPadRightAndLeft(t *testing.T) {
	if got := PadRight("ab", 5); got != "ab   " {
		t.Errorf("PadRight = %q", got)
	}
	if got := PadLeft("ab", 5); got != "   ab" {
		t.Errorf("PadLeft = %q", got)
	}
	// Over-wide input is truncated down to the column width.
	if got := PadRight("abcdefgh", 4); Width(got) != 4 {
		t.Errorf("PadRight over-wide width = %d, want 4", Width(got))
	}
	if got := PadRight("ab", 0); got != "" {
		t.Errorf("PadRight zero width = %q", got)
	}
}

func TestFirstLine(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"one line", "one line"},
		{"line1\nline2", "line1"},
		{"crlf\r\nnext", "crlf"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := FirstLine(tt.in); got != tt.want {
			t.Errorf("FirstLine(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPrice(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		places int32
		want   string
	}{
		{"grouping", "43251.068", 2, "43,251.07"},
		{"small", "0.5", 2, "0.50"},
		{"zero", "0", 2, "0.00"},
		{"four places", "1234.56789", 4, "1,234.5679"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := decimal.RequireFromString(tt.in)
			if got := Price(d, tt.places); got != tt.want {
				t.Errorf("Price(%s, %d) = %q, want %q", tt.in, tt.places, got, tt.want)
			}
		})
	}
}

func TestQuantity(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0.5000", "0.5"},
		{"12", "12.0"},
		{"0.001", "0.001"},
		{"100.10", "100.1"},
	}
	for _, tt := range tests {
		d := decimal.RequireFromString(tt.in)
		if got := Quantity(d); got != tt.want {
			t.Errorf("Quantity(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUSD(t *testing.T) {
	pos := decimal.RequireFromString("1204.5")
	if got := USD(pos); got != "$1,204.50" {
		t.Errorf("USD positive = %q", got)
	}
	neg := decimal.RequireFromString("-87.2")
	if got := USD(neg); got != "-$87.20" {
		t.Errorf("USD negative = %q", got)
	}
}

func TestSignedPercent(t *testing.T) {
	up := decimal.RequireFromString("0.0312")
	if got := SignedPercent(up); got != "+3.12%" {
		t.Errorf("SignedPercent up = %q", got)
	}
	down := decimal.RequireFromString("-0.015")
	if got := SignedPercent(down); got != "-1.5%" {
		t.Errorf("SignedPercent down = %q", got)
	}
}

func TestAtomicWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "state.json")

	if err := AtomicWriteFile(path, []byte(`{"ok":true}`), 0o644); err != nil {
		t.Fatalf("AtomicWriteFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != `{"ok":true}` {
		t.Errorf("content = %q", data)
	}

	// Overwrite replaces content completely.
	if err := AtomicWriteFile(path, []byte("v2"), 0o644); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "v2" {
		t.Errorf("after overwrite = %q", data)
	}

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("leftover files in dir: %d entries", len(entries))
	}
}
