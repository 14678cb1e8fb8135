package parsing

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/simonhull/promptmeta/internal/types"
)

func TestSplitSettings(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []types.SettingEntry
	}{
		{
			name:  "typical A1111 line",
			input: "Steps: 28, Sampler: Euler a, CFG scale: 5.5",
			want: []types.SettingEntry{
				{Key: "Steps", Value: "28"},
				{Key: "Sampler", Value: "Euler a"},
				{Key: "CFG scale", Value: "5.5"},
			},
		},
		{
			name:  "value keeps text after first colon",
			input: "Hires upscaler: 4x: UltraSharp, Seed: 1",
			want: []types.SettingEntry{
				{Key: "Hires upscaler", Value: "4x: UltraSharp"},
				{Key: "Seed", Value: "1"},
			},
		},
		{
			name:  "segments without colon or value are dropped",
			input: "orphan, Key:, : value, Steps: 20",
			want:  []types.SettingEntry{{Key: "Steps", Value: "20"}},
		},
		{
			// No escaping: the quoted comma splits the value.
			name:  "comma inside value is split",
			input: `Lora hashes: "a: 1, b: 2", Steps: 20`,
			want: []types.SettingEntry{
				{Key: "Lora hashes", Value: `"a: 1`},
				{Key: "b", Value: `2"`},
				{Key: "Steps", Value: "20"},
			},
		},
		{name: "blank", input: "   ", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSettings(tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("SplitSettings() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestScalar(t *testing.T) {
	tests := []struct {
		name   string
		input  any
		want   string
		wantOK bool
	}{
		{"string", "  euler ", "euler", true},
		{"quoted string", `"sdxl.safetensors"`, "sdxl.safetensors", true},
		{"number keeps text", json.Number("6.0"), "6.0", true},
		{"bool", true, "true", true},
		{"int", 28, "28", true},
		{"float", 5.5, "5.5", true},
		{"null literal", "null", "", false},
		{"blank", "  ", "", false},
		{"nil", nil, "", false},
		{"composite", []any{"1", 0}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Scalar(tt.input)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Scalar(%v) = %q, %v; want %q, %v", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestInt(t *testing.T) {
	tests := []struct {
		input  any
		want   int
		wantOK bool
	}{
		{json.Number("512"), 512, true},
		{json.Number("768.0"), 768, true},
		{"1024", 1024, true},
		{json.Number("0"), 0, false},
		{json.Number("-5"), 0, false},
		{"wide", 0, false},
	}

	for _, tt := range tests {
		got, ok := Int(tt.input)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Int(%v) = %d, %v; want %d, %v", tt.input, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestIsCheckpointFile(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"sdxl.safetensors", true},
		{"models/sd/v1-5.CKPT", true},
		{" embedding.pt ", true},
		{"photo.png", false},
		{"safetensors", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsCheckpointFile(tt.input); got != tt.want {
			t.Errorf("IsCheckpointFile(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseResolution(t *testing.T) {
	tests := []struct {
		input string
		w, h  int
		ok    bool
	}{
		{"(1024, 1024)", 1024, 1024, true},
		{"[832, 1216]", 832, 1216, true},
		{"512x768", 512, 768, true},
		{"1472 × 704", 1472, 704, true},
		{"896, 1152", 896, 1152, true},
		{"1024x1024 (1:1)", 1024, 1024, true},
		{"(0, 10)", 0, 0, false},
		{"large", 0, 0, false},
		{"", 0, 0, false},
	}

	for _, tt := range tests {
		w, h, ok := ParseResolution(tt.input)
		if w != tt.w || h != tt.h || ok != tt.ok {
			t.Errorf("ParseResolution(%q) = %d, %d, %v; want %d, %d, %v", tt.input, w, h, ok, tt.w, tt.h, tt.ok)
		}
	}
}

func TestTrimJSONPrefix(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"null\n{\"nodes\": []}", `{"nodes": []}`},
		{"  [1, 2]", "[1, 2]"},
		{"plain text", "plain text"},
	}

	for _, tt := range tests {
		if got := TrimJSONPrefix(tt.input); got != tt.want {
			t.Errorf("TrimJSONPrefix(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFormatSize(t *testing.T) {
	if got := FormatSize(512, 768); got != "512x768" {
		t.Errorf("FormatSize() = %q, want %q", got, "512x768")
	}
}

func TestDecodeLatin1(t *testing.T) {
	tests := []struct {
		input []byte
		want  string
	}{
		{[]byte("plain"), "plain"},
		{[]byte("caf\xe9"), "café"},
		{[]byte("caf\xc3\xa9"), "café"},
		{[]byte{}, ""},
	}

	for _, tt := range tests {
		if got := DecodeLatin1(tt.input); got != tt.want {
			t.Errorf("DecodeLatin1(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
