package types

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBuildCombinedRaw(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		parts []RawPart
		want  string
	}{
		{"no parts is identity", "  raw text ", nil, "  raw text "},
		{
			name:  "sections",
			parts: []RawPart{{Title: "A", Text: "x"}, {Title: "B", Text: "y"}},
			want:  "### A\nx\n\n### B\ny",
		},
		{
			name:  "empty body renders header alone",
			raw:   "ignored",
			parts: []RawPart{{Title: "PNG tEXt: prompt", Text: "  "}, {Title: "B", Text: " y \n"}},
			want:  "### PNG tEXt: prompt\n\n### B\ny",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildCombinedRaw(tt.raw, tt.parts); got != tt.want {
				t.Errorf("BuildCombinedRaw() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestJoinNonBlank(t *testing.T) {
	if got := JoinNonBlank("\n", " a ", "", "  ", "b"); got != "a\nb" {
		t.Errorf("JoinNonBlank() = %q, want %q", got, "a\nb")
	}
}

func TestParseResult_Get(t *testing.T) {
	r := ParseResult{SettingEntries: entries("CFG scale", "7", "Seed", "1")}

	if v, ok := r.Get(" cfg SCALE"); !ok || v != "7" {
		t.Errorf("Get() = %q, %v; want %q, true", v, ok, "7")
	}
	if _, ok := r.Get("Steps"); ok {
		t.Error("Get() found a missing key")
	}
}

func TestParseResult_Clone(t *testing.T) {
	r := ParseResult{
		Tool:           ToolA1111,
		SettingEntries: entries("Steps", "20"),
		RawParts:       []RawPart{},
		Evidence:       []string{"flat text parameters in parameters"},
	}

	c := r.Clone()
	c.SettingEntries[0].Value = "30"
	c.Evidence[0] = "changed"

	if r.SettingEntries[0].Value != "20" || r.Evidence[0] != "flat text parameters in parameters" {
		t.Error("Clone() shares slices with the original")
	}
	if c.RawParts == nil {
		t.Error("Clone() turned an empty slice into nil")
	}
}

func TestFinalize(t *testing.T) {
	blobs := Blobs{KeyParameters: "cat\nSteps: 20", "Author": ""}
	r := Finalize(ParseResult{
		Positive:       "  cat \n",
		Negative:       "\tdog",
		SettingEntries: entries("Steps", "20", "steps", "30", "Model", "sdxl"),
	}, blobs)

	if r.Positive != "cat" || r.Negative != "dog" {
		t.Errorf("prompts not trimmed: %q, %q", r.Positive, r.Negative)
	}
	if diff := cmp.Diff(entries("Model", "sdxl", "Steps", "20"), r.SettingEntries); diff != "" {
		t.Errorf("SettingEntries mismatch (-want +got):\n%s", diff)
	}
	if r.Setting != "Model: sdxl, Steps: 20" {
		t.Errorf("Setting = %q", r.Setting)
	}
	if r.Raw != "parameters: cat\nSteps: 20" {
		t.Errorf("Raw = %q", r.Raw)
	}
	if r.Tool != ToolUnknown {
		t.Errorf("Tool = %q, want %q", r.Tool, ToolUnknown)
	}
}

func TestFinalize_KeepsParserFields(t *testing.T) {
	r := Finalize(ParseResult{Tool: ToolFooocus, Setting: "custom", Raw: "raw"}, Blobs{KeyComment: "x"})

	if r.Setting != "custom" || r.Raw != "raw" || r.Tool != ToolFooocus {
		t.Errorf("Finalize() overwrote parser fields: %+v", r)
	}
	if r.SettingEntries == nil {
		t.Error("SettingEntries is nil, want empty")
	}
}

func TestFinalize_RebuildsSettingAfterDedupe(t *testing.T) {
	r := Finalize(ParseResult{
		Setting: "Steps: 20, steps: 30",
		SettingEntries: []SettingEntry{
			{Key: "Steps", Value: "20"},
			{Key: "steps", Value: "30"},
		},
	}, nil)

	if r.Setting != "Steps: 20" {
		t.Errorf("Setting = %q, want %q", r.Setting, "Steps: 20")
	}
	if len(r.SettingEntries) != 1 {
		t.Errorf("SettingEntries = %+v, want one entry", r.SettingEntries)
	}
}
