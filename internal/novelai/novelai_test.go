package novelai

import (
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/simonhull/promptmeta/internal/registry"
	"github.com/simonhull/promptmeta/internal/types"
)

const legacyComment = `{"steps": 28, "sampler": "k_euler_ancestral", "seed": 2981234, "strength": 0.7, "noise": 0.2, "scale": 11.0, "uc": "lowres, bad hands", "width": 512, "height": 768}`

func TestParseLegacy(t *testing.T) {
	r, err := ParseLegacy("masterpiece, 1girl", legacyComment)
	require.NoError(t, err)

	assert.Equal(t, types.ToolNovelAI, r.Tool)
	assert.Equal(t, "masterpiece, 1girl", r.Positive)
	assert.Equal(t, "lowres, bad hands", r.Negative)

	want := []types.SettingEntry{
		{Key: "Steps", Value: "28"},
		{Key: "Sampler", Value: "k_euler_ancestral"},
		{Key: "CFG scale", Value: "11.0"},
		{Key: "Seed", Value: "2981234"},
		{Key: "Strength", Value: "0.7"},
		{Key: "Noise", Value: "0.2"},
		{Key: "Size", Value: "512x768"},
	}
	if diff := cmp.Diff(want, r.SettingEntries); diff != "" {
		t.Errorf("SettingEntries mismatch (-want +got):\n%s", diff)
	}
	assert.NotContains(t, r.SettingDetail, `"uc"`)
	assert.Contains(t, r.Raw, "masterpiece, 1girl\n{")
}

func TestParseLegacy_CommentPromptFallback(t *testing.T) {
	r, err := ParseLegacy("  ", `{"prompt": "from comment", "uc": "x"}`)
	require.NoError(t, err)
	assert.Equal(t, "from comment", r.Positive)
}

func TestParseStealth(t *testing.T) {
	data, err := os.ReadFile("testdata/stealth.json")
	require.NoError(t, err)

	r, err := ParseStealth(string(data))
	require.NoError(t, err)

	assert.Equal(t, "1girl, solo, looking at viewer, masterpiece", r.Positive)
	assert.Equal(t, "lowres, bad anatomy", r.Negative)
	size, _ := r.Get("Size")
	assert.Equal(t, "832x1216", size)
	cfg, _ := r.Get("CFG scale")
	assert.Equal(t, "5.0", cfg)
	assert.Contains(t, r.Raw, `"Software": "NovelAI"`)
}

func TestParseStealth_CommentShapes(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantPos string
		wantErr bool
	}{
		{"object comment", `{"Comment": {"prompt": "obj", "steps": 1}}`, "obj", false},
		{"string comment", `{"Comment": "{\"prompt\": \"str\"}"}`, "str", false},
		{"description fallback", `{"Description": "desc", "Comment": {"steps": 1}}`, "desc", false},
		{"no comment", `{"Description": "only desc"}`, "only desc", false},
		{"bad comment string", `{"Comment": "not json"}`, "", true},
		{"not json", "hello", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseStealth(tt.doc)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPos, r.Positive)
		})
	}
}

func TestLegacyClassifier(t *testing.T) {
	c := registry.Get("novelai-legacy")
	require.NotNil(t, c)

	tests := []struct {
		name   string
		blobs  types.Blobs
		wantOK bool
	}{
		{
			name: "png chunks",
			blobs: types.Blobs{
				types.KeySoftware:    "NovelAI",
				types.KeyDescription: "a cat",
				types.KeyComment:     legacyComment,
			},
			wantOK: true,
		},
		{
			name: "exif tags",
			blobs: types.Blobs{
				types.KeySoftware:         "NovelAI",
				types.KeyImageDescription: "a cat",
				types.KeyUserComment:      legacyComment,
			},
			wantOK: true,
		},
		{
			name: "missing comment",
			blobs: types.Blobs{
				types.KeySoftware:    "NovelAI",
				types.KeyDescription: "a cat",
			},
			wantOK: false,
		},
		{
			name: "other software",
			blobs: types.Blobs{
				types.KeySoftware:    "GIMP",
				types.KeyDescription: "a cat",
				types.KeyComment:     legacyComment,
			},
			wantOK: false,
		},
		{
			name: "plain comment beside exif user comment",
			blobs: types.Blobs{
				types.KeySoftware:    "NovelAI",
				types.KeyDescription: "a cat",
				types.KeyComment:     "made with love",
				types.KeyUserComment: legacyComment,
			},
			wantOK: true,
		},
		{
			name: "comment not json",
			blobs: types.Blobs{
				types.KeySoftware:    "NovelAI",
				types.KeyDescription: "a cat",
				types.KeyComment:     "made with love",
			},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := c.Classify(&registry.Input{Blobs: tt.blobs, Logger: zap.NewNop()})
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestStealthClassifier(t *testing.T) {
	c := registry.Get("novelai-stealth")
	require.NotNil(t, c)

	_, ok := c.Classify(&registry.Input{Logger: zap.NewNop()})
	assert.False(t, ok, "no decoder")

	_, ok = c.Classify(&registry.Input{
		Logger:  zap.NewNop(),
		Stealth: func() (string, bool) { return "", false },
	})
	assert.False(t, ok, "decoder found nothing")

	r, ok := c.Classify(&registry.Input{
		Logger:  zap.NewNop(),
		Stealth: func() (string, bool) { return `{"Comment": {"prompt": "hidden", "uc": "n"}}`, true },
	})
	require.True(t, ok)
	assert.Equal(t, types.ToolNovelAI, r.Tool)
	assert.Equal(t, "hidden", r.Positive)
	assert.Equal(t, "n", r.Negative)
}
