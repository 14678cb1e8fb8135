package fooocus

import (
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/promptmeta/internal/registry"
	"github.com/simonhull/promptmeta/internal/types"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name    string
		comment string
		want    bool
	}{
		{"prompt and negative", `{"prompt": "a", "negative_prompt": "b"}`, true},
		{"styles and negative", `{"styles": "[]", "negative_prompt": ""}`, true},
		{"performance and negative", ` {"performance": "Speed", "negative_prompt": ""}`, true},
		{"no negative", `{"prompt": "a", "styles": "[]"}`, false},
		{"negative only", `{"negative_prompt": "b"}`, false},
		{"novelai comment", `{"uc": "bad", "steps": 28, "scale": 5}`, false},
		{"not json", "a cat, negative_prompt", false},
		{"broken json", `{"prompt": "a", "negative_prompt": `, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := Match(tt.comment)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Fixture(t *testing.T) {
	data, err := os.ReadFile("testdata/fooocus.json")
	require.NoError(t, err)

	params, ok := Match(string(data))
	require.True(t, ok)

	r := Parse(params)
	assert.Equal(t, types.ToolFooocus, r.Tool)
	assert.Equal(t, "a lighthouse at dusk, cinematic", r.Positive)
	assert.Equal(t, "low quality, watermark", r.Negative)

	want := []types.SettingEntry{
		{Key: "Model", Value: "juggernautXL_v8Rundiffusion.safetensors"},
		{Key: "Sampler", Value: "dpmpp_2m_sde_gpu"},
		{Key: "CFG scale", Value: "4"},
		{Key: "Seed", Value: "7281948217364"},
		{Key: "Scheduler", Value: "karras"},
		{Key: "Performance", Value: "Speed"},
		{Key: "Size", Value: "1152x896"},
	}
	if diff := cmp.Diff(want, r.SettingEntries); diff != "" {
		t.Errorf("SettingEntries mismatch (-want +got):\n%s", diff)
	}
	assert.NotContains(t, r.SettingDetail, "lighthouse")
	assert.Contains(t, r.SettingDetail, `"sharpness": 2`)
}

func TestClassifier(t *testing.T) {
	c := registry.Get("fooocus")
	require.NotNil(t, c)

	r, ok := c.Classify(&registry.Input{Blobs: types.Blobs{
		types.KeyUserComment: `{"prompt": "p", "negative_prompt": "n", "steps": 30}`,
	}})
	require.True(t, ok)
	assert.Equal(t, "p", r.Positive)
	v, _ := r.Get("Steps")
	assert.Equal(t, "30", v)

	_, ok = c.Classify(&registry.Input{Blobs: types.Blobs{types.KeyComment: `{"uc": "x"}`}})
	assert.False(t, ok)
}

func TestClassifier_SkipsPlainComment(t *testing.T) {
	c := registry.Get("fooocus")
	require.NotNil(t, c)

	r, ok := c.Classify(&registry.Input{Blobs: types.Blobs{
		types.KeyComment:     "Created with GIMP",
		types.KeyUserComment: `{"prompt": "p", "negative_prompt": "n"}`,
	}})
	require.True(t, ok)
	assert.Equal(t, "p", r.Positive)
	assert.Contains(t, r.Evidence, types.KeyUserComment+" is JSON with negative_prompt")
}
