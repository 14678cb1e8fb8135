package swarm

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/simonhull/promptmeta/internal/registry"
	"github.com/simonhull/promptmeta/internal/types"
)

func readFixture(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("testdata/swarmui.json")
	require.NoError(t, err)
	return string(data)
}

func TestParse_Fixture(t *testing.T) {
	r, err := Parse(readFixture(t))
	require.NoError(t, err)

	assert.Equal(t, types.ToolStableSwarmUI, r.Tool)
	assert.Equal(t, "a cute cat, best quality", r.Positive)
	assert.Equal(t, "blurry, lowres", r.Negative)

	want := map[string]string{
		"Model":     "sdxl.safetensors",
		"Steps":     "30",
		"Sampler":   "euler",
		"CFG scale": "6.0",
		"Seed":      "42",
		"Size":      "512x768",
	}
	for k, v := range want {
		got, ok := r.Get(k)
		assert.True(t, ok, "missing %s", k)
		assert.Equal(t, v, got, k)
	}

	assert.True(t, len(r.SettingDetail) > 0 && r.SettingDetail[0] == '{')
	assert.NotContains(t, r.SettingDetail, `"prompt"`)
	assert.NotContains(t, r.SettingDetail, `"negativeprompt"`)
	assert.Contains(t, r.SettingDetail, `"swarm_version"`)
}

func TestParse_MissingParams(t *testing.T) {
	r, err := Parse(`{"sui_extra_data": {}}`)
	require.NoError(t, err)
	assert.Empty(t, r.Positive)
	assert.Empty(t, r.SettingEntries)
}

func TestClassifier(t *testing.T) {
	c := registry.Get("swarm")
	require.NotNil(t, c)

	tests := []struct {
		name   string
		blobs  types.Blobs
		wantOK bool
	}{
		{"png parameters", types.Blobs{types.KeyParameters: readFixture(t)}, true},
		{"jpeg user comment", types.Blobs{types.KeyUserComment: readFixture(t)}, true},
		{"marker in broken json", types.Blobs{types.KeyParameters: `{"sui_image_params": `}, false},
		{"broken parameters beside user comment", types.Blobs{
			types.KeyParameters:  `{"sui_image_params": `,
			types.KeyUserComment: readFixture(t),
		}, true},
		{"a1111 text", types.Blobs{types.KeyParameters: "cat\nSteps: 20"}, false},
		{"empty", types.Blobs{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, ok := c.Classify(&registry.Input{Blobs: tt.blobs, Logger: zap.NewNop()})
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, types.ToolStableSwarmUI, r.Tool)
			}
		})
	}
}
