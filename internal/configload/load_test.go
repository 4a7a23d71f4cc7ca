package configload

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/afs/file"

	"github.com/webriots/cosched"
)

func upload(t *testing.T, fs afs.Service, name, content string) string {
	t.Helper()
	URL := filepath.Join(t.TempDir(), name)
	require.NoError(t, fs.Upload(context.Background(), URL, file.DefaultFileOsMode, bytes.NewReader([]byte(content))))
	return URL
}

func TestLoad(t *testing.T) {
	fs := afs.New()
	testCases := []struct {
		description string
		name        string
		content     string
		expect      cosched.Config
	}{
		{
			description: "yaml",
			name:        "sched.yaml",
			content:     "name: yaml-sched\nstackSize: 4096\nmaxCoroutines: 8\n",
			expect:      cosched.Config{Name: "yaml-sched", StackSize: 4096, MaxCoroutines: 8},
		},
		{
			description: "toml",
			name:        "sched.toml",
			content:     "name = \"toml-sched\"\nstackSize = 8192\n",
			expect:      cosched.Config{Name: "toml-sched", StackSize: 8192},
		},
		{
			description: "json",
			name:        "sched.json",
			content:     `{"maxCoroutines": 3}`,
			expect:      cosched.Config{StackSize: cosched.DefaultStackSize, MaxCoroutines: 3},
		},
		{
			description: "yml keeps defaults",
			name:        "sched.yml",
			content:     "name: only-name\n",
			expect:      cosched.Config{Name: "only-name", StackSize: cosched.DefaultStackSize},
		},
	}

	for _, testCase := range testCases {
		URL := upload(t, fs, testCase.name, testCase.content)
		cfg, err := New(fs).Load(context.Background(), URL)
		if !assert.NoError(t, err, testCase.description) {
			continue
		}
		assert.Equal(t, testCase.expect, *cfg, testCase.description)
	}
}

func TestLoadErrors(t *testing.T) {
	r := require.New(t)
	fs := afs.New()
	ctx := context.Background()

	_, err := New(nil).Load(ctx, filepath.Join(t.TempDir(), "missing.yaml"))
	r.Error(err)
	r.Contains(err.Error(), "failed to download config")

	_, err = New(fs).Load(ctx, upload(t, fs, "sched.ini", "stackSize=1"))
	r.Error(err)
	r.Contains(err.Error(), "unsupported config format")

	_, err = New(fs).Load(ctx, upload(t, fs, "bad.yaml", "stackSize: [1, 2"))
	r.Error(err)
	r.Contains(err.Error(), "failed to decode config")

	_, err = New(fs).Load(ctx, upload(t, fs, "invalid.yaml", "stackSize: -1\n"))
	r.Error(err)
	r.Contains(err.Error(), "stackSize must be > 0")
}
