package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jokegen/internal/usecase"
)

const mockConfigYAML = `
generator:
  provider: mock
classifier:
  provider: mock
device:
  accelerator: "false"
logging:
  level: error
`

func newMockDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jokegen.yaml"), []byte(mockConfigYAML), 0644))
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { resetFlags(rootCmd) })
	err := rootCmd.Execute()
	return out.String(), err
}

// resetFlags puts scalar flags back to their defaults so that one command
// run does not leak into the next. Slice flags are left alone.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if strings.HasSuffix(f.Value.Type(), "Slice") {
			return
		}
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func TestDemo(t *testing.T) {
	out, err := execute(t, "demo", "--dir", newMockDir(t))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, strings.Repeat("-", 66)+"\n"))
	assert.Equal(t, 3, strings.Count(out, "Q: Why did frogs eat the cheese?"))
	assert.Equal(t, 3, strings.Count(out, "A: "))
	// K=1 always returns the first sample of the mock rotation.
	assert.True(t, strings.HasSuffix(out, "A: Because it was Brie-lliant.\n\n"))
}

func TestTell_JSON(t *testing.T) {
	out, err := execute(t, "tell", "--dir", newMockDir(t), "-s", "Knock knock.", "-k", "2", "--json")
	require.NoError(t, err)

	var sel struct {
		Setup      string `json:"setup"`
		Punchline  string `json:"punchline"`
		Candidates []any  `json:"candidates"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &sel))
	assert.Equal(t, "Knock knock.", sel.Setup)
	assert.Len(t, sel.Candidates, 2)
	assert.NotEmpty(t, sel.Punchline)
}

func TestTell_RequiresSetup(t *testing.T) {
	_, err := execute(t, "tell", "--dir", newMockDir(t))
	assert.Error(t, err)
}

func TestBatch(t *testing.T) {
	dir := newMockDir(t)
	setups := filepath.Join(dir, "setups")
	require.NoError(t, os.MkdirAll(setups, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(setups, "animals.txt"), []byte("# animals\nWhy did frogs eat the cheese?\nWhat do cows read?\n"), 0644))
	outPath := filepath.Join(dir, "out.json")

	out, err := execute(t, "batch", setups, "--dir", dir, "-k", "2", "-o", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Succeeded: 2")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var result usecase.BatchResult
	require.NoError(t, json.Unmarshal(data, &result))
	require.Len(t, result.Selections, 2)
	assert.Equal(t, "What do cows read?", result.Selections[1].Setup)
	assert.Empty(t, result.Errors)
}

func TestConfigInitAndShow(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "config", "init", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "jokegen.yaml")

	_, err = execute(t, "config", "init", "--dir", dir)
	assert.Error(t, err, "init must not overwrite without --force")

	out, err = execute(t, "config", "show", "--dir", newMockDir(t))
	require.NoError(t, err)
	assert.Contains(t, out, "provider: mock")
	assert.Contains(t, out, "# resolved device: cpu")
}
