package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mdfx-dev/mdfx/internal/config"
)

// chdir mirrors testing.T.Chdir (Go 1.24+), which is unavailable on the
// local toolchain.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestProcessStdin(t *testing.T) {
	chdir(t, t.TempDir())

	out, _, err := execute(t, "{{mathbold}}Hi{{/mathbold}}\n", "process", "-")
	require.NoError(t, err)
	assert.Equal(t, "𝐇𝐢\n", out)
}

func TestProcessFileToOutput(t *testing.T) {
	chdir(t, t.TempDir())
	require.NoError(t, os.WriteFile("in.md", []byte("{{frame:box}}hi{{/frame}}"), 0o644))

	_, _, err := execute(t, "", "process", "in.md", "-o", "out.md")
	require.NoError(t, err)

	data, err := os.ReadFile("out.md")
	require.NoError(t, err)
	assert.Equal(t, "【 hi 】", string(data))
}

func TestProcessRejectsUnknownBackend(t *testing.T) {
	chdir(t, t.TempDir())
	defer func() { processBackend = "shields" }()

	_, _, err := execute(t, "x", "process", "-", "--backend", "png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend")
}

func TestConvert(t *testing.T) {
	chdir(t, t.TempDir())

	out, _, err := execute(t, "", "convert", "--style", "mathbold", "AB")
	require.NoError(t, err)
	assert.Equal(t, "𝐀𝐁\n", out)
}

func TestConvertKeepsTagSyntaxLiteral(t *testing.T) {
	chdir(t, t.TempDir())

	// Argument text is styled as-is; braces and colons never reach a
	// template parse.
	out, _, err := execute(t, "", "convert", "--style", "mathbold", "v{{1:2}}")
	require.NoError(t, err)
	assert.Equal(t, "𝐯{{𝟏:𝟐}}\n", out)
}

func TestConvertUnknownStyleSuggests(t *testing.T) {
	chdir(t, t.TempDir())

	_, _, err := execute(t, "", "convert", "--style", "mathbld", "AB")
	require.Error(t, err)
}

func TestListStyles(t *testing.T) {
	chdir(t, t.TempDir())

	out, _, err := execute(t, "", "list", "styles")
	require.NoError(t, err)
	assert.Contains(t, out, "Styles:")
	assert.Contains(t, out, "mathbold")
	assert.NotContains(t, out, "Frames:")
}

func TestListUnknownSection(t *testing.T) {
	chdir(t, t.TempDir())

	_, _, err := execute(t, "", "list", "nope")
	require.Error(t, err)
}

func TestInitWritesConfig(t *testing.T) {
	chdir(t, t.TempDir())

	out, _, err := execute(t, "", "init")
	require.NoError(t, err)
	assert.Contains(t, out, ".mdfx.yml")

	raw, err := os.ReadFile(".mdfx.yml")
	require.NoError(t, err)
	var cfg config.Config
	require.NoError(t, yaml.Unmarshal(raw, &cfg))
	assert.Equal(t, "github", cfg.Render.Target)

	// Second run refuses without --force.
	_, _, err = execute(t, "", "init")
	require.Error(t, err)
	_, _, err = execute(t, "", "init", "--force")
	require.NoError(t, err)
}

func TestVersionJSON(t *testing.T) {
	defer func() { versionFormat = "text" }()

	out, _, err := execute(t, "", "version", "--format", "json")
	require.NoError(t, err)

	var info map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Contains(t, info, "version")
	assert.Contains(t, info, "go_version")
}
