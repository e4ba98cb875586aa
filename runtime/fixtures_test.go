package runtime

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixture is one entry of testdata/programs.json
type fixture struct {
	Name        string `json:"name"`
	File        string `json:"file"`
	Input       string `json:"input,omitempty"`
	Output      string `json:"output"`
	Description string `json:"description,omitempty"`
}

// loadFixtures reads the sample program manifest, checking it against
// its schema first so a malformed entry fails loudly instead of
// running as a half-empty fixture.
func loadFixtures(t *testing.T) []fixture {
	t.Helper()

	manifest, err := os.ReadFile(filepath.Join("testdata", "programs.json"))
	require.NoError(t, err)

	schemaFile, err := os.Open(filepath.Join("testdata", "programs.schema.json"))
	require.NoError(t, err)
	defer func() { _ = schemaFile.Close() }()

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	require.NoError(t, compiler.AddResource("schema://programs.json", schemaFile))
	schema, err := compiler.Compile("schema://programs.json")
	require.NoError(t, err)

	var decoded interface{}
	require.NoError(t, json.Unmarshal(manifest, &decoded))
	require.NoError(t, schema.Validate(decoded), "manifest must match its schema")

	var fixtures []fixture
	require.NoError(t, json.Unmarshal(manifest, &fixtures))
	require.NotEmpty(t, fixtures)
	return fixtures
}

// TestSamplePrograms runs every manifest program end to end and checks
// its exact output
func TestSamplePrograms(t *testing.T) {
	for _, fx := range loadFixtures(t) {
		t.Run(fx.Name, func(t *testing.T) {
			source, err := os.ReadFile(filepath.Join("testdata", fx.File))
			require.NoError(t, err)

			var output bytes.Buffer
			result, err := ExecuteSource(source, ExecutionOptions{
				Stdin:  strings.NewReader(fx.Input),
				Stdout: &output,
			})

			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, fx.Output, output.String())
		})
	}
}
