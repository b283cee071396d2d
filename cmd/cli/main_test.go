package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const skewedInput = "1\n2\n3\n4\n5\n6\n7\n8\n9\n100\n"

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(strings.NewReader(stdin), &out)
	cmd.SetArgs(args)
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	return out.String(), err
}

func TestCLI_TransformJSONFromStdin(t *testing.T) {
	out, err := run(t, skewedInput, "transform")
	require.NoError(t, err)

	var resp struct {
		Lambda     float64 `json:"lambda"`
		Family     string  `json:"family"`
		Candidates []struct {
			Lambda float64 `json:"lambda"`
		} `json:"candidates"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "boxcox", resp.Family)
	assert.Len(t, resp.Candidates, 50)
	assert.GreaterOrEqual(t, resp.Lambda, -2.0)
	assert.LessOrEqual(t, resp.Lambda, 2.0)
}

func TestCLI_TransformCSV(t *testing.T) {
	out, err := run(t, skewedInput, "transform", "--format", "csv", "--lambda-min", "0", "--lambda-max", "1")
	require.NoError(t, err)
	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 51)
	assert.Equal(t, "lambda", records[0][0])
	assert.Equal(t, []string{"combined", "selected"}, records[0][len(records[0])-2:])
	assert.Len(t, records[0], 9)

	selected := 0
	for _, rec := range records[1:] {
		if rec[len(rec)-1] == "1" {
			selected++
		}
	}
	assert.Equal(t, 1, selected)
}

func TestCLI_DensityFromCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("id,x\n1,1.2\n2,NA\n3,2.3\n4,2.9\n5,3.1\n"), 0o644))

	out, err := run(t, "", "density", "--file", path, "--column", "x", "--grid-size", "16", "--format", "csv")
	require.NoError(t, err)
	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 17)
	assert.Equal(t, "eval_point", records[0][0])
}

func TestCLI_QuantileAndApply(t *testing.T) {
	out, err := run(t, skewedInput, "qq", "--distribution", "exp", "--param", "0.2", "--line", "none")
	require.NoError(t, err)
	var qq struct {
		Distribution string            `json:"distribution"`
		Rows         []json.RawMessage `json:"rows"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &qq))
	assert.Equal(t, "exp", qq.Distribution)
	assert.Len(t, qq.Rows, 10)

	out, err = run(t, "-1\n0\n1\n", "apply", "--lambda", "1", "--start", "1", "--format", "csv")
	require.NoError(t, err)
	assert.Equal(t, "value\n0\n1\n2\n", out)
}

func TestCLI_Describe(t *testing.T) {
	out, err := run(t, skewedInput+"NA\n", "describe", "--format", "csv")
	require.NoError(t, err)
	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "n", records[0][0])
	assert.Equal(t, []string{"10", "1"}, records[1][:2])
}

func TestCLI_Errors(t *testing.T) {
	_, err := run(t, skewedInput, "transform", "--format", "xml")
	assert.Error(t, err)

	_, err = run(t, "5\n5\n5\n5\n5\n5\n5\n5\n5\n", "transform")
	assert.ErrorContains(t, err, "zero variance")

	_, err = run(t, skewedInput, "apply")
	assert.Error(t, err)

	_, err = run(t, "1\nabc\n", "density")
	assert.ErrorContains(t, err, "line 2")
}
