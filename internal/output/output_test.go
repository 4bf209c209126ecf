package output

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/vk/phydrago/internal/array"
	"github.com/vk/phydrago/internal/engine"
	"github.com/vk/phydrago/internal/variable"
	"github.com/vk/phydrago/modules/npz"
)

func runGrowth(t *testing.T, steps int, observers ...engine.Observer) *engine.Result {
	t.Helper()
	grid, err := array.New([]string{npz.EnvDim, "P"}, []int{1, 2}, []float64{1, 2})
	require.NoError(t, err)
	g, err := engine.Build(context.Background(), engine.Config{Instances: []engine.Instance{
		{Name: "phytoplankton", Process: npz.NewPhytoplankton(), Inputs: map[string]array.Array{
			"dim": array.Scalar(2), "state": grid,
		}},
		{Name: "growth", Process: &npz.ConstantGrowth{}, Inputs: map[string]array.Array{"mu": array.Scalar(0.5)}},
	}})
	require.NoError(t, err)
	res, err := engine.Run(context.Background(), g, engine.Clock{Steps: steps, DT: 1}, observers...)
	require.NoError(t, err)
	return res
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": YAML, "yaml": YAML, "YML": YAML, "json": JSON} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("csv")
	assert.ErrorContains(t, err, `unknown output format "csv"`)
}

func TestWrite_YAML(t *testing.T) {
	res := runGrowth(t, 1)
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, YAML, NewDocument(res, nil)))

	out := buf.String()
	assert.Contains(t, out, "run_id: "+res.RunID)
	assert.Contains(t, out, "steps: 1")
	assert.Contains(t, out, "mu: 0.5")
	assert.Contains(t, out, "values: [1.5, 3]")
	assert.NotContains(t, out, "trajectories")

	var decoded Document
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 1, decoded.Steps)
}

func TestWrite_JSONWithTrajectory(t *testing.T) {
	rec, err := NewRecorder("phytoplankton.state", "growth.mu")
	require.NoError(t, err)
	res := runGrowth(t, 2, rec)
	require.NoError(t, rec.Err())

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, JSON, NewDocument(res, rec)))

	var decoded struct {
		State        map[string]map[string]any `json:"state"`
		Trajectories map[string][]struct {
			Step  int     `json:"step"`
			Time  float64 `json:"time"`
			Value any     `json:"value"`
		} `json:"trajectories"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 0.5, decoded.State["growth"]["mu"])

	traj := decoded.Trajectories["phytoplankton.state"]
	require.Len(t, traj, 3)
	assert.Equal(t, 0, traj[0].Step)
	assert.Equal(t, 2.0, traj[2].Time)
	last := traj[2].Value.(map[string]any)
	assert.Equal(t, []any{2.25, 4.5}, last["values"])
	assert.Len(t, decoded.Trajectories["growth.mu"], 3)
}

func TestWrite_NonFiniteValues(t *testing.T) {
	doc := &Document{State: map[string]map[string]any{
		"phytoplankton": {
			"delta": Number(math.NaN()),
			"state": Value{Dims: []string{"P"}, Shape: []int{2}, Values: []Number{1, Number(math.Inf(1))}},
		},
	}}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, JSON, doc))
	assert.Contains(t, buf.String(), `"delta": "NaN"`)
	assert.Contains(t, buf.String(), `1,`)
	assert.Contains(t, buf.String(), `"+Inf"`)

	var decoded struct {
		State map[string]struct {
			Delta Number `json:"delta"`
			State Value  `json:"state"`
		} `json:"state"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.True(t, math.IsNaN(float64(decoded.State["phytoplankton"].Delta)))
	assert.Equal(t, Number(1), decoded.State["phytoplankton"].State.Values[0])
	assert.True(t, math.IsInf(float64(decoded.State["phytoplankton"].State.Values[1]), 1))

	buf.Reset()
	require.NoError(t, Write(&buf, YAML, doc))
	assert.Contains(t, buf.String(), "delta: .nan")
	assert.Contains(t, buf.String(), "values: [1, .inf]")

	var n Number
	assert.Error(t, json.Unmarshal([]byte(`"lots"`), &n))
}

func TestRecorder(t *testing.T) {
	t.Run("malformed ref", func(t *testing.T) {
		_, err := NewRecorder("state")
		assert.Error(t, err)
	})

	t.Run("unknown variable", func(t *testing.T) {
		rec, err := NewRecorder("phytoplankton.biomass")
		require.NoError(t, err)
		runGrowth(t, 1, rec)
		assert.ErrorContains(t, rec.Err(), "phytoplankton.biomass has no stored value")
		assert.Empty(t, rec.Samples(variable.Key{Process: "phytoplankton", Var: "biomass"}))
	})
}

func TestWriteFile(t *testing.T) {
	doc := NewDocument(runGrowth(t, 1), nil)

	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, WriteFile(path, JSON, doc, nil))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))

	var stdout bytes.Buffer
	require.NoError(t, WriteFile("-", YAML, doc, &stdout))
	assert.Contains(t, stdout.String(), "state:")

	assert.Error(t, WriteFile(filepath.Join(t.TempDir(), "missing", "out.yaml"), YAML, doc, nil))
}
