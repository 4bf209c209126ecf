package npz_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/phydrago/internal/array"
	"github.com/vk/phydrago/internal/engine"
	"github.com/vk/phydrago/internal/registry"
	"github.com/vk/phydrago/internal/variable"
	"github.com/vk/phydrago/modules/npz"
)

func scalars(kv ...any) map[string]array.Array {
	out := make(map[string]array.Array)
	for i := 0; i < len(kv); i += 2 {
		out[kv[i].(string)] = array.Scalar(kv[i+1].(float64))
	}
	return out
}

func run(t *testing.T, clock engine.Clock, instances ...engine.Instance) (*engine.Graph, *engine.Result) {
	t.Helper()
	g, err := engine.Build(context.Background(), engine.Config{Instances: instances})
	require.NoError(t, err)
	res, err := engine.Run(context.Background(), g, clock)
	require.NoError(t, err)
	return g, res
}

func floatAt(t *testing.T, res *engine.Result, process, name string) float64 {
	t.Helper()
	v, ok := res.State.Get(process, name)
	require.True(t, ok, "%s.%s not in state", process, name)
	f, err := v.Float()
	require.NoError(t, err)
	return f
}

func TestConstantGrowth(t *testing.T) {
	instances := func() []engine.Instance {
		return []engine.Instance{
			{Name: "phytoplankton", Process: npz.NewPhytoplankton(), Inputs: scalars("dim", 1.0, "state", 1.0)},
			{Name: "growth", Process: &npz.ConstantGrowth{}, Inputs: scalars("mu", 0.1)},
		}
	}

	t.Run("one step", func(t *testing.T) {
		_, res := run(t, engine.Clock{Steps: 1, DT: 1}, instances()...)
		assert.InDelta(t, 1.1, floatAt(t, res, "phytoplankton", "state"), 1e-12)
	})

	t.Run("ten steps compound", func(t *testing.T) {
		_, res := run(t, engine.Clock{Steps: 10, DT: 1}, instances()...)
		assert.InDelta(t, math.Pow(1.1, 10), floatAt(t, res, "phytoplankton", "state"), 1e-9)
	})
}

func TestGrazing(t *testing.T) {
	const (
		b, c, dt = 0.05, 0.01, 0.5
		steps    = 6
	)
	_, res := run(t, engine.Clock{Steps: steps, DT: dt},
		engine.Instance{Name: "phytoplankton", Process: npz.NewPhytoplankton(), Inputs: scalars("dim", 1.0, "state", 2.0)},
		engine.Instance{Name: "grazing", Process: &npz.Grazing{}, Inputs: scalars("b", b, "c", c)},
	)

	p, now := 2.0, 0.0
	for i := 0; i < steps; i++ {
		now += dt
		p += -(b + c*now) * p * dt
	}
	assert.InDelta(t, p, floatAt(t, res, "phytoplankton", "state"), 1e-12)
	assert.InDelta(t, steps*dt, floatAt(t, res, "grazing", "time"), 1e-12)
}

func TestFullModel(t *testing.T) {
	const (
		mu, b, c, dt = 0.1, 0.05, 0.002, 1.0
		steps        = 20
	)
	g, res := run(t, engine.Clock{Steps: steps, DT: dt},
		engine.Instance{Name: "environment", Process: npz.NewEnvironment(), Inputs: scalars("model_dims", 0.0)},
		engine.Instance{Name: "phytoplankton", Process: npz.NewPhytoplankton(), Inputs: scalars("dim", 1.0, "state", 1.0)},
		engine.Instance{Name: "zooplankton", Process: npz.NewZooplankton(), Inputs: scalars("dim", 1.0, "state", 0.5)},
		engine.Instance{Name: "growth", Process: &npz.ConstantGrowth{}, Inputs: scalars("mu", mu)},
		engine.Instance{Name: "grazing", Process: &npz.ZooGrazing{}, Inputs: scalars("b", b, "c", c)},
	)
	assert.Equal(t, []string{"environment", "growth", "grazing", "phytoplankton", "zooplankton"}, g.Order())

	p, z, now := 1.0, 0.5, 0.0
	for i := 0; i < steps; i++ {
		now += dt
		rate := b + c*now
		dp := (mu*p - rate*p) * dt
		dz := rate * p * dt
		p, z = p+dp, z+dz
	}
	assert.InDelta(t, p, floatAt(t, res, "phytoplankton", "state"), 1e-9)
	assert.InDelta(t, z, floatAt(t, res, "zooplankton", "state"), 1e-9)
	assert.Equal(t, 0.0, floatAt(t, res, "environment", "comp_flux"))

	env, ok := res.State.Get("environment", "env")
	require.True(t, ok)
	assert.Equal(t, []float64{0}, env.Values())
}

func TestGridState(t *testing.T) {
	state, err := array.New([]string{npz.EnvDim, "P"}, []int{1, 3}, []float64{1, 2, 4})
	require.NoError(t, err)

	_, res := run(t, engine.Clock{Steps: 1, DT: 1},
		engine.Instance{Name: "environment", Process: npz.NewEnvironment(), Inputs: scalars("model_dims", 0.0)},
		engine.Instance{Name: "phytoplankton", Process: npz.NewPhytoplankton(), Inputs: map[string]array.Array{
			"dim": array.Scalar(3), "state": state,
		}},
		engine.Instance{Name: "growth", Process: &npz.ConstantGrowth{}, Inputs: scalars("mu", 0.5)},
	)

	got, ok := res.State.Get("phytoplankton", "state")
	require.True(t, ok)
	assert.Equal(t, []string{npz.EnvDim, "P"}, got.Dims())
	assert.Equal(t, []float64{1.5, 3, 6}, got.Values())

	idx, _ := res.State.Get("phytoplankton", "P")
	assert.Equal(t, []float64{0, 1, 2}, idx.Values())
}

func TestGridState_SizeMustMatchDim(t *testing.T) {
	state, err := array.New([]string{npz.EnvDim, "P"}, []int{1, 2}, []float64{1, 2})
	require.NoError(t, err)

	g, err := engine.Build(context.Background(), engine.Config{Instances: []engine.Instance{
		{Name: "phytoplankton", Process: npz.NewPhytoplankton(), Inputs: map[string]array.Array{
			"dim": array.Scalar(3), "state": state,
		}},
		{Name: "growth", Process: &npz.ConstantGrowth{}, Inputs: scalars("mu", 0.5)},
	}})
	require.NoError(t, err)
	_, err = engine.Run(context.Background(), g, engine.Clock{Steps: 1, DT: 1})

	var stepErr *engine.StepComputationError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, engine.PhaseInitialize, stepErr.Phase)
	assert.Equal(t, "phytoplankton", stepErr.Process)
}

func TestZooplanktonRequiresProducers(t *testing.T) {
	_, err := engine.Build(context.Background(), engine.Config{Instances: []engine.Instance{
		{Name: "zooplankton", Process: npz.NewZooplankton(), Inputs: scalars("dim", 1.0, "state", 1.0)},
	}})
	assert.ErrorContains(t, err, `group "Z_flux" has no producers`)
}

func TestRebindPhytoplankton(t *testing.T) {
	_, res := run(t, engine.Clock{Steps: 1, DT: 1},
		engine.Instance{Name: "diatoms", Process: npz.NewPhytoplankton(), Inputs: scalars("dim", 1.0, "state", 2.0)},
		engine.Instance{
			Name: "growth", Process: &npz.ConstantGrowth{}, Inputs: scalars("mu", 0.25),
			Bindings: map[string]variable.Ref{"P_state": {Process: "diatoms", Var: "state"}},
		},
	)
	assert.InDelta(t, 2.5, floatAt(t, res, "diatoms", "state"), 1e-12)
}

func TestModuleRegistersTypes(t *testing.T) {
	r := registry.New()
	r.RegisterModules(&npz.Module{})
	assert.Equal(t, []string{"ConstantGrowth", "Environment", "Grazing", "Phytoplankton", "ZooGrazing", "Zooplankton"}, r.Types())

	typ, ok := r.Lookup("Zooplankton")
	require.True(t, ok)
	a, b := typ.New(), typ.New()
	assert.NotSame(t, a, b)
}
