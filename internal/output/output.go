// Package output renders run results: the final state of every variable
// and, optionally, the per-step trajectory of selected variables.
//
// Scalars are written as plain numbers; arrays as their dims, shape and
// row-major values. Map keys are sorted by both encoders, so the same run
// always renders to the same bytes.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vk/phydrago/internal/array"
	"github.com/vk/phydrago/internal/engine"
)

// Format is an output encoding.
type Format string

const (
	YAML Format = "yaml"
	JSON Format = "json"
)

// ParseFormat maps a format name; the empty string selects YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "yaml", "yml":
		return YAML, nil
	case "json":
		return JSON, nil
	}
	return "", fmt.Errorf("unknown output format %q, want yaml or json", s)
}

// Number is an encoded float. JSON has no literal for non-finite values,
// so they are written as the strings "NaN", "+Inf" and "-Inf"; YAML uses
// its native .nan and .inf.
type Number float64

func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	switch {
	case math.IsNaN(f):
		return []byte(`"NaN"`), nil
	case math.IsInf(f, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(f, -1):
		return []byte(`"-Inf"`), nil
	}
	return json.Marshal(f)
}

func (n *Number) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q", s)
		}
		*n = Number(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// Value is the encoded form of a non-scalar array.
type Value struct {
	Dims   []string `json:"dims" yaml:"dims,flow"`
	Shape  []int    `json:"shape" yaml:"shape,flow"`
	Values []Number `json:"values" yaml:"values,flow"`
}

// Sample is one recorded point of a trajectory.
type Sample struct {
	Step  int     `json:"step" yaml:"step"`
	Time  float64 `json:"time" yaml:"time"`
	Value any     `json:"value" yaml:"value"`
}

// Document is everything written for a run.
type Document struct {
	RunID        string                    `json:"run_id" yaml:"run_id"`
	Steps        int                       `json:"steps" yaml:"steps"`
	Time         float64                   `json:"time" yaml:"time"`
	State        map[string]map[string]any `json:"state" yaml:"state"`
	Trajectories map[string][]Sample       `json:"trajectories,omitempty" yaml:"trajectories,omitempty"`
}

// NewDocument builds the document for a finished run. rec may be nil.
func NewDocument(res *engine.Result, rec *Recorder) *Document {
	doc := &Document{
		RunID: res.RunID,
		Steps: res.Steps,
		Time:  res.Time,
		State: make(map[string]map[string]any, len(res.State)),
	}
	for _, key := range res.State.Keys() {
		vars, ok := doc.State[key.Process]
		if !ok {
			vars = make(map[string]any)
			doc.State[key.Process] = vars
		}
		v, _ := res.State.Get(key.Process, key.Var)
		vars[key.Var] = Encode(v)
	}
	if rec != nil {
		doc.Trajectories = rec.Trajectories()
	}
	return doc
}

// Encode returns a scalar as a Number and any other array as a Value.
func Encode(a array.Array) any {
	if a.IsScalar() {
		f, _ := a.Float()
		return Number(f)
	}
	values := a.Values()
	nums := make([]Number, len(values))
	for i, f := range values {
		nums[i] = Number(f)
	}
	return Value{Dims: a.Dims(), Shape: a.Shape(), Values: nums}
}

// Write encodes doc to w.
func Write(w io.Writer, format Format, doc *Document) error {
	switch format {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to marshal to JSON: %w", err)
		}
		return nil
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to marshal to YAML: %w", err)
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown output format %q", format)
}

// WriteFile encodes doc to path, or to stdout when path is "-".
func WriteFile(path string, format Format, doc *Document, stdout io.Writer) error {
	if path == "" || path == "-" {
		return Write(stdout, format, doc)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := Write(f, format, doc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
