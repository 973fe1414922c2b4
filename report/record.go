// Package report persists experiment results and renders them as phase
// transition images.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"github.com/setanarut/absynth/experiment"
)

var (
	ErrPersistence = errors.New("report: persistence failed")
	ErrRender      = errors.New("report: render failed")
)

// Record is the serialisable form of experiment.Results. Success maps are
// indexed [rho][delta]; dependent maps carry a leading multiplier index.
type Record struct {
	RunID       string                   `json:"run_id" yaml:"run_id"`
	Dimension   int                      `json:"d" yaml:"d"`
	Sigma       float64                  `json:"sigma" yaml:"sigma"`
	Deltas      []float64                `json:"deltas" yaml:"deltas"`
	Rhos        []float64                `json:"rhos" yaml:"rhos"`
	Trials      int                      `json:"numvects" yaml:"numvects"`
	SNRdB       float64                  `json:"snr_db" yaml:"snr_db"`
	Seed        uint64                   `json:"seed" yaml:"seed"`
	Lambdas     []float64                `json:"lambdas" yaml:"lambdas"`
	Independent map[string][][]float64   `json:"independent" yaml:"independent"`
	Dependent   map[string][][][]float64 `json:"dependent" yaml:"dependent"`
}

func NewRecord(res *experiment.Results) Record {
	c := res.Config
	rec := Record{
		RunID:       res.RunID,
		Dimension:   c.Dimension,
		Sigma:       c.Oversampling,
		Deltas:      c.Deltas,
		Rhos:        c.Rhos,
		Trials:      c.Trials,
		SNRdB:       c.SNRdB,
		Seed:        c.Seed,
		Lambdas:     c.Lambdas,
		Independent: make(map[string][][]float64, len(res.Independent)),
		Dependent:   make(map[string][][][]float64, len(res.Dependent)),
	}
	for _, r := range res.Independent {
		rec.Independent[r.Name] = rows(r.Success)
	}
	for _, r := range res.Dependent {
		maps := make([][][]float64, len(r.Success))
		for k, m := range r.Success {
			maps[k] = rows(m)
		}
		rec.Dependent[r.Name] = maps
	}
	return rec
}

func rows(m *mat.Dense) [][]float64 {
	r, _ := m.Dims()
	out := make([][]float64, r)
	for i := range r {
		out[i] = mat.Row(nil, i, m)
	}
	return out
}

// Grid converts a [rho][delta] map back to a matrix.
func Grid(cells [][]float64) (*mat.Dense, error) {
	if len(cells) == 0 || len(cells[0]) == 0 {
		return nil, fmt.Errorf("%w: empty map", ErrRender)
	}
	r, c := len(cells), len(cells[0])
	m := mat.NewDense(r, c, nil)
	for i, row := range cells {
		if len(row) != c {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrRender, i, len(row), c)
		}
		m.SetRow(i, row)
	}
	return m, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Save writes rec as YAML when path ends in .yaml or .yml and as indented
// JSON otherwise.
func Save(path string, rec Record) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(rec)
	} else {
		data, err = json.MarshalIndent(rec, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrPersistence, path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

func Load(path string) (Record, error) {
	var rec Record
	data, err := os.ReadFile(path)
	if err != nil {
		return rec, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if isYAML(path) {
		err = yaml.Unmarshal(data, &rec)
	} else {
		err = json.Unmarshal(data, &rec)
	}
	if err != nil {
		return rec, fmt.Errorf("%w: decode %s: %v", ErrPersistence, path, err)
	}
	return rec, nil
}
