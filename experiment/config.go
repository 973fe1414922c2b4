package experiment

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/setanarut/absynth/datagen"
)

var ErrInvalidConfig = errors.New("experiment: invalid configuration")

var validate = validator.New()

// Config fixes the experiment grid. It carries no algorithms; those are
// registered separately through Algorithms.
type Config struct {
	// Ambient signal dimension d.
	Dimension int `yaml:"d" validate:"gt=1"`
	// Analysis operator oversampling σ, p = σ·d.
	Oversampling float64 `yaml:"sigma" validate:"gt=1"`
	// Indeterminacy ratios m/d, the columns of every success map.
	Deltas []float64 `yaml:"deltas" validate:"required,min=1,dive,gt=0,lt=1"`
	// Sparsity ratios, the rows of every success map.
	Rhos []float64 `yaml:"rhos" validate:"required,min=1,dive,gte=0,lte=1"`
	// Nullspace multipliers for the multiplier-dependent algorithms.
	Lambdas []float64 `yaml:"lambdas" validate:"required,min=1,dive,gte=0"`
	// Signals per grid point.
	Trials int `yaml:"numvects" validate:"gt=0"`
	// ‖M·x0‖/‖noise‖ in dB.
	SNRdB float64 `yaml:"snr_db"`
	// Seed of the data generator.
	Seed uint64 `yaml:"seed"`
}

// DefaultConfig returns the standard single-cell experiment.
func DefaultConfig() Config {
	return Config{
		Dimension:    50,
		Oversampling: 2,
		Deltas:       []float64{0.05},
		Rhos:         []float64{0.05},
		Lambdas:      []float64{0, 1e-4, 1e-2, 1, 100, 1e4},
		Trials:       100,
		SNRdB:        20,
		Seed:         1,
	}
}

// LoadConfig reads a YAML file. Fields missing from the file keep their
// DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks field ranges and that every grid point yields a solvable
// problem: p > d and 1 <= m < d.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	for _, delta := range c.Deltas {
		p, m, _ := datagen.Sizes(c.Dimension, c.Oversampling, delta, 0)
		if p <= c.Dimension {
			return fmt.Errorf("%w: sigma %g gives %d operator rows for d=%d", ErrInvalidConfig, c.Oversampling, p, c.Dimension)
		}
		if m < 1 || m >= c.Dimension {
			return fmt.Errorf("%w: delta %g gives %d measurements for d=%d", ErrInvalidConfig, delta, m, c.Dimension)
		}
	}
	return nil
}

// GridPoints returns the number of (delta, rho) cells.
func (c Config) GridPoints() int {
	return len(c.Deltas) * len(c.Rhos)
}
