package hnsw

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/arborist-labs/hnswgraph/pkg/validation"
)

// NeighborHeuristic selects one of the three SELECT-NEIGHBORS variants.
type NeighborHeuristic string

const (
	HeuristicSimple    NeighborHeuristic = "simple"
	HeuristicHeuristic NeighborHeuristic = "heuristic"
	HeuristicCustom    NeighborHeuristic = "custom"
)

// Parameters configures a GraphEngine. Zero-value Parameters is not usable;
// construct via DefaultParameters or LoadParameters.
type Parameters struct {
	// M is the target out-degree per node per upper layer; layer 0 gets 2*M.
	M int `yaml:"m"`

	// LevelLambda is the decay factor used when sampling a new node's layer.
	LevelLambda float64 `yaml:"level_lambda"`

	// NeighborHeuristic selects the SELECT-NEIGHBORS variant.
	NeighborHeuristic NeighborHeuristic `yaml:"neighbor_heuristic"`

	// ConstructionPruning is efConstruction, the beam width used during insert.
	ConstructionPruning int `yaml:"construction_pruning"`

	// MinNN is a lower bound on the search-time ef.
	MinNN int `yaml:"min_nn"`

	// ExpandBestSelection enables candidate-set expansion in the heuristic selector.
	ExpandBestSelection bool `yaml:"expand_best_selection"`

	// KeepPrunedConnections enables refilling from discards in the heuristic selector.
	KeepPrunedConnections bool `yaml:"keep_pruned_connections"`

	// InitialItemsSize is an arena capacity hint.
	InitialItemsSize int `yaml:"initial_items_size"`
}

// DefaultParameters returns the parameter table from the external interface spec.
func DefaultParameters() Parameters {
	const m = 10
	return Parameters{
		M:                     m,
		LevelLambda:           1.0 / math.Log(float64(m)),
		NeighborHeuristic:     HeuristicSimple,
		ConstructionPruning:   200,
		MinNN:                 0,
		ExpandBestSelection:   false,
		KeepPrunedConnections: false,
		InitialItemsSize:      1024,
	}
}

// LoadParameters reads a YAML parameters file, filling unset fields from
// DefaultParameters and validating the result.
func LoadParameters(path string) (Parameters, error) {
	p := DefaultParameters()

	data, err := os.ReadFile(path)
	if err != nil {
		return Parameters{}, fmt.Errorf("read parameters file: %w", err)
	}

	if err := yaml.Unmarshal(data, &p); err != nil {
		return Parameters{}, fmt.Errorf("parse parameters file: %w", err)
	}

	if err := p.Validate(); err != nil {
		return Parameters{}, err
	}

	return p, nil
}

// Validate checks the parameters against the validator-backed request shape
// and the heuristic enum, which struct tags alone cannot express.
func (p Parameters) Validate() error {
	req := &validation.ParametersRequest{
		M:                   p.M,
		LevelLambda:         p.LevelLambda,
		ConstructionPruning: p.ConstructionPruning,
		MinNN:               p.MinNN,
		InitialItemsSize:    p.InitialItemsSize,
	}
	if err := validation.ValidateParameters(req); err != nil {
		return err
	}

	switch p.NeighborHeuristic {
	case HeuristicSimple, HeuristicHeuristic, HeuristicCustom:
	default:
		return fmt.Errorf("NeighborHeuristic: unknown value %q", p.NeighborHeuristic)
	}

	return nil
}

// mForLayer returns GetM(layer): 2*M at layer 0, M above it.
func (p Parameters) mForLayer(layer int) int {
	if layer == 0 {
		return 2 * p.M
	}
	return p.M
}

// searchEf returns the effective beam width for a k-NN search.
func (p Parameters) searchEf(k int) int {
	if p.MinNN > k {
		return p.MinNN
	}
	return k
}
