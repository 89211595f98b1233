// Package solvent provides the domain model for the solvents the platform
// can rank a solute against.  The built-in registry carries the twenty
// solvents most frequent in the training data, ordered by dielectric
// constant.
package solvent

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/akash-acog/sol/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Entity
// ─────────────────────────────────────────────────────────────────────────────

// Solvent describes one ranking candidate.
type Solvent struct {
	// Name is the short identifier, e.g. "water" or "ethyl acetate".
	Name string `json:"name"`
	// SMILES is the structure used for featurization.
	SMILES string `json:"smiles"`
	// Dielectric is the relative permittivity at room temperature.
	Dielectric float64 `json:"dielectric"`
}

// DisplayName renders the name with its dielectric constant, the form used
// in rankings and heatmap rows.
func (s Solvent) DisplayName() string {
	return fmt.Sprintf("%s (ε = %.4g)", s.Name, s.Dielectric)
}

// ─────────────────────────────────────────────────────────────────────────────
// Registry
// ─────────────────────────────────────────────────────────────────────────────

// Registry exposes the solvent catalogue.  Implementations must be safe for
// concurrent use.
type Registry interface {
	// List returns all solvents ordered by ascending dielectric constant.
	List() []Solvent
	// Get resolves a solvent by its short name, case-insensitively.
	Get(name string) (Solvent, error)
	// BySMILES resolves a solvent by exact SMILES match.
	BySMILES(smiles string) (Solvent, bool)
}

// builtins lists the top solvents by training frequency.
var builtins = []Solvent{
	{Name: "n-hexane", SMILES: "CCCCCC", Dielectric: 1.88},
	{Name: "1,4-dioxane", SMILES: "C1COCCO1", Dielectric: 2.25},
	{Name: "toluene", SMILES: "Cc1ccccc1", Dielectric: 2.38},
	{Name: "n-butyl acetate", SMILES: "CCCCOC(=O)C", Dielectric: 5.01},
	{Name: "ethyl acetate", SMILES: "CCOC(=O)C", Dielectric: 6.02},
	{Name: "methyl acetate", SMILES: "COC(=O)C", Dielectric: 6.68},
	{Name: "THF", SMILES: "C1CCOC1", Dielectric: 7.58},
	{Name: "n-pentanol", SMILES: "CCCCCO", Dielectric: 13.9},
	{Name: "sec-butanol", SMILES: "CCC(C)O", Dielectric: 16.3},
	{Name: "n-butanol", SMILES: "CCCCO", Dielectric: 17.5},
	{Name: "isobutanol", SMILES: "CC(C)CO", Dielectric: 17.9},
	{Name: "isopropanol", SMILES: "CC(C)O", Dielectric: 17.9},
	{Name: "2-butanone", SMILES: "CCC(=O)C", Dielectric: 18.5},
	{Name: "n-propanol", SMILES: "CCCO", Dielectric: 20.1},
	{Name: "acetone", SMILES: "CC(=O)C", Dielectric: 20.7},
	{Name: "ethanol", SMILES: "CCO", Dielectric: 24.5},
	{Name: "methanol", SMILES: "CO", Dielectric: 32.7},
	{Name: "DMF", SMILES: "CN(C)C=O", Dielectric: 36.7},
	{Name: "acetonitrile", SMILES: "CC#N", Dielectric: 37.5},
	{Name: "water", SMILES: "O", Dielectric: 78.4},
}

type memoryRegistry struct {
	mu       sync.RWMutex
	ordered  []Solvent
	byName   map[string]Solvent
	bySMILES map[string]Solvent
}

// NewRegistry returns a registry preloaded with the built-in catalogue.
func NewRegistry() Registry {
	return newMemoryRegistry(builtins)
}

// NewRegistryWith returns a registry over a caller-supplied catalogue, used
// by tests and deployments with a custom solvent set.
func NewRegistryWith(solvents []Solvent) Registry {
	return newMemoryRegistry(solvents)
}

func newMemoryRegistry(solvents []Solvent) *memoryRegistry {
	r := &memoryRegistry{
		ordered:  make([]Solvent, len(solvents)),
		byName:   make(map[string]Solvent, len(solvents)),
		bySMILES: make(map[string]Solvent, len(solvents)),
	}
	copy(r.ordered, solvents)
	sort.SliceStable(r.ordered, func(i, j int) bool {
		return r.ordered[i].Dielectric < r.ordered[j].Dielectric
	})
	for _, s := range r.ordered {
		r.byName[strings.ToLower(s.Name)] = s
		r.bySMILES[s.SMILES] = s
	}
	return r
}

func (r *memoryRegistry) List() []Solvent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Solvent, len(r.ordered))
	copy(out, r.ordered)
	return out
}

func (r *memoryRegistry) Get(name string) (Solvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Solvent{}, errors.Newf(errors.ErrCodeSolventUnknown,
			"solvent %q is not in the registry", name)
	}
	return s, nil
}

func (r *memoryRegistry) BySMILES(smiles string) (Solvent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.bySMILES[smiles]
	return s, ok
}
