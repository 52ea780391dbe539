package classifier

import (
	"context"
	"sort"
	"strings"

	"fakebench/internal/services"
)

// Arch identifies a supported classifier architecture.
type Arch string

const (
	ArchMeso4          Arch = "meso4"
	ArchMesoInception4 Arch = "mesoinception4"
	ArchXception       Arch = "xception"
)

// Model is a loadable classifier evaluated one class directory at a time.
type Model interface {
	// Load binds the model to a weights file.
	Load(path string) error
	// EvaluateRecall computes the recall over the images in classDir.
	EvaluateRecall(ctx context.Context, classDir string, batchSize int) (float64, error)
}

// Factory builds a fresh model instance for one architecture.
type Factory func() Model

// Registry maps architecture names to model factories.
type Registry struct {
	factories map[Arch]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[Arch]Factory)}
}

// NewScorerRegistry returns a registry covering every supported
// architecture, each backed by the external scorer command.
func NewScorerRegistry(command string, gpuFraction float64) *Registry {
	reg := NewRegistry()
	for _, arch := range [...]Arch{ArchMeso4, ArchMesoInception4, ArchXception} {
		arch := arch
		reg.Register(arch, func() Model {
			return NewScorer(command, arch, gpuFraction)
		})
	}
	return reg
}

// Register binds an architecture to a factory, replacing any previous one.
func (r *Registry) Register(arch Arch, factory Factory) {
	r.factories[arch] = factory
}

// Lookup resolves a user supplied architecture name, case insensitively.
// Unknown names are configuration errors.
func (r *Registry) Lookup(name string) (Arch, Factory, error) {
	arch := Arch(strings.ToLower(strings.TrimSpace(name)))
	factory, ok := r.factories[arch]
	if !ok {
		return "", nil, services.Wrap(services.ErrConfiguration, "classifier", "lookup",
			"unknown model type "+strings.TrimSpace(name), nil)
	}
	return arch, factory, nil
}

// Archs lists the registered architectures in lexical order.
func (r *Registry) Archs() []Arch {
	archs := make([]Arch, 0, len(r.factories))
	for arch := range r.factories {
		archs = append(archs, arch)
	}
	sort.Slice(archs, func(i, j int) bool { return archs[i] < archs[j] })
	return archs
}
