// Package assignment draws a grimorio for an approved request.
//
// # Algorithm
//
// Pick sums the weights (Ponderacion) of every grimorio, draws a real number r
// uniformly from [0, total) and walks the grimorios in ascending
// (TipoTrebol, ID) order, keeping a running sum. The first grimorio whose
// running sum is strictly greater than r wins, so each grimorio is chosen with
// probability weight/total. Grimorios with weight 0 are never chosen.
//
// # Determinism
//
// The walk order is fixed independently of the order the caller passes the
// grimorios in. Given the same grimorios and a Source that yields the same
// sequence, Pick returns the same sequence of results.
package assignment

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"grimoire/internal/models"
)

// ErrAssignmentImpossible is returned when there is nothing to draw from:
// no grimorios, a total weight of zero, or a negative weight.
var ErrAssignmentImpossible = errors.New("assignment impossible")

// Source yields uniformly distributed floats in [0, 1).
// *rand.Rand from math/rand and math/rand/v2 both satisfy it.
type Source interface {
	Float64() float64
}

// Picker performs weighted grimorio draws. It is safe for concurrent use.
type Picker struct {
	mu  sync.Mutex
	src Source
}

// NewPicker returns a Picker drawing from src.
func NewPicker(src Source) *Picker {
	return &Picker{src: src}
}

// NewSeededPicker returns a Picker backed by a PCG generator.
// A zero seed uses the current time.
func NewSeededPicker(seed uint64) *Picker {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return NewPicker(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// Pick draws one grimorio with probability proportional to its weight.
func (p *Picker) Pick(grimorios []models.Grimorio) (models.Grimorio, error) {
	if len(grimorios) == 0 {
		return models.Grimorio{}, fmt.Errorf("%w: no grimorios available", ErrAssignmentImpossible)
	}

	ordered := Ordered(grimorios)

	total := 0
	for _, g := range ordered {
		if g.Ponderacion < 0 {
			return models.Grimorio{}, fmt.Errorf("%w: grimorio %s has negative weight %d",
				ErrAssignmentImpossible, g.ID, g.Ponderacion)
		}
		total += g.Ponderacion
	}
	if total == 0 {
		return models.Grimorio{}, fmt.Errorf("%w: total weight is zero", ErrAssignmentImpossible)
	}

	r := p.draw() * float64(total)

	cumulative := 0
	for _, g := range ordered {
		cumulative += g.Ponderacion
		if float64(cumulative) > r {
			return g, nil
		}
	}

	// Unreachable while draw() < 1; keeps rounding from ever returning nothing.
	for i := len(ordered) - 1; i >= 0; i-- {
		if ordered[i].Ponderacion > 0 {
			return ordered[i], nil
		}
	}
	return models.Grimorio{}, ErrAssignmentImpossible
}

func (p *Picker) draw() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.src.Float64()
}

// Ordered returns a copy of grimorios sorted by tier, then by ID.
func Ordered(grimorios []models.Grimorio) []models.Grimorio {
	ordered := slices.Clone(grimorios)
	slices.SortStableFunc(ordered, func(a, b models.Grimorio) int {
		if a.TipoTrebol != b.TipoTrebol {
			return a.TipoTrebol - b.TipoTrebol
		}
		return strings.Compare(a.ID, b.ID)
	})
	return ordered
}
