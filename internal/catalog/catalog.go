// Package catalog holds the fixed set of wines a scan can resolve to.
package catalog

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/ensigniasec/winescan/internal/validate"
)

// Sentinel errors returned by catalog construction and lookups.
var (
	ErrEmptyCatalog  = errors.New("catalog is empty")
	ErrDuplicateWine = errors.New("duplicate wine id")
	ErrWineNotFound  = errors.New("wine not found")
)

// Wine is a single catalog record.
type Wine struct {
	ID          string  `yaml:"id" json:"id" validate:"required,wineid"`
	Name        string  `yaml:"name" json:"name" validate:"required"`
	Winery      string  `yaml:"winery" json:"winery" validate:"required"`
	Type        string  `yaml:"type" json:"type" validate:"required,oneof=red white rose sparkling dessert fortified"`
	Varietal    string  `yaml:"varietal" json:"varietal,omitempty"`
	Region      string  `yaml:"region" json:"region" validate:"required"`
	Country     string  `yaml:"country" json:"country" validate:"required"`
	Vintage     int     `yaml:"vintage" json:"vintage,omitempty" validate:"omitempty,gte=1800,lte=2100"`
	Rating      float64 `yaml:"rating" json:"rating" validate:"gte=0,lte=5"`
	Price       float64 `yaml:"price" json:"price" validate:"gte=0"`
	Description string  `yaml:"description" json:"description,omitempty"`
}

// Label returns "Name Vintage" or just the name for non-vintage wines.
func (w Wine) Label() string {
	if w.Vintage == 0 {
		return w.Name
	}
	return fmt.Sprintf("%s %d", w.Name, w.Vintage)
}

// Catalog is an ordered, read-only, non-empty list of wines.
type Catalog struct {
	wines []Wine
	index map[string]int

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithRand makes PickRandom draw from r instead of the global source.
func WithRand(r *rand.Rand) Option {
	return func(c *Catalog) { c.rng = r }
}

// WithSeed is WithRand over a PCG source seeded with seed.
func WithSeed(seed uint64) Option {
	return WithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))) //nolint:gosec // not security sensitive.
}

// New validates wines and builds a catalog preserving their order.
func New(wines []Wine, opts ...Option) (*Catalog, error) {
	if len(wines) == 0 {
		return nil, ErrEmptyCatalog
	}
	c := &Catalog{
		wines: slices.Clone(wines),
		index: make(map[string]int, len(wines)),
	}
	for i, w := range c.wines {
		if err := validate.Struct(w); err != nil {
			return nil, fmt.Errorf("invalid wine %q: %w", w.ID, err)
		}
		if _, dup := c.index[w.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateWine, w.ID)
		}
		c.index[w.ID] = i
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// PickRandom returns a uniformly chosen wine.
func (c *Catalog) PickRandom() Wine {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rng != nil {
		return c.wines[c.rng.IntN(len(c.wines))]
	}
	return c.wines[rand.IntN(len(c.wines))] //nolint:gosec // not security sensitive.
}

// Get looks up a wine by id.
func (c *Catalog) Get(id string) (Wine, error) {
	i, ok := c.index[id]
	if !ok {
		return Wine{}, fmt.Errorf("%w: %s", ErrWineNotFound, id)
	}
	return c.wines[i], nil
}

// Contains reports whether id is in the catalog.
func (c *Catalog) Contains(id string) bool {
	_, ok := c.index[id]
	return ok
}

// All returns a copy of the wines in catalog order.
func (c *Catalog) All() []Wine {
	return slices.Clone(c.wines)
}

// Len returns the number of wines.
func (c *Catalog) Len() int { return len(c.wines) }
