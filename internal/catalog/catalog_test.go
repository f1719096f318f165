package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleWine(id string) Wine {
	return Wine{
		ID:      id,
		Name:    "Sample " + id,
		Winery:  "Sample Estate",
		Type:    "red",
		Region:  "Somewhere",
		Country: "Nowhere",
		Vintage: 2020,
		Rating:  4.1,
		Price:   20,
	}
}

func TestDefault_IsValidAndNonEmpty(t *testing.T) {
	t.Parallel()

	c, err := Default()
	require.NoError(t, err)
	require.Greater(t, c.Len(), 1)

	w, err := c.Get("chateau-margaux-2015")
	require.NoError(t, err)
	assert.Equal(t, "Château Margaux 2015", w.Label())

	nv, err := c.Get("grahams-20-year-tawny")
	require.NoError(t, err)
	assert.Equal(t, "Graham's 20 Year Old Tawny", nv.Label())
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()

	_, err := New(nil)
	require.ErrorIs(t, err, ErrEmptyCatalog)

	_, err = New([]Wine{sampleWine("a"), sampleWine("a")})
	require.ErrorIs(t, err, ErrDuplicateWine)

	bad := sampleWine("b")
	bad.Type = "orange-ish"
	_, err = New([]Wine{bad})
	require.Error(t, err)

	bad = sampleWine("Not A Slug")
	_, err = New([]Wine{bad})
	require.Error(t, err)
}

func TestGet_NotFound(t *testing.T) {
	t.Parallel()

	c, err := New([]Wine{sampleWine("a")})
	require.NoError(t, err)
	_, err = c.Get("missing")
	require.True(t, errors.Is(err, ErrWineNotFound))
	assert.False(t, c.Contains("missing"))
	assert.True(t, c.Contains("a"))
}

func TestAll_ReturnsCopy(t *testing.T) {
	t.Parallel()

	c, err := New([]Wine{sampleWine("a"), sampleWine("b")})
	require.NoError(t, err)
	all := c.All()
	all[0].Name = "mutated"
	w, err := c.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "Sample a", w.Name)
}

func TestPickRandom_SeededIsDeterministicAndInSet(t *testing.T) {
	t.Parallel()

	wines := []Wine{sampleWine("a"), sampleWine("b"), sampleWine("c"), sampleWine("d")}
	c1, err := New(wines, WithSeed(42))
	require.NoError(t, err)
	c2, err := New(wines, WithSeed(42))
	require.NoError(t, err)

	seen := map[string]struct{}{}
	for range 200 {
		w1, w2 := c1.PickRandom(), c2.PickRandom()
		require.Equal(t, w1.ID, w2.ID)
		require.True(t, c1.Contains(w1.ID))
		seen[w1.ID] = struct{}{}
	}
	assert.Greater(t, len(seen), 1)
}

func TestLoad_FileAndDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	one := "wines:\n  - id: alpha\n    name: Alpha\n    winery: W\n    type: white\n    region: R\n    country: C\n    rating: 3\n    price: 10\n"
	two := "wines:\n  - id: beta\n    name: Beta\n    winery: W\n    type: red\n    region: R\n    country: C\n    rating: 4\n    price: 12\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte(two), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "a.yml"), []byte(one), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".hidden"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden", "c.yaml"), []byte("not: [valid"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600))

	c, err := Load(context.Background(), dir)
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())
	// b.yaml sorts before nested/a.yml.
	assert.Equal(t, "beta", c.All()[0].ID)
	assert.Equal(t, "alpha", c.All()[1].ID)

	single, err := Load(context.Background(), filepath.Join(dir, "b.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 1, single.Len())

	def, err := Load(context.Background(), "")
	require.NoError(t, err)
	assert.Greater(t, def.Len(), 1)

	_, err = Load(context.Background(), filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestLoad_EmptyDirectory(t *testing.T) {
	t.Parallel()

	_, err := Load(context.Background(), t.TempDir())
	require.ErrorIs(t, err, ErrEmptyCatalog)
}
