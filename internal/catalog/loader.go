package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

//go:embed wines.yaml
var defaultWinesYAML []byte

// file is the on-disk shape of a catalog document.
type file struct {
	Wines []Wine `yaml:"wines"`
}

// Default returns the built-in demo catalog.
func Default(opts ...Option) (*Catalog, error) {
	wines, err := decode(defaultWinesYAML)
	if err != nil {
		return nil, fmt.Errorf("embedded catalog: %w", err)
	}
	return New(wines, opts...)
}

// Load reads a catalog from a YAML file or, when path is a directory, from
// every YAML file beneath it. An empty path yields the built-in catalog.
func Load(ctx context.Context, path string, opts ...Option) (*Catalog, error) {
	if path == "" {
		return Default(opts...)
	}
	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	var wines []Wine
	if st.IsDir() {
		wines, err = readDir(ctx, path)
	} else {
		wines, err = readFile(path)
	}
	if err != nil {
		return nil, err
	}
	return New(wines, opts...)
}

func readFile(path string) ([]Wine, error) {
	logrus.Debug("Loading catalog file from: ", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	wines, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return wines, nil
}

// readDir walks root and concatenates wines from all YAML files, ordered by path
// so the resulting catalog order does not depend on walk scheduling.
func readDir(ctx context.Context, root string) ([]Wine, error) {
	var (
		mu    sync.Mutex
		paths []string
	)
	conf := fastwalk.DefaultConfig
	err := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip unreadable entries.
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if isYAMLFile(path) {
			mu.Lock()
			paths = append(paths, path)
			mu.Unlock()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(paths)

	var wines []Wine
	for _, p := range paths {
		ws, err := readFile(p)
		if err != nil {
			return nil, err
		}
		wines = append(wines, ws...)
	}
	logrus.Debugf("Loaded %d wines from %d catalog files under %s", len(wines), len(paths), root)
	return wines, nil
}

func decode(data []byte) ([]Wine, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return f.Wines, nil
}

func isYAMLFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
