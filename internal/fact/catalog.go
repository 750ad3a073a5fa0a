package fact

import (
	_ "embed"
	"fmt"
	"math/rand/v2"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed categories.yaml
var defaultCatalog []byte

// Category describes one servable category and the hint passed to the generator.
type Category struct {
	Name   string `yaml:"name" json:"name"`
	Prompt string `yaml:"prompt" json:"prompt,omitempty"`
}

// Catalog is the fixed set of known categories. It is read-only after load.
type Catalog struct {
	byName map[string]Category
	names  []string
}

type catalogFile struct {
	Categories []Category `yaml:"categories"`
}

// DefaultCatalog returns the built-in category list.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// LoadCatalog reads a YAML catalog from path; an empty path yields the default.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(b)
}

// ParseCatalog decodes a YAML document of the form {categories: [{name, prompt}]}.
func ParseCatalog(b []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	c := &Catalog{byName: make(map[string]Category, len(f.Categories))}
	for _, cat := range f.Categories {
		name := NormalizeCategory(cat.Name)
		if name == "" {
			return nil, fmt.Errorf("parse catalog: invalid category name %q", cat.Name)
		}
		if _, dup := c.byName[name]; dup {
			continue
		}
		cat.Name = name
		c.byName[name] = cat
		c.names = append(c.names, name)
	}
	if len(c.names) == 0 {
		return nil, fmt.Errorf("parse catalog: no categories")
	}
	sort.Strings(c.names)
	return c, nil
}

// Known reports whether category (already normalized) is in the catalog.
func (c *Catalog) Known(category string) bool {
	_, ok := c.byName[category]
	return ok
}

// Lookup returns the catalog entry for category.
func (c *Catalog) Lookup(category string) (Category, bool) {
	cat, ok := c.byName[strings.ToLower(category)]
	return cat, ok
}

// Names returns the sorted category names.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Pick returns a random category name.
func (c *Catalog) Pick() string {
	return c.names[rand.IntN(len(c.names))]
}
