package discovery

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// DefaultQueries is the built-in search catalog, ordered by yield.
var DefaultQueries = []string{
	"dermatologist skincare routine board certified",
	"dermatologist explains acne treatment",
	"board certified dermatologist skin cancer screening",
	"dermatologist reacts to skincare products",
	"dermatologist cosmetic procedures before after",
	"dermatologist Mohs surgery patient education",
	"dermatologist botox filler injection technique",
	"dermatologist eczema psoriasis treatment plan",
	"dermatologist laser treatment skin resurfacing",
	"dermatologist practice day in the life clinic",
}

// Catalog is the ordered list of search queries available to a run.
type Catalog struct {
	Queries []string `yaml:"queries" json:"queries"`
}

// DefaultCatalog returns a catalog holding DefaultQueries.
func DefaultCatalog() *Catalog {
	return &Catalog{Queries: append([]string(nil), DefaultQueries...)}
}

// LoadCatalog reads a catalog from a YAML file of the form
//
//	queries:
//	  - first query
//	  - second query
//
// An empty path yields the default catalog.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "discovery: read catalog %s", path)
	}

	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, eris.Wrap(err, "discovery: parse catalog")
	}

	queries := make([]string, 0, len(cat.Queries))
	for _, q := range cat.Queries {
		if q = strings.TrimSpace(q); q != "" {
			queries = append(queries, q)
		}
	}
	if len(queries) == 0 {
		return nil, eris.Errorf("discovery: catalog %s has no queries", path)
	}
	cat.Queries = queries
	return &cat, nil
}

// Select returns the first n queries, clamping n to 1..len(Queries).
func (c *Catalog) Select(n int) []string {
	if n < 1 {
		n = 1
	}
	if n > len(c.Queries) {
		n = len(c.Queries)
	}
	return append([]string(nil), c.Queries[:n]...)
}
