package kb

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/signalsfoundry/laserhazard/model"
)

// catalogFile is the on-disk layout of a product catalog.
type catalogFile struct {
	Products []model.LaserProduct `yaml:"products"`
}

// DecodeProducts parses a YAML catalog and validates every entry. Unknown
// fields are rejected.
func DecodeProducts(r io.Reader) ([]model.LaserProduct, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f catalogFile
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	for i := range f.Products {
		if err := Validate(&f.Products[i]); err != nil {
			return nil, fmt.Errorf("catalog entry %d: %w", i, err)
		}
	}
	return f.Products, nil
}

// LoadCatalog decodes r and adds every product to a new catalog.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	products, err := DecodeProducts(r)
	if err != nil {
		return nil, err
	}
	c := NewCatalog()
	for _, p := range products {
		if err := c.AddProduct(p); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// LoadCatalogFile opens path and loads it with LoadCatalog.
func LoadCatalogFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return LoadCatalog(f)
}
