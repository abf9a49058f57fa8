package kb

import (
	"errors"
	"strings"
	"testing"

	"github.com/signalsfoundry/laserhazard/model"
)

func TestLoadCatalogFile(t *testing.T) {
	c, err := LoadCatalogFile("testdata/catalog.yaml")
	if err != nil {
		t.Fatalf("LoadCatalogFile: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
	yag, err := c.GetProduct("yag-1064-qs")
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if !yag.IsPulsed() || yag.Pulse.RepetitionRate != 10 || yag.PulseEnergyJ() != 0.1 {
		t.Fatalf("pulsed product decoded as %+v", yag)
	}
	gp, _ := c.GetProduct("gp-532-5")
	if gp.Mode != model.EmissionContinuous || gp.DeclaredClass != "3R" {
		t.Fatalf("cw product decoded as %+v", gp)
	}
}

func TestLoadCatalogRejectsUnknownFields(t *testing.T) {
	in := "products:\n  - id: x\n    wavelength_nm: 532\n    power_w: 1\n    colour: green\n"
	if _, err := LoadCatalog(strings.NewReader(in)); err == nil {
		t.Fatalf("expected unknown field error")
	}
}

func TestLoadCatalogRejectsInvalidAndDuplicate(t *testing.T) {
	in := "products:\n  - id: x\n    wavelength_nm: 532\n"
	if _, err := LoadCatalog(strings.NewReader(in)); !errors.Is(err, ErrInvalidProduct) {
		t.Fatalf("err = %v, want ErrInvalidProduct", err)
	}
	dup := "products:\n  - {id: x, wavelength_nm: 532, power_w: 1}\n  - {id: x, wavelength_nm: 633, power_w: 1}\n"
	if _, err := LoadCatalog(strings.NewReader(dup)); !errors.Is(err, ErrProductExists) {
		t.Fatalf("err = %v, want ErrProductExists", err)
	}
}

func TestLoadCatalogEmpty(t *testing.T) {
	c, err := LoadCatalog(strings.NewReader(""))
	if err != nil || c.Len() != 0 {
		t.Fatalf("empty catalog: %v, %v", c, err)
	}
}
