package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/signalsfoundry/laserhazard/core"
	"github.com/signalsfoundry/laserhazard/internal/hazardapi/types"
	"github.com/signalsfoundry/laserhazard/internal/logging"
	"github.com/signalsfoundry/laserhazard/kb"
	"github.com/signalsfoundry/laserhazard/model"
)

func (a *app) catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and assess the products in a catalog file",
	}
	cmd.PersistentFlags().String("catalog", "configs/lasers.yaml", "product catalog YAML file")
	cmd.AddCommand(a.catalogListCmd(), a.catalogShowCmd(), a.catalogAssessCmd())
	return cmd
}

func (a *app) loadCatalog(cmd *cobra.Command) (*kb.Catalog, error) {
	path := a.v.GetString("catalog")
	c, err := kb.LoadCatalogFile(path)
	if err != nil {
		return nil, err
	}
	a.log.Debug(cmd.Context(), "catalog loaded", logging.String("path", path), logging.Int("products", c.Len()))
	return c, nil
}

func (a *app) catalogListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List catalogued products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.loadCatalog(cmd)
			if err != nil {
				return err
			}
			products := c.ListProducts()
			return a.render(types.ProductList{Products: products}, func(w io.Writer) {
				fmt.Fprintln(w, "ID\tNAME\tWAVELENGTH (nm)\tMODE\tPOWER (W)\tDECLARED")
				for _, p := range products {
					fmt.Fprintf(w, "%s\t%s\t%g\t%s\t%g\t%s\n", p.ID, p.Name, p.WavelengthNm, p.ModeName, p.PowerW, orDash(p.DeclaredClass))
				}
			})
		},
	}
}

func (a *app) catalogShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <product-id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.loadCatalog(cmd)
			if err != nil {
				return err
			}
			p, err := c.GetProduct(args[0])
			if err != nil {
				return err
			}
			return a.render(p, func(w io.Writer) {
				fmt.Fprintf(w, "id\t%s\n", p.ID)
				fmt.Fprintf(w, "name\t%s\n", p.Name)
				if p.Manufacturer != "" {
					fmt.Fprintf(w, "manufacturer\t%s\n", p.Manufacturer)
				}
				fmt.Fprintf(w, "wavelength\t%g nm\n", p.WavelengthNm)
				fmt.Fprintf(w, "mode\t%s\n", p.ModeName)
				fmt.Fprintf(w, "power\t%g W\n", p.PowerW)
				fmt.Fprintf(w, "beam diameter\t%g m\n", p.BeamDiameterM)
				fmt.Fprintf(w, "divergence\t%g rad\n", p.BeamDivergenceRad)
				if p.Pulse != nil {
					fmt.Fprintf(w, "pulse\t%g s at %g Hz\n", p.Pulse.WidthS, p.Pulse.RepetitionRate)
				}
				fmt.Fprintf(w, "declared class\t%s\n", orDash(p.DeclaredClass))
			})
		},
	}
}

func (a *app) catalogAssessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assess [product-id...]",
		Short: "Assess MPEs, NOHD, class and eyewear OD of products",
		Long: `assess evaluates every named product, or the whole catalog when no ID
is given, and flags products whose declared class disagrees with the
computed one.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.loadCatalog(cmd)
			if err != nil {
				return err
			}
			var products []model.LaserProduct
			if len(args) == 0 {
				products = c.ListProducts()
			}
			for _, id := range args {
				p, err := c.GetProduct(id)
				if err != nil {
					return err
				}
				products = append(products, p)
			}

			assessments := make([]core.ProductAssessment, 0, len(products))
			for i := range products {
				pa, err := a.engine.AssessProduct(&products[i])
				if err != nil {
					return fmt.Errorf("assess %s: %w", products[i].ID, err)
				}
				if pa.ClassMismatch {
					a.log.Warn(cmd.Context(), "declared class disagrees with computed class",
						logging.String("product_id", pa.ProductID),
						logging.String("declared", products[i].DeclaredClass),
						logging.String("computed", pa.Classification.Class.String()),
					)
				}
				assessments = append(assessments, pa)
			}
			return a.render(assessments, func(w io.Writer) {
				fmt.Fprintln(w, "ID\tCLASS\tDECLARED\tEYE MPE\tNOHD\tOD\t")
				for i, pa := range assessments {
					flag := ""
					if pa.ClassMismatch {
						flag = "mismatch"
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.1f\t%s\n",
						pa.ProductID,
						classLabel(pa.Classification.Class),
						orDash(products[i].DeclaredClass),
						pa.Beam.EyeMPE.Quantity,
						formatMetres(pa.Beam.NOHD.DistanceMeters),
						pa.Eyewear.OpticalDensity,
						flag,
					)
				}
			})
		},
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
