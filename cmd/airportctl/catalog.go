package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/skyhaul/airportscript/internal/catalog"
	"github.com/skyhaul/airportscript/pkg/core"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Padding(0, 1)
)

var (
	catalogPath string
	catalogYear int
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the airport types",
	Long: `Lists every airport type the catalog knows about, with its size, price
and capabilities in the configured (or given) year.`,
	Args: cobra.NoArgs,
	RunE: runCatalog,
}

func init() {
	catalogCmd.Flags().StringVar(&catalogPath, "catalog", "", "catalog file (YAML, TOML or JSON); overrides catalog.path")
	catalogCmd.Flags().IntVar(&catalogYear, "year", 0, "game year; overrides game.year")
	rootCmd.AddCommand(catalogCmd)
}

func runCatalog(cmd *cobra.Command, args []string) error {
	c := cfg.Catalog
	if catalogPath != "" {
		c.Path = catalogPath
	}
	year := cfg.Game.Year
	if catalogYear > 0 {
		year = catalogYear
	}
	cat, err := loadCatalog(c, year)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderCatalog(cat))
	return nil
}

func renderCatalog(cat *catalog.Catalog) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("TYPE", "NAME", "SIZE", "BUILDABLE", "PRICE", "HANGARS", "HELIPADS", "TERMINALS", "RADIUS", "PLANES").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, at := range cat.Types() {
		spec, _ := cat.Spec(at)
		t.Row(
			strconv.Itoa(int(at)),
			spec.Name,
			fmt.Sprintf("%dx%d", cat.Width(at).Value, cat.Height(at).Value),
			strconv.FormatBool(cat.IsBuildable(at)),
			formatMoney(cat.Price(at)),
			strconv.Itoa(int(cat.NumHangars(at).Value)),
			strconv.Itoa(int(cat.NumHelipads(at).Value)),
			strconv.Itoa(int(cat.NumTerminals(at).Value)),
			strconv.Itoa(int(cat.CoverageRadius(at).Value)),
			planeTypes(cat, at),
		)
	}
	return t.String()
}

func formatMoney(r core.Result[core.Money]) string {
	if !r.OK() {
		return "-"
	}
	return strconv.FormatInt(int64(r.Value), 10)
}

func planeTypes(cat *catalog.Catalog, at core.AirportType) string {
	var out []string
	for _, pt := range []core.PlaneType{core.PlaneHelicopter, core.PlaneSmall, core.PlaneBig} {
		if !cat.CanPlaneTypeLand(at, pt).Value {
			continue
		}
		name := pt.String()
		if cat.IsLandingExtraDangerous(at, pt).Value {
			name += "!"
		}
		out = append(out, name)
	}
	return strings.Join(out, ",")
}
