package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/skyhaul/airportscript/internal/airport"
	"github.com/skyhaul/airportscript/internal/scenario"
	"github.com/skyhaul/airportscript/pkg/core"
)

var (
	queryTile    int64
	queryX       int
	queryY       int
	queryType    int
	queryCompany uint8
)

var queryCmd = &cobra.Command{
	Use:   "query --scenario FILE (--tile N | --x X --y Y)",
	Short: "Show what the airport API reports for one tile",
	Args:  cobra.NoArgs,
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&scenarioPath, "scenario", "", "scenario file (YAML)")
	queryCmd.Flags().Int64Var(&queryTile, "tile", -1, "tile index")
	queryCmd.Flags().IntVar(&queryX, "x", -1, "tile x coordinate")
	queryCmd.Flags().IntVar(&queryY, "y", -1, "tile y coordinate")
	queryCmd.Flags().IntVar(&queryType, "type", 0, "airport type for the placement queries")
	queryCmd.Flags().Uint8Var(&queryCompany, "company", 0, "company for the owner-only queries")
	_ = queryCmd.MarkFlagRequired("scenario")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	file, err := scenario.LoadFile(scenarioPath)
	if err != nil {
		return err
	}
	year := cfg.Game.Year
	if file.Year > 0 {
		year = file.Year
	}
	cat, err := loadCatalog(cfg.Catalog, year)
	if err != nil {
		return err
	}
	w, err := file.Build(cat, worldSettings(cfg.Game))
	if err != nil {
		return err
	}

	tile := core.InvalidTile
	switch {
	case queryTile >= 0 && queryTile <= int64(core.InvalidTile):
		tile = core.TileIndex(queryTile)
	case queryX >= 0 && queryY >= 0:
		tile = w.Map().TileXY(uint32(queryX), uint32(queryY))
	default:
		return fmt.Errorf("either --tile or --x and --y are required")
	}

	at := core.AirportTypeInvalid
	if queryType >= 0 && queryType < core.NumAirportTypes {
		at = core.AirportType(queryType)
	}

	q := airport.NewQuery(w, cat)
	printTileFacts(cmd.OutOrStdout(), q, tile, at, core.CompanyID(queryCompany))
	return nil
}

func printTileFacts(out io.Writer, q *airport.Query, tile core.TileIndex, at core.AirportType, company core.CompanyID) {
	row := func(name string, value any) {
		fmt.Fprintf(out, "%-22s %v\n", name, value)
	}
	row("tile", tile)
	if m := q.State().Map(); m.IsValidTile(tile) {
		row("position", fmt.Sprintf("%d,%d", m.TileX(tile), m.TileY(tile)))
	}
	row("airport tile", q.IsAirportTile(tile))
	row("hangar tile", q.IsHangarTile(tile))
	row("airport type", result(q.AirportType(tile)))
	row("airport view", result(q.AirportView(tile)))
	row(fmt.Sprintf("hangars (company %d)", company), result(q.NumHangars(company, tile)))
	row("first hangar", result(q.HangarTile(company, tile, 0)))
	row(fmt.Sprintf("noise of type %d", at), result(q.NoiseLevelIncrease(tile, at)))
	row(fmt.Sprintf("nearest town (type %d)", at), result(q.NearestTown(tile, at)))
}

// result prints the value and, on failure, the reason.
func result[T any](r core.Result[T]) string {
	if r.OK() {
		return fmt.Sprint(r.Value)
	}
	return fmt.Sprintf("%v (%s)", r.Value, r.Reason)
}
