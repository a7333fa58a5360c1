package airport

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/skyhaul/airportscript/pkg/core"
)

// Executor accepts mutation requests for deferred execution. Accepted only
// means queued; the result arrives later.
type Executor interface {
	Submit(ctx context.Context, req core.Request) (bool, error)
}

// Facade validates build and remove calls and hands them to the executor.
type Facade struct {
	query    *Query
	executor Executor
	logger   *slog.Logger
}

// NewFacade creates a façade. A nil logger discards logs.
func NewFacade(q *Query, exec Executor, logger *slog.Logger) *Facade {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Facade{query: q, executor: exec, logger: logger}
}

// Query returns the query layer the façade validates against.
func (f *Facade) Query() *Query { return f.query }

func (f *Facade) reject(op string, check Check, value any) error {
	err := &PreconditionError{Op: op, Check: check, Value: value}
	f.logger.Warn("Precondition failed", "op", op, "check", string(check), "value", fmt.Sprint(value))
	return err
}

func (f *Facade) checkBuild(op string, tile core.TileIndex, t core.AirportType, v core.AirportView, choice core.StationChoice) error {
	cat := f.query.Catalog()
	if !f.query.validTile(tile) {
		return f.reject(op, CheckValidTile, tile)
	}
	if !cat.IsBuildable(t) {
		return f.reject(op, CheckBuildable, t)
	}
	if !cat.IsValidView(t, v) {
		return f.reject(op, CheckValidView, v)
	}
	switch choice.Kind() {
	case core.AllocateNew, core.JoinAdjacent:
	case core.JoinExisting:
		if _, ok := f.query.State().Station(choice.Station()); !ok {
			return f.reject(op, CheckStationChoice, choice)
		}
	default:
		return f.reject(op, CheckStationChoice, choice)
	}
	return nil
}

// BuildAirport asks the executor to build an airport of type t with view v
// at tile. It returns whether the request was accepted for execution.
func (f *Facade) BuildAirport(ctx context.Context, company core.CompanyID, tile core.TileIndex, t core.AirportType, v core.AirportView, choice core.StationChoice) (bool, error) {
	if err := f.checkBuild("BuildAirport", tile, t, v, choice); err != nil {
		return false, err
	}
	return f.submit(ctx, core.Request{
		Kind:    core.CmdBuildAirport,
		Tile:    tile,
		P1:      core.EncodeAirport(t, v),
		P2:      core.EncodeStationChoice(choice),
		Company: company,
	})
}

// RemoveAirport asks the executor to clear the airport covering tile.
func (f *Facade) RemoveAirport(ctx context.Context, company core.CompanyID, tile core.TileIndex) (bool, error) {
	const op = "RemoveAirport"
	if !f.query.validTile(tile) {
		return false, f.reject(op, CheckValidTile, tile)
	}
	if !f.query.IsAirportTile(tile) && !f.query.IsHangarTile(tile) {
		return false, f.reject(op, CheckAirportTile, tile)
	}
	return f.submit(ctx, core.Request{
		Kind:    core.CmdLandscapeClear,
		Tile:    tile,
		Company: company,
	})
}

// Estimate checks a build call like BuildAirport would and returns its
// price without submitting anything.
func (f *Facade) Estimate(ctx context.Context, company core.CompanyID, tile core.TileIndex, t core.AirportType, v core.AirportView, choice core.StationChoice) (core.Money, error) {
	if err := ctx.Err(); err != nil {
		return -1, err
	}
	if err := f.checkBuild("Estimate", tile, t, v, choice); err != nil {
		return -1, err
	}
	price := f.query.Catalog().Price(t)
	f.logger.Debug("Estimated airport", "company", company, "tile", uint32(tile), "type", t, "price", int64(price.Value))
	return price.Value, nil
}

// submit is the only place requests are created.
func (f *Facade) submit(ctx context.Context, req core.Request) (bool, error) {
	accepted, err := f.executor.Submit(ctx, req)
	if err != nil {
		f.logger.Error("Submit failed", "command", req.Kind.Name(), "tile", uint32(req.Tile), "error", err)
		return false, err
	}
	f.logger.Debug("Submitted command",
		"command", req.Kind.Name(),
		"company", req.Company,
		"tile", uint32(req.Tile),
		"p1", req.P1,
		"p2", req.P2,
		"accepted", accepted)
	return accepted, nil
}
