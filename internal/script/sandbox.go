// Package script runs AI scripts written in Lua against the airport API of
// one company.
package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/Shopify/go-lua"

	"github.com/skyhaul/airportscript/internal/airport"
	"github.com/skyhaul/airportscript/pkg/core"
)

// ErrClosed is returned when running a script on a closed sandbox.
var ErrClosed = errors.New("sandbox closed")

// Sandbox is a Lua state bound to one company. It is not safe for
// concurrent use.
type Sandbox struct {
	state   *lua.State
	facade  *airport.Facade
	company core.CompanyID
	logger  *slog.Logger

	// ctx of the running script, read by the mutation bindings.
	ctx context.Context
	// fault is the last contract violation raised in the running script
	// and faultMsg the Lua error value it was raised with. A script may
	// catch it with pcall, so fault only explains a failed run when the
	// run failed with faultMsg.
	fault    error
	faultMsg string
}

// New creates a sandbox acting for company. Only the base, string, table
// and math libraries are available to scripts.
func New(facade *airport.Facade, company core.CompanyID, logger *slog.Logger) *Sandbox {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Sandbox{
		state:   lua.NewState(),
		facade:  facade,
		company: company,
		logger:  logger.With("company", company),
		ctx:     context.Background(),
	}
	s.openLibraries()
	s.register()
	return s
}

func (s *Sandbox) openLibraries() {
	libs := []struct {
		name string
		open lua.Function
	}{
		{"_G", lua.BaseOpen},
		{"string", lua.StringOpen},
		{"table", lua.TableOpen},
		{"math", lua.MathOpen},
	}
	for _, lib := range libs {
		lua.Require(s.state, lib.name, lib.open, true)
		s.state.Pop(1)
	}
	for _, name := range []string{"dofile", "loadfile"} {
		s.state.PushNil()
		s.state.SetGlobal(name)
	}
	s.state.Register("print", s.print)
}

func (s *Sandbox) register() {
	l := s.state

	l.NewTable()
	lua.SetFunctions(l, s.airportFunctions(), 0)
	setInteger(l, "PT_HELICOPTER", int(core.PlaneHelicopter))
	setInteger(l, "PT_SMALL_PLANE", int(core.PlaneSmall))
	setInteger(l, "PT_BIG_PLANE", int(core.PlaneBig))
	setInteger(l, "PT_INVALID", int(core.PlaneInvalid))
	setInteger(l, "AT_INVALID", int(core.AirportTypeInvalid))
	l.SetGlobal("AIAirport")

	l.NewTable()
	lua.SetFunctions(l, s.airportTypeFunctions(), 0)
	l.SetGlobal("AIAirportType")

	globals := []struct {
		name  string
		value int
	}{
		{"STATION_NEW", int(core.StationNew)},
		{"STATION_JOIN_ADJACENT", int(core.StationJoinAdjacent)},
		{"INVALID_STATION", int(core.InvalidStation)},
		{"INVALID_TILE", int(core.InvalidTile)},
		{"INVALID_TOWN", int(core.InvalidTown)},
	}
	for _, g := range globals {
		l.PushInteger(g.value)
		l.SetGlobal(g.name)
	}
}

func setInteger(l *lua.State, name string, v int) {
	l.PushInteger(v)
	l.SetField(-2, name)
}

// Company returns the company the sandbox acts for.
func (s *Sandbox) Company() core.CompanyID { return s.company }

// Run executes src as a chunk named name. A contract violation inside a
// mutation call aborts the script and is returned wrapped, so
// airport.IsPrecondition reports it.
func (s *Sandbox) Run(ctx context.Context, name, src string) error {
	if s.state == nil {
		return ErrClosed
	}
	if err := lua.LoadBuffer(s.state, src, name, "text"); err != nil {
		msg, _ := s.state.ToString(-1)
		s.state.Pop(1)
		return fmt.Errorf("load %s: %s", name, msg)
	}
	return s.call(ctx, name)
}

// RunFile loads and executes a script file.
func (s *Sandbox) RunFile(ctx context.Context, path string) error {
	if s.state == nil {
		return ErrClosed
	}
	if err := lua.LoadFile(s.state, path, "text"); err != nil {
		msg, _ := s.state.ToString(-1)
		s.state.Pop(1)
		return fmt.Errorf("load %s: %s", path, msg)
	}
	return s.call(ctx, path)
}

func (s *Sandbox) call(ctx context.Context, name string) error {
	s.ctx = ctx
	s.fault, s.faultMsg = nil, ""
	defer func() {
		s.ctx = context.Background()
		s.fault, s.faultMsg = nil, ""
	}()

	s.logger.Debug("Running script", "script", name)
	err := s.state.ProtectedCall(0, 0, 0)
	if err == nil {
		return nil
	}
	msg, _ := s.state.ToString(-1)
	s.state.Pop(1)
	if s.fault != nil && msg == s.faultMsg {
		return fmt.Errorf("run %s: %w", name, s.fault)
	}
	return fmt.Errorf("run %s: %w", name, err)
}

// Close releases the Lua state.
func (s *Sandbox) Close() {
	s.state = nil
}

// abort raises err as a Lua error. It does not return.
func (s *Sandbox) abort(err error) {
	l := s.state
	lua.Where(l, 1)
	l.PushString(err.Error())
	l.Concat(2)
	s.fault = err
	s.faultMsg, _ = l.ToString(-1)
	l.Error()
}

func (s *Sandbox) print(l *lua.State) int {
	n := l.Top()
	parts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		str, _ := lua.ToStringMeta(l, i)
		l.Pop(1)
		parts = append(parts, str)
	}
	s.logger.Info(strings.Join(parts, "\t"), "source", "script")
	return 0
}

// Argument conversion. Out-of-range numbers become the matching invalid
// sentinel so the query layer rejects them like any other bad identifier.

func checkTile(l *lua.State, i int) core.TileIndex {
	n := lua.CheckInteger(l, i)
	if n < 0 || n > math.MaxUint32 {
		return core.InvalidTile
	}
	return core.TileIndex(n)
}

func checkAirportType(l *lua.State, i int) core.AirportType {
	n := lua.CheckInteger(l, i)
	if n < 0 || n > math.MaxUint8 {
		return core.AirportTypeInvalid
	}
	return core.AirportType(n)
}

func checkAirportView(l *lua.State, i int) core.AirportView {
	n := lua.CheckInteger(l, i)
	if n < 0 || n > math.MaxUint8 {
		return core.AirportViewInvalid
	}
	return core.AirportView(n)
}

func checkPlaneType(l *lua.State, i int) core.PlaneType {
	n := lua.CheckInteger(l, i)
	if n < math.MinInt32 || n > math.MaxInt32 {
		return core.PlaneInvalid
	}
	return core.PlaneType(n)
}

func checkStation(l *lua.State, i int) core.StationID {
	n := lua.CheckInteger(l, i)
	if n < 0 || n > math.MaxUint16 {
		return core.InvalidStation
	}
	return core.StationID(n)
}
