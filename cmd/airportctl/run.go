package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/skyhaul/airportscript/internal/airport"
	"github.com/skyhaul/airportscript/internal/script"
	"github.com/skyhaul/airportscript/pkg/core"
)

var (
	scenarioPath string
	companyID    uint8
)

var runCmd = &cobra.Command{
	Use:   "run --scenario FILE [--company N] SCRIPT.lua",
	Short: "Run an AI script for one company",
	Long: `Loads the scenario, runs the Lua script as the given company and then
applies every build and remove call it made. Each outcome is printed and
journaled to the configured storage backend.

A call that breaks a precondition (for example building a type that is not
buildable) aborts the script; calls accepted before it are still applied.`,
	Args: cobra.ExactArgs(1),
	RunE: runScript,
}

func init() {
	runCmd.Flags().StringVar(&scenarioPath, "scenario", "", "scenario file (YAML)")
	runCmd.Flags().Uint8Var(&companyID, "company", 0, "company the script acts for")
	_ = runCmd.MarkFlagRequired("scenario")
	rootCmd.AddCommand(runCmd)
}

func runScript(cmd *cobra.Command, args []string) (err error) {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, a.close(context.Background()))
	}()

	if err := a.openSession(ctx, scenarioPath); err != nil {
		return err
	}
	company := core.CompanyID(companyID)
	a.session.SetCompany(company)

	sandbox := script.New(a.facade, company, a.Logger)
	defer sandbox.Close()

	scriptErr := sandbox.RunFile(ctx, args[0])
	if scriptErr != nil {
		if airport.IsPrecondition(scriptErr) {
			a.Logger.Warn("Script aborted", "error", scriptErr)
		} else {
			a.Logger.Error("Script failed", "error", scriptErr)
		}
	}

	outcomes, err := a.settle(ctx)
	printOutcomes(cmd.OutOrStdout(), outcomes)
	return errors.Join(scriptErr, err)
}

func printOutcomes(w io.Writer, outcomes []core.Outcome) {
	if len(outcomes) == 0 {
		fmt.Fprintln(w, "No commands submitted.")
		return
	}
	failed := make(map[int]bool)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "COMMAND", "TILE", "STATION", "COST", "RESULT").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case failed[row]:
				return errorStyle
			}
			return cellStyle
		})

	for i, o := range outcomes {
		result := "ok"
		if !o.Succeeded() {
			result = o.ErrorText()
			failed[i] = true
		}
		station := "-"
		if o.Station != core.InvalidStation {
			station = strconv.Itoa(int(o.Station))
		}
		t.Row(
			strconv.Itoa(i+1),
			o.Kind.Name(),
			strconv.FormatUint(uint64(o.Tile), 10),
			station,
			strconv.FormatInt(int64(o.Cost), 10),
			result,
		)
	}
	fmt.Fprintln(w, t.String())
}
