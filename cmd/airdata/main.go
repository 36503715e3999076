package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"airdata/internal/core/types"
	"airdata/internal/watch"

	"github.com/alecthomas/kong"
)

type Globals struct {
	Config string `short:"c" long:"config" default:"${config_file}" help:"Path to config file"`
	Debug  bool   `short:"d" long:"debug" help:"Enable debug logging"`
	Yes    bool   `short:"y" long:"yes" help:"Allow every download without asking"`
}

type AirportsCmd struct {
	Force bool `short:"f" long:"force" help:"Download the airports file even when it is fresh"`
}

type AirspacesCmd struct {
	Force     bool     `short:"f" long:"force" help:"Download the airspace files even when they are fresh"`
	Countries []string `arg:"" optional:"" help:"Country codes, e.g. de at (default: configured countries)"`
}

type AvailableCmd struct{}

type WatchCmd struct {
	Schedule  string   `short:"s" long:"schedule" help:"Cron schedule with seconds (default: configured schedule)"`
	Countries []string `arg:"" optional:"" help:"Country codes to keep fresh (default: configured countries)"`
}

type CLI struct {
	Globals

	Version   kong.VersionFlag `short:"v" long:"version" help:"Print version and exit"`
	Airports  AirportsCmd      `cmd:"airports" help:"Refresh and load the airports file"`
	Airspaces AirspacesCmd     `cmd:"airspaces" help:"Refresh and load airspaces by country"`
	Available AvailableCmd     `cmd:"available" help:"List the airspace files published upstream"`
	Watch     WatchCmd         `cmd:"watch" help:"Keep the reference data fresh on a schedule"`
}

func (c *AirportsCmd) Run(cliRoot *CLI) error {
	ctx, cancel := types.SignalContext()
	defer cancel()
	a, err := newApp(&cliRoot.Globals)
	if err != nil {
		return err
	}
	defer a.Close()

	airports := a.airports.Get(ctx, c.Force)
	fmt.Printf("%d airports in %s\n", len(airports), a.airports.Path())
	return nil
}

func (c *AirspacesCmd) Run(cliRoot *CLI) error {
	ctx, cancel := types.SignalContext()
	defer cancel()
	a, err := newApp(&cliRoot.Globals)
	if err != nil {
		return err
	}
	defer a.Close()

	countries := a.countries(c.Countries)
	if c.Force {
		a.airspaces.Update(ctx, countries, true)
	}
	airspaces := a.airspaces.Get(ctx, countries)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCOUNTRY\tBOTTOM (km)\tTOP (km)\tPOINTS")
	for _, asp := range airspaces {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%.2f\t%d\n", asp.Name, asp.Country, asp.Bottom, asp.Top, len(asp.Polygon))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("%d airspaces for %v\n", len(airspaces), countries)
	return nil
}

func (c *AvailableCmd) Run(cliRoot *CLI) error {
	ctx, cancel := types.SignalContext()
	defer cancel()
	a, err := newApp(&cliRoot.Globals)
	if err != nil {
		return err
	}
	defer a.Close()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COUNTRY\tFILE\tSIZE")
	for _, entry := range a.airspaces.Available(ctx) {
		fmt.Fprintf(w, "%s\t%s\t%s\n", entry.Country(), entry.Key, entry.Size)
	}
	return w.Flush()
}

func (c *WatchCmd) Run(cliRoot *CLI) error {
	ctx, cancel := types.SignalContext()
	defer cancel()
	a, err := newApp(&cliRoot.Globals)
	if err != nil {
		return err
	}
	defer a.Close()

	if !cliRoot.Yes && !a.cfg.AssumeYes() {
		a.log.Warn("downloads need confirmation; pass --yes or set confirm.assume to refresh unattended")
	}

	schedule := c.Schedule
	if schedule == "" {
		schedule = a.cfg.Watch.Schedule
	}
	countries := a.countries(c.Countries)
	scheduler := watch.New(schedule, func(ctx context.Context) error {
		airports := a.airports.Get(ctx, false)
		airspaces := a.airspaces.Get(ctx, countries)
		a.log.Info("reference data checked", "airports", len(airports), "airspaces", len(airspaces), "countries", countries)
		return ctx.Err()
	}, a.log.Named("watch"))

	err = scheduler.Start(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func main() {
	var cli CLI
	kctx := kong.Parse(
		&cli,
		kong.Vars{
			"version":     "0.1.0",
			"config_file": "",
		},
		kong.Name("airdata"),
		kong.Description("Airport and airspace reference data cache"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	kctx.FatalIfErrorf(kctx.Run(&cli))
}
