package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/theapemachine/qtm"
	"github.com/urfave/cli/v2"
	_ "go.uber.org/automaxprocs"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	heading = color.New(color.FgCyan, color.Bold)
	good    = color.New(color.FgGreen)
	bad     = color.New(color.FgRed, color.Bold)
)

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		bad.Fprintf(os.Stderr, "qtm: %v\n", err)
		os.Exit(1)
	}
}

func newApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:      "qtm",
		Usage:     "simulate quantum Turing machines over a finite tape",
		Writer:    out,
		ErrWriter: errOut,
		Metadata:  map[string]interface{}{},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "config file (yaml, toml or json)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			runCommand(),
			checkCommand(),
		},
	}
}

// setup loads the config and points the package logger at the right sink.
func setup(c *cli.Context) error {
	cfg, err := qtm.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}

	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}

	sink := c.App.ErrWriter
	if cfg.LogFile != "" {
		sink = &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		}
	}

	logger, err := qtm.NewLogger(sink, cfg.LogLevel)
	if err != nil {
		return err
	}
	qtm.SetLogger(logger)

	c.App.Metadata["config"] = cfg
	return nil
}

func configOf(c *cli.Context) *qtm.Config {
	if cfg, ok := c.App.Metadata["config"].(*qtm.Config); ok {
		return cfg
	}
	return qtm.NewConfig()
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "execute a machine on a tape and measure the result",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "machine",
				Aliases:  []string{"m"},
				Usage:    "machine specification (CSV: q1,read,write,q2,move,amplitude)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "tape",
				Aliases:  []string{"t"},
				Usage:    "initial tape over {0,1,#}, or a file holding one",
				Required: true,
			},
			&cli.IntFlag{
				Name:    "iterations",
				Aliases: []string{"i"},
				Usage:   "maximum number of steps (defaults to max_steps from the config)",
			},
			&cli.IntFlag{
				Name:  "head",
				Usage: "starting head position",
			},
			&cli.IntFlag{
				Name:  "halt",
				Usage: "halt state (defaults to the highest state)",
			},
			&cli.Uint64Flag{
				Name:  "seed",
				Usage: "seed for a reproducible measurement",
			},
			&cli.BoolFlag{
				Name:  "trace",
				Usage: "print the superposition after every step",
			},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	cfg := configOf(c)
	out := c.App.Writer

	rules, err := qtm.LoadRules(c.String("machine"))
	if err != nil {
		return err
	}

	tape, err := qtm.ReadTape(c.String("tape"))
	if err != nil {
		return err
	}

	g := qtm.DeriveGeometry(rules, len(tape))
	op, err := qtm.BuildWithConfig(rules, g, cfg)
	if err != nil {
		return err
	}

	opts := []qtm.Option{qtm.WithConfig(cfg)}
	if c.IsSet("seed") {
		opts = append(opts, qtm.WithRandom(qtm.NewSeededSource(c.Uint64("seed"))))
	}
	if c.IsSet("halt") {
		opts = append(opts, qtm.WithHaltState(c.Int("halt")))
	}

	machine, err := qtm.NewMachine(op, g.NumStates, g.StartState, g.TapeLength, opts...)
	if err != nil {
		return err
	}

	if !qtm.IsUnitary(op, machine.Geometry()) {
		qtm.Logger().Warn("operator is not unitary, probabilities may drift")
	}

	steps := cfg.MaxSteps
	if c.IsSet("iterations") {
		steps = c.Int("iterations")
	}

	broadcast := qtm.NewBroadcast()
	defer broadcast.Close()

	var trace <-chan qtm.Snapshot
	if c.Bool("trace") {
		trace = broadcast.Subscribe("trace", steps)
	}

	heading.Fprintln(out, machine)

	outcome, err := machine.Execute(tape, c.Int("head"), steps, broadcast)
	if err != nil {
		return err
	}

	if trace != nil {
		broadcast.Close()
		for s := range trace {
			heading.Fprintf(out, "step %d\n", s.Step)
			printSuperposition(out, s.Superposition)
		}
	}

	verdict := good.Sprint("halted")
	if !outcome.Halted {
		verdict = bad.Sprint("did not halt")
	}
	fmt.Fprintf(out, "run %s: %s after %d steps\n", outcome.RunID, verdict, outcome.Steps)

	sp := machine.Superposition()
	printSuperposition(out, sp)

	measured, err := machine.Measure()
	if errors.Is(err, qtm.ErrDegenerateSuperposition) {
		bad.Fprintln(out, "nothing left to measure")
		return nil
	}
	if err != nil {
		return err
	}

	heading.Fprint(out, "measured: ")
	fmt.Fprintln(out, measured)

	return nil
}

func printSuperposition(out io.Writer, sp qtm.Superposition) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"State", "Tape", "Amplitude", "Probability"})

	for _, c := range sp {
		table.Append([]string{
			"q" + strconv.Itoa(c.State),
			c.TapeString(),
			fmt.Sprintf("%.4f", c.Amplitude),
			fmt.Sprintf("%.4f", c.Probability),
		})
	}

	table.SetFooter([]string{"", "", "total", fmt.Sprintf("%.4f", sp.TotalProbability())})
	table.Render()
}

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "build a machine's operator and test it for unitarity",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "machine",
				Aliases:  []string{"m"},
				Usage:    "machine specification (CSV: q1,read,write,q2,move,amplitude)",
				Required: true,
			},
			&cli.IntFlag{
				Name:     "tape-length",
				Aliases:  []string{"n"},
				Usage:    "number of tape cells",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "exit non-zero when the operator is not unitary",
			},
		},
		Action: check,
	}
}

func check(c *cli.Context) error {
	cfg := configOf(c)
	out := c.App.Writer

	rules, err := qtm.LoadRules(c.String("machine"))
	if err != nil {
		return err
	}

	g := qtm.DeriveGeometry(rules, c.Int("tape-length"))
	op, err := qtm.BuildWithConfig(rules, g, cfg)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Geometry", "Dimension", "Nonzero", "Rules"})
	table.Append([]string{
		g.String(),
		strconv.Itoa(op.Dim()),
		strconv.Itoa(op.NNZ()),
		strconv.Itoa(len(rules)),
	})
	table.Render()

	report := qtm.CheckUnitarity(op, g, cfg.Tolerance)
	if report.Unitary() {
		good.Fprintln(out, report)
		return nil
	}

	bad.Fprintln(out, report)
	if c.Bool("strict") {
		return cli.Exit("operator is not unitary", 2)
	}
	return nil
}
