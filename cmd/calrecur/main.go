package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/cyp0633/calrecur/config"
	"github.com/cyp0633/calrecur/event"
	"github.com/cyp0633/calrecur/exception"
	"github.com/cyp0633/calrecur/ical"
	"github.com/cyp0633/calrecur/internal/document"
	"github.com/cyp0633/calrecur/recurrence"
	"github.com/cyp0633/calrecur/reminder"
)

func main() {
	// Load .env file first, but don't error if it doesn't exist.
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		slog.Error("calrecur failed", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "calrecur",
		Usage: "Expand recurring events, manage their exceptions and plan reminders.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   "calrecur.yaml",
				Usage:   "path to the YAML configuration",
				EnvVars: []string{"CALRECUR_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn or error (overrides the config file)",
				EnvVars: []string{"CALRECUR_LOG_LEVEL"},
			},
		},
		Commands: []*cli.Command{
			expandCommand(),
			validateCommand(),
			remindCommand(),
			exportCommand(),
			importCommand(),
			initConfigCommand(),
		},
	}
}

// session is what every command needs after flags are parsed.
type session struct {
	cfg    *config.Config
	loc    *time.Location
	logger *slog.Logger
}

func newSession(c *cli.Context) (*session, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if lvl := c.String("log-level"); lvl != "" {
		cfg.LogLevel = lvl
		cfg.Normalize()
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	return &session{cfg: cfg, loc: loc, logger: logger}, nil
}

func (rt *session) loadSeries(path string) (*document.Series, event.RecurrentEvent, error) {
	doc, err := document.LoadSeries(path)
	if err != nil {
		return nil, event.RecurrentEvent{}, err
	}
	ev, err := doc.ToEvent(rt.loc)
	if err != nil {
		return nil, event.RecurrentEvent{}, fmt.Errorf("%s: %w", path, err)
	}
	return doc, ev, nil
}

// window reads --from and --to, defaulting to the 30 days after the series
// start.
func (rt *session) window(c *cli.Context, ev event.RecurrentEvent) (time.Time, time.Time, error) {
	from := ev.StartTime
	if s := c.String("from"); s != "" {
		t, err := document.ParseTime(s, rt.loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("--from: %w", err)
		}
		from = t
	}
	to := from.AddDate(0, 0, 30)
	if s := c.String("to"); s != "" {
		t, err := document.ParseTime(s, rt.loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("--to: %w", err)
		}
		to = t
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("--from must be before --to")
	}
	return from, to, nil
}

func fileFlag(usage string) *cli.StringFlag {
	return &cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: usage, Required: true}
}

func windowFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "from", Usage: "window start (default: series start)"},
		&cli.StringFlag{Name: "to", Usage: "window end, exclusive (default: 30 days after --from)"},
		&cli.IntFlag{Name: "max", Usage: "maximum number of instances (default from config)"},
	}
}

func expandCommand() *cli.Command {
	return &cli.Command{
		Name:  "expand",
		Usage: "List the effective instances of a series in a window.",
		Flags: append([]cli.Flag{fileFlag("series YAML file")}, windowFlags()...),
		Action: func(c *cli.Context) error {
			rt, err := newSession(c)
			if err != nil {
				return err
			}
			_, ev, err := rt.loadSeries(c.String("file"))
			if err != nil {
				return err
			}
			from, to, err := rt.window(c, ev)
			if err != nil {
				return err
			}

			engine := recurrence.NewEngineWithConfig(rt.cfg.EngineConfig(rt.logger))
			occs, err := exception.EffectiveInstancesWith(engine, ev, from, to, c.Int("max"))
			if err != nil {
				return err
			}
			rt.logger.Debug("expanded series", "id", ev.ID, "instances", len(occs))

			w := c.App.Writer
			fmt.Fprintf(w, "%s: %s\n", ev.Title, recurrence.RuleToString(ev.RecurrenceRule, rt.cfg.Locale))
			for _, o := range occs {
				line := fmt.Sprintf("%s  %s - %s  %s",
					o.StartDate.In(rt.loc).Format(time.DateOnly),
					o.StartDate.In(rt.loc).Format("15:04"),
					o.EndDate.In(rt.loc).Format("15:04"),
					o.Title)
				if o.Modified {
					line += "  [modified]"
				}
				fmt.Fprintln(w, line)
			}
			return nil
		},
	}
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Check the recurrence rule of a series.",
		Flags: []cli.Flag{fileFlag("series YAML file")},
		Action: func(c *cli.Context) error {
			rt, err := newSession(c)
			if err != nil {
				return err
			}
			_, ev, err := rt.loadSeries(c.String("file"))
			if err != nil {
				return err
			}

			res := recurrence.ValidateRule(ev.RecurrenceRule)
			if !res.Valid {
				for _, msg := range res.Errors {
					fmt.Fprintf(c.App.Writer, "invalid: %s\n", msg)
				}
				return cli.Exit("", 2)
			}
			fmt.Fprintf(c.App.Writer, "valid: %s\n", recurrence.RuleToString(ev.RecurrenceRule, rt.cfg.Locale))
			return nil
		},
	}
}

func remindCommand() *cli.Command {
	return &cli.Command{
		Name:  "remind",
		Usage: "Plan smart reminders for the instances of a series.",
		Flags: append([]cli.Flag{
			fileFlag("series YAML file"),
			&cli.StringFlag{Name: "context", Aliases: []string{"c"}, Usage: "context YAML file (weather, traffic, location, status)"},
		}, windowFlags()...),
		Action: func(c *cli.Context) error {
			rt, err := newSession(c)
			if err != nil {
				return err
			}
			doc, ev, err := rt.loadSeries(c.String("file"))
			if err != nil {
				return err
			}
			base, err := doc.BaseTiming()
			if err != nil {
				return err
			}

			ctxDoc := &document.Context{}
			if path := c.String("context"); path != "" {
				if ctxDoc, err = document.LoadContext(path); err != nil {
					return err
				}
			}
			smart, err := ctxDoc.ToSmartContext(rt.loc)
			if err != nil {
				return err
			}
			now, err := ctxDoc.NowOr(time.Now(), rt.loc)
			if err != nil {
				return err
			}

			from, to, err := rt.window(c, ev)
			if err != nil {
				return err
			}
			engine := recurrence.NewEngineWithConfig(rt.cfg.EngineConfig(rt.logger))
			occs, err := exception.EffectiveInstancesWith(engine, ev, from, to, c.Int("max"))
			if err != nil {
				return err
			}

			planner := reminder.NewEngineWithPolicy(rt.cfg.Policy())
			w := c.App.Writer
			for _, o := range occs {
				inst := o.Event()
				timing := planner.CalculateSmartTiming(inst, base, smart)
				scheduled := inst.StartTime.Add(-timing.Lead())
				decision := planner.EvaluateSmartConditions(reminder.ScheduledReminder{
					EventID:      inst.ID,
					ScheduledFor: scheduled,
					Timing:       timing,
				}, smart, now)

				sendAt := decision.AdjustedTime.OrElse(scheduled)
				status := "send"
				if !decision.ShouldSend {
					status = "skip"
				}
				fmt.Fprintf(w, "%s  %s at %s  %s (%s)",
					inst.StartTime.In(rt.loc).Format("2006-01-02 15:04"),
					status,
					sendAt.In(rt.loc).Format("2006-01-02 15:04"),
					formatTiming(timing),
					timing.Description)
				if decision.Reason != "" {
					fmt.Fprintf(w, "  [%s]", decision.Reason)
				}
				fmt.Fprintln(w)
			}

			if len(occs) > 0 {
				recs := planner.GenerateSmartRecommendations(occs[0].Event(), smart.UserLocation)
				for _, r := range recs {
					fmt.Fprintf(w, "suggestion: %s (%s)\n", formatTiming(r.Timing()), r.Reason)
				}
			}
			return nil
		},
	}
}

func formatTiming(t reminder.Timing) string {
	unit := strings.ToLower(string(t.Unit))
	return fmt.Sprintf("%s %s", strings.TrimSuffix(fmt.Sprintf("%.2f", t.Value), ".00"), unit)
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write a series as iCalendar to stdout.",
		Flags: []cli.Flag{fileFlag("series YAML file")},
		Action: func(c *cli.Context) error {
			rt, err := newSession(c)
			if err != nil {
				return err
			}
			_, ev, err := rt.loadSeries(c.String("file"))
			if err != nil {
				return err
			}
			data, err := ical.MarshalSeries(ev, time.Now())
			if err != nil {
				return err
			}
			_, err = c.App.Writer.Write(data)
			return err
		},
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Read an iCalendar file and print the series as YAML.",
		Flags: []cli.Flag{fileFlag("ICS file")},
		Action: func(c *cli.Context) error {
			if _, err := newSession(c); err != nil {
				return err
			}
			data, err := os.ReadFile(c.String("file"))
			if err != nil {
				return err
			}
			ev, err := ical.UnmarshalSeries(data)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(c.App.Writer)
			enc.SetIndent(2)
			if err := enc.Encode(document.FromEvent(ev)); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}

func initConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "init-config",
		Usage: "Write the default configuration to the --config path.",
		Action: func(c *cli.Context) error {
			path := c.String("config")
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := config.Save(path, config.DefaultConfig()); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			fmt.Fprintf(c.App.Writer, "wrote %s\n", path)
			return nil
		},
	}
}
