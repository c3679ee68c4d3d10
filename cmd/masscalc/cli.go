package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/masscalc/internal/errors"
	"github.com/hpungsan/masscalc/internal/session"
	"github.com/hpungsan/masscalc/internal/store"
	"github.com/hpungsan/masscalc/internal/web"
)

// newCLIApp creates the CLI application with all commands. e may be nil
// when only help or version output is needed.
func newCLIApp(e *env) *cli.App {
	app := &cli.App{
		Name:    "masscalc",
		Usage:   "Stoichiometry calculator",
		Version: Version,
		Commands: []*cli.Command{
			calculateCmd(e),
			parseCmd(e),
			settingsCmd(e),
			elementsCmd(e),
			exportCmd(e),
			serveCmd(e),
			webCmd(e),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// formFlags are shared by calculate and export.
func formFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "formula", Aliases: []string{"f"}, Required: true, Usage: "Target formula, e.g. H2O"},
		&cli.StringFlag{Name: "mass", Aliases: []string{"m"}, Required: true, Usage: "Target mass in grams"},
		&cli.StringFlag{Name: "materials", Usage: "Comma-separated starting materials (defaults to auto-fill)"},
	}
}

// calculateCmd creates the calculate command.
func calculateCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "calculate",
		Usage: "Calculate reagent masses for a target formula",
		Flags: append(formFlags(),
			&cli.StringFlag{Name: "report", Usage: "Print a report instead of JSON: md|html"},
		),
		Action: func(c *cli.Context) error {
			report := c.String("report")
			if report != "" && report != "md" && report != "html" {
				return outputError(errors.NewInvalidRequest(fmt.Sprintf("report must be md or html, got %q", report)))
			}

			sess, err := runForm(c, e)
			if err != nil {
				return outputError(err)
			}
			defer sess.Close()

			st := sess.State()
			if st.Error != "" {
				return cli.Exit(st.Error, 1)
			}
			if report == "" {
				return outputJSON(st)
			}

			out, err := sess.Report(report == "html")
			if err != nil {
				return outputError(err)
			}
			_, err = fmt.Fprintln(os.Stdout, out)
			return err
		},
	}
}

// parseCmd creates the parse command.
func parseCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "List the distinct elements of a formula",
		ArgsUsage: "<formula>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewInvalidRequest("exactly one formula is required"))
			}
			symbols, err := e.svc.ParseFormula(c.Context, c.Args().First())
			if err != nil {
				return outputError(err)
			}
			if symbols == nil {
				symbols = []string{}
			}
			return outputJSON(map[string]any{"elements": symbols})
		},
	}
}

// settingsCmd creates the settings command group.
func settingsCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Show or change user preferences",
		Subcommands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Print the stored preferences",
				Action: func(c *cli.Context) error {
					sess, err := e.newSession(c.Context, session.StartOptions{})
					if err != nil {
						return outputError(err)
					}
					defer sess.Close()
					return outputJSON(sess.Settings.Snapshot().Payload())
				},
			},
			{
				Name:  "set",
				Usage: "Change one or more preferences",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "theme", Usage: "light|dark|system"},
					&cli.BoolFlag{Name: "detailed-report", Usage: "Include the detailed breakdown in reports"},
					&cli.BoolFlag{Name: "auto-fill", Usage: "Fill starting materials from the target formula"},
					&cli.StringFlag{Name: "export-format", Usage: "pdf|excel"},
				},
				Action: func(c *cli.Context) error {
					var theme, format *string
					var detailed, autoFill *bool
					if c.IsSet("theme") {
						v := c.String("theme")
						theme = &v
					}
					if c.IsSet("export-format") {
						v := c.String("export-format")
						format = &v
					}
					if c.IsSet("detailed-report") {
						v := c.Bool("detailed-report")
						detailed = &v
					}
					if c.IsSet("auto-fill") {
						v := c.Bool("auto-fill")
						autoFill = &v
					}
					if theme == nil && format == nil && detailed == nil && autoFill == nil {
						return outputError(errors.NewInvalidRequest("at least one preference flag is required"))
					}

					override, err := store.ParseOverride(theme, detailed, autoFill, format)
					if err != nil {
						return outputError(err)
					}

					sess, err := e.newSession(c.Context, session.StartOptions{})
					if err != nil {
						return outputError(err)
					}
					defer sess.Close()

					if err := sess.Settings.Update(c.Context, override); err != nil {
						return outputError(err)
					}
					return outputJSON(sess.Settings.Snapshot().Payload())
				},
			},
		},
	}
}

// elementsCmd creates the elements command group.
func elementsCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "elements",
		Usage: "Show or edit the atomic-mass table",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "Print the atomic-mass table",
				Action: func(c *cli.Context) error {
					sess, err := e.newSession(c.Context, session.StartOptions{LoadElements: true})
					if err != nil {
						return outputError(err)
					}
					defer sess.Close()
					return outputEditor(sess)
				},
			},
			{
				Name:      "set",
				Usage:     "Change atomic masses and save the table",
				ArgsUsage: "SYMBOL=MASS...",
				Action: func(c *cli.Context) error {
					if c.NArg() == 0 {
						return outputError(errors.NewInvalidRequest("at least one SYMBOL=MASS pair is required"))
					}
					edits, err := parseMassEdits(c.Args().Slice())
					if err != nil {
						return outputError(err)
					}

					sess, err := e.newSession(c.Context, session.StartOptions{LoadElements: true})
					if err != nil {
						return outputError(err)
					}
					defer sess.Close()
					if msg := sess.EditorState().Error; msg != "" {
						return cli.Exit(msg, 1)
					}

					for _, edit := range edits {
						idx := sess.Editor.IndexOf(edit.symbol)
						if idx < 0 {
							return outputError(errors.NewNotFound(edit.symbol))
						}
						sess.Editor.UpdateRow(idx, edit.mass)
					}
					sess.Editor.Save(c.Context)
					return outputEditor(sess)
				},
			},
			{
				Name:  "restore",
				Usage: "Reset the table to reference values",
				Action: func(c *cli.Context) error {
					sess, err := e.newSession(c.Context, session.StartOptions{})
					if err != nil {
						return outputError(err)
					}
					defer sess.Close()
					sess.Editor.Restore(c.Context)
					return outputEditor(sess)
				},
			},
		},
	}
}

// exportCmd creates the export command.
func exportCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Calculate and export the result in the preferred format",
		Flags: formFlags(),
		Action: func(c *cli.Context) error {
			sess, err := runForm(c, e)
			if err != nil {
				return outputError(err)
			}
			defer sess.Close()

			if msg := sess.State().Error; msg != "" {
				return cli.Exit(msg, 1)
			}
			out, err := sess.Export.Export(c.Context)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(out)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the MCP server on stdio",
		Action: func(c *cli.Context) error {
			if err := serve(c.Context, e); err != nil {
				return outputError(err)
			}
			return nil
		},
	}
}

// webCmd creates the web command.
func webCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "web",
		Usage: "Serve the calculator over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8390, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			sess, err := e.newSession(c.Context, session.StartOptions{LoadElements: true})
			if err != nil {
				return outputError(err)
			}
			defer sess.Close()

			srv := web.NewServer(sess, Version, c.String("bind"), c.Int("port"))
			if err := web.Run(c.Context, srv, e.logger.Named("web")); err != nil {
				return outputError(err)
			}
			return nil
		},
	}
}

// runForm starts a session, fills the form from flags and calculates. The
// formula is set first and auto-fill allowed to settle so explicit
// materials are not overwritten.
func runForm(c *cli.Context, e *env) (*session.Session, error) {
	sess, err := e.newSession(c.Context, session.StartOptions{})
	if err != nil {
		return nil, err
	}

	sess.Elements.UpdateTargetFormula(c.String("formula"))
	sess.Settle()
	if c.IsSet("materials") {
		materials := parseList(c.String("materials"))
		if len(materials) == 0 {
			sess.Close()
			return nil, errors.NewInvalidRequest("materials must not be empty")
		}
		sess.Elements.SetStartingMaterials(materials)
	}
	sess.Elements.UpdateTargetMass(c.String("mass"))
	sess.Calculator.Calculate(c.Context)
	return sess, nil
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if cErr, ok := err.(*errors.CalcError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", cErr.Code, cErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// outputEditor prints the editor rows, or fails with the error slot message.
func outputEditor(sess *session.Session) error {
	st := sess.EditorState()
	if st.Error != "" {
		return cli.Exit(st.Error, 1)
	}
	return outputJSON(st.Rows)
}

// parseList splits a comma-separated string, dropping blank entries.
func parseList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

type massEdit struct {
	symbol string
	mass   string
}

// parseMassEdits parses SYMBOL=MASS arguments. Mass text is validated on save.
func parseMassEdits(args []string) ([]massEdit, error) {
	edits := make([]massEdit, 0, len(args))
	for _, arg := range args {
		sym, mass, ok := strings.Cut(arg, "=")
		sym = strings.TrimSpace(sym)
		if !ok || sym == "" {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("expected SYMBOL=MASS, got %q", arg))
		}
		edits = append(edits, massEdit{symbol: sym, mass: strings.TrimSpace(mass)})
	}
	return edits, nil
}
