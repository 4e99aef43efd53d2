package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sagipero/admin-console/internal/cli"
	"github.com/sagipero/admin-console/internal/config"
	"github.com/sagipero/admin-console/internal/emergency"
	"github.com/sagipero/admin-console/internal/logging"
	"github.com/sagipero/admin-console/internal/sagipero"
	"github.com/sagipero/admin-console/internal/weather"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := newApp()
	defer app.Close()

	var err error
	switch os.Args[1] {
	case "config":
		app.ConfigShow()
	case "set-api":
		err = cmdSetAPI(app, os.Args[2:])
	case "test-api":
		err = cmdTestAPI(ctx, app, os.Args[2:])
	case "login":
		err = cmdLogin(ctx, app, os.Args[2:])
	case "logout":
		err = app.Logout()
	case "health":
		err = app.Health(ctx)
	case "emergencies":
		err = cmdEmergencies(ctx, app, os.Args[2:])
	case "history":
		err = cmdHistory(ctx, app, os.Args[2:])
	case "assign":
		err = cmdAssign(ctx, app, os.Args[2:])
	case "report":
		err = cmdReport(ctx, app, os.Args[2:])
	case "watch":
		err = app.Watch(ctx)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	settings, err := config.LoadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		settings = &config.Settings{}
	}
	fallback := strings.TrimRight(os.Getenv("SAGIPERO_API_URL"), "/")
	if fallback == "" {
		fallback = config.DefaultAPIURL
	}
	logger := logging.NewCLILogger(os.Getenv("LOG_LEVEL"))

	return cli.New(cli.Options{
		Settings: settings,
		Fallback: fallback,
		Loc:      weather.Manila(),
		Logger:   logger,
		In:       os.Stdin,
		Out:      os.Stdout,
		Err:      os.Stderr,
		Client: []sagipero.Option{
			sagipero.WithTimeout(15 * time.Second),
			sagipero.WithLogger(logger),
		},
	})
}

func cmdSetAPI(app *cli.App, args []string) error {
	fs := flag.NewFlagSet("set-api", flag.ExitOnError)
	reset := fs.Bool("reset", false, "Restore the default API base")
	fs.Parse(args)

	if *reset {
		return app.SetAPI("")
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: sagictl set-api <url> | sagictl set-api -reset")
		os.Exit(1)
	}
	return app.SetAPI(fs.Arg(0))
}

func cmdTestAPI(ctx context.Context, app *cli.App, args []string) error {
	fs := flag.NewFlagSet("test-api", flag.ExitOnError)
	fs.Parse(args)
	return app.TestAPI(ctx, fs.Arg(0))
}

func cmdLogin(ctx context.Context, app *cli.App, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "Admin email")
	password := fs.String("password", os.Getenv("SAGIPERO_PASSWORD"), "Password (default: $SAGIPERO_PASSWORD)")
	fs.Parse(args)

	if *email == "" {
		fmt.Fprintln(os.Stderr, "Usage: sagictl login -email EMAIL [-password PASSWORD]")
		os.Exit(1)
	}
	return app.Login(ctx, *email, *password)
}

func cmdEmergencies(ctx context.Context, app *cli.App, args []string) error {
	fs := flag.NewFlagSet("emergencies", flag.ExitOnError)
	var f emergency.Filter
	fs.StringVar(&f.Date, "date", "", "Day key YYYY-MM-DD (or \"unknown\")")
	fs.StringVar(&f.Status, "status", "", "Status, or ACTIVE for every open emergency")
	fs.StringVar(&f.Type, "type", "", "Emergency type")
	fs.StringVar(&f.Priority, "priority", "", "Priority (high, medium, low or P1-P3)")
	fs.StringVar(&f.Search, "search", "", "Free-text search")
	fs.Parse(args)

	return app.Emergencies(ctx, f)
}

func cmdHistory(ctx context.Context, app *cli.App, args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: sagictl history <emergency-id>")
		os.Exit(1)
	}
	return app.History(ctx, fs.Arg(0))
}

func cmdAssign(ctx context.Context, app *cli.App, args []string) error {
	fs := flag.NewFlagSet("assign", flag.ExitOnError)
	responder := fs.String("responder", "", "Responder ID")
	vehicles := fs.String("vehicles", "", "Comma-separated vehicle IDs to dispatch")
	yes := fs.Bool("yes", false, "Skip the confirmation prompt")
	fs.Parse(args)

	if fs.NArg() < 1 || *responder == "" {
		fmt.Fprintln(os.Stderr, "Usage: sagictl assign -responder ID [-vehicles v1,v2] [-yes] <emergency-id>")
		os.Exit(1)
	}
	var ids []string
	for _, v := range strings.Split(*vehicles, ",") {
		if v = strings.TrimSpace(v); v != "" {
			ids = append(ids, v)
		}
	}
	return app.Assign(ctx, fs.Arg(0), *responder, ids, *yes)
}

func cmdReport(ctx context.Context, app *cli.App, args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	var q sagipero.ReportQuery
	fs.StringVar(&q.Period, "period", sagipero.PeriodDaily, "daily, weekly, quarterly or annual")
	fs.StringVar(&q.Date, "date", "", "Reference date YYYY-MM-DD (default: today)")
	fs.StringVar(&q.Format, "format", sagipero.FormatJSON, "json, csv or pdf")
	dir := fs.String("out", ".", "Directory for csv and pdf downloads")
	fs.Parse(args)

	return app.Report(ctx, q, *dir)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `sagictl - operator tool for the Sagipero emergency response backend

Usage:
  sagictl config
  sagictl set-api <url> | -reset
  sagictl test-api [url]
  sagictl login -email EMAIL [-password PASSWORD]
  sagictl logout
  sagictl health
  sagictl emergencies [-date D] [-status S] [-type T] [-priority P] [-search Q]
  sagictl history <emergency-id>
  sagictl assign -responder ID [-vehicles v1,v2] [-yes] <emergency-id>
  sagictl report [-period daily] [-date D] [-format json|csv|pdf] [-out DIR]
  sagictl watch

Commands:
  config       Show the API base and sign-in state
  set-api      Save the API base URL (or restore the default)
  test-api     Check the health endpoint of an API base
  login        Sign in and save the token
  logout       Forget the saved token
  health       Check whether the backend is reachable
  emergencies  List emergency history grouped by day
  history      Show the timeline and response times of one emergency
  assign       Dispatch a responder and vehicles to an emergency
  report       Show report metrics or download an export
  watch        Stream live backend events`)
}
