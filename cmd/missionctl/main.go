// Missionctl is the command-line client for submitting planning runs to
// and monitoring a running missiond instance. It connects over HTTP and
// WebSocket to submit requests, fetch results, and stream live events.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/orbitalcue/mission-planner/internal/ctl"
)

func main() {
	var (
		host    = pflag.StringP("host", "H", "http://127.0.0.1:8080", "Mission planner daemon URL (e.g. http://10.0.0.5:8080)")
		jsonOut = pflag.Bool("json", false, "Output raw JSON instead of formatted text")
		filter  = pflag.StringSlice("filter", nil, "Event types to show in watch (e.g. --filter run_started,log)")
	)

	// Stop parsing global flags at the first non-flag argument (the command
	// name), so subcommand-specific flags like --format are not rejected.
	pflag.CommandLine.SetInterspersed(false)
	pflag.Parse()

	if pflag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	cmd := pflag.Arg(0)
	subArgs := pflag.Args()[1:]

	var err error
	switch cmd {
	// ── Query commands ────────────────────────────────────────────
	case "status":
		err = ctl.Status(*host)

	case "health":
		err = ctl.Health(*host, *jsonOut)

	case "version":
		err = ctl.VersionInfo(*host, *jsonOut)

	case "config":
		err = ctl.Config(*host, *jsonOut)

	case "system-info":
		err = ctl.SystemInfo(*host, *jsonOut)

	case "logs":
		err = ctl.Logs(*host, ctl.LogsOptions{JSON: *jsonOut})

	// ── Planning commands ─────────────────────────────────────────
	case "plan":
		opts := ctl.PlanOptions{JSON: *jsonOut}
		planFlags := pflag.NewFlagSet("plan", pflag.ContinueOnError)
		planFlags.StringVar(&opts.RequestFile, "request", "-", "Path to a PlanRequest JSON document, - for stdin")
		_ = planFlags.Parse(subArgs)
		err = ctl.Plan(*host, opts)

	case "export":
		opts := ctl.ExportOptions{Out: "-"}
		exportFlags := pflag.NewFlagSet("export", pflag.ContinueOnError)
		exportFlags.StringVar(&opts.RunID, "run", "", "Run ID returned by the plan command")
		exportFlags.StringVar(&opts.Format, "format", "json", "Output format: json or csv")
		exportFlags.StringVar(&opts.Out, "out", "-", "Output file path, - for stdout")
		_ = exportFlags.Parse(subArgs)
		if opts.RunID == "" {
			err = fmt.Errorf("--run is required")
			break
		}
		err = ctl.Export(*host, opts)

	// ── Live streaming ────────────────────────────────────────────
	case "watch":
		err = ctl.Watch(*host, ctl.WatchOptions{
			Filter: *filter,
			JSON:   *jsonOut,
		})

	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Print(`
  missionctl — mission planner control CLI

  USAGE
    missionctl [flags] <command> [command-flags]

  COMMANDS (query)
    status          Show daemon uptime and data directories
    health          Check daemon liveness
    version         Show CLI and daemon version information
    config          Show the daemon's running configuration
    system-info     Show runtime and storage information
    logs            Stream daemon log events (Ctrl-C to stop)

  COMMANDS (planning)
    plan            Submit a PlanRequest and print the resulting schedule
    export          Fetch a completed run and write it as JSON or CSV

  COMMANDS (live)
    watch           Stream live events from the daemon (Ctrl-C to stop)

  GLOBAL FLAGS
    -H, --host URL      Daemon base URL (default: http://127.0.0.1:8080)
        --json          Output raw JSON instead of formatted text
        --filter TYPE   Event types to show in watch (comma-separated)

  COMMAND FLAGS
    plan:
        --request PATH      Path to a PlanRequest JSON document, - for stdin (default: -)

    export:
        --run ID            Run ID returned by the plan command (required)
        --format FORMAT     json or csv (default: json)
        --out PATH          Output file path, - for stdout (default: -)

  EXAMPLES
    missionctl plan --request scenario.json
    missionctl plan --request scenario.json --json
    missionctl export --run 3fa9c1 --format csv --out schedule.csv
    missionctl --host http://10.0.0.5:8080 watch
    missionctl watch --filter run_started,phase,run_complete
    missionctl status
    missionctl config

`)
}
