// Command cms-attrs builds, inspects and stores CMS signer attribute sets.
//
// Attribute sets are built from YAML templates, saved as CBOR snapshots or
// in a bbolt store, and encoded as the DER SET OF Attribute that a CMS
// SignerInfo signs over. Builder events can be written to a CBOR event log
// and inspected with the log command.
//
// Usage:
//
//	cms-attrs <command> [flags] [args]
//
// Commands:
//
//	build    Build an attribute set from a template
//	view     View a snapshot file in human-readable form
//	store    Save, load, list and delete stored attribute sets
//	log      View, export, filter or summarize an event log
//	shell    Edit an attribute set interactively
//
// Examples:
//
//	# Build signed attributes and print the DER as hex
//	cms-attrs build -content-type data -digest 9f86d081... -signing-time now invoice.yaml
//
//	# Build from a named template and save a snapshot
//	cms-attrs build -config cms-attrs.yaml -format snapshot -o invoice.cbor invoice
//
//	# Store the snapshot and list stored sets
//	cms-attrs store put invoice invoice.cbor
//	cms-attrs store list
//
//	# Show only rejected operations from the event log
//	cms-attrs log view -category error events.alog
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cmsattr/cmsattr-go/cmd/cms-attrs/commands"
	"github.com/cmsattr/cmsattr-go/cmd/cms-attrs/interactive"
	"github.com/cmsattr/cmsattr-go/pkg/store"
)

const usage = `cms-attrs - CMS Signer Attribute Tool

Usage:
  cms-attrs <command> [flags] [args]

Commands:
  build    Build an attribute set from a template
  view     View a snapshot file in human-readable form
  store    Save, load, list and delete stored attribute sets (put, get, list, delete)
  log      View, export, filter or summarize an event log (view, export, filter, stats)
  shell    Edit an attribute set interactively

Use "cms-attrs <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "build":
		runBuild(args)
	case "view":
		runView(args)
	case "store":
		runStore(args)
	case "log":
		runLog(args)
	case "shell":
		runShell(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

// common holds the flags every command accepts.
type common struct {
	configFile string
	logLevel   string
	eventLog   string
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configFile, "config", "", "Configuration file path (YAML)")
	fs.StringVar(&c.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.StringVar(&c.eventLog, "event-log", "", "Append builder events to this CBOR log file")
}

// load reads the config file and applies flag overrides.
func (c *common) load() commands.Config {
	cfg, err := commands.LoadConfig(c.configFile)
	if err != nil {
		fatal(err)
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}
	if c.eventLog != "" {
		cfg.EventLog = c.eventLog
	}
	if err := cfg.Validate(); err != nil {
		fatal(err)
	}
	slog.SetDefault(cfg.NewLogger(os.Stderr))
	return cfg
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func newFlagSet(name, text string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, text)
		fs.PrintDefaults()
	}
	return fs
}

func runBuild(args []string) {
	fs := newFlagSet("build", `cms-attrs build - Build an attribute set from a template

Usage:
  cms-attrs build [flags] <template.yaml|template-name>

Flags:
`)
	var c common
	c.register(fs)
	format := fs.String("format", "hex", "Output format (hex, der, snapshot, text)")
	output := fs.String("o", "", "Output file (default: stdout)")
	contentType := fs.String("content-type", "", "Seed content-type attribute (OID or name, e.g. data)")
	digest := fs.String("digest", "", "Seed message-digest attribute (hex)")
	signingTime := fs.String("signing-time", "", "Add signing-time attribute (now or RFC3339)")
	implicit := fs.Bool("implicit", false, "Encode with the [0] IMPLICIT SignerInfo tag")
	save := fs.String("save", "", "Also save the set in the store under this name")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: template required")
		fs.Usage()
		os.Exit(1)
	}

	cfg := c.load()
	logger, closeLog, err := cfg.EventLogger(slog.Default())
	if err != nil {
		fatal(err)
	}
	defer closeLog()

	opts := commands.BuildOptions{
		Template:    fs.Arg(0),
		TemplateDir: cfg.TemplateDir,
		Format:      *format,
		Output:      *output,
		ContentType: *contentType,
		Digest:      *digest,
		SigningTime: *signingTime,
		Implicit:    *implicit,
		StorePath:   cfg.StorePath,
		StoreName:   *save,
		Logger:      logger,
	}

	if err := commands.RunBuild(opts, os.Stdout); err != nil {
		closeLog()
		fatal(err)
	}
}

func runView(args []string) {
	fs := newFlagSet("view", `cms-attrs view - View a snapshot file in human-readable form

Usage:
  cms-attrs view [flags] <snapshot.cbor>

Flags:
`)
	raw := fs.Bool("raw", false, "Show values as hex")
	showDER := fs.Bool("der", false, "Also show the DER encoding")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: snapshot file path required")
		fs.Usage()
		os.Exit(1)
	}

	if err := commands.RunView(fs.Arg(0), commands.ViewOptions{Raw: *raw, DER: *showDER}, os.Stdout); err != nil {
		fatal(err)
	}
}

func runStore(args []string) {
	fs := newFlagSet("store", `cms-attrs store - Manage stored attribute sets

Usage:
  cms-attrs store [flags] put <name> <snapshot.cbor>
  cms-attrs store [flags] get <name> [snapshot.cbor]
  cms-attrs store [flags] list
  cms-attrs store [flags] delete <name>

Flags:
`)
	var c common
	c.register(fs)
	dbPath := fs.String("db", "", "Store database path (default from config)")
	raw := fs.Bool("raw", false, "Show values as hex")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: store subcommand required")
		fs.Usage()
		os.Exit(1)
	}

	cfg := c.load()
	opts := commands.StoreOptions{
		Path: cfg.StorePath,
		Name: fs.Arg(1),
		File: fs.Arg(2),
		View: commands.ViewOptions{Raw: *raw},
	}
	if *dbPath != "" {
		opts.Path = *dbPath
	}

	var err error
	switch fs.Arg(0) {
	case "put":
		err = commands.RunStorePut(opts, os.Stdout)
	case "get":
		err = commands.RunStoreGet(opts, os.Stdout)
	case "list":
		err = commands.RunStoreList(opts, os.Stdout)
	case "delete":
		err = commands.RunStoreDelete(opts, os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown store command: %s\n", fs.Arg(0))
		fs.Usage()
		os.Exit(1)
	}
	if err != nil {
		fatal(err)
	}
}

func runLog(args []string) {
	fs := newFlagSet("log", `cms-attrs log - Inspect an event log

Usage:
  cms-attrs log view [flags] <events.alog>
  cms-attrs log export [flags] <events.alog>
  cms-attrs log filter -o <out.alog> [flags] <events.alog>
  cms-attrs log stats <events.alog>

Flags:
`)
	var filter commands.EventFilterOptions
	fs.StringVar(&filter.SetID, "set-id", "", "Filter by set ID")
	fs.StringVar(&filter.Category, "category", "", "Filter by category (mutation, encoding, error)")
	fs.StringVar(&filter.MinLevel, "level", "", "Minimum level (debug, info, warn, error)")
	fs.StringVar(&filter.OID, "oid", "", "Filter by attribute OID")
	fs.StringVar(&filter.TimeStart, "time-start", "", "Filter by start time (RFC3339)")
	fs.StringVar(&filter.TimeEnd, "time-end", "", "Filter by end time (RFC3339)")
	format := fs.String("format", "jsonl", "Export format (jsonl, csv)")
	output := fs.String("o", "", "Output file")

	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Error: log subcommand required")
		fs.Usage()
		os.Exit(1)
	}
	sub := args[0]

	if err := fs.Parse(args[1:]); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}
	path := fs.Arg(0)

	var err error
	switch sub {
	case "view":
		err = commands.RunLogView(path, filter, os.Stdout)
	case "export":
		err = commands.RunLogExport(path, *format, *output, os.Stdout)
	case "filter":
		err = commands.RunLogFilter(path, *output, filter, os.Stdout)
	case "stats":
		err = commands.RunLogStats(path, os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown log command: %s\n", sub)
		fs.Usage()
		os.Exit(1)
	}
	if err != nil {
		fatal(err)
	}
}

func runShell(args []string) {
	fs := newFlagSet("shell", `cms-attrs shell - Edit an attribute set interactively

Usage:
  cms-attrs shell [flags]

Flags:
`)
	var c common
	c.register(fs)
	noStore := fs.Bool("no-store", false, "Do not open the store")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg := c.load()

	opts := interactive.Options{
		TemplateDir: cfg.TemplateDir,
	}
	if !*noStore {
		st, err := store.Open(cfg.StorePath, store.Options{})
		if err != nil {
			fatal(err)
		}
		defer st.Close()
		opts.Store = st
	}

	sh, err := interactive.New(opts)
	if err != nil {
		fatal(err)
	}

	// Route logging through readline so it does not clobber the prompt.
	slog.SetDefault(cfg.NewLogger(sh.Stdout()))
	logger, closeLog, err := cfg.EventLogger(slog.Default())
	if err != nil {
		fatal(err)
	}
	defer closeLog()
	sh.SetLogger(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer cancel()

	sh.Run(ctx)
}
