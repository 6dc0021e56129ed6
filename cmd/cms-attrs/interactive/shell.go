// Package interactive provides the interactive attribute-set builder
// for cms-attrs.
package interactive

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/cmsattr/cmsattr-go/cmd/cms-attrs/commands"
	"github.com/cmsattr/cmsattr-go/pkg/cms"
	"github.com/cmsattr/cmsattr-go/pkg/der"
	"github.com/cmsattr/cmsattr-go/pkg/log"
	"github.com/cmsattr/cmsattr-go/pkg/oid"
	"github.com/cmsattr/cmsattr-go/pkg/snapshot"
	"github.com/cmsattr/cmsattr-go/pkg/store"
	"github.com/cmsattr/cmsattr-go/pkg/template"
)

// Options configures the shell.
type Options struct {
	// Store enables put, get and names. May be nil.
	Store *store.Store

	// TemplateDir is searched by the template command.
	TemplateDir string

	Logger log.Logger
	Now    func() time.Time
}

// Shell handles the interactive attribute-set builder.
type Shell struct {
	set  *cms.LoggedSet
	opts Options
	out  io.Writer
	rl   *readline.Instance
}

// New creates a shell reading from the terminal.
func New(opts Options) (*Shell, error) {
	return newWithConfig(&readline.Config{
		Prompt:          "attrs> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	}, opts)
}

func newWithConfig(cfg *readline.Config, opts Options) (*Shell, error) {
	rl, err := readline.NewEx(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	s := newShell(rl.Stdout(), opts)
	s.rl = rl
	return s, nil
}

func newShell(out io.Writer, opts Options) *Shell {
	if opts.Logger == nil {
		opts.Logger = log.NoopLogger{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Shell{
		set: cms.NewLoggedSet(nil,
			cms.WithLogger(opts.Logger),
			cms.WithSource("shell"),
			cms.WithClock(opts.Now),
		),
		opts: opts,
		out:  out,
	}
}

// Stdout returns a writer that properly coordinates with the readline input.
func (s *Shell) Stdout() io.Writer {
	return s.out
}

// SetLogger replaces the event logger.
func (s *Shell) SetLogger(l log.Logger) {
	s.set.SetLogger(l)
}

// Attributes returns the set being edited.
func (s *Shell) Attributes() *cms.AttributeSet {
	return s.set.Attributes()
}

// Run starts the interactive command loop. It returns when the user quits,
// input ends, or ctx is cancelled. Cancelling ctx closes the terminal,
// which unblocks a pending read.
func (s *Shell) Run(ctx context.Context) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			s.rl.Close()
		case <-done:
		}
	}()
	defer s.rl.Close()

	s.printHelp()

	for {
		line, err := s.rl.Readline()
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.out, "Exiting...")
			return
		}

		if !s.Execute(line) {
			return
		}
	}
}

// Execute runs one command line. It returns false when the shell should exit.
func (s *Shell) Execute(line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return true
	}

	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	var err error
	switch cmd {
	case "help", "?":
		s.printHelp()

	case "add", "a":
		err = s.cmdAdd(args)

	case "time", "signing-time":
		err = s.cmdTime(args)

	case "template", "t":
		err = s.cmdTemplate(args)

	case "remove", "rm":
		err = s.cmdRemove(args)

	case "list", "ls", "l":
		err = commands.FormatSet(s.out, s.Attributes(), commands.ViewOptions{Raw: len(args) > 0 && args[0] == "raw"})

	case "der":
		err = s.cmdDER(args)

	case "save":
		err = s.cmdSave(args)

	case "load":
		err = s.cmdLoad(args)

	case "put":
		err = s.cmdPut(args)

	case "get":
		err = s.cmdGet(args)

	case "names":
		err = s.cmdNames()

	case "reset":
		s.set.Reset(nil)
		fmt.Fprintln(s.out, "Attribute set cleared")

	case "quit", "exit", "q":
		fmt.Fprintln(s.out, "Exiting...")
		return false

	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}

	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
	}
	return true
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.out, `
Attribute Set Commands:
  Editing:
    add <oid> <type> <value>  - Add a value (types: oid, octets, hex, utf8, bmp, time, raw)
    time [now|RFC3339]        - Add the signing-time attribute
    template <name|file>      - Add every attribute of a template
    remove <index>            - Remove the attribute at index
    reset                     - Start a new empty set

  Output:
    list [raw]                - Show the attributes
    der [implicit]            - Show the DER encoding as hex

  Files and store:
    save <file>               - Write a CBOR snapshot
    load <file>               - Replace the set with a snapshot
    put <name>                - Save the set in the store
    get <name>                - Replace the set with a stored one
    names                     - List stored sets

  quit                        - Exit`)
}

var errUsage = errors.New("usage")

// Add adds attr to the set, merging by OID, and logs the result.
func (s *Shell) Add(attr *cms.Attribute) (int, error) {
	return s.set.Add(attr)
}

func (s *Shell) cmdAdd(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("%w: add <oid> <type> <value>", errUsage)
	}
	spec := template.AttributeSpec{
		OID:    args[0],
		Values: []template.ValueSpec{{Type: args[1], Value: strings.Join(args[2:], " ")}},
	}
	attr, err := spec.Attribute()
	if err != nil {
		return err
	}
	return s.report(s.Add(attr))
}

func (s *Shell) cmdTime(args []string) error {
	t := s.opts.Now()
	if len(args) > 0 && args[0] != "now" {
		var err error
		t, err = time.Parse(time.RFC3339, args[0])
		if err != nil {
			return fmt.Errorf("invalid time: %w", err)
		}
	}
	v, err := der.Time(t)
	if err != nil {
		return err
	}
	return s.report(s.Add(cms.NewAttribute(oid.SigningTime, v)))
}

func (s *Shell) cmdTemplate(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: template <name|file>", errUsage)
	}
	tmpl, err := commands.ResolveTemplate(args[0], s.opts.TemplateDir)
	if err != nil {
		return err
	}
	before := s.Attributes().Len()
	if err := tmpl.AddTo(s.set); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Applied %s (%d new attributes)\n", tmpl.Name, s.Attributes().Len()-before)
	return nil
}

func (s *Shell) cmdRemove(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: remove <index>", errUsage)
	}
	i, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid index: %s", args[0])
	}
	attr, err := s.Attributes().Get(i)
	if err != nil {
		return err
	}
	if err := s.set.Remove(attr); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Removed %s\n", attr.OID)
	return nil
}

func (s *Shell) cmdDER(args []string) error {
	var out []byte
	var err error
	if len(args) > 0 && args[0] == "implicit" {
		out, err = s.set.MarshalImplicit(0)
	} else {
		out, err = s.set.MarshalDER()
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, hex.EncodeToString(out))
	return nil
}

func (s *Shell) cmdSave(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: save <file>", errUsage)
	}
	if err := snapshot.WriteFile(args[0], s.Attributes()); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Saved %d attributes to %s\n", s.Attributes().Len(), args[0])
	return nil
}

func (s *Shell) cmdLoad(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: load <file>", errUsage)
	}
	set, err := snapshot.ReadFile(args[0])
	if err != nil {
		return err
	}
	s.set.Reset(set)
	fmt.Fprintf(s.out, "Loaded %d attributes from %s\n", set.Len(), args[0])
	return nil
}

func (s *Shell) cmdPut(args []string) error {
	if s.opts.Store == nil {
		return errors.New("no store configured")
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: put <name>", errUsage)
	}
	if err := s.opts.Store.Put(args[0], s.Attributes()); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Stored %s\n", args[0])
	return nil
}

func (s *Shell) cmdGet(args []string) error {
	if s.opts.Store == nil {
		return errors.New("no store configured")
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: get <name>", errUsage)
	}
	set, err := s.opts.Store.Load(args[0])
	if err != nil {
		return err
	}
	s.set.Reset(set)
	fmt.Fprintf(s.out, "Loaded %s (%d attributes)\n", args[0], set.Len())
	return nil
}

func (s *Shell) cmdNames() error {
	if s.opts.Store == nil {
		return errors.New("no store configured")
	}
	names, err := s.opts.Store.List()
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintln(s.out, name)
	}
	return nil
}

func (s *Shell) report(i int, err error) error {
	if err != nil {
		return err
	}
	a, _ := s.Attributes().Get(i)
	fmt.Fprintf(s.out, "[%d] %s: %d value(s)\n", i, a.OID, a.Values.Len())
	return nil
}
