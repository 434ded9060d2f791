package handlers

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"mycenter/domain"
	"mycenter/helpers"
	"mycenter/interfaces"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// ConsoleStartDelay lets startup logging finish before the console starts reading.
const ConsoleStartDelay = 200 * time.Millisecond

const consoleHint = `type "help" for more commands`

// Console is the operator's line-oriented view of the registry.
//
// Commands: "help"; "ls" prints every instance (name, version, port, status); "ls NAME" prints the instances of
// one module with host and key. Anything else prints a hint.
type Console struct {
	lister     interfaces.InstanceLister
	in         io.Reader
	out        io.Writer
	logger     log.Logger
	startDelay time.Duration
}

// NewConsole creates a console reading commands from in and writing answers to out. Panics on nil arguments.
//
// Called from cmd/main with os.Stdin/os.Stdout when CONSOLE_ENABLED is true.
func NewConsole(lister interfaces.InstanceLister, in io.Reader, out io.Writer, logger log.Logger) *Console {
	return &Console{
		lister:     helpers.NilPanic(lister, "handlers.console.go: lister is required"),
		in:         helpers.NilPanic(in, "handlers.console.go: input is required"),
		out:        helpers.NilPanic(out, "handlers.console.go: output is required"),
		logger:     log.With(helpers.NilPanic(logger, "handlers.console.go: logger is required"), "component", "console"),
		startDelay: ConsoleStartDelay,
	}
}

// Run waits ConsoleStartDelay, then answers one command per input line until ctx is done or the input ends.
//
// Returns: nil on ctx done or end of input; the read error otherwise. A read blocked on the input outlives
// Run when ctx ends first.
func (c *Console) Run(ctx context.Context) error {
	select {
	case <-time.After(c.startDelay):
	case <-ctx.Done():
		return nil
	}

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			if err != nil {
				level.Error(c.logger).Log("msg", "console input failed", "err", err)
			}
			return err
		case line := <-lines:
			if err := c.Execute(line); err != nil {
				level.Warn(c.logger).Log("msg", "console output failed", "err", err)
			}
		}
	}
}

// Execute answers one command line.
func (c *Console) Execute(line string) error {
	fields := strings.Fields(line)
	switch {
	case len(fields) == 1 && fields[0] == "help":
		return c.help()
	case len(fields) == 1 && fields[0] == "ls":
		return c.list()
	case len(fields) == 2 && fields[0] == "ls":
		return c.module(fields[1])
	default:
		_, err := fmt.Fprintln(c.out, consoleHint)
		return err
	}
}

func (c *Console) help() error {
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Help")
	fmt.Fprintln(tw, "  ls\tlist registered modules")
	fmt.Fprintln(tw, "  ls MODULE\tshow the instances of one module")
	return tw.Flush()
}

func (c *Console) list() error {
	instances := c.lister.Instances(nil)
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Modules")
	for _, i := range instances {
		fmt.Fprintf(tw, "  %s\tversion: %s\tport: %d\t%s\n", i.ModuleName, i.ServiceVersion, i.Port, i.Status)
	}
	return tw.Flush()
}

func (c *Console) module(name string) error {
	instances := c.lister.Instances(func(i domain.Instance) bool { return i.ModuleName == name })
	if len(instances) == 0 {
		_, err := fmt.Fprintf(c.out, "module %q is not registered\n", name)
		return err
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Module %s\n", name)
	for _, i := range instances {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", i.Key(), i.Address(), i.Status)
	}
	return tw.Flush()
}
