package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/storefront/pkg/types"
)

// replCommand is one verb of an interactive session.
type replCommand struct {
	usage string
	help  string
	run   func(ctx context.Context, args []string) error
}

// repl reads one command per line from in until EOF or quit. A failing
// command prints its error and the session carries on.
type repl struct {
	in       io.Reader
	out      io.Writer
	prompt   string
	commands map[string]replCommand
}

func (r *repl) loop(ctx context.Context) error {
	scanner := bufio.NewScanner(r.in)
	for {
		fmt.Fprint(r.out, r.prompt)
		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		verb, args := strings.ToLower(fields[0]), fields[1:]
		switch verb {
		case "quit", "exit":
			return nil
		case "help", "?":
			r.printHelp()
			continue
		}
		cmd, ok := r.commands[verb]
		if !ok {
			fmt.Fprintf(r.out, "Unknown command %q; type help for a list.\n", verb)
			continue
		}
		if err := cmd.run(ctx, args); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintln(r.out, describeError(err))
		}
	}
}

func (r *repl) printHelp() {
	verbs := make([]string, 0, len(r.commands))
	for v := range r.commands {
		verbs = append(verbs, v)
	}
	sort.Strings(verbs)
	for _, v := range verbs {
		c := r.commands[v]
		fmt.Fprintf(r.out, "  %-22s %s\n", c.usage, c.help)
	}
	fmt.Fprintf(r.out, "  %-22s %s\n", "quit", "leave")
}

// describeError keeps local validation messages apart from failed requests.
// A failed request leaves the last loaded data in place.
func describeError(err error) string {
	if errors.Is(err, errUsage) {
		return err.Error()
	}
	if types.IsValidation(err) {
		return "Error: " + err.Error()
	}
	return "Request failed: " + err.Error()
}

// errUsage reports a malformed interactive command.
var errUsage = errors.New("usage")

func usageError(usage string) error {
	return fmt.Errorf("%w: %s", errUsage, usage)
}

// intArg parses the single integer argument of a command.
func intArg(args []string, usage string) (int, error) {
	if len(args) != 1 {
		return 0, usageError(usage)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, usageError(usage)
	}
	return n, nil
}

// positiveArg is intArg restricted to n >= 1.
func positiveArg(args []string, usage string) (int, error) {
	n, err := intArg(args, usage)
	if err == nil && n < 1 {
		err = usageError(usage)
	}
	return n, err
}
