package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/storefront/internal/catalog"
)

func newBrowseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Page through the catalog interactively",
		Long: "Browse reads commands from standard input, one per line, and prints the\n" +
			"current page after each change. Type help for the command list.",
		Args: cobra.NoArgs,
	}
	cmd.RunE = withApp(func(ctx context.Context, a *app, args []string) error {
		engine := catalog.New(a.client, a.session, catalog.WithLogger(a.logger))
		r := &repl{
			in:       cmd.InOrStdin(),
			out:      a.out,
			prompt:   "browse> ",
			commands: browseCommands(engine, a),
		}
		if err := engine.Load(ctx); err != nil {
			fmt.Fprintln(a.out, describeError(err))
		} else {
			writeSnapshot(a.out, engine.Snapshot())
		}
		return r.loop(ctx)
	})
	return cmd
}

func browseCommands(e *catalog.Engine, a *app) map[string]replCommand {
	show := func() error { return writeSnapshot(a.out, e.Snapshot()) }
	// then runs a state change and prints the page it produced.
	then := func(err error) error {
		if err != nil {
			return err
		}
		return show()
	}
	text := func(args []string) string { return strings.Join(args, " ") }

	return map[string]replCommand{
		"show": {usage: "show", help: "print the current page", run: func(ctx context.Context, args []string) error {
			return show()
		}},
		"publisher": {usage: "publisher [text]", help: "filter by publisher; empty clears", run: func(ctx context.Context, args []string) error {
			return then(e.SetPublisher(ctx, text(args)))
		}},
		"level": {usage: "level [text]", help: "filter by level; empty clears", run: func(ctx context.Context, args []string) error {
			return then(e.SetLevel(ctx, text(args)))
		}},
		"subject": {usage: "subject [text]", help: "filter by subject; empty clears", run: func(ctx context.Context, args []string) error {
			return then(e.SetSubject(ctx, text(args)))
		}},
		"sort": {usage: "sort title|price", help: "sort key", run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return usageError("sort title|price")
			}
			return then(e.SetSort(ctx, strings.ToLower(args[0])))
		}},
		"dir": {usage: "dir asc|desc", help: "sort direction", run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return usageError("dir asc|desc")
			}
			return then(e.SetDirection(ctx, strings.ToLower(args[0])))
		}},
		"limit": {usage: "limit <n>", help: "books per page", run: func(ctx context.Context, args []string) error {
			n, err := intArg(args, "limit <n>")
			if err != nil {
				return err
			}
			return then(e.SetLimit(ctx, n))
		}},
		"page": {usage: "page <n>", help: "jump to a page", run: func(ctx context.Context, args []string) error {
			n, err := positiveArg(args, "page <n>")
			if err != nil {
				return err
			}
			return then(e.SetPage(ctx, n))
		}},
		"next": {usage: "next", help: "next page", run: func(ctx context.Context, args []string) error {
			return then(e.Next(ctx))
		}},
		"prev": {usage: "prev", help: "previous page", run: func(ctx context.Context, args []string) error {
			return then(e.Prev(ctx))
		}},
		"all": {usage: "all", help: "clear every filter", run: func(ctx context.Context, args []string) error {
			return then(e.ViewAll(ctx))
		}},
		"everything": {usage: "everything", help: "show the unfiltered catalog on one page", run: func(ctx context.Context, args []string) error {
			return then(e.LoadAll(ctx))
		}},
		"delete": {usage: "delete <id>", help: "delete a book and reload", run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return usageError("delete <id>")
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := e.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted book %d\n", id)
			return show()
		}},
	}
}
