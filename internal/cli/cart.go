package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/storefront/internal/invoice"
)

func newCartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Build and submit an invoice interactively",
		Long: "Cart reads commands from standard input, one per line: search for books,\n" +
			"add them to the cart, then create the invoice. Type help for the command list.",
		Args: cobra.NoArgs,
	}
	cmd.RunE = withApp(func(ctx context.Context, a *app, args []string) error {
		b := invoice.NewBuilder(a.client, a.session, invoice.WithLogger(a.logger))
		r := &repl{
			in:       cmd.InOrStdin(),
			out:      a.out,
			prompt:   "cart> ",
			commands: cartCommands(b, a),
		}
		return r.loop(ctx)
	})
	return cmd
}

func cartCommands(b *invoice.Builder, a *app) map[string]replCommand {
	showCart := func() error { return writeCart(a.out, b.Items()) }

	return map[string]replCommand{
		"search": {usage: "search <text>", help: "find books by subject", run: func(ctx context.Context, args []string) error {
			results, err := b.Search(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			return writeBooks(a.out, results)
		}},
		"results": {usage: "results", help: "print the last search results", run: func(ctx context.Context, args []string) error {
			results, _ := b.Results()
			return writeBooks(a.out, results)
		}},
		"add": {usage: "add <id>", help: "add a search result to the cart", run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return usageError("add <id>")
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			added, ok := b.AddResult(id)
			switch {
			case !ok:
				fmt.Fprintf(a.out, "Book %d is not in the search results.\n", id)
			case !added:
				fmt.Fprintf(a.out, "Book %d is already in the cart.\n", id)
			}
			return showCart()
		}},
		"remove": {usage: "remove <id>", help: "take a book out of the cart", run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return usageError("remove <id>")
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			b.Remove(id)
			return showCart()
		}},
		"items": {usage: "items", help: "print the cart", run: func(ctx context.Context, args []string) error {
			return showCart()
		}},
		"create": {usage: "create", help: "submit the cart as an invoice", run: func(ctx context.Context, args []string) error {
			inv, err := b.Create(ctx)
			if err != nil {
				return err
			}
			return writeInvoice(a.out, inv)
		}},
		"history": {usage: "history", help: "show or hide past invoices", run: func(ctx context.Context, args []string) error {
			visible, err := b.ToggleHistory(ctx)
			if err != nil {
				return err
			}
			if !visible {
				fmt.Fprintln(a.out, "History hidden.")
				return nil
			}
			if !a.session.Authenticated() {
				fmt.Fprintln(a.out, "Log in to see past invoices.")
				return nil
			}
			_, list, _ := b.History()
			return writeInvoices(a.out, list)
		}},
	}
}
