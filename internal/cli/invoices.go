package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/storefront/pkg/types"
)

func newInvoicesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoices",
		Short: "Show past invoices",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List your invoices, newest first",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			if !a.session.Authenticated() {
				return types.ErrAuthRequired
			}
			list, err := a.client.ListInvoices(ctx)
			if err != nil {
				return err
			}
			return a.emit(list, func(w io.Writer) error { return writeInvoices(w, list) })
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show one invoice with its books",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if !a.session.Authenticated() {
				return types.ErrAuthRequired
			}
			inv, err := a.client.GetInvoice(ctx, id)
			if err != nil {
				return err
			}
			return a.emit(inv, func(w io.Writer) error { return writeInvoice(w, inv) })
		}),
	})
	return cmd
}
