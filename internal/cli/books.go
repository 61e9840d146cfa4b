package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mesh-intelligence/storefront/internal/catalog"
	"github.com/mesh-intelligence/storefront/pkg/types"
)

func newBooksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "books",
		Short: "List, filter and edit catalog books",
	}
	cmd.AddCommand(newBooksListCmd())
	cmd.AddCommand(newBooksGetCmd())
	cmd.AddCommand(newBooksCreateCmd())
	cmd.AddCommand(newBooksUpdateCmd())
	cmd.AddCommand(newBooksDeleteCmd())
	cmd.AddCommand(newBooksFilterCmd())
	return cmd
}

func newBooksListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the whole catalog",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			books, err := a.client.ListBooks(ctx)
			if err != nil {
				return err
			}
			return a.emit(books, func(w io.Writer) error { return writeBooks(w, books) })
		}),
	}
}

func newBooksGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one book",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			book, err := a.client.GetBook(ctx, id)
			if err != nil {
				return err
			}
			return a.emit(book, func(w io.Writer) error { return writeBook(w, book) })
		}),
	}
}

// bookFlags are the writable book fields as flags.
type bookFlags struct {
	in types.BookInput
}

func (f *bookFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.in.Title, "title", "", "book title")
	fs.StringVar(&f.in.Publisher, "publisher", "", "publisher")
	fs.StringVar(&f.in.Level, "level", "", "school level")
	fs.StringVar(&f.in.ISBN, "isbn", "", "ISBN")
	fs.Float64Var(&f.in.Price, "price", 0, "price")
	fs.StringVar(&f.in.Status, "status", "", "stock status")
}

// apply copies the flags the user set onto in.
func (f *bookFlags) apply(fs *pflag.FlagSet, in *types.BookInput) {
	if fs.Changed("title") {
		in.Title = f.in.Title
	}
	if fs.Changed("publisher") {
		in.Publisher = f.in.Publisher
	}
	if fs.Changed("level") {
		in.Level = f.in.Level
	}
	if fs.Changed("isbn") {
		in.ISBN = f.in.ISBN
	}
	if fs.Changed("price") {
		in.Price = f.in.Price
	}
	if fs.Changed("status") {
		in.Status = f.in.Status
	}
}

func newBooksCreateCmd() *cobra.Command {
	var bf bookFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a book to the catalog",
		Args:  cobra.NoArgs,
	}
	bf.register(cmd.Flags())
	cmd.RunE = withApp(func(ctx context.Context, a *app, args []string) error {
		if !a.session.Authenticated() {
			return types.ErrAuthRequired
		}
		in := bf.in
		if err := in.Validate(); err != nil {
			return err
		}
		book, err := a.client.CreateBook(ctx, in)
		if err != nil {
			return err
		}
		return a.emit(book, func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "Created book %d: %s\n", book.ID, book.Title)
			return err
		})
	})
	return cmd
}

func newBooksUpdateCmd() *cobra.Command {
	var bf bookFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a book; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
	}
	bf.register(cmd.Flags())
	cmd.RunE = withApp(func(ctx context.Context, a *app, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if !a.session.Authenticated() {
			return types.ErrAuthRequired
		}
		current, err := a.client.GetBook(ctx, id)
		if err != nil {
			return err
		}
		in := current.Input()
		bf.apply(cmd.Flags(), &in)
		if err := in.Validate(); err != nil {
			return err
		}
		book, err := a.client.UpdateBook(ctx, id, in)
		if err != nil {
			return err
		}
		return a.emit(book, func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "Updated book %d: %s\n", book.ID, book.Title)
			return err
		})
	})
	return cmd
}

func newBooksDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a book from the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if !a.session.Authenticated() {
				return types.ErrAuthRequired
			}
			if err := a.client.DeleteBook(ctx, id); err != nil {
				return err
			}
			return a.emit(map[string]any{"id": id, "deleted": true}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Deleted book %d\n", id)
				return err
			})
		}),
	}
}

// pageView is the JSON form of one catalog page.
type pageView struct {
	Query      types.Query  `json:"query"`
	Books      []types.Book `json:"data"`
	TotalPages int          `json:"total_pages"`
}

func newBooksFilterCmd() *cobra.Command {
	q := types.DefaultQuery()
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Show one page of the catalog filtered and sorted",
		Args:  cobra.NoArgs,
	}
	fs := cmd.Flags()
	fs.StringVar(&q.Publisher, "publisher", "", "publisher contains")
	fs.StringVar(&q.Level, "level", "", "level contains")
	fs.StringVar(&q.Subject, "subject", "", "subject contains")
	fs.StringVar(&q.Sort, "sort", q.Sort, "sort key: title or price")
	fs.StringVar(&q.Direction, "direction", q.Direction, "sort direction: asc or desc")
	fs.IntVar(&q.Page, "page", q.Page, "page number")
	fs.IntVar(&q.Limit, "limit", q.Limit, "books per page")

	cmd.RunE = withApp(func(ctx context.Context, a *app, args []string) error {
		if err := validateQuery(q); err != nil {
			return err
		}
		engine := catalog.New(a.client, a.session, catalog.WithQuery(q), catalog.WithLogger(a.logger))
		if err := engine.Load(ctx); err != nil {
			return err
		}
		snap := engine.Snapshot()
		view := pageView{Query: snap.Query, Books: snap.Books, TotalPages: snap.TotalPages}
		return a.emit(view, func(w io.Writer) error { return writeSnapshot(w, snap) })
	})
	return cmd
}

func validateQuery(q types.Query) error {
	if err := types.ValidateSort(q.Sort); err != nil {
		return err
	}
	if err := types.ValidateDirection(q.Direction); err != nil {
		return err
	}
	if q.Limit < 1 {
		return types.ErrInvalidLimit
	}
	return nil
}

func writeSnapshot(w io.Writer, snap catalog.Snapshot) error {
	if err := writeBooks(w, snap.Books); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Page %d of %d\n", snap.Query.Page, snap.TotalPages)
	return err
}

// parseID parses a positive book or invoice identifier.
func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: %q", types.ErrInvalidID, s)
	}
	return id, nil
}
