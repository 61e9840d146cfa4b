package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/mesh-intelligence/storefront/pkg/types"
)

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// emit writes v as JSON in --json mode, otherwise calls text.
func (a *app) emit(v any, text func(io.Writer) error) error {
	if a.json {
		return printJSON(a.out, v)
	}
	return text(a.out)
}

func writeBooks(w io.Writer, books []types.Book) error {
	if len(books) == 0 {
		_, err := fmt.Fprintln(w, "No books found.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPUBLISHER\tLEVEL\tISBN\tPRICE\tSTATUS")
	for _, b := range books {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%.2f\t%s\n", b.ID, b.Title, b.Publisher, b.Level, b.ISBN, b.Price, b.Status)
	}
	return tw.Flush()
}

func writeBook(w io.Writer, b types.Book) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%d\n", b.ID)
	fmt.Fprintf(tw, "Title:\t%s\n", b.Title)
	fmt.Fprintf(tw, "Publisher:\t%s\n", b.Publisher)
	fmt.Fprintf(tw, "Level:\t%s\n", b.Level)
	fmt.Fprintf(tw, "ISBN:\t%s\n", b.ISBN)
	fmt.Fprintf(tw, "Price:\t%.2f\n", b.Price)
	fmt.Fprintf(tw, "Status:\t%s\n", b.Status)
	return tw.Flush()
}

func writeCart(w io.Writer, items []types.CartItem) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "Cart is empty.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BOOK\tTITLE\tPRICE")
	for _, it := range items {
		fmt.Fprintf(tw, "%d\t%s\t%.2f\n", it.BookID, it.Title, it.Price)
	}
	return tw.Flush()
}

func writeInvoices(w io.Writer, invoices []types.Invoice) error {
	if len(invoices) == 0 {
		_, err := fmt.Fprintln(w, "No invoices.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tTOTAL")
	for _, inv := range invoices {
		fmt.Fprintf(tw, "%d\t%s\t%.2f\n", inv.ID, inv.CreatedAt, inv.TotalPrice)
	}
	return tw.Flush()
}

func writeInvoice(w io.Writer, inv types.Invoice) error {
	fmt.Fprintf(w, "Invoice %d", inv.ID)
	if inv.UserName != "" {
		fmt.Fprintf(w, " for %s", inv.UserName)
	}
	fmt.Fprintf(w, " (%s)\n", inv.CreatedAt)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BOOK\tTITLE\tPRICE\tQTY")
	for _, it := range inv.Items {
		fmt.Fprintf(tw, "%d\t%s\t%.2f\t%d\n", it.BookID, it.Title, it.BookPrice, it.Quantity)
	}
	fmt.Fprintf(tw, "\tTotal\t%.2f\t\n", inv.TotalPrice)
	return tw.Flush()
}
