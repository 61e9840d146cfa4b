// Package cli implements the storefront command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/storefront/internal/api"
	"github.com/mesh-intelligence/storefront/internal/config"
	"github.com/mesh-intelligence/storefront/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	apiURL    string
	jsonMode  bool
}

var flags rootFlags

// NewRootCmd creates the top-level "storefront" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "storefront",
		Short: "A command-line storefront for the bookstore API",
		Long: "Storefront browses and edits the book catalog, builds invoices, and keeps\n" +
			"the login credential of a bookstore API between runs.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "data directory (default: platform data dir)")
	root.PersistentFlags().StringVar(&flags.apiURL, config.FlagAPIURL, "", "bookstore API base URL (default: "+types.DefaultAPIURL+")")
	root.PersistentFlags().BoolVar(&flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newRegisterCmd())
	root.AddCommand(newLoginCmd())
	root.AddCommand(newLogoutCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newBooksCmd())
	root.AddCommand(newBrowseCmd())
	root.AddCommand(newCartCmd())
	root.AddCommand(newInvoicesCmd())

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes one command line and returns its exit code.
func run(args []string, in io.Reader, out, errOut io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(errOut, "Error:", err)
		return exitCode(err)
	}
	return exitSuccess
}

// codedError carries an explicit exit code.
type codedError struct {
	code int
	err  error
}

func (e *codedError) Error() string { return e.err.Error() }
func (e *codedError) Unwrap() error { return e.err }

// exitError tags err with the exit code the process should end with.
func exitError(code int, err error) error {
	if err == nil {
		return nil
	}
	return &codedError{code: code, err: err}
}

// exitCode maps an error to a process exit code. Validation failures and API
// 4xx responses are the user's to fix; transport failures, storage failures
// and API 5xx responses are not. Anything unrecognized, such as a cobra
// argument error, counts as a user error.
func exitCode(err error) int {
	var coded *codedError
	if errors.As(err, &coded) {
		return coded.code
	}
	if types.IsValidation(err) || api.IsClientError(err) {
		return exitUserError
	}
	if status := api.StatusOf(err); status >= 500 {
		return exitSysError
	}
	if errors.Is(err, api.ErrMissingData) || errors.Is(err, api.ErrNoAccessToken) {
		return exitSysError
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return exitSysError
	}
	return exitUserError
}
