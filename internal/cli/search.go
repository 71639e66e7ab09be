package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gitstat/pkg/errors"
	"github.com/matzehuels/gitstat/pkg/search"
)

type searchOptions struct {
	json bool
}

// searchCommand creates the search command.
func (c *CLI) searchCommand() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search GitHub accounts by login",
		Long: `Search GitHub accounts whose login matches a query.

With a query, a single search is issued and the matching accounts are
printed in GitHub's ranking order. Without one, an interactive search opens:
results update as you type, and enter opens the selected profile.`,
		Example: `  gitstat search octo
  gitstat search octo --json
  gitstat search`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				if opts.json {
					return errors.New(errors.ErrCodeInvalidInput, "--json requires a query")
				}
				return c.runInteractiveSearch(cmd.Context(), cmd.OutOrStdout())
			}
			return c.runSearch(cmd.Context(), cmd.OutOrStdout(), strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.json, "json", false, "print the previews as JSON")

	return cmd
}

func (c *CLI) runSearch(ctx context.Context, w io.Writer, query string, opts searchOptions) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return errors.New(errors.ErrCodeInvalidInput, "search query cannot be empty")
	}

	gh := c.newGitHub()
	pageSize := c.cfg.Search.PageSize

	var previews []search.Preview
	err := c.withSpinner(ctx, !opts.json, "Searching...", func(ctx context.Context) error {
		resp, err := gh.SearchUsers(ctx, query, pageSize)
		if err != nil {
			return err
		}
		previews = search.Project(resp, pageSize)
		return nil
	})
	if err != nil {
		if errors.IsAborted(err) || opts.json {
			return err
		}
		printError(w, search.FailureMessage)
		return reported(err)
	}

	if opts.json {
		return writeJSON(w, previews)
	}
	renderPreviews(w, query, previews)
	return nil
}

// renderPreviews prints search results in ranking order.
func renderPreviews(w io.Writer, query string, previews []search.Preview) {
	if len(previews) == 0 {
		printInfo(w, "No users found for %q", query)
		return
	}
	for _, p := range previews {
		line := StyleHighlight.Render(p.Login)
		if p.Name != "" {
			line += " " + StyleDim.Render(p.Name)
		}
		fmt.Fprintln(w, line)
		if p.ProfileURL != "" {
			printDetail(w, "%s", p.ProfileURL)
		}
	}
	fmt.Fprintln(w)
	printNextStep(w, "Open a profile", "gitstat profile "+previews[0].Login)
}

func (c *CLI) runInteractiveSearch(ctx context.Context, w io.Writer) error {
	ctrl := search.New(c.newGitHub(),
		search.WithWindow(c.cfg.Search.Debounce),
		search.WithPageSize(c.cfg.Search.PageSize),
		search.WithLogger(c.Logger),
	)
	defer ctrl.Close()

	restore := c.quiet()
	final, err := tea.NewProgram(NewSearchModel(ctrl), tea.WithContext(ctx), tea.WithOutput(c.stderr)).Run()
	restore()
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %w", errors.ErrAborted, ctx.Err())
		}
		return fmt.Errorf("search: %w", err)
	}

	m, ok := final.(SearchModel)
	if !ok || m.Selected == "" {
		return nil
	}
	return c.runProfile(ctx, w, m.Selected, profileOptions{})
}
