package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gitstat/pkg/errors"
	"github.com/matzehuels/gitstat/pkg/profile"
)

// noReadmeText is shown in place of a README that could not be loaded.
const noReadmeText = "No README available for this profile"

type profileOptions struct {
	json     bool
	noReadme bool
	refresh  bool
}

// profileCommand creates the profile command.
func (c *CLI) profileCommand() *cobra.Command {
	var opts profileOptions

	cmd := &cobra.Command{
		Use:   "profile <login>",
		Short: "Show a GitHub user's profile, recent repositories and README",
		Long: `Show a GitHub user's profile.

The profile lists account details, the most recently updated public
repositories, the number of starred repositories and the profile README
(from the repository named after the user). Results are cached; use
--refresh to bypass the cache.`,
		Example: `  gitstat profile octocat
  gitstat profile octocat --no-readme
  gitstat profile octocat --json | jq .repositories`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runProfile(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.json, "json", false, "print the view model as JSON")
	cmd.Flags().BoolVar(&opts.noReadme, "no-readme", false, "omit the README section")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the cache")

	return cmd
}

func (c *CLI) runProfile(ctx context.Context, w io.Writer, login string, opts profileOptions) error {
	if err := errors.ValidateLogin(login); err != nil {
		return err
	}

	loader := c.newProfileLoader(ctx)
	prog := newProgress(c.Logger)

	var vm *profile.ViewModel
	err := c.withSpinner(ctx, !opts.json, "Loading "+login+"...", func(ctx context.Context) error {
		var err error
		if opts.refresh {
			vm, err = loader.Refresh(ctx, login)
		} else {
			vm, err = loader.Load(ctx, login)
		}
		return err
	})
	if err != nil {
		if errors.IsAborted(err) || opts.json {
			return err
		}
		if errors.IsNotFound(err) {
			renderNotFound(w, login)
		} else {
			printError(w, profile.FailureMessage)
		}
		return reported(err)
	}
	prog.done("Loaded profile " + login)

	if opts.json {
		return writeJSON(w, vm)
	}
	renderProfile(w, vm, time.Now(), !opts.noReadme)
	return nil
}

// renderNotFound prints the view for a login with no account behind it.
func renderNotFound(w io.Writer, login string) {
	printError(w, "%s", errors.UserMessage(errors.ErrNotFound))
	printDetail(w, "No account matches %q", login)
	fmt.Fprintln(w)
	printNextStep(w, "Search for similar accounts", "gitstat search "+login)
}

// renderProfile prints the profile view.
func renderProfile(w io.Writer, vm *profile.ViewModel, now time.Time, withReadme bool) {
	u := vm.User

	title := StyleTitle.Render(u.Login)
	if u.Name != "" {
		title += " " + StyleDim.Render("("+u.Name+")")
	}
	fmt.Fprintln(w, title+"  "+cacheStatus(vm.Cached))
	if u.Bio != nil && *u.Bio != "" {
		fmt.Fprintln(w, StyleValue.Render(*u.Bio))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, keyValue("Repos", strconv.Itoa(u.PublicRepos)))
	fmt.Fprintln(w, keyValue("Followers", strconv.Itoa(u.Followers)))
	fmt.Fprintln(w, keyValue("Following", strconv.Itoa(u.Following)))
	fmt.Fprintln(w, keyValue("Starred", strconv.Itoa(vm.StarredCount)))
	fmt.Fprintln(w, keyValue("Location", deref(u.Location, "—")))
	fmt.Fprintln(w, keyValue("Company", deref(u.Company, "—")))
	if u.Blog != "" {
		fmt.Fprintln(w, keyValue("Blog", u.Blog))
	}
	if u.TwitterUsername != nil && *u.TwitterUsername != "" {
		fmt.Fprintln(w, keyValue("Twitter", "@"+*u.TwitterUsername))
	}
	if !u.CreatedAt.IsZero() {
		fmt.Fprintln(w, keyValue("Joined", u.CreatedAt.Format("Jan 2, 2006")))
	}
	if u.HTMLURL != "" {
		fmt.Fprintln(w, StyleLink.Render(u.HTMLURL))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, StyleTitle.Render("Recent repositories"))
	if len(vm.Repositories) == 0 {
		printInfo(w, "No public repositories")
	} else {
		fmt.Fprintln(w, repoTable(vm, now))
	}

	if !withReadme {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, StyleTitle.Render("README"))
	if vm.ReadmeStatus != profile.ReadmeAvailable || strings.TrimSpace(vm.Readme) == "" {
		printInfo(w, noReadmeText)
		return
	}
	fmt.Fprintln(w, styleBox.Render(strings.TrimRight(vm.Readme, "\n")))
}

func repoTable(vm *profile.ViewModel, now time.Time) string {
	rows := make([][]string, 0, len(vm.Repositories))
	for _, r := range vm.Repositories {
		desc := deref(r.Description, "")
		if len([]rune(desc)) > 48 {
			desc = string([]rune(desc)[:47]) + "…"
		}
		rows = append(rows, []string{
			r.Name,
			deref(r.Language, "—"),
			strconv.Itoa(r.Stars),
			strconv.Itoa(r.Forks),
			formatRelativeTime(r.UpdatedAt, now),
			desc,
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		Headers("Name", "Lang", "Stars", "Forks", "Updated", "Description").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader.Padding(0, 1)
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			switch col {
			case 0:
				return base.Foreground(colorCyan)
			case 2, 3:
				return base.Foreground(colorWhite).Align(lipgloss.Right)
			case 4, 5:
				return base.Foreground(colorGray)
			}
			return base
		}).
		Render()
}

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
