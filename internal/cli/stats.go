package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gitstat/pkg/errors"
	"github.com/matzehuels/gitstat/pkg/stats"
)

const (
	viewGrid  = "grid"
	viewChart = "chart"
)

// chartWidth is the length of the longest bar in the chart view.
const chartWidth = 40

var weekdayLabels = [7]string{"S", "M", "T", "W", "T", "F", "S"}

type statsOptions struct {
	view    string
	json    bool
	refresh bool
}

// statsCommand creates the stats command.
func (c *CLI) statsCommand() *cobra.Command {
	var opts statsOptions

	cmd := &cobra.Command{
		Use:   "stats <login>",
		Short: "Show the activity dashboard for a GitHub user",
		Long: `Show the activity dashboard for a GitHub user.

The dashboard shows estimated commit, pull request and issue totals derived
from the public repository count, the real star and fork totals over the
listed repositories, and the public events of the last 30 days as a
heat-map grid or a bar chart.`,
		Example: `  gitstat stats octocat
  gitstat stats octocat --view chart
  gitstat stats octocat --json`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.view != viewGrid && opts.view != viewChart {
				return errors.New(errors.ErrCodeInvalidInput, "invalid view %q (want %s or %s)", opts.view, viewGrid, viewChart)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStats(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.view, "view", viewGrid, "contribution view: grid or chart")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the dashboard as JSON")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the cache")

	return cmd
}

func (c *CLI) runStats(ctx context.Context, w io.Writer, login string, opts statsOptions) error {
	if err := errors.ValidateLogin(login); err != nil {
		return err
	}

	svc := c.newStatsService(ctx)
	prog := newProgress(c.Logger)

	var st *stats.Stats
	err := c.withSpinner(ctx, !opts.json, "Loading activity for "+login+"...", func(ctx context.Context) error {
		var err error
		st, err = svc.Load(ctx, login, opts.refresh)
		return err
	})
	if err != nil {
		if errors.IsAborted(err) {
			return err
		}
		if !opts.json {
			if errors.IsNotFound(err) {
				renderNotFound(w, login)
			} else {
				printError(w, stats.FailureMessage)
			}
			return reported(err)
		}
		return err
	}
	prog.done("Loaded stats " + login)

	if opts.json {
		return writeJSON(w, st)
	}
	renderStats(w, st, opts.view)
	return nil
}

// renderStats prints the stat cards followed by the contribution view.
func renderStats(w io.Writer, st *stats.Stats, view string) {
	fmt.Fprintln(w, StyleTitle.Render(st.Login)+"  "+cacheStatus(st.Cached))
	fmt.Fprintln(w)
	fmt.Fprintln(w, statCards(st))
	fmt.Fprintln(w)

	total := 0
	for _, d := range st.Contributions {
		total += d.Count
	}
	fmt.Fprintln(w, StyleTitle.Render("Activity")+" "+StyleDim.Render(fmt.Sprintf("%d events in the last %d days", total, len(st.Contributions))))

	if view == viewChart {
		fmt.Fprint(w, renderChart(st.Contributions))
		return
	}
	fmt.Fprint(w, renderGrid(st.Contributions))
	fmt.Fprintln(w, heatLegend())
}

func statCards(st *stats.Stats) string {
	cards := []struct {
		label string
		value int
	}{
		{"Commits", st.TotalCommits},
		{"Pull requests", st.TotalPRs},
		{"Issues", st.TotalIssues},
		{"Repos", st.TotalRepos},
		{"Stars", st.TotalStars},
		{"Forks", st.TotalForks},
	}

	rendered := make([]string, len(cards))
	for i, card := range cards {
		body := StyleNumber.Bold(true).Render(strconv.Itoa(card.value)) + "\n" + StyleDim.Render(card.label)
		rendered[i] = styleBox.Width(15).Render(body)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// renderGrid lays the series out as a heat-map with one column per weekday,
// starting on Sunday. The first row is padded up to the first day's weekday.
func renderGrid(days []stats.Day) string {
	var b strings.Builder
	b.WriteString(StyleDim.Render(strings.Join(weekdayLabels[:], " ")))
	b.WriteString("\n")
	if len(days) == 0 {
		return b.String()
	}

	col := int(days[0].Weekday)
	b.WriteString(strings.Repeat("  ", col))
	for _, d := range days {
		cell := lipgloss.NewStyle().Foreground(heatColors[stats.Level(d.Count)]).Render(iconCell)
		b.WriteString(cell)
		col++
		if col == 7 {
			b.WriteString("\n")
			col = 0
		} else {
			b.WriteString(" ")
		}
	}
	if col != 0 {
		b.WriteString("\n")
	}
	return b.String()
}

func heatLegend() string {
	cells := make([]string, len(heatColors))
	for i, c := range heatColors {
		cells[i] = lipgloss.NewStyle().Foreground(c).Render(iconCell)
	}
	return StyleDim.Render("Less ") + strings.Join(cells, " ") + StyleDim.Render(" More")
}

// renderChart draws one horizontal bar per day, scaled to the busiest day.
func renderChart(days []stats.Day) string {
	peak := 0
	for _, d := range days {
		peak = max(peak, d.Count)
	}

	var b strings.Builder
	for _, d := range days {
		label := d.Date
		if t, err := time.Parse("2006-01-02", d.Date); err == nil {
			label = t.Format("Jan 02")
		}
		n := 0
		if peak > 0 {
			n = d.Count * chartWidth / peak
		}
		if d.Count > 0 && n == 0 {
			n = 1
		}
		bar := lipgloss.NewStyle().Foreground(heatColors[stats.Level(d.Count)]).Render(strings.Repeat(iconBar, n))
		fmt.Fprintf(&b, "%s %s %s\n", StyleDim.Render(label), bar, StyleValue.Render(strconv.Itoa(d.Count)))
	}
	return b.String()
}
