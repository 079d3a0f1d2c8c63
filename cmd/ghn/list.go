package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/guerinoni/ghn/internal/model"
	"github.com/guerinoni/ghn/internal/theme"
)

var listOpts struct {
	all  bool
	json bool
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print notifications and exit",
	Long: `Fetch notifications once and print them.

By default only unread notifications are listed. The first column is the
index accepted by 'ghn open #N', 'ghn read #N' and 'ghn done #N'; with
--all, pass --all to those commands too so the indexes line up.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolVarP(&listOpts.all, "all", "a", false,
		"Include read notifications")
	listCmd.Flags().BoolVar(&listOpts.json, "json", false,
		"Output as JSON")
}

func runList(cmd *cobra.Command, args []string) error {
	svc, err := newServices(!listOpts.all)
	if err != nil {
		return err
	}
	defer svc.Close()

	notifications, err := fetchOnce(cmd.Context(), svc)
	if err != nil {
		return err
	}

	if listOpts.json {
		return writeJSON(cmd.OutOrStdout(), notifications)
	}
	return writeTable(cmd.OutOrStdout(), notifications)
}

// fetchOnce performs a single synchronous fetch and returns the list as
// cached, which is the list '#N' references resolve against.
func fetchOnce(ctx context.Context, svc *services) ([]model.Notification, error) {
	res := svc.poller.FetchNow(ctx)
	if res.Err != nil {
		return nil, fmt.Errorf("fetching notifications: %w", res.Err)
	}
	list, err := svc.cache.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading cached notifications: %w", err)
	}
	return list, nil
}

func writeJSON(w io.Writer, notifications []model.Notification) error {
	if notifications == nil {
		notifications = []model.Notification{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(notifications)
}

func writeTable(w io.Writer, notifications []model.Notification) error {
	if len(notifications) == 0 {
		_, err := fmt.Fprintln(w, "No notifications.")
		return err
	}

	rows := make([][]string, 0, len(notifications))
	for i, n := range notifications {
		unread := ""
		if n.Unread {
			unread = theme.UnreadMarkerStyle.Render("●")
		}
		updated := ""
		if !n.UpdatedAt.IsZero() {
			updated = humanize.Time(n.UpdatedAt)
		}
		rows = append(rows, []string{
			"#" + strconv.Itoa(i+1),
			unread,
			n.Subject.Type,
			n.Repository.FullName,
			n.Subject.Title,
			n.Reason,
			updated,
			n.ID,
		})
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("#", "", "TYPE", "REPOSITORY", "TITLE", "REASON", "UPDATED", "ID").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d unread of %d\n", model.CountUnread(notifications), len(notifications))
	return err
}
