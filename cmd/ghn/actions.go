package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/guerinoni/ghn/internal/action"
)

var openOpts struct {
	all bool
}

// markOpts is shared by read and done.
var markOpts struct {
	all bool
}

var readCmd = &cobra.Command{
	Use:   "read <id|#N>",
	Short: "Mark a notification thread as read",
	Long: `Mark a notification thread as read.

The argument is a thread id, or "#N" for the N-th entry of 'ghn list'.
Pass --all to count entries the way 'ghn list --all' does.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMark(cmd, action.KindRead, args[0])
	},
}

var doneCmd = &cobra.Command{
	Use:   "done <id|#N>",
	Short: "Mark a notification thread as done",
	Long: `Mark a notification thread as done, removing it from the inbox.

The argument is a thread id, or "#N" for the N-th entry of 'ghn list'.
Pass --all to count entries the way 'ghn list --all' does.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMark(cmd, action.KindDone, args[0])
	},
}

var openCmd = &cobra.Command{
	Use:   "open <id|#N|N>",
	Short: "Open a notification in the browser",
	Long: `Open a notification in the browser.

Pull requests with a latest comment open at that comment; everything else
opens the repository page. The argument is a thread id, or a list index
("#N" or "N") when no thread has that id.`,
	Args: cobra.ExactArgs(1),
	RunE: runOpen,
}

func init() {
	rootCmd.AddCommand(readCmd, doneCmd, openCmd)

	openCmd.Flags().BoolVarP(&openOpts.all, "all", "a", false,
		"Resolve indexes against all notifications, not only unread")
	for _, c := range []*cobra.Command{readCmd, doneCmd} {
		c.Flags().BoolVarP(&markOpts.all, "all", "a", false,
			"Resolve #N against all notifications, not only unread")
	}
}

func runMark(cmd *cobra.Command, kind action.Kind, ref string) error {
	ctx := cmd.Context()

	svc, err := newServices(!markOpts.all)
	if err != nil {
		return err
	}
	defer svc.Close()

	// Thread ids are numeric, so only "#N" is treated as an index here.
	threadID := ref
	if strings.HasPrefix(ref, "#") {
		if _, err := fetchOnce(ctx, svc); err != nil {
			return err
		}
		n, err := svc.dispatcher.Resolve(ctx, ref)
		if err != nil {
			return err
		}
		threadID = n.ID
	}

	var res action.Result
	if kind == action.KindRead {
		res = svc.dispatcher.MarkRead(ctx, threadID)
	} else {
		res = svc.dispatcher.MarkDone(ctx, threadID)
	}
	if res.Err != nil {
		return fmt.Errorf("marking %s as %s: %w", threadID, kind, res.Err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ marked %s as %s\n", threadID, kind)
	return nil
}

func runOpen(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	svc, err := newServices(!openOpts.all)
	if err != nil {
		return err
	}
	defer svc.Close()

	if _, err := fetchOnce(ctx, svc); err != nil {
		return err
	}

	res := svc.dispatcher.OpenLink(ctx, args[0])
	if res.Err != nil {
		return fmt.Errorf("opening %s: %w", args[0], res.Err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), res.URL)
	return nil
}
