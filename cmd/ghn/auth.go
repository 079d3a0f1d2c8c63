package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/guerinoni/ghn/internal/credential"
	"github.com/guerinoni/ghn/internal/github"
)

var authLoginOpts struct {
	withToken bool
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the GitHub access token",
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store a GitHub token in the system keyring",
	Long: `Store a GitHub personal access token in the system keyring.

The token needs the "notifications" scope (classic tokens) or the
Notifications read/write permission. Use --with-token to read it from
standard input.`,
	Args: cobra.NoArgs,
	RunE: runAuthLogin,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the token from the system keyring",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		host := apiHost()
		if err := credential.DeleteToken(host); err != nil {
			return fmt.Errorf("removing token: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ token for %s removed from keyring\n", host)
		return nil
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which token ghn uses and whether GitHub accepts it",
	Args:  cobra.NoArgs,
	RunE:  runAuthStatus,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd, authLogoutCmd, authStatusCmd)

	authLoginCmd.Flags().BoolVar(&authLoginOpts.withToken, "with-token", false,
		"Read the token from standard input")
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	var token string

	if authLoginOpts.withToken {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("reading token from stdin: %w", err)
		}
		token = strings.TrimSpace(line)
	} else {
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("GitHub token").
					Description("Personal access token with the notifications scope").
					EchoMode(huh.EchoModePassword).
					Validate(func(s string) error {
						if strings.TrimSpace(s) == "" {
							return errors.New("token is required")
						}
						return nil
					}).
					Value(&token),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("reading token: %w", err)
		}
		token = strings.TrimSpace(token)
	}

	if token == "" {
		return errors.New("empty token")
	}

	host := apiHost()
	if err := credential.StoreToken(host, token); err != nil {
		return fmt.Errorf("storing token: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ token for %s stored in keyring\n", host)
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	token := resolveToken()
	client := newClient(token.Value)
	if !client.Authenticated() {
		fmt.Fprintf(out, "No token found for %s. Run 'ghn auth login' or 'gh auth login'.\n", apiHost())
		return nil
	}

	fmt.Fprintf(out, "Token:  %s (from %s)\n", maskToken(token.Value), token.Source)
	fmt.Fprintf(out, "API:    %s\n", cfg.API.BaseURL)

	ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
	defer cancel()

	if _, err := client.ListNotifications(ctx, false); err != nil {
		if github.IsAuthError(err) {
			fmt.Fprintln(out, "Status: rejected by GitHub (401)")
			return nil
		}
		return fmt.Errorf("checking token: %w", err)
	}

	fmt.Fprintln(out, "Status: ok")
	return nil
}

// maskToken keeps the prefix and last four characters of a token.
func maskToken(token string) string {
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	prefix := token[:4]
	if i := strings.Index(token, "_"); i > 0 && i < 8 {
		prefix = token[:i+1]
	}
	return prefix + strings.Repeat("*", 8) + token[len(token)-4:]
}
