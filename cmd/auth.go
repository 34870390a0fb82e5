package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andhikapraa/google-calendar-tasks-mcp/internal/auth"
	"github.com/andhikapraa/google-calendar-tasks-mcp/internal/google"
	"github.com/andhikapraa/google-calendar-tasks-mcp/internal/logging"
)

func newAuthCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize a Google account from the terminal",
		Long: `Run the OAuth authorization flow interactively: print the consent URL,
read the authorization code from stdin, and store the resulting tokens for
the given account.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuth(cmd.Context(), account)
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Google account name to authorize")
	return cmd
}

func runAuth(ctx context.Context, account string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	fmt.Printf("Visit this URL to authorize account %q:\n\n  %s\n\n", account, google.AuthURL())
	fmt.Print("Paste the authorization code: ")

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("reading authorization code: %w", err)
	}
	authCode := strings.TrimSpace(line)
	if authCode == "" {
		return fmt.Errorf("no authorization code provided")
	}

	cred, err := google.Exchange(ctx, authCode)
	if err != nil {
		return fmt.Errorf("exchanging authorization code: %w", err)
	}

	path, err := google.TokenPath(account)
	if err != nil {
		return err
	}

	manager := auth.NewManager(auth.Options{
		Path:      path,
		Refresher: google.NewRefresher(google.OAuthConfig()),
		Logger:    logging.DefaultLogger(),
	})
	if err := manager.Save(ctx, cred); err != nil {
		return fmt.Errorf("saving credentials: %w", err)
	}
	if err := manager.BeginShutdown(ctx); err != nil {
		return fmt.Errorf("finalizing credential store: %w", err)
	}

	fmt.Printf("Authorization successful. Tokens saved to %s\n", path)
	return nil
}
