package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/mahmoud-slama/creditapp/internal/cli"
	"github.com/mahmoud-slama/creditapp/internal/common"
	"github.com/mahmoud-slama/creditapp/internal/config"
	"github.com/mahmoud-slama/creditapp/internal/credit"
	"github.com/mahmoud-slama/creditapp/internal/model"
	"github.com/mahmoud-slama/creditapp/internal/sheets"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Sign in, sign out and manage accounts",
		Long:  `Sign in to the credit backend, create accounts and connect Google Sheets for exports.`,
	}

	cmd.AddCommand(authLoginCmd())
	cmd.AddCommand(authLogoutCmd())
	cmd.AddCommand(authStatusCmd())
	cmd.AddCommand(authRegisterCmd())
	cmd.AddCommand(authSheetsCmd())

	return cmd
}

func authLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the backend",
		Long: `Sign in with your email and password.

The session is stored in the local database and reused by every command until
you run 'credit auth logout'. Missing values are prompted for.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				p := cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
				var err error
				if email == "" {
					if email, err = p.Ask(ctx, "Email", ""); err != nil {
						return err
					}
				}
				if password == "" {
					if password, err = readPassword(ctx, cmd, p); err != nil {
						return err
					}
				}

				resp, err := a.api.Authenticate(ctx, model.Credentials{Email: strings.TrimSpace(email), Password: password})
				if err != nil {
					return common.NewUserError("Sign in failed: "+common.UserMessage(err), err)
				}
				s, err := a.sessions.Login(ctx, resp, strings.TrimSpace(email))
				if err != nil {
					return fmt.Errorf("failed to save session: %w", err)
				}

				success(cmd, "Signed in as %s (%s)", s.Email, strings.ToLower(string(s.Role)))
				if s.MaxAmount > 0 {
					usage := credit.Compute(s.Balance, s.MaxAmount)
					out(cmd, "%s %s", cli.CreditBar(usage, 30), usage)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")

	return cmd
}

// readPassword reads without echo on a terminal and falls back to a plain prompt.
func readPassword(ctx context.Context, cmd *cobra.Command, p *cli.Prompter) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		_, _ = fmt.Fprint(cmd.OutOrStdout(), cli.FormatPrompt("Password"))
		b, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}
	return p.Ask(ctx, "Password", "")
}

func authLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget cached data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				s, ok := a.sessions.Current()
				if !ok {
					info(cmd, "Not signed in.")
					return nil
				}
				if err := a.api.Logout(ctx); err != nil {
					common.LogDebug("Remote logout failed", common.Fields{"error": err, "user_id": s.UserID})
				}
				if err := a.sessions.Clear(ctx); err != nil {
					return fmt.Errorf("failed to clear session: %w", err)
				}
				a.resetStores(ctx, s.UserID)
				success(cmd, "Signed out %s", s.Email)
				return nil
			})
		},
	}
}

func authStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show who is signed in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(_ context.Context, a *app) error {
				s, ok := a.sessions.Current()
				if !ok {
					info(cmd, "Not signed in. Run 'credit auth login'.")
					return nil
				}
				lines := []string{
					fmt.Sprintf("Name:     %s", s.FirstName),
					fmt.Sprintf("Email:    %s", s.Email),
					fmt.Sprintf("Role:     %s", s.Role),
					fmt.Sprintf("User id:  %d", s.UserID),
					fmt.Sprintf("Backend:  %s", a.api.BaseURL()),
				}
				if !s.TokenExpiry.IsZero() {
					lines = append(lines, fmt.Sprintf("Token:    expires %s", s.TokenExpiry.Local().Format(time.DateTime)))
				}
				out(cmd, "%s", cli.RenderBox(cli.InfoIcon+" Session", strings.Join(lines, "\n")))
				return nil
			})
		},
	}
}

func authRegisterCmd() *cobra.Command {
	var reg model.Registration
	var role string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Long: `Create a client or admin account.

Every field is required. Names may only contain letters and spaces and the
phone number has at most 8 digits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg.Role = model.Role(strings.ToUpper(role))
			if err := reg.Validate(); err != nil {
				return common.NewUserError("invalid registration:\n"+err.Error(), common.ErrInvalidInput)
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				resp, err := a.api.Register(ctx, reg)
				if err != nil {
					return err
				}
				success(cmd, "Account %d created for %s", resp.ID, reg.Email)
				info(cmd, "Run 'credit auth login -e %s' to sign in.", reg.Email)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&reg.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&reg.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&reg.Email, "email", "", "email")
	cmd.Flags().StringVar(&reg.Password, "password", "", "password")
	cmd.Flags().StringVar(&reg.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&role, "role", string(model.RoleUser), "role (USER or ADMIN)")

	return cmd
}

func authSheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Authenticate with Google Sheets",
		Long: `Authenticate with Google Sheets using OAuth2.

This command will:
1. Print a consent URL to open in your browser
2. Receive the authorization on a local callback
3. Save the token for 'credit invoices export --sheets'

You'll need to run this once to set up the Google Sheets export.`,
		Args: cobra.NoArgs,
		RunE: runAuthSheets,
	}

	cmd.Flags().String("client-id", "", "OAuth2 Client ID (overrides config)")
	cmd.Flags().String("client-secret", "", "OAuth2 Client Secret (overrides config)")
	cmd.Flags().String("callback", sheets.DefaultCallbackAddr, "address of the local consent callback")
	cmd.Flags().Bool("force", false, "run the consent flow even when a token is saved")

	return cmd
}

func runAuthSheets(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	clientID := viper.GetString("sheets.client_id")
	clientSecret := viper.GetString("sheets.client_secret")
	if flagID, _ := cmd.Flags().GetString("client-id"); flagID != "" {
		clientID = flagID
	}
	if flagSecret, _ := cmd.Flags().GetString("client-secret"); flagSecret != "" {
		clientSecret = flagSecret
	}
	if clientID == "" {
		clientID = os.Getenv("GOOGLE_SHEETS_CLIENT_ID")
	}
	if clientSecret == "" {
		clientSecret = os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET")
	}
	if clientID == "" || clientSecret == "" {
		return common.NewUserError("OAuth2 credentials not found. Set sheets.client_id and sheets.client_secret in config or use --client-id and --client-secret", common.ErrMissingConfig)
	}

	tokenFile := config.SheetsTokenFile(viper.GetViper())
	callback, _ := cmd.Flags().GetString("callback")
	slog.Info("Starting Google Sheets authentication", "token_file", tokenFile)

	oauthCfg := sheets.OAuth2Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenFile:    tokenFile,
		CallbackAddr: callback,
	}
	announce := func(url string) {
		info(cmd, "Open this URL in your browser to authorize the export:")
		out(cmd, "  %s", url)
	}

	// The consent flow saves the token itself.
	var err error
	if force, _ := cmd.Flags().GetBool("force"); force {
		_, err = sheets.AuthenticateOAuth2Interactive(ctx, oauthCfg, announce)
	} else {
		_, err = sheets.GetOrCreateToken(ctx, oauthCfg, announce)
	}
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	success(cmd, "Google Sheets is now configured. Token saved to %s", tokenFile)
	info(cmd, "Run 'credit invoices export --sheets' to export your invoices.")
	return nil
}
