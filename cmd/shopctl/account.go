package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/Skotchmaster/storefront/internal/storefront"
)

var loginCmd = &cobra.Command{
	Use:   "login <username-or-email>",
	Short: "Log in and keep the session for later commands",
	Long: `Log in against the backend. The tokens are stored per backend origin and
sent with every following command until logout.

Examples:
  shopctl login alice
  echo "$PASSWORD" | shopctl login alice@example.com`,
	Args: cobra.ExactArgs(1),
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the stored user and token expiry",
	RunE:  runWhoami,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	RunE:  runRegister,
}

var activateCmd = &cobra.Command{
	Use:   "activate <uid> <token>",
	Short: "Activate an account from the emailed link",
	Args:  cobra.ExactArgs(2),
	RunE:  runActivate,
}

func init() {
	loginCmd.Flags().StringP("password", "p", "", "password (read from stdin when empty)")

	registerCmd.Flags().String("first-name", "", "first name")
	registerCmd.Flags().String("last-name", "", "last name")
	registerCmd.Flags().String("username", "", "username")
	registerCmd.Flags().String("email", "", "email address")
	registerCmd.Flags().StringP("password", "p", "", "password")
	_ = registerCmd.MarkFlagRequired("username")
	_ = registerCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(activateCmd)
}

func readPassword(cmd *cobra.Command) (string, error) {
	pw, _ := cmd.Flags().GetString("password")
	if pw != "" {
		return pw, nil
	}
	fmt.Fprint(os.Stderr, "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	pw, err := readPassword(cmd)
	if err != nil {
		return err
	}
	return withShop(cmd, func(ctx context.Context, s *shop) error {
		to, err := s.Login(ctx, args[0], pw)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(map[string]string{"landing": to})
		}
		fmt.Fprintf(out, "Logged in. Landing page: %s\n", to)
		return nil
	})
}

func runLogout(cmd *cobra.Command, args []string) error {
	return withShop(cmd, func(ctx context.Context, s *shop) error {
		_, err := s.Logout(ctx)
		return err
	})
}

func runWhoami(cmd *cobra.Command, args []string) error {
	return withShop(cmd, func(ctx context.Context, s *shop) error {
		sess, err := s.Session(ctx)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(sess.User)
		}
		if !sess.Authenticated() || sess.User == nil {
			fmt.Fprintln(out, "Not logged in")
			return nil
		}

		u := sess.User
		role := "customer"
		if u.IsStaff {
			role = "staff"
		}
		fmt.Fprintf(out, "%s <%s> (%s)\n", u.Username, u.Email, role)
		printExpiry(sess)
		return nil
	})
}

func printExpiry(sess session.Session) {
	info, err := session.Inspect(sess.AccessToken)
	if err != nil || info.ExpiresAt.IsZero() {
		return
	}
	if info.Expired(time.Now()) {
		fmt.Fprintf(out, "Access token expired at %s\n", info.ExpiresAt.Local().Format(time.RFC1123))
		return
	}
	fmt.Fprintf(out, "Access token valid until %s\n", info.ExpiresAt.Local().Format(time.RFC1123))
}

func runRegister(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	var form storefront.RegisterForm
	form.FirstName, _ = flags.GetString("first-name")
	form.LastName, _ = flags.GetString("last-name")
	form.Username, _ = flags.GetString("username")
	form.Email, _ = flags.GetString("email")

	pw, err := readPassword(cmd)
	if err != nil {
		return err
	}
	form.Password = pw
	form.ConfirmPassword = pw

	return withShop(cmd, func(ctx context.Context, s *shop) error {
		_, err := s.Register(ctx, form)
		return err
	})
}

func runActivate(cmd *cobra.Command, args []string) error {
	return withShop(cmd, func(ctx context.Context, s *shop) error {
		_, err := s.Activate(ctx, args[0], args[1])
		return err
	})
}
