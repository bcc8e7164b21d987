package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/apiclient"
	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/counts"
	"github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/notify"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/Skotchmaster/storefront/internal/storefront"
)

var (
	cfgFile string
	jsonOut bool

	out io.Writer = os.Stdout
)

var rootCmd = &cobra.Command{
	Use:           "shopctl",
	Short:         "Shop from the terminal",
	Long:          "shopctl talks to the shop backend with the same session, cart and wishlist rules as the web storefront.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cmd.SetContext(logging.IntoContext(cmd.Context(), logging.NewWithWriter(os.Stderr, viper.GetString("log_level"))))
	},
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.shopctl.yaml)")
	rootCmd.PersistentFlags().String("api", config.DefaultAPIBaseURL, "backend base URL")
	rootCmd.PersistentFlags().Duration("timeout", 15*time.Second, "request timeout")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "print JSON instead of tables")

	_ = viper.BindPFlag("api", rootCmd.PersistentFlags().Lookup("api"))
	_ = viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(".shopctl")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("SHOPCTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("log_level", "error")
	viper.SetDefault("session_file", "")
	viper.SetDefault("session_secret", "")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && cfgFile != "" {
			fmt.Fprintln(os.Stderr, "Warning: failed to read config:", err)
		}
	}
}

// origin is the backend's scheme and host; it keys the stored session the way
// a browser keys storage by origin.
func origin(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid api url %q", base)
	}
	return strings.ToLower(u.Scheme + "://" + u.Host), nil
}

func sessionFile() (string, error) {
	if p := viper.GetString("session_file"); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	dir = filepath.Join(dir, "shopctl")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	return filepath.Join(dir, "session.db"), nil
}

// shop is one CLI invocation's storefront and the database behind its session.
type shop struct {
	*storefront.Storefront
	db *gorm.DB
}

func (s *shop) Close() error { return db.Close(s.db) }

func openShop(ctx context.Context) (*shop, error) {
	base := viper.GetString("api")
	scope, err := origin(base)
	if err != nil {
		return nil, err
	}

	path, err := sessionFile()
	if err != nil {
		return nil, err
	}
	gdb, err := db.Open(ctx, "sqlite", path)
	if err != nil {
		return nil, err
	}
	backend, err := session.NewGormBackend(ctx, gdb, session.NewSealer([]byte(viper.GetString("session_secret"))))
	if err != nil {
		_ = db.Close(gdb)
		return nil, err
	}

	client := apiclient.NewClient(
		apiclient.WithBaseURL(base),
		apiclient.WithTimeout(viper.GetDuration("timeout")),
	)
	f := storefront.New(scope, session.Scoped(backend, scope), client, counts.New(), notify.NewCenter().For(scope))
	return &shop{Storefront: f, db: gdb}, nil
}

// withShop opens the storefront, runs fn and prints whatever notices it queued.
func withShop(cmd *cobra.Command, fn func(ctx context.Context, s *shop) error) error {
	ctx := cmd.Context()
	s, err := openShop(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	err = fn(ctx, s)
	if !jsonOut {
		printNotices(s.Notices())
	}
	return err
}

func printNotices(ns []notify.Notice) {
	for _, n := range ns {
		if n.Text != "" {
			fmt.Fprintf(os.Stderr, "[%s] %s %s\n", n.Level, n.Title, n.Text)
			continue
		}
		fmt.Fprintf(os.Stderr, "[%s] %s\n", n.Level, n.Title)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

func printTableHeader(w io.Writer, cols ...string) {
	fmt.Fprintln(w, strings.Join(cols, "\t"))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
