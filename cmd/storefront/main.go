package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/notification"
	"github.com/shashiranjanraj/storefront/pkg/reqid"
	"github.com/shashiranjanraj/storefront/pkg/shopapi"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	baseURLFlag   string
	timeoutFlag   time.Duration
	tokenFlag     string
	requestIDFlag string
)

var rootCmd = &cobra.Command{
	Use:           "storefront",
	Short:         "Storefront API client",
	Long:          "Call the storefront backend from the command line, or run an in-memory backend to call.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}
		// stdout carries command output.
		logger.L = logger.NewWriter(cmd.ErrOrStderr(), config.AppEnv(), config.LogLevel())
		slog.SetDefault(logger.L)
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&baseURLFlag, "base-url", "", "Backend base URL (default API_BASE_URL)")
	pf.DurationVar(&timeoutFlag, "timeout", 0, "Per-request timeout (default API_TIMEOUT_MS)")
	pf.StringVar(&tokenFlag, "token", "", "Bearer token sent with every request")
	pf.StringVar(&requestIDFlag, "request-id", "", "X-Request-ID for this invocation (default: one per call)")

	rootCmd.AddCommand(ordersCmd)
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(likesCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(mockCmd)
}

// session is one configured client plus what must be released after it.
type session struct {
	client  *shopapi.Client
	closers []func()
}

func (s *session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// newSession builds a client from config, overridden by the root flags, with
// toasts going to the log and to any configured webhook or Redis channel.
func newSession(ctx context.Context) (*session, error) {
	cfg, err := config.Client()
	if err != nil {
		return nil, err
	}
	if baseURLFlag != "" {
		cfg.BaseURL = baseURLFlag
	}
	timeout := cfg.Timeout()
	if timeoutFlag > 0 {
		timeout = timeoutFlag
	}

	s := &session{}
	handlers := []notification.Handler{notification.LogHandler{}}

	if cfg.WebhookURL != "" {
		async := notification.NewAsync(notification.NewWebhookHandler(cfg.WebhookURL), 2, 64)
		handlers = append(handlers, async)
		s.closers = append(s.closers, async.Close)
	}
	if cfg.RedisAddr != "" {
		rdb, err := notification.DialRedis(ctx, cfg.RedisAddr, config.Get("NOTIFY_REDIS_PASSWORD", ""))
		if err != nil {
			s.Close()
			return nil, err
		}
		async := notification.NewAsync(notification.NewRedisHandler(rdb, cfg.RedisChannel), 1, 64)
		handlers = append(handlers, async)
		s.closers = append(s.closers, func() { _ = rdb.Close() }, async.Close)
	}

	opts := []shopapi.Option{shopapi.WithSink(notification.New(handlers...))}
	if tokenFlag != "" {
		opts = append(opts, shopapi.WithHeader("Authorization", "Bearer "+tokenFlag))
	}

	s.client, err = shopapi.New(shopapi.Config{BaseURL: cfg.BaseURL, Timeout: timeout}, opts...)
	if err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// call runs fn with a fresh session and prints the envelope it returns.
func call(cmd *cobra.Command, fn func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error)) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if requestIDFlag != "" {
		ctx = reqid.WithValue(ctx, requestIDFlag)
	}

	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	env, err := fn(ctx, s.client)
	if err != nil {
		return err
	}
	if env == nil {
		return nil
	}
	return printJSON(cmd, env)
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
