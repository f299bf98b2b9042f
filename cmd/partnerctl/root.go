package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/sahilchouksey/partner-hub/config"
	"github.com/sahilchouksey/partner-hub/model"
	"github.com/sahilchouksey/partner-hub/services/upstream"
	"github.com/sahilchouksey/partner-hub/utils"
	"github.com/sahilchouksey/partner-hub/utils/auth"
)

var readPasswordFunc = term.ReadPassword // mockable

// backend is the part of the partnership API the commands use.
type backend interface {
	ListPartnerships(ctx context.Context, college string) ([]model.Partnership, error)
	GetPartnership(ctx context.Context, id string) (model.Partnership, error)
	GetPartnershipRaw(ctx context.Context, id string) (json.RawMessage, error)
	UpdatePartnership(ctx context.Context, id string, changes map[string]interface{}) (model.Partnership, error)
	ResetPassword(ctx context.Context, req model.ResetPassword) error
	ListUsers(ctx context.Context) ([]model.User, error)
}

type cli struct {
	backend backend
	now     func() time.Time
	log     *zap.Logger

	apiURL  string
	token   string
	timeout time.Duration
	output  string
	verbose bool
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "partnerctl",
		Short:         "Partnership dashboard in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.apiURL, "api", "", "partnership API base URL (default $PARTNERSHIP_API_URL)")
	flags.StringVar(&c.token, "token", "", "bearer token (default $PARTNERSHIP_API_TOKEN)")
	flags.DurationVar(&c.timeout, "timeout", 0, "HTTP timeout")
	flags.StringVarP(&c.output, "output", "o", "table", "output format: table, json or yaml")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "log API calls to stderr")

	root.AddCommand(
		newDashboardCmd(c),
		newExportCmd(c),
		newPartnershipsCmd(c),
		newResetPasswordCmd(c),
		newUsersCmd(c),
	)
	return root
}

// setup builds the API client from flags and environment unless one was injected.
func (c *cli) setup() error {
	if c.now == nil {
		c.now = time.Now
	}
	if c.log == nil {
		level := "error"
		if c.verbose {
			level = "debug"
		}
		l, err := utils.NewLogger("development", level)
		if err != nil {
			return err
		}
		c.log = l
	}
	switch c.output {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("unknown output format %q", c.output)
	}
	if c.backend != nil {
		return nil
	}

	if err := config.LoadENV(); err != nil {
		return err
	}
	env, err := config.Get()
	if err != nil {
		return err
	}

	cfg := upstream.Config{
		BaseURL: env.PARTNERSHIP_API_URL,
		Token:   env.PARTNERSHIP_API_TOKEN,
		Timeout: env.HTTP_TIMEOUT,
		Logger:  c.log,
	}
	if c.apiURL != "" {
		cfg.BaseURL = c.apiURL
	}
	if c.token != "" {
		cfg.Token = c.token
	}
	if c.timeout > 0 {
		cfg.Timeout = c.timeout
	}
	c.backend = upstream.NewClient(cfg)
	return nil
}

func (c *cli) context(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return auth.ContextWithToken(ctx, c.token)
}

// render prints v as JSON or YAML, or calls table for the table format.
func (c *cli) render(w io.Writer, v interface{}, table func(tw *tabwriter.Writer)) error {
	switch c.output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		// round-trip through JSON so field names match the API
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var generic interface{}
		if err := json.Unmarshal(data, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return err
		}
		return enc.Close()
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	table(tw)
	return tw.Flush()
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

func stdinFd() int {
	return int(os.Stdin.Fd())
}
