package cmd

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idlab-discover/carbonscope-cli/internal/api"
	"github.com/idlab-discover/carbonscope-cli/internal/apperr"
	"github.com/idlab-discover/carbonscope-cli/internal/export"
	"github.com/idlab-discover/carbonscope-cli/internal/session"
	"github.com/idlab-discover/carbonscope-cli/internal/simulator"
	"github.com/idlab-discover/carbonscope-cli/internal/source"
)

const (
	defaultAPIURL     = api.DefaultBaseURL
	defaultTimeoutSec = 10
)

// config is the resolved global configuration of one invocation.
type config struct {
	APIURL    string
	Timeout   time.Duration
	Mode      source.Mode
	Dummy     bool
	TokenFile string
	LogLevel  string
}

// loadConfig resolves the global keys from flags, env and config file, and
// rejects invalid values before anything is fetched.
func loadConfig() (config, error) {
	c := config{
		APIURL:    strings.TrimSpace(viper.GetString("api.url")),
		TokenFile: strings.TrimSpace(viper.GetString("auth.token-file")),
		LogLevel:  strings.ToLower(strings.TrimSpace(viper.GetString("log-level"))),
	}
	if c.APIURL == "" {
		c.APIURL = defaultAPIURL
	}
	if !strings.HasPrefix(c.APIURL, "http://") && !strings.HasPrefix(c.APIURL, "https://") {
		return c, apperr.Userf("invalid api url %q (expected http:// or https://)", c.APIURL)
	}

	secs := viper.GetInt("api.timeout")
	if secs <= 0 {
		secs = defaultTimeoutSec
	}
	c.Timeout = time.Duration(secs) * time.Second

	if c.LogLevel == "" {
		c.LogLevel = "standard"
	}
	switch c.LogLevel {
	case "quiet", "standard", "debug":
	default:
		return c, apperr.Userf("invalid --log-level %q (expected quiet|standard|debug)", c.LogLevel)
	}

	be := strings.ToLower(strings.TrimSpace(viper.GetString("data.backend")))
	switch be {
	case "", "online":
	case "dummy":
		c.Dummy = true
	default:
		return c, apperr.Userf("invalid --backend %q (expected online|dummy)", be)
	}

	mode, err := source.ParseMode(strings.ToLower(strings.TrimSpace(viper.GetString("data.mode"))))
	if err != nil {
		return c, err
	}
	c.Mode = mode
	if c.Dummy {
		c.Mode = source.ModeClient
	}

	if c.TokenFile == "" {
		c.TokenFile = session.DefaultTokenPath()
	}
	return c, nil
}

// app wires the packages together for one command.
type app struct {
	cfg     config
	tokens  session.TokenStore
	client  *api.Client
	backend source.Backend
	session *session.Manager

	out    io.Writer
	errOut io.Writer
}

func (a *app) quiet() bool { return a.cfg.LogLevel == "quiet" }

// newApp builds the app for cmd. Nothing touches the network here.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr()}
	a.wireLogging()

	a.tokens = session.NewFileTokenStore(cfg.TokenFile)
	a.client = api.New(cfg.APIURL, api.NewHTTPClient(cfg.Timeout, a.tokens))
	a.backend = source.New(cfg.Mode, cfg.Dummy, a.client)

	var auth session.Authenticator = a.client
	if cfg.Dummy {
		auth = &session.OfflineAuth{Tokens: a.tokens}
	}
	a.session = session.NewManager(auth, a.tokens)
	return a, nil
}

// wireLogging sends package logs to stderr: session and export at standard,
// everything at debug.
func (a *app) wireLogging() {
	var std, dbg io.Writer
	switch a.cfg.LogLevel {
	case "debug":
		std, dbg = a.errOut, a.errOut
	case "standard":
		std = a.errOut
	}
	session.SetLogger(std)
	export.SetLogger(std)
	simulator.SetLogger(dbg)
	api.SetLogger(dbg)
	source.SetLogger(dbg)
}

// restore resumes the stored session. A failed restore is not fatal; the
// command continues anonymously.
func (a *app) restore(ctx context.Context) {
	_ = a.session.Restore(ctx)
}

// requireUser restores the session and insists on a signed-in user.
func (a *app) requireUser(ctx context.Context) error {
	a.restore(ctx)
	_, err := a.session.Require()
	return err
}
