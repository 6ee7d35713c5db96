package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/famomatic/playparse/client"
	"github.com/famomatic/playparse/internal/cookies"
)

// Options holds all command-line options.
type Options struct {
	// Input
	RawURL  string // first positional argument
	PageURL string // optional second positional argument
	Key     string
	Flag    string
	Headers map[string]string

	// General
	Help bool

	// Resolution
	ConfigPath   string // --config
	ForceDefault bool   // --force-default
	Timeout      time.Duration
	SniffTimeout time.Duration

	// Network
	ProxyURL    string
	CookiesFile string // --cookies
	UserAgent   string

	// Output
	LogLevel  string
	PrintJSON bool // --json
}

// ErrMissingURL is returned when no play URL was given.
var ErrMissingURL = errors.New("missing play URL")

// ParseFlags parses os.Args into Options, exiting on flag errors.
func ParseFlags() Options {
	opts, err := ParseArgs(os.Args[1:], os.Stderr)
	if err != nil && !errors.Is(err, flag.ErrHelp) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if errors.Is(err, flag.ErrHelp) {
		opts.Help = true
	}
	return opts
}

// ParseArgs parses args into Options. Unset flags fall back to PLAYPARSE_*
// environment variables.
func ParseArgs(args []string, usageOut io.Writer) (Options, error) {
	opts := Options{}
	fs := flag.NewFlagSet("playparse", flag.ContinueOnError)
	fs.SetOutput(usageOut)

	fs.StringVarP(&opts.ConfigPath, "config", "c", envOrDefault("PLAYPARSE_CONFIG", ""), "Resolver configuration file (YAML or JSON)")
	fs.StringVarP(&opts.Key, "key", "k", "", "Entry key used in logs and sniff sessions")
	fs.StringVar(&opts.Flag, "flag", "", "Site flag matched against aggregate resolvers")
	fs.StringToStringVarP(&opts.Headers, "header", "H", nil, "Request header as name=value (repeatable)")
	fs.BoolVar(&opts.ForceDefault, "force-default", false, "Use the configured default resolver regardless of the URL")
	fs.DurationVar(&opts.Timeout, "timeout", envDuration("PLAYPARSE_TIMEOUT", client.DefaultTimeout), "Global resolution deadline")
	fs.DurationVar(&opts.SniffTimeout, "sniff-timeout", envDuration("PLAYPARSE_SNIFF_TIMEOUT", 0), "Per-session sniff timeout (0 keeps default)")
	fs.StringVar(&opts.ProxyURL, "proxy", envOrDefault("PLAYPARSE_PROXY", ""), "Use the specified HTTP/HTTPS/SOCKS proxy")
	fs.StringVar(&opts.CookiesFile, "cookies", envOrDefault("PLAYPARSE_COOKIES", ""), "Netscape formatted cookies file")
	fs.StringVarP(&opts.UserAgent, "user-agent", "a", envOrDefault("PLAYPARSE_USER_AGENT", ""), "User-Agent used by the page sniffer")
	fs.StringVar(&opts.LogLevel, "log-level", envOrDefault("PLAYPARSE_LOG_LEVEL", "warn"), "Log level: debug, info, warn, error")
	fs.BoolVar(&opts.PrintJSON, "json", false, "Print the result as JSON")
	fs.BoolVarP(&opts.Help, "help", "h", false, "Show this help")

	fs.Usage = func() {
		fmt.Fprintf(usageOut, "Usage: playparse [OPTIONS] URL [PAGE_URL]\n\n")
		fmt.Fprintf(usageOut, "URL may be a page, \"json:<resolver url>\" or \"parse:<resolver name>\".\n\n")
		fmt.Fprintln(usageOut, "Options:")
		fs.PrintDefaults()
		fmt.Fprintf(usageOut, "\nExit codes: 0=ok  1=error  2=usage  3=parse failed\n")
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.Help {
		return opts, nil
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return opts, ErrMissingURL
	}
	opts.RawURL = rest[0]
	if len(rest) > 1 {
		opts.PageURL = rest[1]
	}
	if opts.Timeout <= 0 {
		return opts, fmt.Errorf("invalid --timeout %s", opts.Timeout)
	}
	return opts, nil
}

// Entry builds the play entry described by opts.
func (o Options) Entry() client.PlayEntry {
	return client.PlayEntry{
		Key:     o.Key,
		RawURL:  o.RawURL,
		PageURL: o.PageURL,
		Headers: o.Headers,
		Flag:    o.Flag,
	}
}

// ToClientConfig converts Options to client.Config.
func ToClientConfig(opts Options, logger client.Logger) (client.Config, error) {
	cfg := client.Config{
		ProxyURL:     opts.ProxyURL,
		Timeout:      opts.Timeout,
		SniffTimeout: opts.SniffTimeout,
		UserAgent:    strings.TrimSpace(opts.UserAgent),
		Logger:       logger,
	}

	if opts.ConfigPath != "" {
		st, err := client.LoadStore(opts.ConfigPath)
		if err != nil {
			return cfg, err
		}
		cfg.Store = st
	}

	if opts.CookiesFile != "" {
		jar, err := cookies.LoadJar(opts.CookiesFile)
		if err != nil {
			return cfg, err
		}
		cfg.CookieJar = jar
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
