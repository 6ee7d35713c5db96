package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	"github.com/famomatic/playparse/client"
	"github.com/famomatic/playparse/internal/cli"
)

const (
	exitOK          = 0
	exitError       = 1
	exitUsage       = 2
	exitParseFailed = 3
)

func main() {
	// A missing .env is fine; flags and the environment still apply.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := cli.ParseArgs(args, stderr)
	if errors.Is(err, flag.ErrHelp) || (err == nil && opts.Help) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintf(stderr, "playparse: %v\n", err)
		return exitUsage
	}

	logger := cli.NewLogger(stderr, opts.LogLevel)
	cfg, err := cli.ToClientConfig(opts, logger)
	if err != nil {
		logger.Errorf("config: %v", err)
		return exitError
	}

	c := client.New(cfg)
	defer c.Close()

	logger.Infof("resolving %s", opts.RawURL)
	res, err := c.Resolve(ctx, opts.Entry(), opts.ForceDefault)
	if err != nil {
		logger.Errorf("resolve: %v (%s)", err, client.ClassifyError(err))
		return exitCode(err)
	}

	if opts.PrintJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(jsonResult{URL: res.URL, Headers: res.Headers, Source: res.SourceName}); err != nil {
			logger.Errorf("encode: %v", err)
			return exitError
		}
		return exitOK
	}
	fmt.Fprint(stdout, formatResult(res))
	return exitOK
}

type jsonResult struct {
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
	Source  string            `json:"source,omitempty"`
}

func exitCode(err error) int {
	switch client.ClassifyError(err) {
	case client.ErrorCategoryInvalidInput:
		return exitUsage
	case client.ErrorCategoryParseFailed:
		return exitParseFailed
	default:
		return exitError
	}
}

func formatResult(res *client.Result) string {
	var b strings.Builder
	b.WriteString(res.URL)
	b.WriteByte('\n')
	if res.SourceName != "" {
		fmt.Fprintf(&b, "source: %s\n", res.SourceName)
	}
	keys := make([]string, 0, len(res.Headers))
	for k := range res.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\n", k, res.Headers[k])
	}
	return b.String()
}
