package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/giantswarm/applaunch"
)

// portPlaceholder is replaced with the allocated port in the command, the
// URL and environment values.
const portPlaceholder = "{port}"

type runOptions struct {
	name        string
	url         string
	env         []string
	port        int
	dir         string
	logDir      string
	debug       bool
	stopTimeout time.Duration
	wait        waitFlags
}

func newRunCmd() *cobra.Command {
	var o runOptions

	cmd := &cobra.Command{
		Use:   "run --url <url> [flags] -- <command> [args...]",
		Short: "Start an application and keep it running until interrupted",
		Long: `Start an application, wait until the port of its URL accepts connections
and print the URL. The application runs until applaunch receives SIGINT or
SIGTERM, then it is stopped with SIGTERM, and killed if it does not exit
within --stop-timeout.

The application receives a port in $PORT. Occurrences of {port} in the
command, the URL and --env values are replaced with the same port.

Example:
  applaunch run --url http://localhost:{port}/ -- python -m http.server {port}`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("command to execute is required; use -- to separate applaunch flags from the command")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runApp(ctx, cmd.OutOrStdout(), o, args)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&o.name, "name", "", "Process name used in logs (default: executable base name)")
	fs.StringVar(&o.url, "url", "", "Application URL whose port is awaited (required)")
	fs.StringArrayVar(&o.env, "env", nil, "Environment variable KEY=VALUE (repeatable)")
	fs.IntVar(&o.port, "port", 0, "Port passed to the application (0 = random)")
	fs.StringVar(&o.dir, "dir", "", "Working directory of the application")
	fs.StringVar(&o.logDir, "log-dir", "", "Write application stdout and stderr to files in this directory")
	fs.BoolVar(&o.debug, "debug", false, "Echo application stdout and stderr")
	fs.DurationVar(&o.stopTimeout, "stop-timeout", applaunch.DefaultStopTimeout, "Time between SIGTERM and SIGKILL on shutdown")
	o.wait.register(fs)
	_ = cmd.MarkFlagRequired("url")

	return cmd
}

// runApp launches the application described by o and args, prints its URL to
// out and blocks until ctx is done or the application exits. An application
// that exits on its own is reported through its exit status.
func runApp(ctx context.Context, out io.Writer, o runOptions, args []string) error {
	runOpts, err := o.runOptions()
	if err != nil {
		return err
	}
	flagEnv, err := parseEnv(o.env)
	if err != nil {
		return err
	}

	port := o.port
	if port == 0 {
		if port, err = applaunch.RandomPort(); err != nil {
			return fmt.Errorf("allocate port: %w", err)
		}
	}

	launcher := applaunch.Define(applaunch.Definition[int]{
		Name:  o.name,
		Debug: o.debug,
		Context: func(context.Context) (int, error) {
			return port, nil
		},
		Env: func(_ context.Context, port int) (map[string]string, error) {
			env := map[string]string{"PORT": strconv.Itoa(port)}
			maps.Copy(env, expandAll(flagEnv, port))
			return env, nil
		},
		Command: func(_ context.Context, port int, _ map[string]string) (string, error) {
			return expand(strings.Join(args, " "), port), nil
		},
		URL: func(_ context.Context, in applaunch.URLInput[int]) (string, error) {
			return expand(o.url, in.Context), nil
		},
	})

	p, err := launcher.Run(ctx, runOpts...)
	if err != nil {
		return err
	}

	u, err := p.URL()
	if err != nil {
		return errors.Join(err, p.Dispose())
	}
	fmt.Fprintln(out, u)

	select {
	case <-ctx.Done():
	case <-p.Exited():
	}
	return p.Dispose()
}

func (o runOptions) runOptions() ([]applaunch.RunOption, error) {
	waitOpts, err := o.wait.options()
	if err != nil {
		return nil, err
	}
	if o.stopTimeout <= 0 {
		return nil, fmt.Errorf("--stop-timeout must be positive, got %v", o.stopTimeout)
	}
	if o.port < 0 || o.port > 65535 {
		return nil, fmt.Errorf("--port out of range: %d", o.port)
	}

	opts := []applaunch.RunOption{
		applaunch.WithWaitOptions(waitOpts...),
		applaunch.WithStopTimeout(o.stopTimeout),
	}
	if o.dir != "" {
		opts = append(opts, applaunch.WithDir(o.dir))
	}
	if o.logDir != "" {
		opts = append(opts, applaunch.WithLogDir(o.logDir))
	}
	return opts, nil
}

func expand(s string, port int) string {
	return strings.ReplaceAll(s, portPlaceholder, strconv.Itoa(port))
}

func expandAll(env map[string]string, port int) map[string]string {
	out := make(map[string]string, len(env))
	for k, v := range env {
		out[k] = expand(v, port)
	}
	return out
}
