package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/PapiCZ/kiv_tfs/shell"
	"github.com/PapiCZ/kiv_tfs/vfs"
	"github.com/abiosoft/ishell"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
)

func main() {
	logLevel := pflag.String("log-level", "warn", "Log level (debug, info, warn or error)")
	logFormat := pflag.String("log-format", "text", "Log format (text or json)")
	script := pflag.String("script", "", "Run the commands of a script file and exit")
	metricsListen := pflag.String("metrics-listen", "", "Address on which Prometheus metrics are served")
	pflag.Parse()

	logger, err := newLogger(*logLevel, *logFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	fs := vfs.NewFilesystem(vfs.WithLogger(logger))

	if *metricsListen != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(*metricsListen, mux); err != nil {
				logger.Error("Metrics endpoint failed", "error", err)
			}
		}()
	}

	if *script != "" {
		if err := runScript(fs, *script, os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	sh := ishell.New()
	sh.SetPrompt("tfs > ")
	sh.Set("fs", fs)
	shell.Register(sh)
	sh.Run()
}

func runScript(fs *vfs.Filesystem, path string, out io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	return shell.RunScript(fs, out, f)
}

func newLogger(level, format string) (*vfs.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	switch format {
	case "text":
		return vfs.NewTextLogger(os.Stderr, l), nil
	case "json":
		return vfs.NewJSONLogger(os.Stderr, l), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}
