package main

import (
	"fmt"
	"os"
	"time"

	"github.com/op/go-logging"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
	"github.com/tminor/lspjust/implementation"
	"github.com/tminor/lspjust/logsink"
)

const lsName = "lspjust"

var version = "0.0.1"

var justPath string
var timeout time.Duration
var logOutput string
var logFile string
var verbose int
var debug bool

func main() {
	command := &cobra.Command{
		Use:   lsName,
		Short: "Language server that formats Justfiles with just --fmt",
		Long: `Serves the Language Server Protocol on stdin/stdout and answers
textDocument/formatting requests for the "just" language by running
"just --fmt --unstable" against the document's file.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve,
	}

	flags := command.PersistentFlags()
	flags.StringVar(&justPath, "just", implementation.DefaultProgram, "just executable")
	flags.DurationVar(&timeout, "timeout", 0, "limit on each just run (0 for none)")
	flags.StringVar(&logOutput, "log-output", string(logsink.Console), `"console", or "channel" to also log to a file and the client`)
	flags.StringVar(&logFile, "log-file", logsink.DefaultPath, "log file used by the channel output")
	flags.CountVarP(&verbose, "verbose", "v", "add verbosity (repeatable)")
	command.Flags().BoolVar(&debug, "debug", false, "log protocol messages")

	command.AddCommand(formatCommand, &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	})

	if err := command.Execute(); err != nil {
		atexit.Fatal(err)
	}
	atexit.Exit(0)
}

func serve(cmd *cobra.Command, args []string) error {
	sink, err := newSink()
	if err != nil {
		return err
	}

	server := implementation.NewServer(implementation.Config{
		Name:    lsName,
		Version: version,
		Program: justPath,
		Runner:  implementation.ExecRunner{Timeout: timeout},
		Log:     sink.Log,
		Channel: sink.Channel,
	})
	return server.RunStdio(debug)
}

func newSink() (*logsink.Sink, error) {
	output, err := logsink.ParseOutputType(logOutput)
	if err != nil {
		return nil, err
	}

	level := logging.INFO
	if verbose > 0 {
		level = logging.DEBUG
	}

	sink, err := logsink.New(lsName, output, logFile, level, os.Stderr)
	if err != nil {
		return nil, err
	}
	atexit.Register(func() {
		sink.Close()
	})
	return sink, nil
}
