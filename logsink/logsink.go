// Package logsink builds the loggers used by the language server: console only,
// or console plus a log file plus the client's output channel.
package logsink

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/op/go-logging"
)

// DefaultPath is where the log file is created in channel mode.
const DefaultPath = "logs/just-formatter.log"

var consoleFormat = logging.MustStringFormatter(`%{time:2006-01-02 15:04:05.000} %{level:.4s} [%{module}] %{message}`)
var channelFormat = logging.MustStringFormatter(`[%{level:.4s}] %{message}`)

type OutputType string

const (
	Console       OutputType = "console"
	OutputChannel OutputType = "channel"
)

func ParseOutputType(name string) (OutputType, error) {
	switch OutputType(strings.ToLower(name)) {
	case Console:
		return Console, nil
	case OutputChannel:
		return OutputChannel, nil
	default:
		return "", fmt.Errorf("invalid log output %q, expected %q or %q", name, Console, OutputChannel)
	}
}

// Sink owns a logger and the backends it writes to.
type Sink struct {
	Log     *logging.Logger
	Channel *ChannelBackend // nil in console mode
	File    *FileBackend    // nil in console mode
}

// New builds a logger for module. Console records go to console (stderr when
// nil). In channel mode records also go to the file at path, which is created
// on first use, and to the client once a connection is attached.
func New(module string, output OutputType, path string, level logging.Level, console io.Writer) (*Sink, error) {
	if console == nil {
		console = os.Stderr
	}

	sink := Sink{Log: logging.MustGetLogger(module)}
	backends := []logging.Backend{
		logging.NewBackendFormatter(logging.NewLogBackend(console, "", 0), consoleFormat),
	}

	switch output {
	case Console:

	case OutputChannel:
		if path == "" {
			path = DefaultPath
		}
		sink.File = NewFileBackend(path)
		sink.Channel = NewChannelBackend()
		backends = append(backends,
			logging.NewBackendFormatter(sink.File, consoleFormat),
			logging.NewBackendFormatter(sink.Channel, channelFormat),
		)

	default:
		return nil, fmt.Errorf("invalid log output %q", output)
	}

	leveled := logging.MultiLogger(backends...)
	leveled.SetLevel(level, "")
	sink.Log.SetBackend(leveled)

	return &sink, nil
}

func (self *Sink) Close() error {
	if self.File != nil {
		return self.File.Close()
	}
	return nil
}
