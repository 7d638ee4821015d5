package implementation

import (
	"sync"

	"github.com/op/go-logging"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"
	"github.com/tminor/lspjust/logsink"
)

// Config is what the command line hands to the server.
type Config struct {
	Name    string
	Version string
	Program string
	Runner  Runner
	Log     *logging.Logger

	// Channel receives the connection once the client initializes. May be nil.
	Channel *logsink.ChannelBackend
}

// Server binds the formatter to the LSP document formatting request for Justfiles.
type Server struct {
	Handler protocol.Handler

	name           string
	version        string
	formatter      *Formatter
	documents      *documentStore
	documentStates sync.Map // protocol.DocumentUri to *DocumentState
	channel        *logsink.ChannelBackend
	log            *logging.Logger
}

func NewServer(config Config) *Server {
	formatter := NewFormatter(config.Program, config.Runner, config.Log)
	self := &Server{
		name:      config.Name,
		version:   config.Version,
		formatter: formatter,
		documents: newDocumentStore(),
		channel:   config.Channel,
		log:       formatter.Log,
	}
	self.formatter.OnResult = self.updateDocumentState

	self.Handler = protocol.Handler{
		Initialize:             self.Initialize,
		Initialized:            self.Initialized,
		Shutdown:               self.Shutdown,
		SetTrace:               self.SetTrace,
		TextDocumentDidOpen:    self.TextDocumentDidOpen,
		TextDocumentDidChange:  self.TextDocumentDidChange,
		TextDocumentDidSave:    self.TextDocumentDidSave,
		TextDocumentDidClose:   self.TextDocumentDidClose,
		TextDocumentFormatting: self.TextDocumentFormatting,
	}

	return self
}

func (self *Server) Formatter() *Formatter {
	return self.formatter
}

// RunStdio serves the protocol on stdin and stdout until the client exits.
func (self *Server) RunStdio(debug bool) error {
	self.log.Infof("starting %s %s", self.name, self.version)
	return glspserver.NewServer(&self.Handler, self.name, debug).RunStdio()
}

func (self *Server) attach(context *glsp.Context) {
	if (self.channel != nil) && (context.Notify != nil) {
		self.channel.Attach(context.Notify)
	}
}
