package implementation

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Initialize implements protocol.InitializeFunc
func (self *Server) Initialize(context *glsp.Context, params *protocol.InitializeParams) (interface{}, error) {
	self.attach(context)

	if options, ok := params.InitializationOptions.(map[string]interface{}); ok {
		if justPath, ok := options["justPath"].(string); ok && (justPath != "") {
			self.log.Infof("using just at %s", justPath)
			self.formatter.SetProgram(justPath)
		}
	}

	capabilities := self.Handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = protocol.TextDocumentSyncKindFull
	capabilities.DocumentFormattingProvider = true

	return &protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    self.name,
			Version: &self.version,
		},
	}, nil
}

// Initialized implements protocol.InitializedFunc
func (self *Server) Initialized(context *glsp.Context, params *protocol.InitializedParams) error {
	self.log.Infof("client initialized, formatting %q documents with %s", LanguageID, self.formatter.Program())
	return nil
}

// Shutdown implements protocol.ShutdownFunc
func (self *Server) Shutdown(context *glsp.Context) error {
	self.log.Info("shutting down")
	return nil
}

// SetTrace implements protocol.SetTraceFunc
func (self *Server) SetTrace(context *glsp.Context, params *protocol.SetTraceParams) error {
	self.log.Debugf("trace: %s", params.Value)
	return nil
}
