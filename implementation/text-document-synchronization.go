package implementation

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// TextDocumentDidOpen implements protocol.TextDocumentDidOpenFunc
func (self *Server) TextDocumentDidOpen(context *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	self.log.Debugf("opened %s (%s)", params.TextDocument.URI, params.TextDocument.LanguageID)
	return self.documents.set(params.TextDocument.URI, params.TextDocument.LanguageID, params.TextDocument.Text)
}

// TextDocumentDidChange implements protocol.TextDocumentDidChangeFunc
func (self *Server) TextDocumentDidChange(context *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if document_, ok := self.documents.get(params.TextDocument.URI); ok {
		content := document_.Content
		for _, change := range params.ContentChanges {
			// We advertise full sync, so every change carries the whole text
			if change_, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
				content = change_.Text
			}
		}
		return self.documents.set(params.TextDocument.URI, "", content)
	}
	return nil
}

// TextDocumentDidSave implements protocol.TextDocumentDidSaveFunc
func (self *Server) TextDocumentDidSave(context *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	return nil
}

// TextDocumentDidClose implements protocol.TextDocumentDidCloseFunc
func (self *Server) TextDocumentDidClose(context *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	self.deleteDocumentState(params.TextDocument.URI)
	self.documents.delete(params.TextDocument.URI)

	if context.Notify != nil {
		context.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
			URI:         params.TextDocument.URI,
			Diagnostics: []protocol.Diagnostic{},
		})
	}

	return nil
}
