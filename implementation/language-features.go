package implementation

import (
	contextpkg "context"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// TextDocumentFormatting implements protocol.TextDocumentFormattingFunc
func (self *Server) TextDocumentFormatting(context *glsp.Context, params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	document_, err := self.documents.load(params.TextDocument.URI)
	if err != nil {
		return nil, self.formatter.Reject(context, params.TextDocument.URI, err)
	}

	if !document_.isJustfile() {
		self.log.Debugf("not a Justfile, ignoring: %s", document_.URI)
		return nil, nil
	}

	return self.formatter.FormatDocument(contextpkg.Background(), context, document_)
}
