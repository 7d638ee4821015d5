package implementation

import (
	"errors"
	"regexp"
	"strconv"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const diagnosticSource = "just"

// just points at errors with "——▶ justfile:LINE:COLUMN"
var locationRegexp = regexp.MustCompile(`▶\s*[^\s:]+:(\d+):(\d+)`)

type DocumentState struct {
	Diagnostics []protocol.Diagnostic
}

func (self *Server) getDocumentState(uri protocol.DocumentUri) (*DocumentState, bool) {
	if documentState, ok := self.documentStates.Load(uri); ok {
		return documentState.(*DocumentState), true
	}
	return nil, false
}

func (self *Server) deleteDocumentState(uri protocol.DocumentUri) {
	self.documentStates.Delete(uri)
}

// updateDocumentState publishes the outcome of a formatting run: an error
// diagnostic on failure, an empty list on the first success after one.
func (self *Server) updateDocumentState(context *glsp.Context, uri protocol.DocumentUri, err error) {
	var diagnostics []protocol.Diagnostic
	if err != nil {
		diagnostics = []protocol.Diagnostic{createDiagnostic(err)}
	} else if documentState, ok := self.getDocumentState(uri); !ok || (len(documentState.Diagnostics) == 0) {
		return
	} else {
		diagnostics = []protocol.Diagnostic{}
	}

	self.documentStates.Store(uri, &DocumentState{Diagnostics: diagnostics})

	if (context != nil) && (context.Notify != nil) {
		context.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
			URI:         uri,
			Diagnostics: diagnostics,
		})
	}
}

func createDiagnostic(err error) protocol.Diagnostic {
	severity := protocol.DiagnosticSeverityError
	source := diagnosticSource
	message := err.Error()

	var position protocol.Position
	var processError *ProcessError
	if errors.As(err, &processError) && (processError.Stderr != "") {
		message = processError.Stderr
		position = stderrPosition(processError.Stderr)
	}

	return protocol.Diagnostic{
		Range:    protocol.Range{Start: position, End: position},
		Severity: &severity,
		Source:   &source,
		Message:  message,
	}
}

// stderrPosition finds the first source location just reported, or 0:0.
func stderrPosition(stderr string) protocol.Position {
	if match := locationRegexp.FindStringSubmatch(stderr); match != nil {
		line, _ := strconv.Atoi(match[1])
		column, _ := strconv.Atoi(match[2])
		if (line > 0) && (column > 0) {
			return protocol.Position{
				Line:      protocol.UInteger(line - 1),
				Character: protocol.UInteger(column - 1),
			}
		}
	}
	return protocol.Position{}
}
