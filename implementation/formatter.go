package implementation

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/op/go-logging"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// ErrorMessagePrefix starts every error shown to the user.
const ErrorMessagePrefix = "Error formatting Justfile: "

// Request is one formatting invocation for a document. The ID tags its log records.
type Request struct {
	ID         string
	Document   document
	Invocation Invocation
}

func (self *Formatter) newRequest(document_ document) Request {
	return Request{
		ID:         uuid.New().String(),
		Document:   document_,
		Invocation: NewInvocation(self.Program(), document_.Path),
	}
}

// Formatter runs just against a document's backing file and turns the output
// into edits.
type Formatter struct {
	Runner Runner
	Log    *logging.Logger

	// OnResult, when set, is called after every run with the run's error (nil on success).
	OnResult func(context *glsp.Context, uri protocol.DocumentUri, err error)

	programLock sync.RWMutex
	program     string
}

// NewFormatter uses DefaultProgram, ExecRunner and a logger named "lspjust"
// for whichever arguments are empty.
func NewFormatter(program string, runner Runner, log *logging.Logger) *Formatter {
	if program == "" {
		program = DefaultProgram
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	if log == nil {
		log = logging.MustGetLogger("lspjust")
	}
	return &Formatter{
		Runner:  runner,
		Log:     log,
		program: program,
	}
}

// Program is the just executable used for new requests.
func (self *Formatter) Program() string {
	self.programLock.RLock()
	defer self.programLock.RUnlock()
	return self.program
}

func (self *Formatter) SetProgram(program string) {
	if program == "" {
		program = DefaultProgram
	}
	self.programLock.Lock()
	defer self.programLock.Unlock()
	self.program = program
}

// FormatDocument returns a single edit replacing the whole document with the
// formatter's standard output, or no edits when the output is empty. Any
// failure is shown to the user, logged, and returned.
func (self *Formatter) FormatDocument(ctx context.Context, context_ *glsp.Context, document_ document) (edits []protocol.TextEdit, err error) {
	var request Request
	defer func() {
		if r := recover(); r != nil {
			edits = nil
			err = fmt.Errorf("%v", r)
		}
		if err != nil {
			self.fail(context_, request, err)
		}
		if self.OnResult != nil {
			self.OnResult(context_, document_.URI, err)
		}
	}()

	request = self.newRequest(document_)
	self.Log.Infof("formatting Justfile %s (request %s)", document_.Path, request.ID)
	self.Log.Debugf("document: %s", toJSON(document_))
	self.Log.Debugf("running %q in %s (request %s)", request.Invocation.String(), request.Invocation.Dir, request.ID)

	var stdout string
	if stdout, err = self.Runner.Run(ctx, request.Invocation); err != nil {
		return nil, err
	}
	self.Log.Infof("formatting successful (request %s)", request.ID)

	if stdout == "" {
		self.Log.Infof("no output from just command (request %s)", request.ID)
		return []protocol.TextEdit{}, nil
	}

	range_ := fullRange(document_.Content)
	self.Log.Debugf("full range: %s", toJSON(range_))
	self.Log.Debugf("stdout: %s", stdout)

	return []protocol.TextEdit{{Range: range_, NewText: stdout}}, nil
}

// FormatPath formats the Justfile at path outside of a client session.
func (self *Formatter) FormatPath(ctx context.Context, path string) ([]protocol.TextEdit, error) {
	uri := pathToURI(path)
	document_, err := newDocumentStore().load(uri)
	if err != nil {
		return nil, self.Reject(nil, uri, err)
	}
	return self.FormatDocument(ctx, nil, document_)
}

// Reject reports a failure that happened before the formatter could run,
// such as an unreadable document, through the same path as a failed run.
func (self *Formatter) Reject(context_ *glsp.Context, uri protocol.DocumentUri, err error) error {
	self.fail(context_, Request{ID: uuid.New().String(), Document: document{URI: uri}}, err)
	if self.OnResult != nil {
		self.OnResult(context_, uri, err)
	}
	return err
}

func (self *Formatter) fail(context_ *glsp.Context, request Request, err error) {
	message := ErrorMessagePrefix + err.Error()
	self.Log.Errorf("%s (request %s)", message, request.ID)

	if (context_ != nil) && (context_.Notify != nil) {
		context_.Notify(protocol.ServerWindowShowMessage, &protocol.ShowMessageParams{
			Type:    protocol.MessageTypeError,
			Message: message,
		})
	}
}

func toJSON(value interface{}) string {
	if bytes, err := json.MarshalIndent(value, "", "  "); err == nil {
		return string(bytes)
	} else {
		return fmt.Sprintf("%+v", value)
	}
}
