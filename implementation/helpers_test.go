package implementation

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/op/go-logging"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// fakeRunner records invocations and answers them with run.
type fakeRunner struct {
	lock        sync.Mutex
	invocations []Invocation
	run         func(invocation Invocation) (string, error)
}

func (self *fakeRunner) Run(ctx context.Context, invocation Invocation) (string, error) {
	self.lock.Lock()
	self.invocations = append(self.invocations, invocation)
	self.lock.Unlock()
	return self.run(invocation)
}

func stdoutRunner(stdout string) *fakeRunner {
	return &fakeRunner{run: func(Invocation) (string, error) { return stdout, nil }}
}

type notification struct {
	Method string
	Params interface{}
}

// fakeClient collects what the server sends through glsp.Context.Notify.
type fakeClient struct {
	lock          sync.Mutex
	notifications []notification
}

func (self *fakeClient) context() *glsp.Context {
	return &glsp.Context{Notify: self.notify}
}

func (self *fakeClient) notify(method string, params interface{}) {
	self.lock.Lock()
	defer self.lock.Unlock()
	self.notifications = append(self.notifications, notification{method, params})
}

func (self *fakeClient) sent(method string) []interface{} {
	self.lock.Lock()
	defer self.lock.Unlock()
	var params []interface{}
	for _, notification_ := range self.notifications {
		if notification_.Method == method {
			params = append(params, notification_.Params)
		}
	}
	return params
}

func newTestLogger(t *testing.T) (*logging.Logger, *logging.MemoryBackend) {
	t.Helper()
	memory := logging.NewMemoryBackend(1024)
	leveled := logging.AddModuleLevel(memory)
	leveled.SetLevel(logging.DEBUG, "")
	log := logging.MustGetLogger(t.Name())
	log.SetBackend(leveled)
	return log, memory
}

func logged(memory *logging.MemoryBackend, level logging.Level) []string {
	var messages []string
	for node := memory.Head(); node != nil; node = node.Next() {
		if node.Record.Level == level {
			messages = append(messages, node.Record.Message())
		}
	}
	return messages
}

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func readFixture(t *testing.T, name string) string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatal(err)
	}
	return string(content)
}

// offsetAt is the inverse of positionAt.
func offsetAt(content string, position protocol.Position) int {
	lines := strings.SplitAfter(content, "\n")
	offset := 0
	for line := 0; line < int(position.Line) && line < len(lines); line++ {
		offset += len(lines[line])
	}
	if int(position.Line) >= len(lines) {
		return offset
	}
	var character protocol.UInteger
	for index, r := range lines[position.Line] {
		if character >= position.Character {
			return offset + index
		}
		if r >= 0x10000 {
			character += 2
		} else {
			character++
		}
	}
	return offset + len(lines[position.Line])
}

// applyEdits applies non-overlapping edits given in document order.
func applyEdits(content string, edits []protocol.TextEdit) string {
	for index := len(edits) - 1; index >= 0; index-- {
		start := offsetAt(content, edits[index].Range.Start)
		end := offsetAt(content, edits[index].Range.End)
		content = content[:start] + edits[index].NewText + content[end:]
	}
	return content
}
