package implementation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"
	urlpkg "go.lsp.dev/uri"
)

// LanguageID is the language id the formatter is registered for.
const LanguageID = "just"

// documentStore holds opened documents.
type documentStore struct {
	lock      sync.RWMutex
	documents map[protocol.DocumentUri]*document
}

// document represents an open Justfile buffer.
type document struct {
	URI        protocol.DocumentUri `json:"uri"`
	Path       string               `json:"path"`
	LanguageID string               `json:"languageId"`
	Content    string               `json:"content"`
}

func newDocumentStore() *documentStore {
	return &documentStore{documents: make(map[protocol.DocumentUri]*document)}
}

// set stores content for uri. An empty languageID keeps the one recorded at open time.
func (self *documentStore) set(uri protocol.DocumentUri, languageID string, content string) error {
	path, err := uriToPath(uri)
	if err != nil {
		return err
	}

	self.lock.Lock()
	defer self.lock.Unlock()

	if existing, ok := self.documents[uri]; ok && languageID == "" {
		languageID = existing.LanguageID
	}
	self.documents[uri] = &document{
		URI:        uri,
		Path:       path,
		LanguageID: languageID,
		Content:    content,
	}
	return nil
}

func (self *documentStore) get(uri protocol.DocumentUri) (document, bool) {
	self.lock.RLock()
	defer self.lock.RUnlock()

	if document_, ok := self.documents[uri]; ok {
		return *document_, true
	}
	return document{}, false
}

func (self *documentStore) delete(uri protocol.DocumentUri) {
	self.lock.Lock()
	defer self.lock.Unlock()
	delete(self.documents, uri)
}

// load returns the open document for uri, falling back to its backing file.
func (self *documentStore) load(uri protocol.DocumentUri) (document, error) {
	if document_, ok := self.get(uri); ok {
		return document_, nil
	}

	path, err := uriToPath(uri)
	if err != nil {
		return document{}, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return document{}, fmt.Errorf("read %s: %w", path, err)
	}
	return document{URI: uri, Path: path, Content: string(content)}, nil
}

// isJustfile reports whether the document should be handled by the formatter.
func (self document) isJustfile() bool {
	if self.LanguageID != "" {
		return self.LanguageID == LanguageID
	}

	name := strings.ToLower(filepath.Base(self.Path))
	switch {
	case name == "justfile", name == ".justfile":
		return true
	case strings.HasSuffix(name, ".just"), strings.HasSuffix(name, ".justfile"):
		return true
	}
	return false
}

// uriToPath converts a file URI to a filesystem path. Filename panics on URIs
// it cannot parse, such as bad percent escapes, so that becomes an error here.
func uriToPath(uri protocol.DocumentUri) (path string, err error) {
	if !strings.HasPrefix(string(uri), "file://") {
		return "", fmt.Errorf("not a file URI: %s", uri)
	}

	defer func() {
		if r := recover(); r != nil {
			path = ""
			err = fmt.Errorf("invalid file URI %s: %v", uri, r)
		}
	}()

	return urlpkg.New(string(uri)).Filename(), nil
}

func pathToURI(path string) protocol.DocumentUri {
	return protocol.DocumentUri(urlpkg.File(path))
}

// positionAt converts a byte offset in content to a position whose character
// is counted in UTF-16 code units. "\r\n", "\r" and "\n" all end a line.
func positionAt(content string, offset int) protocol.Position {
	if offset > len(content) {
		offset = len(content)
	}

	var line, character protocol.UInteger
	for index := 0; index < offset; {
		r, width := utf8.DecodeRuneInString(content[index:])
		switch {
		case r == '\r' && index+1 < offset && content[index+1] == '\n':
			line++
			character = 0
			width = 2
		case r == '\n', r == '\r':
			line++
			character = 0
		case r >= 0x10000:
			character += 2
		default:
			character++
		}
		index += width
	}

	return protocol.Position{Line: line, Character: character}
}

// fullRange spans the whole of content.
func fullRange(content string) protocol.Range {
	return protocol.Range{
		Start: positionAt(content, 0),
		End:   positionAt(content, len(content)),
	}
}
