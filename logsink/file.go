package logsink

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/alexflint/go-filemutex"
	"github.com/op/go-logging"
)

// Header is the first line of a newly created log file.
const Header = "New Logfile\n"

// FileBackend appends records to a file that is created, along with its
// directory, on the first record. Writers in other processes are excluded by
// a lock file next to it.
type FileBackend struct {
	Path string

	lock  sync.Mutex
	file  *os.File
	mutex *filemutex.FileMutex
}

func NewFileBackend(path string) *FileBackend {
	return &FileBackend{Path: path}
}

// Log implements logging.Backend
func (self *FileBackend) Log(level logging.Level, calldepth int, record *logging.Record) error {
	self.lock.Lock()
	defer self.lock.Unlock()

	if err := self.open(); err != nil {
		return err
	}

	if err := self.mutex.Lock(); err != nil {
		return fmt.Errorf("lock %s: %w", self.Path, err)
	}
	defer self.mutex.Unlock()

	_, err := io.WriteString(self.file, record.Formatted(calldepth+1)+"\n")
	return err
}

func (self *FileBackend) Close() error {
	self.lock.Lock()
	defer self.lock.Unlock()
	return self.close()
}

// open (re)opens the file, recreating it if it was removed since the last record.
func (self *FileBackend) open() error {
	_, statErr := os.Stat(self.Path)
	if self.file != nil {
		if statErr == nil {
			return nil
		}
		self.close()
	}

	if err := os.MkdirAll(filepath.Dir(self.Path), 0755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	mutex, err := filemutex.New(self.Path + ".lock")
	if err != nil {
		return fmt.Errorf("create log lock: %w", err)
	}

	file, err := os.OpenFile(self.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		mutex.Close()
		return fmt.Errorf("open log file: %w", err)
	}

	if errors.Is(statErr, os.ErrNotExist) {
		if _, err := io.WriteString(file, Header); err != nil {
			file.Close()
			mutex.Close()
			return err
		}
	}

	self.file = file
	self.mutex = mutex
	return nil
}

func (self *FileBackend) close() error {
	var err error
	if self.file != nil {
		err = self.file.Close()
		self.file = nil
	}
	if self.mutex != nil {
		self.mutex.Close()
		self.mutex = nil
	}
	return err
}
