package logsink

import (
	"sync"

	"github.com/op/go-logging"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// ChannelBackend forwards records to the client as window/logMessage.
// Records logged before a connection is attached are dropped.
type ChannelBackend struct {
	lock   sync.RWMutex
	notify glsp.NotifyFunc
}

func NewChannelBackend() *ChannelBackend {
	return new(ChannelBackend)
}

func (self *ChannelBackend) Attach(notify glsp.NotifyFunc) {
	self.lock.Lock()
	defer self.lock.Unlock()
	self.notify = notify
}

// Log implements logging.Backend
func (self *ChannelBackend) Log(level logging.Level, calldepth int, record *logging.Record) error {
	self.lock.RLock()
	notify := self.notify
	self.lock.RUnlock()

	if notify == nil {
		return nil
	}

	notify(protocol.ServerWindowLogMessage, &protocol.LogMessageParams{
		Type:    messageType(level),
		Message: record.Formatted(calldepth + 1),
	})
	return nil
}

func messageType(level logging.Level) protocol.MessageType {
	switch level {
	case logging.CRITICAL, logging.ERROR:
		return protocol.MessageTypeError
	case logging.WARNING:
		return protocol.MessageTypeWarning
	case logging.NOTICE, logging.INFO:
		return protocol.MessageTypeInfo
	default:
		return protocol.MessageTypeLog
	}
}
