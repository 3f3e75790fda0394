//go:build dev

package mcplogdlog

import (
	"encoding/json"
	"fmt"
	"net"

	"go.uber.org/zap/zapcore"
)

const defaultSocket = "/tmp/mcplogd.sock"
const appName = "includeparser"

type entry struct {
	App       string         `json:"app"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Timestamp string         `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Core returns a zap core forwarding every entry to the local mcplogd socket.
// Entries are dropped silently when no daemon is listening.
func Core() zapcore.Core {
	return &socketCore{LevelEnabler: zapcore.DebugLevel, socket: defaultSocket}
}

type socketCore struct {
	zapcore.LevelEnabler
	socket string
	fields []zapcore.Field
}

func (c *socketCore) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	clone.fields = append(append([]zapcore.Field(nil), c.fields...), fields...)
	return &clone
}

func (c *socketCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *socketCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range c.fields {
		f.AddTo(enc)
	}
	for _, f := range fields {
		f.AddTo(enc)
	}

	e := entry{
		App:       appName,
		Level:     ent.Level.String(),
		Message:   ent.Message,
		Timestamp: ent.Time.UTC().Format("2006-01-02T15:04:05.999999999Z07:00"),
		Metadata:  enc.Fields,
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil
	}

	conn, err := net.Dial("unix", c.socket)
	if err != nil {
		return nil
	}
	defer conn.Close()
	fmt.Fprintf(conn, "%s\n", data)
	return nil
}

func (c *socketCore) Sync() error {
	return nil
}
