package dragdrop

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger traces drag events for the kinds it is enabled for.
type Logger struct {
	entry   *logrus.Entry
	all     bool
	enabled map[Kind]bool
}

// NewLogger builds a drag logger. filter is "all", "none", or a list of event
// kinds; unknown names are ignored. A nil entry disables logging.
func NewLogger(entry *logrus.Entry, filter []string) *Logger {
	l := &Logger{entry: entry, enabled: make(map[Kind]bool)}
	for _, name := range filter {
		name = strings.ToLower(strings.TrimSpace(name))
		switch name {
		case "all", "enableall":
			l.all = true
		case "none", "disableall":
			return &Logger{enabled: map[Kind]bool{}}
		default:
			if k, err := ParseKind(name); err == nil {
				l.enabled[k] = true
			}
		}
	}
	return l
}

// Enabled reports whether kind is traced.
func (l *Logger) Enabled(kind Kind) bool {
	if l == nil || l.entry == nil {
		return false
	}
	return l.all || l.enabled[kind]
}

// Log writes a debug line for the event and, when the kind is enabled, runs cb
// with the target.
func (l *Logger) Log(kind Kind, target *Node, cb func(*Node)) {
	if !l.Enabled(kind) {
		return
	}
	fields := logrus.Fields{"event": string(kind)}
	if target != nil {
		fields["target"] = target.ID
		if target.Transfer != nil {
			fields["item_type"] = string(target.Transfer.Origin)
			fields["source_index"] = target.Transfer.SourceIndex
			fields["item_id"] = target.Transfer.ItemID.String()
		}
		if target.Drop != nil {
			fields["drop_index"] = target.Drop.DropIndex
		}
	}
	l.entry.WithFields(fields).Debug("drag event")
	if cb != nil {
		cb(target)
	}
}
