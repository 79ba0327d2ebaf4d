package engineer

import "github.com/sirupsen/logrus"

// Sink receives the events selected for delivery.
type Sink interface {
	Emit(ev Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ev Event)

// Emit calls f(ev).
func (f SinkFunc) Emit(ev Event) { f(ev) }

// LogSink delivers events as log lines.
type LogSink struct {
	Logger logrus.FieldLogger // nil uses the standard logger
}

// Emit logs the event text tagged with its priority.
func (s LogSink) Emit(ev Event) {
	log := s.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	fields := logrus.Fields{"key": ev.Key}
	if ev.Urgent {
		fields["urgent"] = true
	}
	for k, v := range ev.Data {
		fields[k] = v
	}
	log.WithFields(fields).Infof("[%s] %s", ev.Priority, ev.Text)
}
