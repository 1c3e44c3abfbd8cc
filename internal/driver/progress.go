package driver

// Stage is a pipeline phase as seen by progress sinks.
type Stage string

const (
	StageLoad  Stage = "load"
	StageCheck Stage = "check"
	StageLower Stage = "lower"
	StageEmit  Stage = "emit"
)

// Status is the state of a file or module within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event reports progress for a module, or for the whole build when File is
// empty.
type Event struct {
	File   string
	Stage  Stage
	Status Status
}

// ProgressSink consumes progress events. OnEvent may be called from several
// goroutines.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events to a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(ev Event) {
	if s.Ch != nil {
		s.Ch <- ev
	}
}

type nopSink struct{}

func (nopSink) OnEvent(Event) {}
