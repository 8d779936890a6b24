// Package clock turns a polled playback position into the game time that
// notes are scheduled and judged against.
package clock

type Transport uint8

const (
	Stopped Transport = iota
	Playing
	// Stopping is reported while the last buffered samples drain. Positions
	// are still valid.
	Stopping
	Stalled
	// Invalid means the source is broken, not merely stopped.
	Invalid
)

var transportNames = [...]string{"stopped", "playing", "stopping", "stalled", "invalid"}

func (t Transport) String() string {
	if int(t) < len(transportNames) {
		return transportNames[t]
	}
	return "unknown"
}

// Provider is the playback source. It is polled once per tick and must not
// block.
type Provider interface {
	SamplePlaybackMs() (positionMs int64, transport Transport)
}

// ProviderFunc adapts a function to a Provider.
type ProviderFunc func() (int64, Transport)

func (f ProviderFunc) SamplePlaybackMs() (int64, Transport) {
	return f()
}

// Status is how the session should read a sample.
type Status uint8

const (
	Running Status = iota
	// NotStarted is a stopped transport before the finish guard.
	NotStarted
	Frozen
	Finished
	Fault
)

var statusNames = [...]string{"running", "not started", "frozen", "finished", "fault"}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown"
}

type Sample struct {
	Position  float64 // Raw position in seconds
	Transport Transport
	Time      float64 // Compensated game time
	Status    Status
}

const DefaultFinishGuard = 2.0

// Adapter is not safe for concurrent use. It belongs to one session and is
// sampled from the host loop.
type Adapter struct {
	provider    Provider
	offset      float64
	pending     *float64
	finishGuard float64

	time float64
}

func NewAdapter(p Provider, latencyOffset, finishGuard float64) *Adapter {
	return &Adapter{
		provider:    p,
		offset:      latencyOffset,
		finishGuard: finishGuard,
	}
}

// SetLatencyOffset changes calibration from the next Sample on.
func (a *Adapter) SetLatencyOffset(seconds float64) {
	a.pending = &seconds
}

func (a *Adapter) LatencyOffset() float64 {
	if a.pending != nil {
		return *a.pending
	}
	return a.offset
}

// Sample polls the provider once and advances the game time.
func (a *Adapter) Sample() Sample {
	if a.pending != nil {
		a.offset = *a.pending
		a.pending = nil
	}

	if a.provider == nil {
		return Sample{Transport: Invalid, Time: a.time, Status: Fault}
	}

	ms, transport := a.provider.SamplePlaybackMs()
	s := Sample{
		Position:  float64(ms) / 1000,
		Transport: transport,
	}

	switch transport {
	case Playing, Stopping:
		a.time = s.Position + a.offset
		s.Status = Running
	case Stalled:
		s.Status = Frozen
	case Stopped:
		if a.time > a.finishGuard {
			s.Status = Finished
		} else {
			s.Status = NotStarted
		}
	default:
		s.Status = Fault
	}

	s.Time = a.time
	return s
}

// CurrentTime is the last valid game time. It does not poll.
func (a *Adapter) CurrentTime() float64 {
	return a.time
}

// Valid polls the provider and reports whether it is usable at all.
func (a *Adapter) Valid() bool {
	if a.provider == nil {
		return false
	}
	_, t := a.provider.SamplePlaybackMs()
	return t != Invalid
}

// Reset forgets the previous play's time so a restart does not read as a
// finished track.
func (a *Adapter) Reset() {
	a.time = 0
}
