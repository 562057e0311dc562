package session

// EventKind identifies a provider event. Unknown kinds are ignored.
type EventKind string

const (
	EventTranscriptionCompleted EventKind = "transcription.completed"
	EventResponseAudioDelta     EventKind = "response.audio.delta"
	EventResponseTextDelta      EventKind = "response.text.delta"
	EventSessionCreated         EventKind = "session.created"
	EventSessionUpdated         EventKind = "session.updated"
	EventError                  EventKind = "error"
	EventClose                  EventKind = "close"
)

// Event is the tagged union emitted by a Transport. Exactly the fields
// relevant to Kind are populated.
type Event struct {
	Kind EventKind
	// Role and Text carry transcriptions and text deltas.
	Role string
	Text string
	// Audio carries PCM16LE bytes for audio deltas.
	Audio []byte
	// Err carries the provider error for EventError and the close cause
	// (possibly nil) for EventClose.
	Err error
}

// DispatchOutcome reports how the manager handled an inbound event.
type DispatchOutcome string

const (
	OutcomeTranscript DispatchOutcome = "transcript"
	OutcomePlayback   DispatchOutcome = "playback"
	OutcomeState      DispatchOutcome = "state"
	OutcomeError      DispatchOutcome = "error"
	OutcomeClosed     DispatchOutcome = "closed"
	OutcomeIgnored    DispatchOutcome = "ignored"
)
