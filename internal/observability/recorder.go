package observability

import "time"

// Recorder adapts an EventLog to the core.EventRecorder interface. Write
// failures are dropped: the audit trail is best-effort and must never fail
// the operation it records.
type Recorder struct {
	Log EventLog
}

func (r *Recorder) Record(eventType, message string, data map[string]any) {
	if r == nil || r.Log == nil {
		return
	}
	_ = r.Log.Write(Event{
		Time:    time.Now().UTC(),
		Type:    eventType,
		Message: message,
		Data:    data,
	})
}
