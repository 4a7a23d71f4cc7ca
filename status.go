package cosched

// Status is the lifecycle state of a coroutine.
type Status uint8

const (
	// Ready coroutines were created and have never run.
	Ready Status = iota
	// Running is the state of the one coroutine currently executing.
	Running
	// Suspended coroutines are parked inside Yield.
	Suspended
	// Finished is terminal. Finished coroutines are released and removed
	// from the registry before the Resume that finished them returns.
	Finished
)

var statusNames = [...]string{
	Ready:     "ready",
	Running:   "running",
	Suspended: "suspended",
	Finished:  "finished",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown"
}

// resumable reports whether Resume may switch into a coroutine in state s.
func (s Status) resumable() bool {
	return s == Ready || s == Suspended
}
