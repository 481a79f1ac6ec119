// internal/status/snapshot.go
package status

// Snapshot represents exactly what the status writer is allowed to deliver.
// It contains no logic and no memory of the past beyond the last run.
type Snapshot struct {
	Health          uint16
	LastErrorCode   uint16
	RunState        uint16
	RunNumber       uint32
	SamplesParsed   uint32
	MalformedTokens uint16
}
