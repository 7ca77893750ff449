package types

// Event represents a typed event emitted by the ledger during a state
// transition. Attributes are flat strings so downstream consumers (logs,
// metrics, indexers) can render them without knowing the schema.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}
