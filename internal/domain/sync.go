package domain

// SyncResult summarizes one trigger of the sync orchestrator.
//
// HTTPCode follows the inbound contract: 404 source not found, 202 accepted
// (or already syncing), 422 validation failure against the live feed.
type SyncResult struct {
	ID       string
	HTTPCode int
	Items    int
	Skipped  int
	Valid    bool
	Message  string
}

// Extraction is the output of one adapter call: the normalized items plus the
// number of malformed rows or entries that were skipped, so operators can
// detect silently degrading feeds.
type Extraction struct {
	Items   []SourcedItem
	Skipped int
}

// ReconcileStats counts the writes issued by one reconciliation pass.
type ReconcileStats struct {
	Created   int
	Updated   int
	Unchanged int
}
