package model

// RunStatus is the terminal status of one polling cycle.
type RunStatus string

const (
	// RunOK means the cycle completed, including cycles with nothing new
	// and cycles where some individual deliveries failed.
	RunOK RunStatus = "ok"
	// RunRateLimited means the source reported budget exhaustion. Expected
	// and recoverable; the next scheduled cycle retries naturally.
	RunRateLimited RunStatus = "rate_limited"
	// RunError means the cycle failed and the error was surfaced to the
	// caller for its retry policy.
	RunError RunStatus = "error"
)

// RunOutcome is the sole externally observable result of one cycle.
type RunOutcome struct {
	Status         RunStatus `json:"status"`
	Message        string    `json:"message"`
	ItemsProcessed int       `json:"items_processed"`
	NewestItemID   string    `json:"newest_item_id,omitempty"`
}
