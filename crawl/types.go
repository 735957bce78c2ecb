package crawl

// Record is one extracted listing: declared field name → extracted
// value. Values are whatever the extraction backend produced — strings,
// numbers or null.
type Record map[string]any

// StopReason says why a run's page loop terminated. Stopping is not an
// error: the run always returns whatever was accumulated so far, and the
// caller distinguishes "empty but clean" from "faulted" only through the
// reason.
type StopReason string

const (
	// StopPageLimit: the configured page cap was reached.
	StopPageLimit StopReason = "page-limit-reached"
	// StopFetchFailed: the render-only page load failed.
	StopFetchFailed StopReason = "fetch-failed"
	// StopExtractionFailed: the extraction pass failed or returned no payload.
	StopExtractionFailed StopReason = "extraction-failed"
	// StopPayloadMalformed: the extraction payload was not a well-formed
	// array of records.
	StopPayloadMalformed StopReason = "payload-malformed"
	// StopNoCandidates: a page produced a well-formed but empty candidate list.
	StopNoCandidates StopReason = "no-candidates"
	// StopNoNewRecords: a page produced candidates but none survived the
	// completeness and dedup filters. The wire value predates the
	// user-supplied field list, when every record was a venue.
	StopNoNewRecords StopReason = "no-new-venues"
	// StopCancelled: the run's context was cancelled between pages.
	StopCancelled StopReason = "cancelled"
)

// Result is what a run hands back.
type Result struct {
	Records []Record
	Pages   int // pages fully processed
	Reason  StopReason
}

// Progress receives human-readable status lines. It is invoked in-line
// and synchronously; implementations must return promptly.
type Progress func(line string)

// RunConfig parameterizes one crawl run.
type RunConfig struct {
	// BaseURL is the listing URL; a 1-based page index is appended as the
	// "page" query parameter.
	BaseURL string
	// Selector is the item-boundary CSS selector passed to the fetcher.
	Selector string
	// Credential is the extraction provider API key.
	Credential string
	// Instruction is the extraction instruction text.
	Instruction string
	// RequiredFields lists the field names every accepted record must
	// carry with a non-empty value. Order defines export column order.
	RequiredFields []string
	// MaxPages caps the number of pages visited; 0 means unlimited.
	MaxPages int
	// Provider and Model select the extraction backend from the catalog.
	Provider string
	Model    string
	// EmptyMarker, when non-empty, is a text fragment whose presence on
	// the rendered page signals an explicit "no results" state.
	EmptyMarker string
}
