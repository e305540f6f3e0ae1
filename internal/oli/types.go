// Package oli provides a client for the OLI Cloud chemistry computation API:
// flash calculations against uploaded or generated chemistry (DBS) files,
// asynchronous result polling, and batched concurrent submission.
package oli

// Status is a job state reported by the OLI Cloud service.
// Values match the wire format exactly, including embedded spaces.
type Status string

const (
	StatusInQueue    Status = "IN QUEUE"
	StatusInProgress Status = "IN PROGRESS"
	StatusProcessed  Status = "PROCESSED"
	StatusFailed     Status = "FAILED"

	// StatusSuccess is reported on accepted submissions and DBS operations.
	StatusSuccess Status = "SUCCESS"

	// StatusUploaded is reported on accepted DBS file uploads.
	StatusUploaded Status = "UPLOADED"
)

// pollStatuses are the states a result link may report while polling.
var pollStatuses = []Status{StatusInQueue, StatusInProgress, StatusProcessed, StatusFailed}

// Flash method names accepted by the service.
const (
	FlashChemistryInfo           = "chemistry-info"
	FlashCorrosionContactSurface = "corrosion-contact-surface"
	FlashIsothermal              = "isothermal"
	FlashCorrosionRates          = "corrosion-rates"
	FlashWaterAnalysis           = "wateranalysis"
)

// FlashRequest describes a single flash calculation. A request is identified
// by its position in the slice handed to ProcessRequestList and must not be
// mutated after submission.
type FlashRequest struct {
	FlashMethod string         `json:"flash_method" yaml:"flash_method"`
	FileID      string         `json:"dbs_file_id"  yaml:"dbs_file_id"`
	InputParams map[string]any `json:"input_params,omitempty" yaml:"input_params,omitempty"`

	// BurstTag overrides the batch-level burst tag for this request.
	BurstTag string `json:"burst_tag,omitempty" yaml:"burst_tag,omitempty"`
}

// FlashResult is the outcome of exactly one FlashRequest. Index is the
// request's position in the original input slice, independent of the order
// in which concurrent requests completed.
type FlashResult struct {
	Index     int            `json:"index"`
	Status    Status         `json:"status"`
	Data      map[string]any `json:"data,omitempty"`
	Submitted FlashRequest   `json:"submitted_request"`
}
