package constants

// JobStatus is the canonical status for rows in scan_jobs.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusQueued  JobStatus = "QUEUED"  // accepted, waiting for a worker
	JobStatusRunning JobStatus = "RUNNING" // OCR in progress
	JobStatusOCROK   JobStatus = "OCR_OK"  // stage 1 completed (text recognized)
	JobStatusParsed  JobStatus = "PARSED"  // stage 2 completed (fields extracted)
	JobStatusFailed  JobStatus = "FAILED"  // terminal failure
)

// Terminal reports whether no further stage will touch a job in this status.
func (s JobStatus) Terminal() bool {
	return s == JobStatusParsed || s == JobStatusFailed
}
