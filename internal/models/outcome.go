package models

// Violation codes.
const (
	CodeMissing       = "missing"
	CodeInvalidFormat = "invalid_format"
	CodeInvalidRange  = "invalid_range"
	CodeTooFew        = "too_few"
)

// Violation is one reason a record fails validation.
type Violation struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	return v.Field + ": " + v.Message
}

// FileOutcome is the per-file result of a batch run.
type FileOutcome struct {
	Path         string           `json:"path"`
	Success      bool             `json:"success"`
	Record       *CandidateRecord `json:"record,omitempty"`
	Valid        bool             `json:"valid"`
	Violations   []Violation      `json:"violations,omitempty"`
	Completeness float64          `json:"completeness"`
	CacheHit     bool             `json:"cacheHit"`
	ContentHash  string           `json:"contentHash,omitempty"`
	SizeBytes    int64            `json:"sizeBytes"`
	Err          error            `json:"-"`
	Error        string           `json:"error,omitempty"`
}

// Fail marks the outcome failed with err.
func (o *FileOutcome) Fail(err error) {
	o.Success = false
	o.Err = err
	if err != nil {
		o.Error = err.Error()
	}
}
