package extractor

import (
	"fmt"

	"github.com/marcosalmeida/siteauditor/internal/telemetry"
	"github.com/marcosalmeida/siteauditor/pkg/failure"
)

type ExtractionErrorCause string

const (
	ErrCauseNotHTML   ExtractionErrorCause = "not html"
	ErrCauseParseFail ExtractionErrorCause = "failed to parse HTML"
)

type ExtractionError struct {
	Message   string
	Retryable bool
	Cause     ExtractionErrorCause
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction error: %s", e.Cause)
}

func (e *ExtractionError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

// mapExtractionErrorToTelemetryCause maps extractor-local error semantics
// to the canonical telemetry.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapExtractionErrorToTelemetryCause(err *ExtractionError) telemetry.ErrorCause {
	switch err.Cause {
	case ErrCauseNotHTML, ErrCauseParseFail:
		return telemetry.CauseContentInvalid
	default:
		return telemetry.CauseUnknown
	}
}
