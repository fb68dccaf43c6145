package robots

import "github.com/marcosalmeida/siteauditor/internal/telemetry"

// ErrorCause classifies why the robots/sitemap probe could not complete
// cleanly. A probe failure never aborts an audit: the caller treats it
// as "robots.txt absent" and proceeds, recording the cause for
// telemetry only.
type ErrorCause string

const (
	ErrCauseFetchFailure ErrorCause = "failed to fetch robots.txt"
	ErrCauseBodyTooLarge ErrorCause = "robots.txt exceeded size limit"
)

func mapCauseToTelemetry(cause ErrorCause) telemetry.ErrorCause {
	switch cause {
	case ErrCauseFetchFailure:
		return telemetry.CauseNetworkFailure
	case ErrCauseBodyTooLarge:
		return telemetry.CauseContentInvalid
	default:
		return telemetry.CauseUnknown
	}
}
