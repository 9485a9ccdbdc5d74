package reglementation

import "errors"

var (
	// ErrInsufficientQualification is returned by IsSubject when the snapshot
	// lacks a field the rule reads. CalculateStatus never lets it escape.
	ErrInsufficientQualification = errors.New("reglementation: insufficient qualification")

	// ErrOracleUnavailable is the failure of a FreshnessOracle.
	ErrOracleUnavailable = errors.New("reglementation: freshness oracle unavailable")

	ErrUnknownRule = errors.New("reglementation: unknown rule")
)
