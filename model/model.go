// Package model holds the data types shared across the provider,
// cache, router, orchestrator, and reporter layers: the invariant
// LookupResult shape, Assets, execution Plans, and the AggregateReport
// the Reporter renders.
package model

import (
	"time"

	"github.com/vigil-eol/advisor/fingerprint"
)

// AssetKind mirrors fingerprint.Kind but is kept distinct so callers
// constructing Assets from inventory or message text don't need to
// import the fingerprint package just for the enum.
type AssetKind string

const (
	AssetOS       AssetKind = "os"
	AssetSoftware AssetKind = "software"
)

// Asset is a (name, version?, kind) tuple produced by the
// InventoryCollector or extracted from a user message.
type Asset struct {
	Name      string         `json:"name"`
	Version   string         `json:"version,omitempty"`
	Kind      AssetKind      `json:"kind"`
	SourceTag string         `json:"source_tag,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// Fingerprint derives the cache/single-flight key for this Asset.
func (a Asset) Fingerprint() fingerprint.Fingerprint {
	k := fingerprint.KindSoftware
	if a.Kind == AssetOS {
		k = fingerprint.KindOS
	}
	return fingerprint.NewNormalizer().Normalize(a.Name, a.Version, k)
}

// Status is the lifecycle bucket a LookupResult falls into.
type Status string

const (
	StatusActive        Status = "active"
	StatusApproachingEOL Status = "approaching_eol"
	StatusEndOfLife      Status = "end_of_life"
	StatusUnknown        Status = "unknown"
)

// Risk is the operator-facing severity derived from a Status.
type Risk string

const (
	RiskLow      Risk = "low"
	RiskMedium   Risk = "medium"
	RiskHigh     Risk = "high"
	RiskCritical Risk = "critical"
	RiskUnknown  Risk = "unknown"
)

// ErrorKind enumerates the taxonomy a Provider call can fail with.
// Only Transient is retryable by the orchestrator.
type ErrorKind string

const (
	ErrInputInvalid   ErrorKind = "input_invalid"
	ErrNotSupported   ErrorKind = "not_supported"
	ErrNotFound       ErrorKind = "not_found"
	ErrTransient      ErrorKind = "transient"
	ErrParseFailure   ErrorKind = "parse_failure"
	ErrDisabled       ErrorKind = "disabled"
	ErrCancelled      ErrorKind = "cancelled"
)

// ProviderError is the uniform failure shape every Provider.Lookup call
// returns in place of a LookupResult.
type ProviderError struct {
	Kind     ErrorKind
	Provider string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return e.Provider + ": " + string(e.Kind) + ": " + e.Message
	}
	return e.Provider + ": " + string(e.Kind)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Retryable reports whether the orchestrator should attempt this call
// again under the retry policy.
func (e *ProviderError) Retryable() bool {
	return e.Kind == ErrTransient
}

// LookupResult is the invariant shape produced by every Provider,
// regardless of data source.
type LookupResult struct {
	Success        bool           `json:"success"`
	SoftwareName   string         `json:"software_name"`
	Version        string         `json:"version,omitempty"`
	EOLDate        *time.Time     `json:"eol_date,omitempty"`
	SupportEndDate *time.Time     `json:"support_end_date,omitempty"`
	ReleaseDate    *time.Time     `json:"release_date,omitempty"`
	LatestVersion  string         `json:"latest_version,omitempty"`
	Status         Status         `json:"status"`
	Risk           Risk           `json:"risk"`
	Confidence     float64        `json:"confidence"`
	Source         string         `json:"source"`
	SourceURL      string         `json:"source_url,omitempty"`
	FetchedAt      time.Time      `json:"fetched_at"`
	Extra          map[string]any `json:"extra,omitempty"`

	// ErrorKind and ErrorMessage are populated when Success is false so
	// the orchestrator and reporter can record the failure without
	// carrying a separate error value through aggregation.
	ErrorKind    ErrorKind `json:"error_kind,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

// DeriveStatusRisk fills Status/Risk from EOLDate relative to now when
// the provider did not set them explicitly, per the derivation table:
//
//	past       -> end_of_life / critical
//	<90 days   -> approaching_eol / critical
//	<365 days  -> approaching_eol / high
//	<730 days  -> active / medium
//	else       -> active / low
//	missing    -> unknown / unknown
func DeriveStatusRisk(eolDate *time.Time, now time.Time) (Status, Risk) {
	if eolDate == nil {
		return StatusUnknown, RiskUnknown
	}
	d := eolDate.Sub(now)
	switch {
	case d < 0:
		return StatusEndOfLife, RiskCritical
	case d < 90*24*time.Hour:
		return StatusApproachingEOL, RiskCritical
	case d < 365*24*time.Hour:
		return StatusApproachingEOL, RiskHigh
	case d < 730*24*time.Hour:
		return StatusActive, RiskMedium
	default:
		return StatusActive, RiskLow
	}
}

// ProviderRef names one step of a Plan.
type ProviderRef struct {
	ID       string
	Priority int
}

// StopRuleKind selects when a cascade is considered complete.
type StopRuleKind string

const (
	StopFirstSuccess StopRuleKind = "first-success"
	StopCollectBest  StopRuleKind = "collect-best"
	StopQuorum       StopRuleKind = "quorum"
)

// StopRule decides when a Plan's cascade stops advancing.
type StopRule struct {
	Kind                StopRuleKind
	ConfidenceThreshold float64
	QuorumN             int
}

// Satisfied reports whether the accumulated attempts meet this rule
// given the best result seen so far and the count of providers that
// agree with it (for quorum rules).
func (r StopRule) Satisfied(best *LookupResult, agreeing int) bool {
	if best == nil || !best.Success {
		return false
	}
	switch r.Kind {
	case StopFirstSuccess:
		return best.Confidence >= r.ConfidenceThreshold
	case StopQuorum:
		return agreeing >= r.QuorumN
	case StopCollectBest:
		return false
	default:
		return false
	}
}

// Plan is the ordered provider cascade the Orchestrator runs for one Asset.
type Plan struct {
	Asset     Asset
	Providers []ProviderRef
	StopRule  StopRule
}

// Attempt records one provider's outcome within a Plan's execution, kept
// for telemetry and for the Reporter's "failed" detail list.
type Attempt struct {
	ProviderID string
	Result     *LookupResult
	ErrorKind  ErrorKind
	Retries    int
}

// ReportCategory buckets a resolved asset for the AggregateReport.
type ReportCategory string

const (
	CategoryEndOfLife     ReportCategory = "end_of_life"
	CategoryApproachingEOL ReportCategory = "approaching_eol"
	CategorySupported      ReportCategory = "supported"
	CategoryUnknown        ReportCategory = "unknown"
	CategoryFailed         ReportCategory = "failed"
)

// ReportEntry is one asset's place in the AggregateReport.
type ReportEntry struct {
	Asset    Asset
	Result   *LookupResult
	Category ReportCategory
	Attempts []Attempt
}

// AggregateReport is the categorized outcome of a full orchestrator run.
type AggregateReport struct {
	SessionID string
	Entries   []ReportEntry
	Counts    map[ReportCategory]int
}

// NewAggregateReport constructs an empty report ready for entries to be
// appended during Aggregate.
func NewAggregateReport(sessionID string) *AggregateReport {
	return &AggregateReport{
		SessionID: sessionID,
		Counts:    make(map[ReportCategory]int),
	}
}

// Add appends an entry and keeps Counts in sync.
func (r *AggregateReport) Add(e ReportEntry) {
	r.Entries = append(r.Entries, e)
	r.Counts[e.Category]++
}

// CategorizeResult maps a LookupResult's Status into a ReportCategory.
func CategorizeResult(res *LookupResult) ReportCategory {
	if res == nil || !res.Success {
		return CategoryFailed
	}
	switch res.Status {
	case StatusEndOfLife:
		return CategoryEndOfLife
	case StatusApproachingEOL:
		return CategoryApproachingEOL
	case StatusActive:
		return CategorySupported
	default:
		return CategoryUnknown
	}
}
