package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the ISO calendar date format used for every date range.
const DateLayout = "2006-01-02"

// DateRange is an inclusive span of ISO dates.
type DateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Validate checks that both ends are ISO dates and From is not after To.
func (r DateRange) Validate() error {
	from, err := time.Parse(DateLayout, r.From)
	if err != nil {
		return fmt.Errorf("invalid from date %q: %w", r.From, err)
	}
	to, err := time.Parse(DateLayout, r.To)
	if err != nil {
		return fmt.Errorf("invalid to date %q: %w", r.To, err)
	}
	if from.After(to) {
		return fmt.Errorf("from %s is after to %s", r.From, r.To)
	}
	return nil
}

// CalendarYear returns the Jan 1 - Dec 31 span of the year containing t.
func CalendarYear(t time.Time) DateRange {
	y := t.Year()
	return DateRange{
		From: fmt.Sprintf("%04d-01-01", y),
		To:   fmt.Sprintf("%04d-12-31", y),
	}
}

// FlexString decodes a JSON string or number into a string. The Legal API
// is not consistent about quoting counts and identifiers.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("flex string: %w", err)
	}
	*f = FlexString(n.String())
	return nil
}

type CaseValue struct {
	AvgCaseValue FlexString `json:"avg_case_value,omitempty"`
	TotalFee     FlexString `json:"total_fee,omitempty"`
	CaseCount    FlexString `json:"case_count,omitempty"`
}

type PipelineValue struct {
	TotalConservativeAttorneyFee FlexString `json:"total_conservative_attorney_fee,omitempty"`
	TotalLLFAttorneyFee          FlexString `json:"total_llf_attorney_fee,omitempty"`
}

type ProjectedValue struct {
	ProjectedActualValue FlexString `json:"projected_actual_value,omitempty"`
	ProjectedFutureValue FlexString `json:"projected_future_value,omitempty"`
	Count                FlexString `json:"count,omitempty"`
}

// AnalyticsSummary is the data section of GET /v1/api/analytics/summary.
type AnalyticsSummary struct {
	CaseValue          *CaseValue      `json:"caseValue,omitempty"`
	PipelineValue      *PipelineValue  `json:"PipelineValue,omitempty"`
	LitigationValue    *ProjectedValue `json:"litigationValue,omitempty"`
	SettlementValue    *ProjectedValue `json:"SettlementValue,omitempty"`
	ActiveCasesCount   FlexString      `json:"activeCasesCount,omitempty"`
	ProspectCount      FlexString      `json:"prospectCount,omitempty"`
	MatterCount        FlexString      `json:"matterCount,omitempty"`
	DemandCount        FlexString      `json:"demandCount,omitempty"`
	ActiveCasesByPhase map[string]int  `json:"activeCasesByPhase,omitempty"`
}

type ActiveCase struct {
	CaseID         FlexString `json:"case_id"`
	ClientName     string     `json:"client_name"`
	CasePhase      string     `json:"case_phase"`
	IncidentDate   string     `json:"incident_date,omitempty"`
	ProjectedValue FlexString `json:"projected_value,omitempty"`
}

type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	HasMore    bool `json:"hasMore"`
	TotalCount int  `json:"totalCount"`
}

// ActiveCasesPage is one page of GET /v1/api/analytics/active-cases.
type ActiveCasesPage struct {
	Data       []ActiveCase `json:"data"`
	Pagination *Pagination  `json:"pagination,omitempty"`
}

// FetchOutcome records the result of a data-fetch node. Exactly one of
// Payload, Error or MissingContext is set.
type FetchOutcome[T any] struct {
	Payload        *T     `json:"payload,omitempty"`
	Error          string `json:"error,omitempty"`
	MissingContext bool   `json:"missing_context,omitempty"`
}

func Fetched[T any](payload *T) *FetchOutcome[T] {
	return &FetchOutcome[T]{Payload: payload}
}

func FetchFailed[T any](message string) *FetchOutcome[T] {
	return &FetchOutcome[T]{Error: message}
}

func MissingContext[T any]() *FetchOutcome[T] {
	return &FetchOutcome[T]{MissingContext: true}
}

// HasPayload reports whether the outcome carries data to synthesize.
func (o *FetchOutcome[T]) HasPayload() bool {
	return o != nil && o.Payload != nil
}

// Failed reports whether the outcome is an external failure marker.
func (o *FetchOutcome[T]) Failed() bool {
	return o != nil && o.Error != ""
}
