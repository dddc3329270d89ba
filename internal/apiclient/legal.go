package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/legalvoice-orchestrator/server/internal/agent/model"
)

const (
	legalService         = "legal-api"
	analyticsSummaryPath = "/v1/api/analytics/summary"
	analyticsActivePath  = "/v1/api/analytics/active-cases"
)

// LegalClient reads firm analytics from the Legal API using a Bearer key.
type LegalClient struct {
	rest *restClient
}

func NewLegalClient(cfg model.LegalAPIConfig, opts ...Option) *LegalClient {
	o := buildOptions(cfg.ParsedTimeout(), opts)
	apiKey := cfg.APIKey
	return &LegalClient{rest: &restClient{
		service: legalService,
		baseURL: strings.TrimRight(cfg.URL, "/"),
		http:    o.httpClient,
		callLog: o.callLog,
		decorate: func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+apiKey)
			r.Header.Set("Content-Type", "application/json")
		},
	}}
}

// AnalyticsSummary returns the summary for an inclusive date range. The API
// wraps it in a {"success", "data"} envelope; a bare summary is accepted too.
func (c *LegalClient) AnalyticsSummary(ctx context.Context, startDate, endDate string) (*model.AnalyticsSummary, error) {
	body, err := c.rest.get(ctx, analyticsSummaryPath, map[string]string{
		"startDate": startDate,
		"endDate":   endDate,
	})
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%s: decode summary: %w", legalService, err)
	}
	payload := body
	if d := bytes.TrimSpace(envelope.Data); len(d) > 0 && !bytes.Equal(d, []byte("null")) {
		payload = d
	}

	var summary model.AnalyticsSummary
	if err := json.Unmarshal(payload, &summary); err != nil {
		return nil, fmt.Errorf("%s: decode summary: %w", legalService, err)
	}
	return &summary, nil
}

// ActiveCases returns the first page of active cases with incidents in the range.
func (c *LegalClient) ActiveCases(ctx context.Context, startDate, endDate string, limit int) (*model.ActiveCasesPage, error) {
	params := map[string]string{
		"startDate": startDate,
		"endDate":   endDate,
	}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}
	body, err := c.rest.get(ctx, analyticsActivePath, params)
	if err != nil {
		return nil, err
	}

	var page model.ActiveCasesPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("%s: decode active cases: %w", legalService, err)
	}
	if page.Data == nil {
		page.Data = []model.ActiveCase{}
	}
	return &page, nil
}
