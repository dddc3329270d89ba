package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/legalvoice-orchestrator/server/internal/agent/model"
	"github.com/legalvoice-orchestrator/server/internal/agent/repo"
	errx "github.com/legalvoice-orchestrator/server/internal/core/error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLegal(t *testing.T, h http.HandlerFunc, opts ...Option) *LegalClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewLegalClient(model.LegalAPIConfig{URL: srv.URL + "/", APIKey: "legal-key"}, opts...)
}

func TestAnalyticsSummaryUnwrapsEnvelope(t *testing.T) {
	client := newLegal(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/api/analytics/summary", r.URL.Path)
		assert.Equal(t, "2026-01-01", r.URL.Query().Get("startDate"))
		assert.Equal(t, "2026-03-31", r.URL.Query().Get("endDate"))
		assert.Equal(t, "Bearer legal-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"activeCasesCount":42,"caseValue":{"avg_case_value":"15000.5"},"activeCasesByPhase":{"Litigation":4}}}`))
	})

	summary, err := client.AnalyticsSummary(context.Background(), "2026-01-01", "2026-03-31")
	require.NoError(t, err)
	assert.Equal(t, model.FlexString("42"), summary.ActiveCasesCount)
	require.NotNil(t, summary.CaseValue)
	assert.Equal(t, model.FlexString("15000.5"), summary.CaseValue.AvgCaseValue)
	assert.Equal(t, 4, summary.ActiveCasesByPhase["Litigation"])
}

func TestAnalyticsSummaryAcceptsBareBody(t *testing.T) {
	client := newLegal(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"matterCount":"7"}`))
	})

	summary, err := client.AnalyticsSummary(context.Background(), "2026-01-01", "2026-01-31")
	require.NoError(t, err)
	assert.Equal(t, model.FlexString("7"), summary.MatterCount)
}

func TestAnalyticsSummaryUpstreamError(t *testing.T) {
	client := newLegal(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"invalid api key"}`))
	})

	_, err := client.AnalyticsSummary(context.Background(), "2026-01-01", "2026-01-31")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errx.ErrUpstream))
	assert.Equal(t, http.StatusBadGateway, errx.StatusOf(err))

	var up *errx.UpstreamError
	require.True(t, errors.As(err, &up))
	assert.Equal(t, http.StatusUnauthorized, up.Status)
	assert.Equal(t, "invalid api key", up.Detail)
}

func TestAnalyticsSummaryMalformedBody(t *testing.T) {
	client := newLegal(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	})

	_, err := client.AnalyticsSummary(context.Background(), "2026-01-01", "2026-01-31")
	assert.ErrorContains(t, err, "decode summary")
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client := NewLegalClient(model.LegalAPIConfig{URL: srv.URL})

	_, err := client.AnalyticsSummary(context.Background(), "2026-01-01", "2026-01-31")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errx.ErrUpstream))
}

func TestActiveCases(t *testing.T) {
	client := newLegal(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/api/analytics/active-cases", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"data":[{"case_id":101,"client_name":"Jane Roe","case_phase":"Discovery","incident_date":"2026-02-03"}],"pagination":{"page":1,"limit":5,"hasMore":true,"totalCount":9}}`))
	})

	page, err := client.ActiveCases(context.Background(), "2026-01-01", "2026-12-31", 5)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, model.FlexString("101"), page.Data[0].CaseID)
	assert.Equal(t, "Discovery", page.Data[0].CasePhase)
	require.NotNil(t, page.Pagination)
	assert.True(t, page.Pagination.HasMore)
	assert.Equal(t, 9, page.Pagination.TotalCount)
}

func TestActiveCasesEmptyPage(t *testing.T) {
	client := newLegal(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{}`))
	})

	page, err := client.ActiveCases(context.Background(), "2026-01-01", "2026-12-31", 0)
	require.NoError(t, err)
	assert.NotNil(t, page.Data)
	assert.Empty(t, page.Data)
}

func TestCallsAreLoggedPerConversation(t *testing.T) {
	log := repo.NewMemoryAPICallLogRepository(time.Hour)
	client := newLegal(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"prospectCount":3}}`))
	}, WithCallLog(log))

	ctx := model.WithConversationID(context.Background(), "call-1")
	_, err := client.AnalyticsSummary(ctx, "2026-01-01", "2026-01-31")
	require.NoError(t, err)

	// no conversation id, nothing recorded
	_, err = client.AnalyticsSummary(context.Background(), "2026-01-01", "2026-01-31")
	require.NoError(t, err)

	calls, err := log.List(context.Background(), "call-1")
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodGet, calls[0].Method)
	assert.Equal(t, http.StatusOK, calls[0].Status)
	assert.Equal(t, "2026-01-31", calls[0].Params["endDate"])
	assert.JSONEq(t, `{"data":{"prospectCount":3}}`, string(calls[0].Response))
}

func TestLoggableBody(t *testing.T) {
	assert.Nil(t, loggableBody(nil))
	assert.JSONEq(t, `{"a":1}`, string(loggableBody([]byte(` {"a":1} `))))
	assert.JSONEq(t, `"plain text"`, string(loggableBody([]byte("plain text"))))

	big := make([]byte, maxLoggedBytes+100)
	for i := range big {
		big[i] = 'x'
	}
	got := string(loggableBody(big))
	assert.Contains(t, got, "...(truncated)")
	assert.Less(t, len(got), len(big))
}
