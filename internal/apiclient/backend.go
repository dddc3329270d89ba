package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/legalvoice-orchestrator/server/internal/agent/model"
)

const (
	backendService   = "backend-api"
	usersByPhonePath = "/users-by-phone"
)

// BackendClient resolves callers against the backend user directory.
type BackendClient struct {
	rest *restClient
}

func NewBackendClient(cfg model.BackendAPIConfig, opts ...Option) *BackendClient {
	o := buildOptions(cfg.ParsedTimeout(), opts)
	apiKey := cfg.APIKey
	return &BackendClient{rest: &restClient{
		service: backendService,
		baseURL: strings.TrimRight(cfg.URL, "/"),
		http:    o.httpClient,
		callLog: o.callLog,
		decorate: func(r *http.Request) {
			if apiKey != "" {
				r.Header.Set("x-api-key", apiKey)
			}
		},
	}}
}

type userRecord struct {
	ID    model.FlexString `json:"id"`
	Phone string           `json:"phone"`
	Name  struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	} `json:"name"`
	DOB   string `json:"dob"`
	Email string `json:"email"`
}

// LookupCaller returns the first user registered under phone, or nil when
// there is none.
func (c *BackendClient) LookupCaller(ctx context.Context, phone string) (*model.Caller, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, nil
	}

	body, err := c.rest.get(ctx, usersByPhonePath, map[string]string{"phone": phone})
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	var users []userRecord
	if err := json.Unmarshal(body, &users); err != nil {
		return nil, fmt.Errorf("%s: decode users: %w", backendService, err)
	}
	if len(users) == 0 {
		return nil, nil
	}
	u := users[0]
	return &model.Caller{
		ID:        u.ID,
		Phone:     u.Phone,
		FirstName: u.Name.FirstName,
		LastName:  u.Name.LastName,
		DOB:       u.DOB,
		Email:     u.Email,
	}, nil
}
