package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"backend/pricing"
)

// ProposalDrafter turns a priced estimate into proposal prose.
type ProposalDrafter interface {
	DraftProposal(ctx context.Context, req DraftRequest) (string, error)
}

// DraftRequest carries everything the drafting backend needs.
type DraftRequest struct {
	ClientName  string                `json:"client_name"`
	ProjectName string                `json:"project_name"`
	Tone        string                `json:"tone"`
	Breakdown   pricing.CostBreakdown `json:"breakdown"`
}

// HTTPProposalDrafter calls an external drafting API.
type HTTPProposalDrafter struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewHTTPProposalDrafter() (*HTTPProposalDrafter, error) {
	baseURL := os.Getenv("DRAFTER_API_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("drafter api not configured")
	}
	return &HTTPProposalDrafter{
		baseURL:    baseURL,
		apiKey:     os.Getenv("DRAFTER_API_KEY"),
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}, nil
}

func (s *HTTPProposalDrafter) DraftProposal(ctx context.Context, draftReq DraftRequest) (string, error) {
	payload, err := json.Marshal(draftReq)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/proposals/draft", bytes.NewBuffer(payload))
	if err != nil {
		return "", fmt.Errorf("error creating draft request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error calling drafter api: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("drafter api returned status %d", resp.StatusCode)
	}

	var out struct {
		Body string `json:"body"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("error decoding drafter response: %v", err)
	}
	return out.Body, nil
}

// TemplateProposalDrafter builds a plain proposal body from the
// breakdown. Used when no drafting API is configured so proposals still
// go out.
type TemplateProposalDrafter struct{}

func (TemplateProposalDrafter) DraftProposal(_ context.Context, req DraftRequest) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "<p>Dear %s,</p>\n", req.ClientName)
	fmt.Fprintf(&b, "<p>Thank you for the opportunity to quote %s. The scope below reflects the site details you shared with us.</p>\n", req.ProjectName)

	b.WriteString("<ul>\n")
	if req.Breakdown.Materials.Total > 0 {
		fmt.Fprintf(&b, "<li>Surface work and materials: $%.2f</li>\n", req.Breakdown.Materials.Total)
	}
	if req.Breakdown.Equipment.Totals.GrandTotal > 0 {
		fmt.Fprintf(&b, "<li>Court equipment, installed: $%.2f</li>\n", req.Breakdown.Equipment.Totals.GrandTotal)
	}
	if req.Breakdown.Labor.Total > 0 {
		fmt.Fprintf(&b, "<li>Crew, travel and logistics: $%.2f</li>\n", req.Breakdown.Labor.Total)
	}
	b.WriteString("</ul>\n")

	fmt.Fprintf(&b, "<p>Project total: <strong>$%.2f</strong>", req.Breakdown.GrandTotal)
	if req.Breakdown.SquareFootage > 0 {
		fmt.Fprintf(&b, " ($%.2f per square foot)", req.Breakdown.CostPerSquareFoot)
	}
	b.WriteString("</p>\n")
	b.WriteString("<p>We look forward to working with you.</p>\n")

	return b.String(), nil
}
