package services

import (
	"context"
	"strings"
	"testing"

	"backend/pricing"
)

func TestTemplateProposalDrafter(t *testing.T) {
	breakdown := pricing.CostBreakdown{
		SquareFootage:     5000,
		GrandTotal:        24500,
		CostPerSquareFoot: 4.9,
	}
	breakdown.Materials.Total = 12000
	breakdown.Labor.Total = 6000
	breakdown.Equipment.Totals.GrandTotal = 3200

	body, err := TemplateProposalDrafter{}.DraftProposal(context.Background(), DraftRequest{
		ClientName:  "Riverside HOA",
		ProjectName: "Riverside tennis courts",
		Breakdown:   breakdown,
	})
	if err != nil {
		t.Fatalf("DraftProposal returned error: %v", err)
	}

	for _, want := range []string{
		"Riverside HOA",
		"Riverside tennis courts",
		"$12000.00",
		"$3200.00",
		"$24500.00",
		"per square foot",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("draft body missing %q:\n%s", want, body)
		}
	}
}

func TestTemplateProposalDrafterSkipsEmptySections(t *testing.T) {
	body, err := TemplateProposalDrafter{}.DraftProposal(context.Background(), DraftRequest{
		ClientName:  "Riverside HOA",
		ProjectName: "Court striping",
	})
	if err != nil {
		t.Fatalf("DraftProposal returned error: %v", err)
	}
	if strings.Contains(body, "Court equipment") {
		t.Errorf("draft body should not mention equipment for a zero breakdown:\n%s", body)
	}
}
