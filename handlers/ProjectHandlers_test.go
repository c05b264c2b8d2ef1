package handlers

import (
	"backend/models"
	"testing"
)

func canTransition(from, to string) bool {
	for _, allowed := range allowedStatusChanges[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func TestStatusMachineCoversEveryStatus(t *testing.T) {
	for _, status := range models.ProjectStatuses {
		if _, ok := allowedStatusChanges[status]; !ok {
			t.Errorf("status %q has no transition entry", status)
		}
	}
	for from, targets := range allowedStatusChanges {
		if !models.ValidProjectStatus(from) {
			t.Errorf("transition map has unknown status %q", from)
		}
		for _, to := range targets {
			if !models.ValidProjectStatus(to) {
				t.Errorf("%q allows transition to unknown status %q", from, to)
			}
		}
	}
}

func TestClosedIsTerminal(t *testing.T) {
	if len(allowedStatusChanges["closed"]) != 0 {
		t.Fatalf("closed should allow no transitions, got %v", allowedStatusChanges["closed"])
	}
}

func TestEveryOpenStatusCanClose(t *testing.T) {
	for _, status := range models.ProjectStatuses {
		if status == "closed" {
			continue
		}
		if !canTransition(status, "closed") {
			t.Errorf("%q cannot be closed", status)
		}
	}
}

func TestPipelineMovesForward(t *testing.T) {
	path := []string{"lead", "estimating", "proposal_sent", "contracted", "scheduled", "in_progress", "completed", "closed"}
	for i := 0; i < len(path)-1; i++ {
		if !canTransition(path[i], path[i+1]) {
			t.Errorf("expected %q -> %q to be allowed", path[i], path[i+1])
		}
	}
}

func TestNoSkippingStages(t *testing.T) {
	cases := []struct{ from, to string }{
		{"lead", "contracted"},
		{"lead", "in_progress"},
		{"estimating", "scheduled"},
		{"contracted", "in_progress"},
		{"closed", "lead"},
		{"completed", "in_progress"},
	}
	for _, tc := range cases {
		if canTransition(tc.from, tc.to) {
			t.Errorf("%q -> %q should be rejected", tc.from, tc.to)
		}
	}
}

func TestProposalRevisionReturnsToEstimating(t *testing.T) {
	// A declined proposal sends the project back for a new estimate.
	if !canTransition("proposal_sent", "estimating") {
		t.Fatal("proposal_sent should be able to return to estimating")
	}
}
