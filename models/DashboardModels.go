package models

import _ "github.com/lib/pq"

// DashboardSummary is the landing page rollup.
type DashboardSummary struct {
	ActiveProjects    int            `json:"active_projects" example:"7"`
	OpenProposals     int            `json:"open_proposals" example:"3"`
	SignedContracts   int            `json:"signed_contracts" example:"12"`
	PipelineValue     float64        `json:"pipeline_value" example:"148200.00"`
	OverdueInvoices   int            `json:"overdue_invoices" example:"2"`
	OverdueAmount     float64        `json:"overdue_amount" example:"3680.00"`
	LowStockItems     int            `json:"low_stock_items" example:"4"`
	RecentActivity    []ActivityLog  `json:"recent_activity"`
	ProposalsByStatus map[string]int `json:"proposals_by_status"`
	ProjectsByStatus  map[string]int `json:"projects_by_status"`
}
