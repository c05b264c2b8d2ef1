package handlers

import (
	"backend/models"
	"backend/utils"
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetDashboardSummaryHandler godoc
// @Summary      Landing page rollup
// @Description  Counts and totals across the pipeline: active projects,
// @Description  open proposals, pipeline value from live proposals,
// @Description  overdue invoices and low stock.
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  models.DashboardSummary
// @Failure      401  {object}  models.ErrorResponse
// @Router       /api/dashboard [get]
func GetDashboardSummaryHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if _, _, err := GetSessionDetails(db, sessionID); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		summary := models.DashboardSummary{
			ProposalsByStatus: map[string]int{},
			ProjectsByStatus:  map[string]int{},
		}

		// The rollup fans out over every table, so it gets the slow timeout.
		ctx, cancel := utils.GetSlowQueryContext(c.Request.Context())
		defer cancel()

		rows, err := db.QueryContext(ctx, `SELECT status, COUNT(*) FROM projects WHERE archived = false GROUP BY status`)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count projects", "details": err.Error()})
			return
		}
		for rows.Next() {
			var status string
			var count int
			if err := rows.Scan(&status, &count); err != nil {
				rows.Close()
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan project counts", "details": err.Error()})
				return
			}
			summary.ProjectsByStatus[status] = count
			if status != "closed" && status != "completed" {
				summary.ActiveProjects += count
			}
		}
		rows.Close()

		rows, err = db.QueryContext(ctx, `SELECT status, COUNT(*) FROM proposals GROUP BY status`)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count proposals", "details": err.Error()})
			return
		}
		for rows.Next() {
			var status string
			var count int
			if err := rows.Scan(&status, &count); err != nil {
				rows.Close()
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan proposal counts", "details": err.Error()})
				return
			}
			summary.ProposalsByStatus[status] = count
			if status == "sent" || status == "viewed" {
				summary.OpenProposals += count
			}
		}
		rows.Close()

		// Pipeline value is what is still on the table: grand totals of
		// estimates behind proposals the client has not answered yet.
		err = db.QueryRowContext(ctx, `
			SELECT COALESCE(SUM((e.breakdown->>'grand_total')::numeric), 0)
			FROM proposals p
			JOIN estimates e ON e.id = p.estimate_id
			WHERE p.status IN ('sent', 'viewed')`).Scan(&summary.PipelineValue)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute pipeline value", "details": err.Error()})
			return
		}

		err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contracts WHERE status = 'signed'`).Scan(&summary.SignedContracts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count contracts", "details": err.Error()})
			return
		}

		err = db.QueryRowContext(ctx, `
			SELECT COUNT(*), COALESCE(SUM(amount), 0)
			FROM vendor_invoices
			WHERE status = 'open' AND due_date < CURRENT_DATE`).Scan(&summary.OverdueInvoices, &summary.OverdueAmount)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count overdue invoices", "details": err.Error()})
			return
		}

		err = db.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM inventory_items
			WHERE quantity_on_hand <= reorder_level`).Scan(&summary.LowStockItems)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count low stock", "details": err.Error()})
			return
		}

		rows, err = db.QueryContext(ctx, `
			SELECT id, event_context, event_name, description, COALESCE(user_name, ''),
			       COALESCE(host_name, ''), COALESCE(ip_address, ''), COALESCE(project_id, 0), created_at
			FROM activity_logs
			ORDER BY created_at DESC
			LIMIT 15`)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query activity", "details": err.Error()})
			return
		}
		defer rows.Close()
		for rows.Next() {
			var entry models.ActivityLog
			if err := rows.Scan(
				&entry.ID, &entry.EventContext, &entry.EventName, &entry.Description, &entry.UserName,
				&entry.HostName, &entry.IPAddress, &entry.ProjectID, &entry.CreatedAt,
			); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan activity", "details": err.Error()})
				return
			}
			summary.RecentActivity = append(summary.RecentActivity, entry)
		}

		c.JSON(http.StatusOK, summary)
	}
}
