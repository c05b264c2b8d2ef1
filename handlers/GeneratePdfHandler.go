package handlers

import (
	"backend/pricing"
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.AmericanEnglish)

func pdfHeader(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(190, 10, "Play Hardscapes")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(190, 6, "Sport court construction and resurfacing")
	pdf.Ln(12)
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(190, 8, title)
	pdf.Ln(12)
}

func pdfFooter(pdf *gofpdf.Fpdf) {
	pdf.SetY(-20)
	pdf.SetFont("Arial", "I", 8)
	pdf.Cell(190, 6, "Generated on: "+time.Now().Format("2006-01-02 15:04:05"))
}

func pdfCostRow(pdf *gofpdf.Fpdf, label string, amount float64) {
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(140, 7, label, "1", 0, "L", false, 0, "")
	pdf.CellFormat(50, 7, fmt.Sprintf("$%.2f", amount), "1", 1, "R", false, 0, "")
}

func pdfTotalRow(pdf *gofpdf.Fpdf, label string, amount float64) {
	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(140, 8, label, "1", 0, "L", true, 0, "")
	pdf.CellFormat(50, 8, fmt.Sprintf("$%.2f", amount), "1", 1, "R", true, 0, "")
}

// GenerateEstimatePdfHandler godoc
// @Summary      Download an estimate as a PDF
// @Tags         estimates
// @Produce      application/pdf
// @Param        id  path  int  true  "Estimate ID"
// @Success      200  {file}    file
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/estimates/{id}/pdf [get]
func GenerateEstimatePdfHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if _, _, err := GetSessionDetails(db, sessionID); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid estimate ID"})
			return
		}

		estimate, err := loadEstimate(db, id)
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Estimate not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query estimate", "details": err.Error()})
			return
		}
		b := estimate.Breakdown

		pdf := gofpdf.New("P", "mm", "A4", "")
		pdf.AddPage()
		pdf.SetMargins(10, 10, 10)
		pdfHeader(pdf, fmt.Sprintf("Estimate v%d: %s", estimate.Version, estimate.ProjectName))

		pdf.SetFont("Arial", "", 10)
		pdf.Cell(95, 6, fmt.Sprintf("Status: %s", titleCaser.String(estimate.Status)))
		pdf.Cell(95, 6, fmt.Sprintf("Date: %s", estimate.CreatedAt.Format("02-Jan-2006")))
		pdf.Ln(6)
		pdf.Cell(190, 6, fmt.Sprintf("Court area: %.0f sq ft", b.SquareFootage))
		pdf.Ln(10)

		pdf.SetFont("Arial", "B", 11)
		pdf.SetFillColor(240, 240, 240)
		pdf.CellFormat(140, 8, "Materials", "1", 0, "L", true, 0, "")
		pdf.CellFormat(50, 8, "", "1", 1, "R", true, 0, "")
		materialRows := []struct {
			label string
			cost  pricing.ComponentCost
		}{
			{"Site preparation", b.Materials.SitePrep},
			{"Patch work", b.Materials.PatchWork},
			{"Resurfacing", b.Materials.Resurfacing},
			{"Color coating", b.Materials.ColorCoating},
			{"Fiberglass system", b.Materials.Fiberglass},
			{"Cushion system", b.Materials.Cushion},
			{"Line painting", b.Materials.LinePainting},
		}
		for _, row := range materialRows {
			if row.cost.Subtotal == 0 {
				continue
			}
			pdfCostRow(pdf, row.label, row.cost.Subtotal)
		}
		pdfTotalRow(pdf, "Materials total", b.Materials.Total)
		pdf.Ln(4)

		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(140, 8, "Labor", "1", 0, "L", true, 0, "")
		pdf.CellFormat(50, 8, "", "1", 1, "R", true, 0, "")
		if b.Labor.Travel.Cost > 0 {
			pdfCostRow(pdf, fmt.Sprintf("Travel (%.0f miles)", b.Labor.Travel.Miles), b.Labor.Travel.Cost)
		}
		if b.Labor.Hotel.Cost > 0 {
			pdfCostRow(pdf, fmt.Sprintf("Lodging (%d nights)", b.Labor.Hotel.Nights), b.Labor.Hotel.Cost)
		}
		if b.Labor.PerDiem.Cost > 0 {
			pdfCostRow(pdf, fmt.Sprintf("Per diem (%d days)", b.Labor.PerDiem.Days), b.Labor.PerDiem.Cost)
		}
		pdfCostRow(pdf, fmt.Sprintf("Crew hours (%.1f h)", b.Labor.Hours.TotalHours), b.Labor.Hours.Cost)
		pdfTotalRow(pdf, "Labor total", b.Labor.Total)
		pdf.Ln(4)

		if b.Equipment.Totals.GrandTotal > 0 {
			pdf.SetFont("Arial", "B", 11)
			pdf.CellFormat(140, 8, "Court equipment", "1", 0, "L", true, 0, "")
			pdf.CellFormat(50, 8, "", "1", 1, "R", true, 0, "")
			pdfCostRow(pdf, "Equipment", b.Equipment.Totals.Equipment)
			pdfCostRow(pdf, "Installation", b.Equipment.Totals.Installation)
			pdfTotalRow(pdf, "Equipment total", b.Equipment.Totals.GrandTotal)
			pdf.Ln(4)
		}

		pdfCostRow(pdf, fmt.Sprintf("Margin (%.0f%%)", b.MarginRate*100), b.Margin)
		pdfTotalRow(pdf, "Grand total", b.GrandTotal)
		pdf.Ln(2)
		pdf.SetFont("Arial", "", 9)
		pdf.Cell(190, 6, fmt.Sprintf("Cost per square foot: $%.2f", b.CostPerSquareFoot))

		if estimate.Notes != "" {
			pdf.Ln(10)
			pdf.SetFont("Arial", "B", 11)
			pdf.Cell(190, 6, "Notes")
			pdf.Ln(6)
			pdf.SetFont("Arial", "", 10)
			pdf.MultiCell(190, 5, estimate.Notes, "", "L", false)
		}

		pdfFooter(pdf)

		c.Header("Content-Type", "application/pdf")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=estimate_v%d_project_%d.pdf", estimate.Version, estimate.ProjectID))
		if err := pdf.Output(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate PDF", "details": err.Error()})
			return
		}
	}
}

// GenerateProposalPdfHandler godoc
// @Summary      Download a proposal as a PDF
// @Tags         proposals
// @Produce      application/pdf
// @Param        id  path  int  true  "Proposal ID"
// @Success      200  {file}    file
// @Failure      404  {object}  models.ErrorResponse
// @Failure      409  {object}  models.ErrorResponse
// @Router       /api/proposals/{id}/pdf [get]
func GenerateProposalPdfHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if _, _, err := GetSessionDetails(db, sessionID); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid proposal ID"})
			return
		}

		proposal, err := scanProposal(db.QueryRow(proposalSelect+" WHERE p.id = $1", id))
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Proposal not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query proposal", "details": err.Error()})
			return
		}
		if proposal.Body == "" {
			c.JSON(http.StatusConflict, gin.H{"error": "Proposal body is still being drafted"})
			return
		}

		estimate, err := loadEstimate(db, proposal.EstimateID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query estimate", "details": err.Error()})
			return
		}

		pdf := gofpdf.New("P", "mm", "A4", "")
		pdf.AddPage()
		pdf.SetMargins(15, 15, 15)
		pdfHeader(pdf, proposal.Title)

		pdf.SetFont("Arial", "", 10)
		pdf.Cell(90, 6, fmt.Sprintf("Prepared for: %s", proposal.ClientName))
		pdf.Cell(90, 6, fmt.Sprintf("Valid until: %s", proposal.ValidUntil.Time.Format("02-Jan-2006")))
		pdf.Ln(10)

		pdf.SetFont("Arial", "", 10)
		for _, paragraph := range strings.Split(proposal.Body, "\n\n") {
			paragraph = strings.TrimSpace(paragraph)
			if paragraph == "" {
				continue
			}
			pdf.MultiCell(180, 5, paragraph, "", "L", false)
			pdf.Ln(3)
		}

		pdf.Ln(5)
		pdfTotalRow(pdf, "Investment", estimate.Breakdown.GrandTotal)

		pdfFooter(pdf)

		c.Header("Content-Type", "application/pdf")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=proposal_%d.pdf", proposal.ID))
		if err := pdf.Output(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate PDF", "details": err.Error()})
			return
		}
	}
}

// GenerateContractPdfHandler godoc
// @Summary      Download a contract as a PDF
// @Tags         contracts
// @Produce      application/pdf
// @Param        id  path  int  true  "Contract ID"
// @Success      200  {file}    file
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/contracts/{id}/pdf [get]
func GenerateContractPdfHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if _, _, err := GetSessionDetails(db, sessionID); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid contract ID"})
			return
		}

		contract, err := scanContract(db.QueryRow(contractSelect+" WHERE ct.id = $1", id))
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Contract not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query contract", "details": err.Error()})
			return
		}

		pdf := gofpdf.New("P", "mm", "A4", "")
		pdf.AddPage()
		pdf.SetMargins(15, 15, 15)
		pdfHeader(pdf, fmt.Sprintf("Construction Agreement %s", contract.ReferenceCode))

		pdf.SetFont("Arial", "", 10)
		pdf.Cell(90, 6, fmt.Sprintf("Client: %s", contract.ClientName))
		pdf.Cell(90, 6, fmt.Sprintf("Project: %s", contract.ProjectName))
		pdf.Ln(6)
		pdf.Cell(90, 6, fmt.Sprintf("Status: %s", titleCaser.String(contract.Status)))
		pdf.Cell(90, 6, fmt.Sprintf("Date: %s", contract.CreatedAt.Format("02-Jan-2006")))
		pdf.Ln(10)

		pdfCostRow(pdf, "Contract value", contract.ContractValue)
		pdfCostRow(pdf, "Deposit due at signing", contract.DepositAmount)
		pdfTotalRow(pdf, "Balance on completion", contract.ContractValue-contract.DepositAmount)
		pdf.Ln(8)

		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(180, 6, "Terms and Conditions")
		pdf.Ln(7)
		pdf.SetFont("Arial", "", 9)
		pdf.MultiCell(180, 5, contract.Terms, "", "L", false)
		pdf.Ln(10)

		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(180, 6, "Signature")
		pdf.Ln(7)
		pdf.SetFont("Arial", "", 10)
		if contract.Status == "signed" {
			pdf.Cell(180, 6, fmt.Sprintf("Signed electronically by %s (%s) on %s",
				contract.SignedByName, contract.SignedByEmail, contract.SignedAt.Format("02-Jan-2006 15:04")))
		} else {
			pdf.Cell(90, 6, "Signed: ____________________________")
			pdf.Cell(90, 6, "Date: ____________________")
		}

		pdfFooter(pdf)

		c.Header("Content-Type", "application/pdf")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=contract_%s.pdf", contract.ReferenceCode))
		if err := pdf.Output(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate PDF", "details": err.Error()})
			return
		}
	}
}
