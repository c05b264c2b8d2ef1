package handlers

import (
	"backend/models"
	"backend/repository"
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// GetPricingItemsHandler godoc
// @Summary      List pricing catalog items
// @Tags         pricing
// @Produce      json
// @Param        category  query  string  false  "materials, equipment or services"
// @Success      200  {array}   models.PricingItem
// @Failure      401  {object}  models.ErrorResponse
// @Router       /api/pricing [get]
func GetPricingItemsHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if _, _, err := GetSessionDetails(db, sessionID); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		category := c.Query("category")
		if category != "" && !models.ValidPricingCategory(category) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category", "details": category})
			return
		}

		items, err := repository.LoadPricingItems(db)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load pricing catalog", "details": err.Error()})
			return
		}
		if category != "" {
			filtered := items[:0]
			for _, item := range items {
				if item.Category == category {
					filtered = append(filtered, item)
				}
			}
			items = filtered
		}

		c.JSON(http.StatusOK, items)
	}
}

// GetPricingConfigurationHandler godoc
// @Summary      Get the catalog folded into the estimate engine's configuration
// @Tags         pricing
// @Produce      json
// @Success      200  {object}  pricing.PricingConfiguration
// @Failure      401  {object}  models.ErrorResponse
// @Router       /api/pricing/configuration [get]
func GetPricingConfigurationHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if _, _, err := GetSessionDetails(db, sessionID); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		config, err := repository.LoadPricingConfiguration(db)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load pricing configuration", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, config)
	}
}

func upsertPricingItem(db *sql.DB, item models.PricingItem, userName string) (models.PricingItem, error) {
	err := db.QueryRow(`
		INSERT INTO pricing_items (category, name, value, unit, description, updated_at, updated_by)
		VALUES ($1, $2, $3, $4, $5, NOW(), $6)
		ON CONFLICT (category, name) DO UPDATE
		SET value = EXCLUDED.value,
		    unit = COALESCE(NULLIF(EXCLUDED.unit, ''), pricing_items.unit),
		    description = COALESCE(NULLIF(EXCLUDED.description, ''), pricing_items.description),
		    updated_at = NOW(), updated_by = EXCLUDED.updated_by
		RETURNING id, updated_at`,
		item.Category, item.Name, item.Value, item.Unit, item.Description, userName,
	).Scan(&item.ID, &item.UpdatedAt)
	item.UpdatedBy = userName
	return item, err
}

// UpsertPricingItemHandler godoc
// @Summary      Create or update a pricing catalog item
// @Tags         pricing
// @Accept       json
// @Produce      json
// @Param        item  body      models.PricingItem  true  "Pricing item"
// @Success      200   {object}  models.PricingItem
// @Failure      400   {object}  models.ErrorResponse
// @Failure      401   {object}  models.ErrorResponse
// @Router       /api/pricing [post]
func UpsertPricingItemHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		var item models.PricingItem
		if err := c.ShouldBindJSON(&item); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}
		if !models.ValidPricingCategory(item.Category) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category", "details": item.Category})
			return
		}
		if item.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Item name is required"})
			return
		}
		if item.Value < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Value cannot be negative"})
			return
		}

		item, err = upsertPricingItem(db, item, userName)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save pricing item", "details": err.Error()})
			return
		}

		log := models.ActivityLog{
			EventContext: "Pricing",
			EventName:    "Post",
			Description:  fmt.Sprintf("Set %s/%s to %.2f", item.Category, item.Name, item.Value),
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
		}
		if logErr := SaveActivityLog(db, log); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}

		c.JSON(http.StatusOK, item)
	}
}

var pricingSheetHeader = []string{"Category", "Name", "Value", "Unit", "Description"}

// ExportPricingHandler godoc
// @Summary      Download the pricing catalog as an Excel workbook
// @Tags         pricing
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200
// @Failure      401  {object}  models.ErrorResponse
// @Router       /api/pricing/export [get]
func ExportPricingHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if _, _, err := GetSessionDetails(db, sessionID); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		items, err := repository.LoadPricingItems(db)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load pricing catalog", "details": err.Error()})
			return
		}

		f := excelize.NewFile()
		defer func() {
			if err := f.Close(); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error closing Excel file"})
			}
		}()

		sheet := "Pricing"
		index, err := f.NewSheet(sheet)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating sheet"})
			return
		}
		f.SetActiveSheet(index)
		f.DeleteSheet("Sheet1")

		for col, name := range pricingSheetHeader {
			cell, _ := excelize.CoordinatesToCellName(col+1, 1)
			f.SetCellValue(sheet, cell, name)
		}
		for row, item := range items {
			values := []interface{}{item.Category, item.Name, item.Value, item.Unit, item.Description}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
				f.SetCellValue(sheet, cell, v)
			}
		}
		f.SetColWidth(sheet, "A", "B", 28)
		f.SetColWidth(sheet, "E", "E", 48)

		filename := fmt.Sprintf("pricing_catalog_%s.xlsx", time.Now().Format("2006-01-02"))
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))

		if err := f.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error writing Excel file"})
			return
		}
	}
}

// ImportPricingHandler godoc
// @Summary      Upload an Excel workbook of pricing items
// @Description  Expects the same layout the export produces. Rows with an
// @Description  unknown category or a non numeric value are skipped and
// @Description  reported back.
// @Tags         pricing
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Workbook"
// @Success      200   {object}  object
// @Failure      400   {object}  models.ErrorResponse
// @Failure      401   {object}  models.ErrorResponse
// @Router       /api/pricing/import [post]
func ImportPricingHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		file, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file not found"})
			return
		}
		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to open file"})
			return
		}
		defer src.Close()

		f, err := excelize.OpenReader(src)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "File is not a readable Excel workbook", "details": err.Error()})
			return
		}
		defer f.Close()

		sheet := "Pricing"
		rows, err := f.GetRows(sheet)
		if err != nil {
			// Fall back to whatever the first sheet is called.
			sheet = f.GetSheetName(0)
			rows, err = f.GetRows(sheet)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Workbook has no readable sheet", "details": err.Error()})
				return
			}
		}
		if len(rows) < 2 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Workbook has no data rows"})
			return
		}

		imported := 0
		var skipped []string
		for i, row := range rows[1:] {
			rowNo := i + 2
			if len(row) < 3 {
				skipped = append(skipped, fmt.Sprintf("row %d: too few columns", rowNo))
				continue
			}
			item := models.PricingItem{Category: row[0], Name: row[1]}
			if len(row) > 3 {
				item.Unit = row[3]
			}
			if len(row) > 4 {
				item.Description = row[4]
			}
			if !models.ValidPricingCategory(item.Category) {
				skipped = append(skipped, fmt.Sprintf("row %d: unknown category %q", rowNo, item.Category))
				continue
			}
			if item.Name == "" {
				skipped = append(skipped, fmt.Sprintf("row %d: missing name", rowNo))
				continue
			}
			value, convErr := strconv.ParseFloat(row[2], 64)
			if convErr != nil || value < 0 {
				skipped = append(skipped, fmt.Sprintf("row %d: bad value %q", rowNo, row[2]))
				continue
			}
			item.Value = value

			if _, upErr := upsertPricingItem(db, item, userName); upErr != nil {
				skipped = append(skipped, fmt.Sprintf("row %d: %v", rowNo, upErr))
				continue
			}
			imported++
		}

		log := models.ActivityLog{
			EventContext: "Pricing",
			EventName:    "Post",
			Description:  fmt.Sprintf("Imported %d pricing items from %s", imported, file.Filename),
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
		}
		if logErr := SaveActivityLog(db, log); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"imported": imported, "skipped": skipped})
	}
}
