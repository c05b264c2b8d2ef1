package handlers

import (
	"backend/models"
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// CreateInventoryItemHandler godoc
// @Summary      Add an inventory item
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        item  body      models.InventoryItem  true  "Item"
// @Success      201   {object}  models.InventoryItem
// @Failure      400   {object}  models.ErrorResponse
// @Failure      409   {object}  models.ErrorResponse
// @Router       /api/inventory [post]
func CreateInventoryItemHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		var item models.InventoryItem
		if err := c.ShouldBindJSON(&item); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}
		item.SKU = strings.ToUpper(strings.TrimSpace(item.SKU))
		if item.SKU == "" || item.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "SKU and name are required"})
			return
		}
		if item.QuantityOn < 0 || item.ReorderLevel < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Quantities cannot be negative"})
			return
		}

		var exists bool
		if err := db.QueryRow(`SELECT EXISTS(SELECT 1 FROM inventory_items WHERE sku = $1)`, item.SKU).Scan(&exists); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check SKU", "details": err.Error()})
			return
		}
		if exists {
			c.JSON(http.StatusConflict, gin.H{"error": "An item with this SKU already exists"})
			return
		}

		var vendorID interface{}
		if item.VendorID != 0 {
			vendorID = item.VendorID
		}

		err = db.QueryRow(`
			INSERT INTO inventory_items (sku, name, category, unit, quantity_on_hand, reorder_level,
			                             unit_cost, vendor_id, location, notes, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
			RETURNING id, created_at, updated_at`,
			item.SKU, item.Name, item.Category, item.Unit, item.QuantityOn, item.ReorderLevel,
			item.UnitCost, vendorID, item.Location, item.Notes,
		).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create item", "details": err.Error()})
			return
		}

		// Opening stock shows up in the audit trail like any other movement.
		if item.QuantityOn > 0 {
			if _, err := db.Exec(`
				INSERT INTO inventory_adjustments (item_id, delta, reason, notes, created_at, created_by)
				VALUES ($1, $2, 'received', 'Opening stock', NOW(), $3)`,
				item.ID, item.QuantityOn, userName,
			); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record opening stock", "details": err.Error()})
				return
			}
		}

		logEntry := models.ActivityLog{
			EventContext: "Inventory",
			EventName:    "Post",
			Description:  fmt.Sprintf("Added inventory item %s", item.SKU),
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
		}
		if logErr := SaveActivityLog(db, logEntry); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}

		c.JSON(http.StatusCreated, item)
	}
}

const inventorySelect = `
	SELECT it.id, it.sku, it.name, COALESCE(it.category, ''), COALESCE(it.unit, ''),
	       it.quantity_on_hand, it.reorder_level, it.unit_cost, COALESCE(it.vendor_id, 0),
	       COALESCE(it.location, ''), COALESCE(it.notes, ''), it.created_at, it.updated_at,
	       COALESCE(v.name, ''), it.quantity_on_hand <= it.reorder_level
	FROM inventory_items it
	LEFT JOIN vendors v ON v.id = it.vendor_id`

func scanInventoryItem(row interface {
	Scan(dest ...interface{}) error
}) (models.InventoryItem, error) {
	var it models.InventoryItem
	err := row.Scan(
		&it.ID, &it.SKU, &it.Name, &it.Category, &it.Unit,
		&it.QuantityOn, &it.ReorderLevel, &it.UnitCost, &it.VendorID,
		&it.Location, &it.Notes, &it.CreatedAt, &it.UpdatedAt,
		&it.VendorName, &it.BelowReorder,
	)
	return it, err
}

// GetInventoryHandler godoc
// @Summary      List inventory items
// @Tags         inventory
// @Produce      json
// @Param        search     query  string  false  "Search SKU or name"
// @Param        category   query  string  false  "Filter by category"
// @Param        low_stock  query  bool    false  "Only items at or below reorder level"
// @Success      200  {array}   models.InventoryItem
// @Failure      401  {object}  models.ErrorResponse
// @Router       /api/inventory [get]
func GetInventoryHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if _, _, err := GetSessionDetails(db, sessionID); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		where := " WHERE 1=1"
		args := []interface{}{}
		argPos := 1

		if search := c.Query("search"); search != "" {
			where += fmt.Sprintf(" AND (it.sku ILIKE $%d OR it.name ILIKE $%d)", argPos, argPos)
			args = append(args, "%"+search+"%")
			argPos++
		}
		if category := c.Query("category"); category != "" {
			where += fmt.Sprintf(" AND it.category = $%d", argPos)
			args = append(args, category)
			argPos++
		}
		if c.Query("low_stock") == "true" {
			where += " AND it.quantity_on_hand <= it.reorder_level"
		}

		rows, err := db.Query(inventorySelect+where+" ORDER BY it.name", args...)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query inventory", "details": err.Error()})
			return
		}
		defer rows.Close()

		var items []models.InventoryItem
		for rows.Next() {
			it, scanErr := scanInventoryItem(rows)
			if scanErr != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan item", "details": scanErr.Error()})
				return
			}
			items = append(items, it)
		}

		c.JSON(http.StatusOK, items)
	}
}

// GetInventoryItemHandler godoc
// @Summary      Get one inventory item
// @Tags         inventory
// @Produce      json
// @Param        id  path  int  true  "Item ID"
// @Success      200  {object}  models.InventoryItem
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/inventory/{id} [get]
func GetInventoryItemHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if _, _, err := GetSessionDetails(db, sessionID); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
			return
		}

		item, err := scanInventoryItem(db.QueryRow(inventorySelect+" WHERE it.id = $1", id))
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query item", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, item)
	}
}

// UpdateInventoryItemHandler godoc
// @Summary      Update an inventory item's details
// @Description  Quantity on hand is not editable here; it only moves
// @Description  through adjustments so the audit trail stays complete.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        id    path      int                   true  "Item ID"
// @Param        item  body      models.InventoryItem  true  "Item"
// @Success      200   {object}  models.InventoryItem
// @Failure      404   {object}  models.ErrorResponse
// @Router       /api/inventory/{id} [put]
func UpdateInventoryItemHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
			return
		}

		var item models.InventoryItem
		if err := c.ShouldBindJSON(&item); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}
		if item.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Item name is required"})
			return
		}
		if item.ReorderLevel < 0 || item.UnitCost < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Values cannot be negative"})
			return
		}

		var vendorID interface{}
		if item.VendorID != 0 {
			vendorID = item.VendorID
		}

		result, err := db.Exec(`
			UPDATE inventory_items
			SET name = $1, category = $2, unit = $3, reorder_level = $4, unit_cost = $5,
			    vendor_id = $6, location = $7, notes = $8, updated_at = NOW()
			WHERE id = $9`,
			item.Name, item.Category, item.Unit, item.ReorderLevel, item.UnitCost,
			vendorID, item.Location, item.Notes, id,
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update item", "details": err.Error()})
			return
		}
		if n, _ := result.RowsAffected(); n == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
			return
		}

		updated, err := scanInventoryItem(db.QueryRow(inventorySelect+" WHERE it.id = $1", id))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reload item", "details": err.Error()})
			return
		}

		logEntry := models.ActivityLog{
			EventContext: "Inventory",
			EventName:    "Put",
			Description:  fmt.Sprintf("Updated inventory item %s", updated.SKU),
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
		}
		if logErr := SaveActivityLog(db, logEntry); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}

		c.JSON(http.StatusOK, updated)
	}
}

// AdjustInventoryHandler godoc
// @Summary      Record a stock movement
// @Description  Applies the delta to quantity on hand and writes the
// @Description  adjustment row in one transaction. Stock can never go
// @Description  negative.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        id          path      int                        true  "Item ID"
// @Param        adjustment  body      models.InventoryAdjustment true  "Adjustment"
// @Success      200         {object}  object
// @Failure      400         {object}  models.ErrorResponse
// @Failure      404         {object}  models.ErrorResponse
// @Failure      409         {object}  models.ErrorResponse
// @Router       /api/inventory/{id}/adjust [post]
func AdjustInventoryHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
			return
		}

		var adj models.InventoryAdjustment
		if err := c.ShouldBindJSON(&adj); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}
		if adj.Delta == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Delta cannot be zero"})
			return
		}
		if !models.ValidAdjustmentReason(adj.Reason) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reason", "details": adj.Reason})
			return
		}
		adj.ItemID = id

		tx, err := db.Begin()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction", "details": err.Error()})
			return
		}
		defer tx.Rollback()

		var sku string
		var newQuantity float64
		err = tx.QueryRow(`
			UPDATE inventory_items
			SET quantity_on_hand = quantity_on_hand + $1, updated_at = NOW()
			WHERE id = $2
			RETURNING sku, quantity_on_hand`, adj.Delta, id,
		).Scan(&sku, &newQuantity)
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to apply adjustment", "details": err.Error()})
			return
		}
		if newQuantity < 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "Adjustment would take stock below zero"})
			return
		}

		var projectID interface{}
		if adj.ProjectID != 0 {
			projectID = adj.ProjectID
		}
		if err := tx.QueryRow(`
			INSERT INTO inventory_adjustments (item_id, delta, reason, project_id, notes, created_at, created_by)
			VALUES ($1, $2, $3, $4, $5, NOW(), $6)
			RETURNING id, created_at`,
			id, adj.Delta, adj.Reason, projectID, adj.Notes, userName,
		).Scan(&adj.ID, &adj.CreatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record adjustment", "details": err.Error()})
			return
		}
		adj.CreatedBy = userName

		if err := tx.Commit(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit", "details": err.Error()})
			return
		}

		logEntry := models.ActivityLog{
			EventContext: "Inventory",
			EventName:    "Post",
			Description:  fmt.Sprintf("Adjusted %s by %g (%s)", sku, adj.Delta, adj.Reason),
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			ProjectID:    adj.ProjectID,
			CreatedAt:    time.Now(),
		}
		if logErr := SaveActivityLog(db, logEntry); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log activity", "details": logErr.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"adjustment": adj, "quantity_on_hand": newQuantity})
	}
}

// GetInventoryAdjustmentsHandler godoc
// @Summary      List an item's stock movements, newest first
// @Tags         inventory
// @Produce      json
// @Param        id  path  int  true  "Item ID"
// @Success      200  {array}   models.InventoryAdjustment
// @Failure      401  {object}  models.ErrorResponse
// @Router       /api/inventory/{id}/adjustments [get]
func GetInventoryAdjustmentsHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if _, _, err := GetSessionDetails(db, sessionID); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
			return
		}

		rows, err := db.Query(`
			SELECT id, item_id, delta, reason, COALESCE(project_id, 0), COALESCE(notes, ''),
			       created_at, COALESCE(created_by, '')
			FROM inventory_adjustments
			WHERE item_id = $1
			ORDER BY created_at DESC`, id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query adjustments", "details": err.Error()})
			return
		}
		defer rows.Close()

		var adjustments []models.InventoryAdjustment
		for rows.Next() {
			var adj models.InventoryAdjustment
			if err := rows.Scan(
				&adj.ID, &adj.ItemID, &adj.Delta, &adj.Reason, &adj.ProjectID, &adj.Notes,
				&adj.CreatedAt, &adj.CreatedBy,
			); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan adjustment", "details": err.Error()})
				return
			}
			adjustments = append(adjustments, adj)
		}

		c.JSON(http.StatusOK, adjustments)
	}
}
