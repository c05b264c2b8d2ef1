package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/inconsolata"
	"golang.org/x/image/math/fixed"
)

// addLabel draws text onto the label image at the given position.
func addLabel(img *image.RGBA, x, y int, label string) {
	col := color.RGBA{0, 0, 0, 255}
	point := fixed.Point26_6{
		X: fixed.Int26_6(x * 64),
		Y: fixed.Int26_6(y * 64),
	}

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: inconsolata.Regular8x16,
		Dot:  point,
	}
	d.DrawString(label)
}

// addLabelBold draws the field names slightly darker and bold.
func addLabelBold(img *image.RGBA, x, y int, label string) {
	col := color.RGBA{30, 30, 30, 255}
	point := fixed.Point26_6{
		X: fixed.Int26_6(x * 64),
		Y: fixed.Int26_6(y * 64),
	}

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: inconsolata.Bold8x16,
		Dot:  point,
	}
	d.DrawString(label)
}

func truncateLabel(s string, max int) string {
	if len(s) > max {
		return s[:max-3] + "..."
	}
	return s
}

// GenerateInventoryLabelHandler godoc
// @Summary      Generate a printable shelf label for an inventory item
// @Description  Returns a JPEG with a QR code encoding the item id and SKU
// @Description  plus the human readable item details underneath. Scanning
// @Description  the code from the field pulls up the item for adjustment.
// @Tags         inventory
// @Produce      jpeg
// @Param        id  path  int  true  "Item ID"
// @Success      200  {file}    file  "JPEG label"
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/inventory/{id}/label [get]
func GenerateInventoryLabelHandler(db *sql.DB) gin.HandlerFunc {
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

		var sku, name, unit, location string
		var quantity float64
		err = db.QueryRow(`
			SELECT sku, name, unit, COALESCE(location, ''), quantity_on_hand
			FROM inventory_items WHERE id = $1`, id,
		).Scan(&sku, &name, &unit, &location, &quantity)
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query item", "details": err.Error()})
			return
		}

		qrData := struct {
			ID  int    `json:"id"`
			SKU string `json:"sku"`
		}{ID: id, SKU: sku}
		jsonData, err := json.Marshal(qrData)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to marshal item data"})
			return
		}

		qr, err := qrcode.New(string(jsonData), qrcode.Medium)
		if err != nil {
			c.String(http.StatusInternalServerError, "QR code generation failed")
			return
		}
		qrImg := qr.Image(512)

		qrSize := qrImg.Bounds().Dy()
		padding := 30
		lineHeight := 28
		textAreaHeight := 4*lineHeight + padding
		totalHeight := qrSize + padding + textAreaHeight

		combinedImg := image.NewRGBA(image.Rect(0, 0, qrSize, totalHeight))
		draw.Draw(combinedImg, combinedImg.Bounds(), &image.Uniform{color.White}, image.Point{}, draw.Src)

		qrRect := image.Rect(0, 0, qrSize, qrSize)
		draw.Draw(combinedImg, qrRect, qrImg, image.Point{}, draw.Src)

		separatorY := qrSize + padding/2
		for x := 0; x < qrSize; x++ {
			combinedImg.Set(x, separatorY, color.RGBA{200, 200, 200, 255})
		}

		startY := qrSize + padding + lineHeight
		xPos := 20

		addLabelBold(combinedImg, xPos, startY, "SKU:")
		addLabel(combinedImg, xPos+120, startY, sku)

		addLabelBold(combinedImg, xPos, startY+lineHeight, "Item:")
		addLabel(combinedImg, xPos+120, startY+lineHeight, truncateLabel(name, 35))

		addLabelBold(combinedImg, xPos, startY+2*lineHeight, "Location:")
		addLabel(combinedImg, xPos+120, startY+2*lineHeight, truncateLabel(location, 35))

		addLabelBold(combinedImg, xPos, startY+3*lineHeight, "On hand:")
		addLabel(combinedImg, xPos+120, startY+3*lineHeight, fmt.Sprintf("%g %s", quantity, unit))

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, combinedImg, nil); err != nil {
			c.String(http.StatusInternalServerError, "JPEG encoding failed")
			return
		}

		c.Data(http.StatusOK, "image/jpeg", buf.Bytes())
	}
}
