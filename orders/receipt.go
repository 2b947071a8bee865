package orders

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"slices"
	"time"

	"plateful/db"
	"plateful/globals"
	"plateful/models"
	"plateful/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
	"go.mongodb.org/mongo-driver/bson"
)

// GetReceipt renders an order receipt as a PDF with a collection QR code.
// The QR encodes the order id so kitchen staff can scan it at handover.
func GetReceipt(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	orderID := ps.ByName("orderid")
	userID := utils.GetUserIDFromRequest(r)
	role, _ := r.Context().Value(globals.RoleKey).([]string)
	isAdmin := slices.Contains(role, "admin")

	var order models.Order
	if err := db.OrdersCollection.FindOne(ctx, bson.M{"orderId": orderID}).Decode(&order); err != nil {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}
	if order.UserID != userID && !isAdmin {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Order Receipt")
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 8, fmt.Sprintf("Order: %s", order.OrderID))
	pdf.Ln(6)
	pdf.Cell(0, 8, fmt.Sprintf("Customer: %s", order.CustomerName))
	pdf.Ln(6)
	pdf.Cell(0, 8, fmt.Sprintf("Collection date: %s", order.CollectionDate))
	pdf.Ln(6)
	pdf.Cell(0, 8, fmt.Sprintf("Status: %s", order.Status))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Items")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	for _, line := range order.Items {
		pdf.Cell(0, 6, fmt.Sprintf("%d x %s  @ %.2f  =  %.2f",
			line.Quantity, line.MealName, line.Price, line.Price*float64(line.Quantity)))
		pdf.Ln(6)
	}

	pdf.Ln(4)
	if order.Discount > 0 {
		pdf.Cell(0, 6, fmt.Sprintf("Discount (%s): -%.2f", order.CouponCode, order.Discount))
		pdf.Ln(6)
	}
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 8, fmt.Sprintf("Total: %.2f", order.Total))
	pdf.Ln(12)

	png, err := qrcode.Encode(order.OrderID, qrcode.Medium, 256)
	if err == nil {
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("collection-qr", opts, bytes.NewReader(png))
		pdf.ImageOptions("collection-qr", 10, pdf.GetY(), 40, 40, false, opts, 0, "")
		pdf.SetY(pdf.GetY() + 42)
		pdf.SetFont("Arial", "I", 9)
		pdf.Cell(0, 6, "Show this code when collecting your order.")
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=receipt-%s.pdf", order.OrderID))
	if err := pdf.Output(w); err != nil {
		http.Error(w, "Failed to generate PDF", http.StatusInternalServerError)
	}
}
