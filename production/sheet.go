package production

import (
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
)

// PrintSheet renders the current summary as a printable kitchen production
// sheet: the per-meal prep list followed by the shopping-style ingredient
// list with its meal breakdown.
func (h *Handler) PrintSheet(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	summary := h.Runner.Snapshot()
	if summary.Date == "" {
		http.Error(w, "No production run available", http.StatusNotFound)
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Kitchen Production Sheet")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 8, fmt.Sprintf("Collection date: %s", summary.Date))
	pdf.Ln(6)
	pdf.Cell(0, 8, fmt.Sprintf("Meals to prepare: %d (%d dishes)", summary.TotalMeals, summary.DistinctMeals))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Meals")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	for _, item := range summary.MealLineItems {
		pdf.Cell(0, 6, fmt.Sprintf("%d x %s (%d orders)", item.TotalQuantity, item.MealName, len(item.Orders)))
		pdf.Ln(6)
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Ingredients")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	for _, item := range summary.IngredientLineItems {
		pdf.Cell(0, 6, fmt.Sprintf("%.1f %s  %s", item.TotalQuantity, item.BaseUnit, item.IngredientName))
		pdf.Ln(6)
		pdf.SetFont("Arial", "I", 8)
		for _, b := range item.Breakdown {
			pdf.Cell(0, 5, fmt.Sprintf("    %s: %.1f %s", b.MealName, b.Quantity, item.BaseUnit))
			pdf.Ln(5)
		}
		pdf.SetFont("Arial", "", 10)
	}

	if len(summary.Warnings) > 0 {
		pdf.Ln(6)
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(0, 8, "Warnings")
		pdf.Ln(8)
		pdf.SetFont("Arial", "", 9)
		for _, warn := range summary.Warnings {
			pdf.MultiCell(0, 5, warn, "", "L", false)
		}
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=production-%s.pdf", summary.Date))
	if err := pdf.Output(w); err != nil {
		http.Error(w, "Failed to generate PDF", http.StatusInternalServerError)
	}
}
