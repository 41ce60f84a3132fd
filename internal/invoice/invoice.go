package invoice

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"
)

type LineItem struct {
	Name       string
	Quantity   int
	Price      float64
	Notes      string
	SpiceLevel string
}

// Invoice carries everything the rendered document shows. Amounts are taken
// as stored on the order entry, not recomputed here.
type Invoice struct {
	RestaurantName string
	OrderID        string
	CustomerName   string
	CustomerPhone  string
	TableNumber    string
	FloorNumber    string
	Items          []LineItem
	Subtotal       float64
	Tax            float64
	Total          float64
	PaymentMethod  string
	GeneratedAt    time.Time
}

// Filename returns a safe attachment name for the rendered PDF.
func (inv Invoice) Filename() string {
	return fmt.Sprintf("invoice_%s.pdf", sanitizeFilename(inv.OrderID))
}

var filenameRe = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

func sanitizeFilename(value string) string {
	return strings.Trim(filenameRe.ReplaceAllString(value, "_"), "_")
}

func formatAmount(amount float64) string {
	return fmt.Sprintf("Rs %.2f", amount)
}

// Build renders the invoice as a PDF document.
func Build(inv Invoice) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	name := inv.RestaurantName
	if name == "" {
		name = "Digital Menu"
	}
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 8, name, "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 5, fmt.Sprintf("Invoice %s", inv.OrderID), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, inv.GeneratedAt.Format("2006-01-02 15:04"), "", 1, "C", false, 0, "")

	pdf.Ln(2)
	pdf.SetFont("Arial", "", 9)
	if inv.CustomerName != "" {
		pdf.CellFormat(0, 5, fmt.Sprintf("Customer: %s", inv.CustomerName), "", 1, "L", false, 0, "")
	}
	if inv.CustomerPhone != "" {
		pdf.CellFormat(0, 5, fmt.Sprintf("Phone: %s", inv.CustomerPhone), "", 1, "L", false, 0, "")
	}
	if inv.TableNumber != "" && inv.TableNumber != "NA" {
		location := fmt.Sprintf("Table %s", inv.TableNumber)
		if inv.FloorNumber != "" && inv.FloorNumber != "NA" {
			location = fmt.Sprintf("%s, Floor %s", location, inv.FloorNumber)
		}
		pdf.CellFormat(0, 5, location, "", 1, "L", false, 0, "")
	}

	pdf.Ln(3)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, "Items", "B", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	for _, item := range inv.Items {
		lineTotal := item.Price * float64(item.Quantity)
		pdf.CellFormat(120, 5, fmt.Sprintf("%dx %s", item.Quantity, item.Name), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 5, formatAmount(lineTotal), "", 1, "R", false, 0, "")
		if item.SpiceLevel != "" && item.SpiceLevel != "regular" {
			pdf.CellFormat(0, 4, fmt.Sprintf("  Spice: %s", item.SpiceLevel), "", 1, "L", false, 0, "")
		}
		if item.Notes != "" {
			pdf.MultiCell(0, 4, fmt.Sprintf("  Notes: %s", item.Notes), "", "L", false)
		}
	}

	pdf.Ln(2)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, "Totals", "B", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(120, 5, "Subtotal", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 5, formatAmount(inv.Subtotal), "", 1, "R", false, 0, "")
	pdf.CellFormat(120, 5, "Tax (5%)", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 5, formatAmount(inv.Tax), "", 1, "R", false, 0, "")
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(120, 6, "Total", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, formatAmount(inv.Total), "", 1, "R", false, 0, "")

	if inv.PaymentMethod != "" {
		pdf.Ln(2)
		pdf.SetFont("Arial", "", 9)
		pdf.CellFormat(0, 5, fmt.Sprintf("Payment: %s", inv.PaymentMethod), "", 1, "L", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "I", 9)
	pdf.CellFormat(0, 5, "Thank you for dining with us!", "", 1, "C", false, 0, "")

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
