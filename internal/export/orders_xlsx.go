// Package export renders order lists as spreadsheets for the seller
// dashboard.
package export

import (
	"fmt"
	"io"

	"github.com/tealeg/xlsx"

	"grocery-backend/internal/models"
)

const (
	OrdersSheet = "Orders"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	timeLayout = "2006-01-02 15:04:05"
)

var orderHeaders = []string{
	"Ref", "Created", "Customer ID", "Status", "Payment Status",
	"Payment Type", "Amount", "Items", "City",
}

// OrdersWorkbook builds a single-sheet workbook, one row per order after the
// header row.
func OrdersWorkbook(orders []models.Order) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(OrdersSheet)
	if err != nil {
		return nil, fmt.Errorf("add sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range orderHeaders {
		header.AddCell().SetString(h)
	}

	for _, o := range orders {
		row := sheet.AddRow()
		row.AddCell().SetString(o.Ref)
		row.AddCell().SetString(o.CreatedAt.Format(timeLayout))
		row.AddCell().SetString(o.UserID.Hex())
		row.AddCell().SetString(string(o.Status))
		row.AddCell().SetString(string(o.PaymentStatus))
		row.AddCell().SetString(string(o.PaymentType))
		row.AddCell().SetFloat(o.Amount)
		row.AddCell().SetInt(itemCount(o.Items))
		row.AddCell().SetString(o.DeliveryAddress.City)
	}
	return file, nil
}

// WriteOrders streams the workbook to w.
func WriteOrders(w io.Writer, orders []models.Order) error {
	file, err := OrdersWorkbook(orders)
	if err != nil {
		return err
	}
	return file.Write(w)
}

func itemCount(items []models.OrderItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}
