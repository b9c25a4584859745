package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"grocery-backend/internal/models"
)

func TestWriteOrders(t *testing.T) {
	userID := primitive.NewObjectID()
	orders := []models.Order{
		{
			Ref:           "ORD-20240501-ABCDEF123456",
			UserID:        userID,
			Status:        models.OrderStatusProcessing,
			PaymentStatus: models.PaymentStatusPending,
			PaymentType:   models.PaymentTypeCash,
			Amount:        89.7,
			Items: []models.OrderItem{
				{Name: "milk", Quantity: 3},
				{Name: "bread", Quantity: 2},
			},
			DeliveryAddress: models.AddressSnapshot{City: "İzmir"},
			CreatedAt:       time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
		},
		{Ref: "ORD-20240502-000000000001", UserID: userID, Status: models.OrderStatusCancelled},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteOrders(&buf, orders))

	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	sheet, ok := file.Sheet[OrdersSheet]
	require.True(t, ok)
	require.Len(t, sheet.Rows, 3)

	values := func(row *xlsx.Row) []string {
		out := make([]string, 0, len(row.Cells))
		for _, c := range row.Cells {
			out = append(out, c.Value)
		}
		return out
	}

	assert.Equal(t, orderHeaders, values(sheet.Rows[0]))
	assert.Equal(t, []string{
		"ORD-20240501-ABCDEF123456", "2024-05-01 09:30:00", userID.Hex(),
		"processing", "pending", "cash", "89.7", "5", "İzmir",
	}, values(sheet.Rows[1]))
	assert.Equal(t, "0", sheet.Rows[2].Cells[7].Value)
}

func TestWriteOrdersEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteOrders(&buf, nil))

	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)
	assert.Len(t, file.Sheets[0].Rows, 1)
}
