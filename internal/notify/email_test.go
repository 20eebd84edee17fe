package notify

import (
	"context"
	"net/smtp"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karyanastore/storefront/internal/domain/order"
)

type sentMail struct {
	to  []string
	msg string
}

func captureNotifier(sendErr error) (*EmailNotifier, *[]sentMail) {
	var sent []sentMail
	n := NewEmailNotifier(SMTPConfig{Addr: "localhost:25", From: "store@example.com"})
	n.send = func(_ string, _ smtp.Auth, _ string, to []string, msg []byte) error {
		sent = append(sent, sentMail{to: to, msg: string(msg)})
		return sendErr
	}
	return n, &sent
}

func testOrder(status order.Status, email string) *order.Order {
	return &order.Order{
		ID:       "3f2a9c1e-aaaa-bbbb-cccc-000000000000",
		Customer: order.Customer{Name: "Asha", Email: email},
		Status:   status,
		Total:    decimal.NewFromInt(74),
	}
}

func TestOrderStatusChanged_SendsEmail(t *testing.T) {
	n, sent := captureNotifier(nil)

	err := n.OrderStatusChanged(context.Background(), testOrder(order.StatusDelivered, "asha@example.com"), "")
	require.NoError(t, err)

	require.Len(t, *sent, 1)
	assert.Equal(t, []string{"asha@example.com"}, (*sent)[0].to)
	assert.Contains(t, (*sent)[0].msg, "Delivered")
	assert.Contains(t, (*sent)[0].msg, "74.00")
}

func TestOrderStatusChanged_CancellationIncludesReason(t *testing.T) {
	n, sent := captureNotifier(nil)

	err := n.OrderStatusChanged(context.Background(), testOrder(order.StatusCancelled, "asha@example.com"), "out of stock")
	require.NoError(t, err)

	require.Len(t, *sent, 1)
	assert.Contains(t, (*sent)[0].msg, "Reason: out of stock")
}

func TestOrderStatusChanged_NoEmailSkips(t *testing.T) {
	n, sent := captureNotifier(nil)

	err := n.OrderStatusChanged(context.Background(), testOrder(order.StatusProcessing, ""), "")
	require.NoError(t, err)
	assert.Empty(t, *sent)
}

func TestOrderStatusChanged_SendFailure(t *testing.T) {
	n, _ := captureNotifier(errors.New("connection refused"))

	err := n.OrderStatusChanged(context.Background(), testOrder(order.StatusProcessing, "asha@example.com"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "send status email")
}
