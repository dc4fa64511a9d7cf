package domain

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderCancelled OrderStatus = "cancelled"
)

// OrderPaymentStatus mirrors the payment outcome on the order itself.
type OrderPaymentStatus string

const (
	OrderPaymentPending    OrderPaymentStatus = "pending"
	OrderPaymentProcessing OrderPaymentStatus = "processing"
	OrderPaymentPaid       OrderPaymentStatus = "paid"
	OrderPaymentFailed     OrderPaymentStatus = "failed"
)

type Order struct {
	ID            string             `json:"id"`
	TotalAmount   float64            `json:"total_amount"`
	Status        OrderStatus        `json:"status"`
	PaymentStatus OrderPaymentStatus `json:"payment_status"`
}
