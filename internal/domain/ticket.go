package domain

type TicketStatus string

const (
	TicketHeld      TicketStatus = "held"
	TicketConfirmed TicketStatus = "confirmed"
	TicketCancelled TicketStatus = "cancelled"
)

type Ticket struct {
	ID        string       `json:"id"`
	OrderID   string       `json:"order_id"`
	Status    TicketStatus `json:"status"`
	UnitPrice float64      `json:"unit_price"`
}
