package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rajkumar-hr-ps/webhook-poc/internal/domain"
	"github.com/rajkumar-hr-ps/webhook-poc/internal/service"
)

// Status is a pointer so that only an absent field fails binding. Any
// present value, empty included, is logged and left to the transition check.
type webhookRequest struct {
	PaymentID      recordID `json:"payment_id" binding:"required"`
	Status         *string  `json:"status" binding:"required"`
	Amount         *float64 `json:"amount" binding:"required"`
	WebhookEventID string   `json:"webhook_event_id" binding:"required"`
}

// recordID accepts an id sent either as a JSON string or as a JSON number.
type recordID string

func (id *recordID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = recordID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %s", data)
	}
	*id = recordID(n.String())
	return nil
}

type seedRequest struct {
	Orders   []domain.Order   `json:"orders"`
	Payments []domain.Payment `json:"payments"`
	Tickets  []domain.Ticket  `json:"tickets"`
}

func (s *Server) WebhookHandler(c *gin.Context) {
	var req webhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook payload: " + err.Error()})
		return
	}

	result, err := s.webhooks.ProcessWebhook(c.Request.Context(), domain.WebhookEvent{
		PaymentID:      string(req.PaymentID),
		Status:         domain.PaymentStatus(*req.Status),
		Amount:         *req.Amount,
		WebhookEventID: req.WebhookEventID,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) GetOrderHandler(c *gin.Context) {
	order, err := s.records.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) GetPaymentHandler(c *gin.Context) {
	payment, err := s.records.GetPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

func (s *Server) ListTicketsHandler(c *gin.Context) {
	tickets, err := s.records.ListTickets(c.Request.Context(), c.Query("order_id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tickets)
}

func (s *Server) ListWebhookLogsHandler(c *gin.Context) {
	logs, err := s.records.ListWebhookLogs(c.Request.Context(), c.Query("webhook_event_id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

func (s *Server) SeedHandler(c *gin.Context) {
	var req seedRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid seed payload: " + err.Error()})
		return
	}

	out, err := s.records.Seed(c.Request.Context(), service.SeedInput{
		Orders:   req.Orders,
		Payments: req.Payments,
		Tickets:  req.Tickets,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	// only echo the collections that were sent
	body := gin.H{}
	if req.Orders != nil {
		body["orders"] = out.Orders
	}
	if req.Payments != nil {
		body["payments"] = out.Payments
	}
	if req.Tickets != nil {
		body["tickets"] = out.Tickets
	}
	c.JSON(http.StatusCreated, body)
}

func (s *Server) ResetHandler(c *gin.Context) {
	if err := s.records.Reset(c.Request.Context()); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "reset complete"})
}

func (s *Server) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.records.Health(c.Request.Context()))
}

func (s *Server) APIDocsHandler(c *gin.Context) {
	if s.docs == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, s.docs)
}
