package http

import (
	"encoding/json"

	"smartdues/internal/core"
)

// decimalAmount accepts a JSON number or a quoted decimal string, so both
// {"amount": 12.34} and {"amount": "12.34"} parse.
type decimalAmount string

func (d *decimalAmount) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*d = decimalAmount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*d = decimalAmount(n.String())
	return nil
}

// createBillRequest is the POST /bills payload. Dates use the ISO form
// "2006-01-02"; reminder days are comma separated ("7,3,1").
type createBillRequest struct {
	Title        string        `json:"title"`
	Amount       decimalAmount `json:"amount"`
	DueDate      string        `json:"due_date"`
	Repeat       string        `json:"repeat"`
	ReminderDays string        `json:"reminder_days"`
	Notes        string        `json:"notes"`
	Type         string        `json:"type"`
}

type billResponse struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Amount       string `json:"amount"`
	DueDate      string `json:"due_date"`
	IsPaid       bool   `json:"is_paid"`
	Status       string `json:"status"`
	Repeat       string `json:"repeat"`
	ReminderDays string `json:"reminder_days"`
	Notes        string `json:"notes,omitempty"`
	Type         string `json:"type,omitempty"`
}

type markPaidResponse struct {
	Paid billResponse  `json:"paid"`
	Next *billResponse `json:"next,omitempty"`
}

type dashboardResponse struct {
	TotalMonthUnpaid  string         `json:"total_month_unpaid"`
	UpcomingNext7Days []billResponse `json:"upcoming_next_7_days"`
	OverdueCount      int            `json:"overdue_count"`
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

type paymentResponse struct {
	ID     string `json:"id"`
	BillID string `json:"bill_id"`
	Amount string `json:"amount"`
	PaidOn string `json:"paid_on"`
}

func toBillResponse(b core.Bill, now core.Date) billResponse {
	return billResponse{
		ID:           b.ID,
		Title:        b.Title,
		Amount:       b.Amount.String(),
		DueDate:      b.DueDate.String(),
		IsPaid:       b.IsPaid,
		Status:       string(core.Classify(b, now)),
		Repeat:       string(b.Repeat),
		ReminderDays: b.ReminderDays.String(),
		Notes:        b.Notes,
		Type:         b.Type,
	}
}

func toBillResponses(bills []core.Bill, now core.Date) []billResponse {
	out := make([]billResponse, len(bills))
	for i, b := range bills {
		out[i] = toBillResponse(b, now)
	}
	return out
}
