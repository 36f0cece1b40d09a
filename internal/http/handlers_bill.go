package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"smartdues/internal/core"
	"smartdues/internal/middleware/authn"
)

func (s *Server) handleCreateBill(w http.ResponseWriter, r *http.Request) {
	var req createBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "malformed JSON body")
		return
	}

	cents, err := core.ParseDecimalToCents(string(req.Amount))
	if err != nil {
		writeError(w, r, err)
		return
	}
	dueDate, err := core.ParseDate(req.DueDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	reminderDays, err := core.ParseReminderDays(req.ReminderDays)
	if err != nil {
		writeError(w, r, err)
		return
	}

	bill := core.Bill{
		UserID:       authn.GetUserID(r.Context()),
		Title:        req.Title,
		Amount:       core.Money{Cents: cents},
		DueDate:      dueDate,
		Repeat:       core.RepeatInterval(req.Repeat),
		ReminderDays: reminderDays,
		Notes:        req.Notes,
		Type:         req.Type,
	}

	created, err := s.bills.CreateBill(r.Context(), bill)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toBillResponse(created, s.bills.Today()))
}

func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	bills, err := s.bills.ListBills(r.Context(), authn.GetUserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBillResponses(bills, s.bills.Today()))
}

func (s *Server) handleGetBill(w http.ResponseWriter, r *http.Request) {
	billID := mux.Vars(r)["id"]
	bill, err := s.bills.GetBill(r.Context(), authn.GetUserID(r.Context()), billID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBillResponse(bill, s.bills.Today()))
}

func (s *Server) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	billID := mux.Vars(r)["id"]
	paid, next, err := s.bills.MarkPaid(r.Context(), authn.GetUserID(r.Context()), billID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	now := s.bills.Today()
	resp := markPaidResponse{Paid: toBillResponse(paid, now)}
	if next != nil {
		nextResp := toBillResponse(*next, now)
		resp.Next = &nextResp
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := s.bills.ListPayments(r.Context(), authn.GetUserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]paymentResponse, len(payments))
	for i, p := range payments {
		out[i] = paymentResponse{
			ID:     p.ID,
			BillID: p.BillID,
			Amount: p.Amount.String(),
			PaidOn: p.PaidOn.Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, out)
}
