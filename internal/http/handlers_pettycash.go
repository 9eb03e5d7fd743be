package http

import (
	"net/http"
	"time"

	"conti/internal/core"
)

func (s *Server) handleCreateFund(w http.ResponseWriter, r *http.Request) {
	tenant, err := tenantID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	var req fundRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	float, err := core.ParseAmount(req.FloatAmount)
	if err != nil {
		respondError(w, err)
		return
	}

	fund, err := s.pettyCash.CreateFund(r.Context(), core.PettyCashFund{
		TenantID:      tenant,
		InstituteID:   req.InstituteID,
		CustodianName: req.CustodianName,
		FloatAmount:   float,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toFundResponse(fund))
}

func (s *Server) handleGetFund(w http.ResponseWriter, r *http.Request) {
	tenant, err := tenantID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	fund, err := s.pettyCash.GetFund(r.Context(), tenant, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toFundResponse(fund))
}

func (s *Server) handleListFundTransactions(w http.ResponseWriter, r *http.Request) {
	tenant, err := tenantID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	txns, err := s.pettyCash.ListTransactions(r.Context(), tenant, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toFundTransactionResponses(txns))
}

func (s *Server) handleRecordFundExpense(w http.ResponseWriter, r *http.Request) {
	tenant, err := tenantID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var req fundExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		respondError(w, err)
		return
	}
	var date time.Time
	if req.Date != "" {
		if date, err = parseDate(req.Date); err != nil {
			respondError(w, err)
			return
		}
	}

	fund, err := s.pettyCash.RecordExpense(r.Context(), tenant, id, core.PettyCashTransaction{
		Amount:      amount,
		Description: req.Description,
		ReceiptNo:   req.ReceiptNo,
		Date:        date,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toFundResponse(fund))
}

func (s *Server) handleReplenishFund(w http.ResponseWriter, r *http.Request) {
	tenant, err := tenantID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var req replenishRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	var date time.Time
	if req.Date != "" {
		if date, err = parseDate(req.Date); err != nil {
			respondError(w, err)
			return
		}
	}

	fund, err := s.pettyCash.Replenish(r.Context(), tenant, id, date)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toFundResponse(fund))
}

func (s *Server) handleCloseFund(w http.ResponseWriter, r *http.Request) {
	tenant, err := tenantID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	fund, err := s.pettyCash.CloseFund(r.Context(), tenant, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toFundResponse(fund))
}
