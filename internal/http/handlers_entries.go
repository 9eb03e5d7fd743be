package http

import (
	"net/http"

	"conti/internal/core"
)

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	tenant, err := tenantID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	var req entryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		respondError(w, err)
		return
	}
	debit, credit, err := parseDirectedAmount(req.Direction, req.Amount)
	if err != nil {
		respondError(w, err)
		return
	}

	entry, err := s.entries.CreateEntry(r.Context(), core.Entry{
		TenantID:    tenant,
		LedgerID:    req.LedgerID,
		CategoryID:  req.CategoryID,
		Date:        date,
		Description: req.Description,
		Debit:       debit,
		Credit:      credit,
		Source:      core.Source(req.Source),
		ReferenceID: req.ReferenceID,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toEntryResponse(entry))
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	tenant, err := tenantID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var filter core.EntryFilter
	if filter.LedgerID, err = queryInt64(r, "ledger_id"); err != nil {
		respondError(w, err)
		return
	}
	if filter.InstituteID, err = queryInt64(r, "institute_id"); err != nil {
		respondError(w, err)
		return
	}
	if filter.CategoryID, err = queryInt64(r, "category_id"); err != nil {
		respondError(w, err)
		return
	}
	if filter.From, err = queryDate(r, "from"); err != nil {
		respondError(w, err)
		return
	}
	if filter.To, err = queryDate(r, "to"); err != nil {
		respondError(w, err)
		return
	}
	filter.Source = core.Source(r.URL.Query().Get("source"))

	entries, err := s.entries.ListEntries(r.Context(), tenant, filter)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toEntryResponses(entries))
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
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
	entry, err := s.entries.GetEntry(r.Context(), tenant, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toEntryResponse(entry))
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
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
	var req entryUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		respondError(w, err)
		return
	}
	debit, credit, err := parseDirectedAmount(req.Direction, req.Amount)
	if err != nil {
		respondError(w, err)
		return
	}

	entry, err := s.entries.UpdateEntry(r.Context(), core.Entry{
		ID:          id,
		TenantID:    tenant,
		CategoryID:  req.CategoryID,
		Date:        date,
		Description: req.Description,
		Debit:       debit,
		Credit:      credit,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toEntryResponse(entry))
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
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
	if err := s.entries.DeleteEntry(r.Context(), tenant, id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
