package http

import (
	"net/http"

	"conti/internal/core"
)

func (s *Server) handleCreateInstitute(w http.ResponseWriter, r *http.Request) {
	tenant, err := tenantID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	var req instituteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	inst, err := s.catalog.CreateInstitute(r.Context(), core.Institute{TenantID: tenant, Name: req.Name})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toInstituteResponse(inst))
}

func (s *Server) handleListInstitutes(w http.ResponseWriter, r *http.Request) {
	tenant, err := tenantID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	institutes, err := s.catalog.ListInstitutes(r.Context(), tenant)
	if err != nil {
		respondError(w, err)
		return
	}
	out := make([]instituteResponse, len(institutes))
	for i, inst := range institutes {
		out[i] = toInstituteResponse(inst)
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetInstitute(w http.ResponseWriter, r *http.Request) {
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
	inst, err := s.catalog.GetInstitute(r.Context(), tenant, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toInstituteResponse(inst))
}

func (s *Server) handleSetPettyCashLedger(w http.ResponseWriter, r *http.Request) {
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
	var req pettyCashLedgerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := s.catalog.SetPettyCashLedger(r.Context(), tenant, id, req.LedgerID); err != nil {
		respondError(w, err)
		return
	}
	inst, err := s.catalog.GetInstitute(r.Context(), tenant, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toInstituteResponse(inst))
}

func (s *Server) handleCreateLedger(w http.ResponseWriter, r *http.Request) {
	tenant, err := tenantID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	var req ledgerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	ledger, err := s.catalog.CreateLedger(r.Context(), core.Ledger{
		TenantID:    tenant,
		InstituteID: req.InstituteID,
		Name:        req.Name,
		Type:        core.LedgerType(req.Type),
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toLedgerResponse(ledger))
}

func (s *Server) handleListLedgers(w http.ResponseWriter, r *http.Request) {
	tenant, err := tenantID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	instituteID, err := queryInt64(r, "institute_id")
	if err != nil {
		respondError(w, err)
		return
	}

	ledgers, err := s.catalog.ListLedgers(r.Context(), tenant, core.LedgerFilter{
		InstituteID: instituteID,
		Type:        core.LedgerType(r.URL.Query().Get("type")),
	})
	if err != nil {
		respondError(w, err)
		return
	}
	out := make([]ledgerResponse, len(ledgers))
	for i, l := range ledgers {
		out[i] = toLedgerResponse(l)
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetLedger(w http.ResponseWriter, r *http.Request) {
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
	ledger, err := s.catalog.GetLedger(r.Context(), tenant, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toLedgerResponse(ledger))
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	tenant, err := tenantID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	ledgerID, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	category, err := s.catalog.CreateCategory(r.Context(), tenant, core.Category{
		LedgerID: ledgerID,
		Name:     req.Name,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toCategoryResponse(category))
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	tenant, err := tenantID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	ledgerID, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	categories, err := s.catalog.ListCategories(r.Context(), tenant, ledgerID)
	if err != nil {
		respondError(w, err)
		return
	}
	out := make([]categoryResponse, len(categories))
	for i, c := range categories {
		out[i] = toCategoryResponse(c)
	}
	respondJSON(w, http.StatusOK, out)
}
