package http

import (
	"time"

	"conti/internal/core"
)

// Request bodies. Amounts travel as decimal strings ("125.00") and are
// parsed into cents at this boundary.

type instituteRequest struct {
	Name string `json:"name"`
}

type pettyCashLedgerRequest struct {
	LedgerID int64 `json:"ledgerId"`
}

type ledgerRequest struct {
	InstituteID int64  `json:"instituteId"`
	Name        string `json:"name"`
	Type        string `json:"type"`
}

type categoryRequest struct {
	Name string `json:"name"`
}

type entryRequest struct {
	LedgerID    int64  `json:"ledgerId"`
	CategoryID  int64  `json:"categoryId"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Direction   string `json:"direction"`
	Amount      string `json:"amount"`
	Source      string `json:"source"`
	ReferenceID string `json:"referenceId"`
}

type entryUpdateRequest struct {
	CategoryID  int64  `json:"categoryId"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Direction   string `json:"direction"`
	Amount      string `json:"amount"`
}

type fundRequest struct {
	InstituteID   int64  `json:"instituteId"`
	CustodianName string `json:"custodianName"`
	FloatAmount   string `json:"floatAmount"`
}

type fundExpenseRequest struct {
	Amount      string `json:"amount"`
	Description string `json:"description"`
	ReceiptNo   string `json:"receiptNo"`
	Date        string `json:"date"`
}

type replenishRequest struct {
	Date string `json:"date"`
}

// Response bodies.

type instituteResponse struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	PettyCashLedgerID int64  `json:"pettyCashLedgerId,omitempty"`
}

func toInstituteResponse(inst core.Institute) instituteResponse {
	return instituteResponse{ID: inst.ID, Name: inst.Name, PettyCashLedgerID: inst.PettyCashLedgerID}
}

type ledgerResponse struct {
	ID          int64  `json:"id"`
	InstituteID int64  `json:"instituteId,omitempty"`
	Name        string `json:"name"`
	Type        string `json:"type"`
}

func toLedgerResponse(l core.Ledger) ledgerResponse {
	return ledgerResponse{ID: l.ID, InstituteID: l.InstituteID, Name: l.Name, Type: string(l.Type)}
}

type categoryResponse struct {
	ID       int64  `json:"id"`
	LedgerID int64  `json:"ledgerId"`
	Name     string `json:"name"`
}

func toCategoryResponse(c core.Category) categoryResponse {
	return categoryResponse{ID: c.ID, LedgerID: c.LedgerID, Name: c.Name}
}

type entryResponse struct {
	ID          int64  `json:"id"`
	InstituteID int64  `json:"instituteId,omitempty"`
	LedgerID    int64  `json:"ledgerId"`
	CategoryID  int64  `json:"categoryId,omitempty"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Debit       string `json:"debit"`
	Credit      string `json:"credit"`
	Source      string `json:"source"`
	ReferenceID string `json:"referenceId,omitempty"`
	CreatedAt   string `json:"createdAt"`
}

func toEntryResponse(e core.Entry) entryResponse {
	return entryResponse{
		ID:          e.ID,
		InstituteID: e.InstituteID,
		LedgerID:    e.LedgerID,
		CategoryID:  e.CategoryID,
		Date:        e.Date.Format(dateLayout),
		Description: e.Description,
		Debit:       e.Debit.String(),
		Credit:      e.Credit.String(),
		Source:      string(e.Source),
		ReferenceID: e.ReferenceID,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
	}
}

func toEntryResponses(entries []core.Entry) []entryResponse {
	out := make([]entryResponse, len(entries))
	for i, e := range entries {
		out[i] = toEntryResponse(e)
	}
	return out
}

type fundResponse struct {
	ID             int64  `json:"id"`
	InstituteID    int64  `json:"instituteId"`
	CustodianName  string `json:"custodianName"`
	FloatAmount    string `json:"floatAmount"`
	CurrentBalance string `json:"currentBalance"`
	Spent          string `json:"spent"`
	Status         string `json:"status"`
	CreatedAt      string `json:"createdAt"`
}

func toFundResponse(f core.PettyCashFund) fundResponse {
	return fundResponse{
		ID:             f.ID,
		InstituteID:    f.InstituteID,
		CustodianName:  f.CustodianName,
		FloatAmount:    f.FloatAmount.String(),
		CurrentBalance: f.CurrentBalance.String(),
		Spent:          f.Spent().String(),
		Status:         string(f.Status),
		CreatedAt:      f.CreatedAt.Format(time.RFC3339),
	}
}

type fundTransactionResponse struct {
	ID          int64  `json:"id"`
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	ReceiptNo   string `json:"receiptNo,omitempty"`
	Date        string `json:"date"`
}

func toFundTransactionResponses(txns []core.PettyCashTransaction) []fundTransactionResponse {
	out := make([]fundTransactionResponse, len(txns))
	for i, t := range txns {
		out[i] = fundTransactionResponse{
			ID:          t.ID,
			Type:        string(t.Type),
			Amount:      t.Amount.String(),
			Description: t.Description,
			ReceiptNo:   t.ReceiptNo,
			Date:        t.Date.Format(dateLayout),
		}
	}
	return out
}

// parseDirectedAmount turns direction plus decimal amount into the
// debit/credit pair an entry stores.
func parseDirectedAmount(direction, amount string) (debit, credit core.Money, err error) {
	d := core.Direction(direction)
	if !d.Valid() {
		return core.Money{}, core.Money{}, core.ErrInvalidDirection
	}
	m, err := core.ParseAmount(amount)
	if err != nil {
		return core.Money{}, core.Money{}, err
	}
	if d == core.Debit {
		return m, core.Money{}, nil
	}
	return core.Money{}, m, nil
}
