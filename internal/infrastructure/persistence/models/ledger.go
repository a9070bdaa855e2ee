package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/erp/commission/internal/domain/ledger"
	"github.com/erp/commission/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentSchedule is the JSONB-stored installment list of an invoice
type PaymentSchedule []ledger.Installment

// Value implements driver.Valuer for JSONB storage
func (s PaymentSchedule) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner for JSONB storage
func (s *PaymentSchedule) Scan(value interface{}) error {
	if value == nil {
		*s = PaymentSchedule{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan PaymentSchedule: unsupported type")
	}
	if len(bytes) == 0 {
		*s = PaymentSchedule{}
		return nil
	}
	return json.Unmarshal(bytes, s)
}

// InvoiceModel is the read-side persistence model for invoices. The
// ledger system owns this data; this module only queries it.
type InvoiceModel struct {
	BaseModel
	Number          string               `gorm:"type:varchar(50);not null;uniqueIndex"`
	Type            ledger.InvoiceType   `gorm:"type:varchar(20);not null"`
	AgentID         *uuid.UUID           `gorm:"type:uuid;index"`
	Currency        valueobject.Currency `gorm:"type:varchar(3);not null"`
	UntaxedAmount   decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	TotalAmount     decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	MoveID          uuid.UUID            `gorm:"type:uuid;not null;index"`
	PaymentSchedule PaymentSchedule      `gorm:"type:jsonb;default:'[]'"`
	Lines           []LedgerLineModel    `gorm:"foreignKey:InvoiceID"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice
func (m *InvoiceModel) ToDomain() *ledger.Invoice {
	inv := &ledger.Invoice{
		ID:              m.ID,
		Number:          m.Number,
		Type:            m.Type,
		AgentID:         m.AgentID,
		Currency:        m.Currency,
		UntaxedAmount:   m.UntaxedAmount,
		TotalAmount:     m.TotalAmount,
		MoveID:          m.MoveID,
		PaymentSchedule: m.PaymentSchedule,
	}
	for i := range m.Lines {
		line := m.Lines[i].ToDomain()
		switch m.Lines[i].Kind {
		case ledger.LineKindToPay:
			inv.LinesToPay = append(inv.LinesToPay, line)
		case ledger.LineKindPayment:
			inv.PaymentLines = append(inv.PaymentLines, line)
		}
	}
	return inv
}

// LedgerLineModel is the read-side persistence model for ledger lines
type LedgerLineModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InvoiceID        *uuid.UUID      `gorm:"type:uuid;index"`
	MoveID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	Kind             ledger.LineKind `gorm:"type:varchar(20);not null"`
	Debit            decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Credit           decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Date             time.Time       `gorm:"not null"`
	ReconciliationID *uuid.UUID      `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (LedgerLineModel) TableName() string {
	return "ledger_lines"
}

// ToDomain converts the persistence model to a domain LedgerLine
func (m *LedgerLineModel) ToDomain() ledger.LedgerLine {
	return ledger.LedgerLine{
		ID:               m.ID,
		MoveID:           m.MoveID,
		Kind:             m.Kind,
		Debit:            m.Debit,
		Credit:           m.Credit,
		Date:             m.Date,
		ReconciliationID: m.ReconciliationID,
	}
}

// ReconciliationModel is the read-side persistence model for
// reconciliations
type ReconciliationModel struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time         `gorm:"not null"`
	Lines     []LedgerLineModel `gorm:"foreignKey:ReconciliationID"`
}

// TableName returns the table name for GORM
func (ReconciliationModel) TableName() string {
	return "reconciliations"
}

// ToDomain converts the persistence model to a domain Reconciliation
func (m *ReconciliationModel) ToDomain() *ledger.Reconciliation {
	rec := &ledger.Reconciliation{ID: m.ID}
	for i := range m.Lines {
		rec.Lines = append(rec.Lines, m.Lines[i].ToDomain())
	}
	return rec
}
