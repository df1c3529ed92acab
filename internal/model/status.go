package model

// DocumentType discriminates quotes from invoices. Both share the same
// calculation shape but follow different lifecycles.
type DocumentType string

const (
	DocTypeQuote   DocumentType = "QUOTE"
	DocTypeInvoice DocumentType = "INVOICE"
)

func (t DocumentType) IsValid() bool {
	return t == DocTypeQuote || t == DocTypeInvoice
}

// DocumentStatus is the lifecycle state of a document.
type DocumentStatus string

const (
	StatusDraft DocumentStatus = "DRAFT"
	StatusSent  DocumentStatus = "SENT"

	// Quote outcomes
	StatusAccepted  DocumentStatus = "ACCEPTED"
	StatusRejected  DocumentStatus = "REJECTED"
	StatusExpired   DocumentStatus = "EXPIRED"
	StatusConverted DocumentStatus = "CONVERTED"

	// Invoice outcomes
	StatusPartial   DocumentStatus = "PARTIAL"
	StatusPaid      DocumentStatus = "PAID"
	StatusOverdue   DocumentStatus = "OVERDUE"
	StatusCancelled DocumentStatus = "CANCELLED"
)

func (s DocumentStatus) String() string { return string(s) }

// transitions is the explicit allow-list per document type. A pair absent
// from this table is illegal; states without an entry are terminal.
var transitions = map[DocumentType]map[DocumentStatus][]DocumentStatus{
	DocTypeQuote: {
		StatusDraft:    {StatusSent},
		StatusSent:     {StatusAccepted, StatusRejected, StatusExpired},
		StatusAccepted: {StatusConverted},
	},
	DocTypeInvoice: {
		StatusDraft:   {StatusSent},
		StatusSent:    {StatusPaid, StatusPartial, StatusOverdue, StatusCancelled},
		StatusPartial: {StatusPaid, StatusOverdue, StatusCancelled},
		StatusOverdue: {StatusPartial, StatusPaid, StatusCancelled},
	},
}

// IsValidFor reports whether the status belongs to the type's lifecycle at all.
func (s DocumentStatus) IsValidFor(t DocumentType) bool {
	if _, ok := transitions[t][s]; ok {
		return true
	}
	for _, targets := range transitions[t] {
		for _, target := range targets {
			if target == s {
				return true
			}
		}
	}
	return false
}

// CanTransitionTo checks the (current, target) pair against the allow-list.
func (s DocumentStatus) CanTransitionTo(t DocumentType, target DocumentStatus) bool {
	for _, allowed := range transitions[t][s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status has no outgoing transitions.
func (s DocumentStatus) IsTerminal(t DocumentType) bool {
	return s.IsValidFor(t) && len(transitions[t][s]) == 0
}

// IsEditable reports whether line/amount edits are still allowed.
func (s DocumentStatus) IsEditable() bool {
	return s == StatusDraft || s == StatusSent
}
