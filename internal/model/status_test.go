package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuoteTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    DocumentStatus
		to      DocumentStatus
		allowed bool
	}{
		{"draft to sent", StatusDraft, StatusSent, true},
		{"sent to accepted", StatusSent, StatusAccepted, true},
		{"sent to rejected", StatusSent, StatusRejected, true},
		{"sent to expired", StatusSent, StatusExpired, true},
		{"accepted to converted", StatusAccepted, StatusConverted, true},
		{"draft cannot skip to accepted", StatusDraft, StatusAccepted, false},
		{"draft cannot skip to converted", StatusDraft, StatusConverted, false},
		{"sent cannot convert directly", StatusSent, StatusConverted, false},
		{"rejected is terminal", StatusRejected, StatusSent, false},
		{"expired is terminal", StatusExpired, StatusSent, false},
		{"converted is terminal", StatusConverted, StatusDraft, false},
		{"no going back to draft", StatusSent, StatusDraft, false},
		{"quote cannot be paid", StatusSent, StatusPaid, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(DocTypeQuote, tt.to))
		})
	}
}

func TestInvoiceTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    DocumentStatus
		to      DocumentStatus
		allowed bool
	}{
		{"draft to sent", StatusDraft, StatusSent, true},
		{"sent to paid", StatusSent, StatusPaid, true},
		{"sent to partial", StatusSent, StatusPartial, true},
		{"sent to overdue", StatusSent, StatusOverdue, true},
		{"sent to cancelled", StatusSent, StatusCancelled, true},
		{"partial to paid", StatusPartial, StatusPaid, true},
		{"partial to overdue", StatusPartial, StatusOverdue, true},
		{"overdue back to partial", StatusOverdue, StatusPartial, true},
		{"overdue to paid", StatusOverdue, StatusPaid, true},
		{"overdue to cancelled", StatusOverdue, StatusCancelled, true},
		{"draft cannot skip to paid", StatusDraft, StatusPaid, false},
		{"paid is terminal", StatusPaid, StatusSent, false},
		{"cancelled is terminal", StatusCancelled, StatusSent, false},
		{"paid cannot revert to partial", StatusPaid, StatusPartial, false},
		{"invoice cannot be accepted", StatusSent, StatusAccepted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(DocTypeInvoice, tt.to))
		})
	}
}

func TestStatusValidityPerType(t *testing.T) {
	assert.True(t, StatusConverted.IsValidFor(DocTypeQuote))
	assert.False(t, StatusConverted.IsValidFor(DocTypeInvoice))
	assert.True(t, StatusPaid.IsValidFor(DocTypeInvoice))
	assert.False(t, StatusPaid.IsValidFor(DocTypeQuote))
	assert.False(t, StatusAccepted.IsValidFor(DocTypeInvoice))
	assert.False(t, DocumentStatus("BOGUS").IsValidFor(DocTypeQuote))
}

func TestTerminalStatuses(t *testing.T) {
	for _, s := range []DocumentStatus{StatusConverted, StatusRejected, StatusExpired} {
		assert.True(t, s.IsTerminal(DocTypeQuote), "quote %s should be terminal", s)
	}
	for _, s := range []DocumentStatus{StatusPaid, StatusCancelled} {
		assert.True(t, s.IsTerminal(DocTypeInvoice), "invoice %s should be terminal", s)
	}
	assert.False(t, StatusOverdue.IsTerminal(DocTypeInvoice))
	assert.False(t, StatusPartial.IsTerminal(DocTypeInvoice))
	assert.False(t, StatusSent.IsTerminal(DocTypeQuote))
}

func TestEditability(t *testing.T) {
	assert.True(t, StatusDraft.IsEditable())
	assert.True(t, StatusSent.IsEditable())
	for _, s := range []DocumentStatus{StatusAccepted, StatusRejected, StatusExpired, StatusConverted, StatusPartial, StatusPaid, StatusOverdue, StatusCancelled} {
		assert.False(t, s.IsEditable(), "%s should not be editable", s)
	}
}
