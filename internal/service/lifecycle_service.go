package service

import (
	"context"
	"fmt"
	"time"

	"backend/internal/apperror"
	"backend/internal/calc"
	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transition moves a document through its lifecycle. The current status is
// re-read under a row lock inside the transaction that writes the new one, so
// a concurrent transition can never validate against a stale status.
func (s *documentService) Transition(ctx context.Context, docType model.DocumentType, id string, req TransitionRequest, actorID string) (DocumentResponse, error) {
	docID, err := uuid.Parse(id)
	if err != nil {
		return DocumentResponse{}, apperror.Validation("invalid document id: %s", id)
	}

	target := model.DocumentStatus(req.Status)
	actor := parseActor(actorID)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		doc, findErr := s.docRepo.FindByIDForUpdate(txCtx, docID)
		if findErr != nil {
			return notFoundOr(findErr, "document %s", id)
		}
		if doc.Type != docType {
			return apperror.NotFound("document %s", id)
		}
		if !target.IsValidFor(doc.Type) {
			return apperror.Validation("status %s does not exist for %s documents", target, doc.Type)
		}
		if target == model.StatusConverted {
			return apperror.BusinessRule("quotes are converted through the conversion operation, not a direct status change")
		}
		return s.applyTransition(txCtx, doc, target, req.Reason, actor)
	})
	if err != nil {
		return DocumentResponse{}, err
	}

	resp, err := s.GetDocument(ctx, docType, id)
	if err == nil {
		s.publish("document.status_changed", resp)
	}
	return resp, err
}

// applyTransition validates the pair against the allow-list, writes the new
// status and appends exactly one history row. Must run inside a transaction.
func (s *documentService) applyTransition(ctx context.Context, doc *model.Document, target model.DocumentStatus, reason string, actor *uuid.UUID) error {
	if !doc.Status.CanTransitionTo(doc.Type, target) {
		return apperror.InvalidTransition("%s cannot go from %s to %s", doc.DocumentNumber, doc.Status, target)
	}

	oldStatus := doc.Status
	doc.Status = target
	if err := s.docRepo.UpdateWithVersion(ctx, doc); err != nil {
		return err
	}

	history := &model.StatusHistory{
		DocumentID: doc.ID,
		OldStatus:  oldStatus,
		NewStatus:  target,
		Reason:     reason,
		ActorID:    actor,
	}
	if err := s.docRepo.AppendHistory(ctx, history); err != nil {
		return fmt.Errorf("failed to record status history: %w", err)
	}

	return s.audit.Record(ctx, actor, model.ActionTransition, doc.ID.String(), doc.DocumentNumber, map[string]string{
		"old_status": string(oldStatus),
		"new_status": string(target),
		"reason":     reason,
	})
}

// ConvertQuoteToInvoice turns an accepted quote into a draft invoice. Line
// inputs are copied verbatim but every amount is re-derived, so the invoice's
// totals invariant holds independently of the quote's stored figures. Invoice
// creation and the quote's CONVERTED transition share one transaction.
func (s *documentService) ConvertQuoteToInvoice(ctx context.Context, quoteID string, actorID string) (DocumentResponse, error) {
	id, err := uuid.Parse(quoteID)
	if err != nil {
		return DocumentResponse{}, apperror.Validation("invalid quote id: %s", quoteID)
	}

	actor := parseActor(actorID)
	var invoice *model.Document

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		quote, findErr := s.docRepo.FindByIDForUpdate(txCtx, id)
		if findErr != nil {
			return notFoundOr(findErr, "quote %s", quoteID)
		}
		if quote.Type != model.DocTypeQuote {
			return apperror.BusinessRule("document %s is not a quote", quote.DocumentNumber)
		}
		if quote.Status != model.StatusAccepted {
			return apperror.BusinessRule("quote %s must be accepted before conversion, current status is %s", quote.DocumentNumber, quote.Status)
		}
		if quote.ConvertedInvoiceID != nil {
			return apperror.BusinessRule("quote %s was already converted", quote.DocumentNumber)
		}

		company, companyErr := s.companyRepo.FindByID(txCtx, quote.CompanyID)
		if companyErr != nil {
			return fmt.Errorf("failed to load company: %w", companyErr)
		}

		opts := calcOptions(company, quote.CurrencyCode)
		lines, amounts, copyErr := copyLines(quote.Lines, opts)
		if copyErr != nil {
			return copyErr
		}

		var docDiscount *calc.Discount
		if quote.DiscountType != nil {
			docDiscount = &calc.Discount{Type: calc.DiscountType(*quote.DiscountType), Value: quote.DiscountValue}
		}
		totals := calc.ComputeTotals(amounts, docDiscount, quote.ShippingAmount, opts)

		issueDate := time.Now().Truncate(24 * time.Hour)
		value, seqErr := s.seqRepo.Next(txCtx, quote.CompanyID, model.DocTypeInvoice, issueDate.Year())
		if seqErr != nil {
			return fmt.Errorf("failed to assign invoice number: %w", seqErr)
		}

		invoice = &model.Document{
			Type:           model.DocTypeInvoice,
			CompanyID:      quote.CompanyID,
			ClientID:       quote.ClientID,
			DocumentNumber: model.FormatDocumentNumber(company.InvoicePrefix, issueDate.Year(), value),
			IssueDate:      issueDate,
			DueDate:        issueDate.AddDate(0, 0, 30),
			CurrencyCode:   quote.CurrencyCode,
			ExchangeRate:   quote.ExchangeRate,
			DiscountType:   quote.DiscountType,
			DiscountValue:  quote.DiscountValue,
			ShippingAmount: quote.ShippingAmount,
			SubtotalNet:    totals.LinesSubtotal,
			TotalTax:       totals.TotalTax,
			TotalGross:     totals.TotalGross,
			Status:         model.StatusDraft,
			Version:        1,
			SourceQuoteID:  &quote.ID,
			Lines:          lines,
		}
		if createErr := s.docRepo.Create(txCtx, invoice); createErr != nil {
			return fmt.Errorf("failed to create invoice: %w", createErr)
		}
		if histErr := s.docRepo.AppendHistory(txCtx, &model.StatusHistory{
			DocumentID: invoice.ID,
			NewStatus:  model.StatusDraft,
			Reason:     "created from quote " + quote.DocumentNumber,
			ActorID:    actor,
		}); histErr != nil {
			return fmt.Errorf("failed to record status history: %w", histErr)
		}

		quote.ConvertedInvoiceID = &invoice.ID
		if transErr := s.applyTransition(txCtx, quote, model.StatusConverted, "converted to invoice "+invoice.DocumentNumber, actor); transErr != nil {
			return transErr
		}

		return s.audit.Record(txCtx, actor, model.ActionConvertQuote, quote.ID.String(), quote.DocumentNumber, map[string]string{
			"invoice_id":     invoice.ID.String(),
			"invoice_number": invoice.DocumentNumber,
		})
	})
	if err != nil {
		return DocumentResponse{}, err
	}

	resp, err := s.GetDocument(ctx, model.DocTypeInvoice, invoice.ID.String())
	if err == nil {
		s.publish("quote.converted", resp)
	}
	return resp, err
}

// RecordPayment registers money received against an invoice and derives the
// resulting status from the paid total.
func (s *documentService) RecordPayment(ctx context.Context, invoiceID string, req PaymentRequest, actorID string) (DocumentResponse, error) {
	id, err := uuid.Parse(invoiceID)
	if err != nil {
		return DocumentResponse{}, apperror.Validation("invalid invoice id: %s", invoiceID)
	}

	amount, err := parsePositiveDecimal("amount", req.Amount)
	if err != nil {
		return DocumentResponse{}, err
	}
	paidAt := time.Now()
	if req.PaidAt != "" {
		paidAt, err = time.Parse(time.RFC3339, req.PaidAt)
		if err != nil {
			return DocumentResponse{}, apperror.Validation("invalid paid_at %q, expected RFC3339", req.PaidAt)
		}
	}

	actor := parseActor(actorID)
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		doc, findErr := s.docRepo.FindByIDForUpdate(txCtx, id)
		if findErr != nil {
			return notFoundOr(findErr, "invoice %s", invoiceID)
		}
		if doc.Type != model.DocTypeInvoice {
			return apperror.BusinessRule("payments can only be recorded against invoices")
		}
		switch doc.Status {
		case model.StatusSent, model.StatusPartial, model.StatusOverdue:
		default:
			return apperror.BusinessRule("invoice %s does not accept payments in status %s", doc.DocumentNumber, doc.Status)
		}

		payment := &model.Payment{
			DocumentID: doc.ID,
			Amount:     amount,
			Method:     req.Method,
			Reference:  req.Reference,
			PaidAt:     paidAt,
		}
		if payErr := s.docRepo.CreatePayment(txCtx, payment); payErr != nil {
			return fmt.Errorf("failed to record payment: %w", payErr)
		}

		paidTotal, sumErr := s.docRepo.SumPayments(txCtx, doc.ID)
		if sumErr != nil {
			return fmt.Errorf("failed to sum payments: %w", sumErr)
		}

		target := model.StatusPartial
		if paidTotal.GreaterThanOrEqual(doc.TotalGross) {
			target = model.StatusPaid
		}
		if target != doc.Status {
			reason := fmt.Sprintf("payment of %s received, %s of %s settled", amount, paidTotal, doc.TotalGross)
			if transErr := s.applyTransition(txCtx, doc, target, reason, actor); transErr != nil {
				return transErr
			}
		}

		return s.audit.Record(txCtx, actor, model.ActionRecordPayment, doc.ID.String(), doc.DocumentNumber, map[string]string{
			"amount":     amount.StringFixed(2),
			"paid_total": paidTotal.StringFixed(2),
		})
	})
	if err != nil {
		return DocumentResponse{}, err
	}

	resp, err := s.GetDocument(ctx, model.DocTypeInvoice, invoiceID)
	if err == nil {
		s.publish("invoice.payment_recorded", resp)
	}
	return resp, err
}

// MarkOverdueInvoices flips SENT/PARTIAL invoices whose due date elapsed to
// OVERDUE. Re-running it is a no-op for invoices already flipped: they no
// longer match the candidate filter, and the status is re-checked under the
// row lock before each transition.
func (s *documentService) MarkOverdueInvoices(ctx context.Context, asOf time.Time) (int, error) {
	candidates, err := s.docRepo.ListDueInvoices(ctx, asOf)
	if err != nil {
		return 0, fmt.Errorf("failed to list due invoices: %w", err)
	}

	flipped := 0
	for _, candidate := range candidates {
		changed := false
		err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
			doc, findErr := s.docRepo.FindByIDForUpdate(txCtx, candidate.ID)
			if findErr != nil {
				return findErr
			}
			if doc.Status != model.StatusSent && doc.Status != model.StatusPartial {
				return nil // changed concurrently, nothing to do
			}
			if !doc.DueDate.Before(asOf) {
				return nil
			}
			if transErr := s.applyTransition(txCtx, doc, model.StatusOverdue, "payment due date elapsed", nil); transErr != nil {
				return transErr
			}
			changed = true
			return nil
		})
		if err != nil {
			return flipped, fmt.Errorf("failed to mark invoice %s overdue: %w", candidate.DocumentNumber, err)
		}
		if changed {
			flipped++
		}
	}
	return flipped, nil
}

// copyLines rebuilds invoice lines from quote lines, preserving the inputs
// verbatim and recomputing every derived amount.
func copyLines(src []model.LineItem, opts calc.Options) ([]model.LineItem, []calc.LineAmounts, error) {
	lines := make([]model.LineItem, 0, len(src))
	amounts := make([]calc.LineAmounts, 0, len(src))

	for _, line := range src {
		copied := model.LineItem{
			LineType:      line.LineType,
			CatalogItemID: line.CatalogItemID,
			Description:   line.Description,
			Quantity:      line.Quantity,
			UnitPrice:     line.UnitPrice,
			TaxRate:       line.TaxRate,
			DiscountType:  line.DiscountType,
			DiscountValue: line.DiscountValue,
			Position:      line.Position,
			Subtotal:      decimal.Zero,
			TaxAmount:     decimal.Zero,
			Total:         decimal.Zero,
		}

		if copied.IsMonetary() {
			var discount *calc.Discount
			if line.DiscountType != nil {
				discount = &calc.Discount{Type: calc.DiscountType(*line.DiscountType), Value: line.DiscountValue}
			}
			computed, err := calc.ComputeLine(calc.LineInput{
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
				TaxRate:   line.TaxRate,
				Discount:  discount,
			}, opts)
			if err != nil {
				return nil, nil, fmt.Errorf("line %d no longer passes validation: %w", line.Position, err)
			}
			copied.Subtotal = computed.NetSubtotal.Round(opts.Precision)
			copied.TaxAmount = computed.TaxAmount
			copied.Total = computed.Total
			amounts = append(amounts, computed)
		}

		lines = append(lines, copied)
	}

	return lines, amounts, nil
}
