package domain

import (
	"fmt"

	"github.com/SscSPs/settlement_engine/internal/apperrors"
)

// Settlement errors. Each wraps the apperrors sentinel that decides how callers react:
// validation errors are user-correctable, conflicts may succeed after a re-read.
var (
	ErrInvalidAmount        = fmt.Errorf("%w: invalid amount", apperrors.ErrValidation)
	ErrInvalidItem          = fmt.Errorf("%w: invalid invoice item", apperrors.ErrValidation)
	ErrEmptyPayments        = fmt.Errorf("%w: at least one payment is required", apperrors.ErrValidation)
	ErrInvalidPaymentMethod = fmt.Errorf("%w: unsupported payment method", apperrors.ErrValidation)
	ErrOverpayment          = fmt.Errorf("%w: payment exceeds outstanding amount", apperrors.ErrValidation)
	ErrWalkInInvoice        = fmt.Errorf("%w: walk-in invoices cannot carry ledger postings", apperrors.ErrValidation)
	ErrWalkInDebt           = fmt.Errorf("%w: a walk-in sale cannot be left on debt", apperrors.ErrValidation)
	ErrInvoiceNotPayable    = fmt.Errorf("%w: invoice does not accept payments in its current status", apperrors.ErrValidation)
	ErrInvalidTransition    = fmt.Errorf("%w: invalid invoice status transition", apperrors.ErrValidation)
	ErrInvalidEntry         = fmt.Errorf("%w: invalid ledger entry", apperrors.ErrValidation)
	ErrEmptyCart            = fmt.Errorf("%w: cart has no items", apperrors.ErrValidation)

	ErrSessionAlreadyOpen   = fmt.Errorf("%w: a cash session is already open for this branch", apperrors.ErrConflict)
	ErrSessionNotOpen       = fmt.Errorf("%w: cash session is not open", apperrors.ErrConflict)
	ErrSessionNotClosed     = fmt.Errorf("%w: cash session is not closed", apperrors.ErrConflict)
	ErrPaymentSessionReused = fmt.Errorf("%w: payment session id already used for another invoice", apperrors.ErrConflict)
	ErrInvoiceBusy          = fmt.Errorf("%w: another payment is being posted for this invoice", apperrors.ErrConflict)
)
