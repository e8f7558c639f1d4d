package services

import (
	"time"

	"github.com/SscSPs/settlement_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/settlement_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/settlement_engine/internal/core/ports/services"
	"github.com/SscSPs/settlement_engine/internal/platform/config"
	"github.com/SscSPs/settlement_engine/internal/platform/lock"
	"github.com/shopspring/decimal"
)

// Settings carries the runtime knobs shared by the settlement services.
type Settings struct {
	Epsilon         decimal.Decimal
	DefaultCurrency string
	Now             func() time.Time
}

// SettingsFromConfig extracts the service settings from the application config.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Epsilon:         cfg.PaymentEpsilon,
		DefaultCurrency: cfg.DefaultCurrency,
	}
}

func (s Settings) currency(code *string) string {
	if code != nil && *code != "" {
		return *code
	}
	if s.DefaultCurrency != "" {
		return s.DefaultCurrency
	}
	return "USD"
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, locker lock.Locker, tax domain.TaxCalculator) *portssvc.ServiceContainer {
	settings := SettingsFromConfig(cfg)

	return &portssvc.ServiceContainer{
		Ledger:     NewLedgerService(repos, settings),
		Invoice:    NewInvoiceService(repos, settings, WithInvoiceTaxCalculator(tax)),
		Payment:    NewPaymentService(repos, settings, WithInvoiceLocker(locker, cfg.InvoiceLockTTL)),
		POSSession: NewPOSSessionService(repos, settings),
		Sale:       NewSaleService(repos, settings, WithSaleTaxCalculator(tax)),
	}
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.LedgerSvcFacade     = (*ledgerService)(nil)
	_ portssvc.InvoiceSvcFacade    = (*invoiceService)(nil)
	_ portssvc.POSSessionSvcFacade = (*posSessionService)(nil)
	_ portssvc.SaleSvc             = (*saleService)(nil)
)
