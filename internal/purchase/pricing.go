// internal/purchase/pricing.go
package purchase

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/vibing/vibing-client/internal/config"
	"github.com/vibing/vibing-client/internal/i18n"
	"github.com/vibing/vibing-client/internal/models"
)

// Pricing converts USD list prices into the KRW amount charged.
type Pricing struct {
	USDToKRWRate     float64
	ProcessingFeeKRW int64
}

func NewPricing(cfg config.PaymentConfig) Pricing {
	return Pricing{USDToKRWRate: cfg.USDToKRWRate, ProcessingFeeKRW: cfg.ProcessingFeeKRW}
}

func (p Pricing) ConvertUSDToKRW(usd float64) int64 {
	return int64(math.Round(usd * p.USDToKRWRate))
}

// CalculateTotal is the converted price plus the processing fee.
func (p Pricing) CalculateTotal(usd float64) int64 {
	return p.ConvertUSDToKRW(usd) + p.ProcessingFeeKRW
}

var krwPrinter = message.NewPrinter(language.Korean)

// FormatPrice renders a KRW amount as ₩12,345.
func FormatPrice(krw int64) string {
	return krwPrinter.Sprintf("₩%d", krw)
}

var statusKeys = map[models.PurchaseStatus]string{
	models.PurchaseStatusCompleted:         i18n.KeyStatusCompleted,
	models.PurchaseStatusConfirmed:         i18n.KeyStatusConfirmed,
	models.PurchaseStatusDisputeRequested:  i18n.KeyStatusDisputeRequested,
	models.PurchaseStatusDisputeProcessing: i18n.KeyStatusDisputeProcessing,
	models.PurchaseStatusDisputeResolved:   i18n.KeyStatusDisputeResolved,
	models.PurchaseStatusPending:           i18n.KeyStatusPending,
	models.PurchaseStatusFailed:            i18n.KeyStatusFailed,
	models.PurchaseStatusRefunded:          i18n.KeyStatusRefunded,
	models.PurchaseStatusCancelled:         i18n.KeyStatusCancelled,
	"active":                               i18n.KeyStatusActive,
	"rejected":                             i18n.KeyStatusRejected,
}

// StatusLabel is the display label of a purchase status. Unknown statuses
// are shown as-is.
func StatusLabel(tr *i18n.I18n, lang string, status models.PurchaseStatus) string {
	key, ok := statusKeys[status]
	if !ok || tr == nil {
		return string(status)
	}
	return tr.T(lang, key)
}

func validStatusFilter(s string) bool {
	if s == "all" {
		return true
	}
	_, ok := statusKeys[models.PurchaseStatus(s)]
	return ok
}
