package tax

import (
	"fmt"
	"time"

	"github.com/panafact/panafact/internal/document"
	"github.com/panafact/panafact/internal/report"
	"github.com/panafact/panafact/internal/users"
)

// Simplified Panamanian tax parameters.
const (
	// ExpenseITBMSRate is the flat input-tax credit assumed on expenses. It
	// is an estimate, not a ledger fact, and is surfaced in the output so
	// callers can display the assumption.
	ExpenseITBMSRate = 0.07

	isrExemptLimit = 11000.0
	isrMidLimit    = 50000.0
	isrMidRate     = 0.15
	isrTopRate     = 0.25
	// isrTopBase is the accumulated tax through the 15% bracket:
	// (50000 - 11000) * 0.15.
	isrTopBase = 5850.0

	cairGrossLimit = 1500000.0
	cairGrossRate  = 0.0467
	corporateRate  = 0.25
)

// Disclaimer must accompany every projection shown to end users.
const Disclaimer = "Proyección simplificada con fines ilustrativos. No constituye asesoría fiscal ni sustituye una declaración ante la DGI."

// Projection is the simplified ITBMS/ISR estimate for one window.
type Projection struct {
	Window           report.Window    `json:"window"`
	EntityType       users.EntityType `json:"entity_type"`
	ITBMSCollected   float64          `json:"itbms_collected"`
	ITBMSPaid        float64          `json:"itbms_paid"`
	ITBMSNet         float64          `json:"itbms_net"`
	ExpenseITBMSRate float64          `json:"expense_itbms_rate"`
	PeriodIncome     float64          `json:"period_income"`
	PeriodExpenses   float64          `json:"period_expenses"`
	PeriodNet        float64          `json:"period_net"`
	AnnualGross      float64          `json:"annual_gross"`
	AnnualNet        float64          `json:"annual_net"`
	ISRAnnual        float64          `json:"isr_annual"`
	CAIRApplied      bool             `json:"cair_applied"`
	Insights         []string         `json:"insights"`
	Disclaimer       string           `json:"disclaimer"`
}

// Project folds the window-filtered documents into the tax estimate. ITBMS
// collected uses each invoice's own embedded tax ratio, so mixed line-item
// rates do not get flattened into one global rate.
func Project(docs []document.Document, window report.Window, entity users.EntityType, now time.Time) Projection {
	p := Projection{
		Window:           window,
		EntityType:       entity,
		ExpenseITBMSRate: ExpenseITBMSRate,
		Disclaimer:       Disclaimer,
	}

	for _, doc := range window.Filter(docs) {
		switch doc.Type {
		case document.TypeInvoice:
			collected := doc.Collected()
			if collected <= 0 {
				continue
			}
			p.PeriodIncome += collected
			p.ITBMSCollected += collected * doc.TaxRatio()
		case document.TypeExpense:
			p.PeriodExpenses += doc.Total
			p.ITBMSPaid += doc.Total * ExpenseITBMSRate
		}
	}

	p.ITBMSNet = p.ITBMSCollected - p.ITBMSPaid
	p.PeriodNet = p.PeriodIncome - p.PeriodExpenses

	months := float64(window.Months())
	p.AnnualGross = p.PeriodIncome / months * 12
	p.AnnualNet = p.PeriodNet / months * 12

	if entity == users.EntityJuridica {
		p.ISRAnnual, p.CAIRApplied = corporateISR(p.AnnualNet, p.AnnualGross)
	} else {
		p.ISRAnnual = naturalISR(p.AnnualNet)
	}

	p.Insights = insights(p)
	return p
}

// naturalISR applies the two-bracket progressive schedule for natural
// persons.
func naturalISR(annualNet float64) float64 {
	switch {
	case annualNet <= isrExemptLimit:
		return 0
	case annualNet <= isrMidLimit:
		return (annualNet - isrExemptLimit) * isrMidRate
	default:
		return isrTopBase + (annualNet-isrMidLimit)*isrTopRate
	}
}

// corporateISR applies the flat corporate rate, or the CAIR alternate
// minimum when gross revenue exceeds the threshold.
func corporateISR(annualNet, annualGross float64) (float64, bool) {
	regular := annualNet * corporateRate
	if regular < 0 {
		regular = 0
	}
	if annualGross > cairGrossLimit {
		cair := annualGross * cairGrossRate
		if cair > regular {
			return cair, true
		}
		return regular, true
	}
	return regular, false
}

// insights evaluates the advisory rule list against fixed thresholds.
func insights(p Projection) []string {
	var out []string
	if p.ITBMSNet > 500 {
		out = append(out, fmt.Sprintf("El saldo de ITBMS por pagar supera los $500 (%.2f); considere reservar fondos para la declaración mensual.", p.ITBMSNet))
	}
	if p.EntityType != users.EntityJuridica {
		if p.AnnualNet > 45000 && p.AnnualNet <= isrMidLimit {
			out = append(out, "Su renta neta proyectada se acerca al tramo del 25% de ISR.")
		}
		if p.AnnualNet > 0 && p.AnnualNet <= isrExemptLimit {
			out = append(out, "Su renta neta proyectada queda dentro del tramo exento de ISR.")
		}
	}
	if p.CAIRApplied {
		out = append(out, "Sus ingresos brutos proyectados superan $1.5M; aplica el cálculo alterno CAIR.")
	}
	if p.PeriodExpenses == 0 && p.PeriodIncome > 0 {
		out = append(out, "No hay gastos registrados en el período; la proyección puede sobreestimar la renta neta.")
	}
	return out
}
