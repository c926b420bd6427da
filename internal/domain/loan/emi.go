package loan

import "math"

// MonthlyInstallment computes the EMI for a principal repaid over the given
// tenure in months at the given nominal annual rate (as a percentage), using
// the reducing-balance annuity formula. A zero rate degrades to straight-line
// repayment. No rounding is applied; callers decide display precision.
func MonthlyInstallment(principal Money, annualRate float64, tenure int) Money {
	monthlyRate := annualRate / 12 / 100
	if monthlyRate == 0 {
		return principal / float64(tenure)
	}
	factor := math.Pow(1+monthlyRate, float64(tenure))
	return principal * monthlyRate * factor / (factor - 1)
}
