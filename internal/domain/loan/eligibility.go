package loan

const (
	highScoreThreshold = 50
	midScoreThreshold  = 30
	lowScoreThreshold  = 10

	midTierRateFloor = 12.0
	lowTierRateFloor = 16.0

	// affordabilityRatio caps total active installments against income.
	affordabilityRatio = 0.5
)

type Decision struct {
	Approved      bool
	CorrectedRate float64
	Installment   Money
}

// Decide applies the tiered approval policy and the affordability veto.
// Tiers are evaluated in order and the first match governs; the mid and low
// tiers only approve when the requested rate already exceeds the tier floor.
// A low score with a compliant low rate is rejected outright; there is no
// rate-correction rescue path for it. The installment is always computed,
// with the corrected rate, so rejections can still report it.
func Decide(score int, requestedRate float64, tenure int, principal Money, currentEMIs Money, monthlyIncome Money) Decision {
	approved := false
	correctedRate := requestedRate

	switch {
	case score > highScoreThreshold:
		approved = true
	case score > midScoreThreshold && score <= highScoreThreshold && requestedRate > midTierRateFloor:
		approved = true
		correctedRate = max(correctedRate, midTierRateFloor)
	case score > lowScoreThreshold && score <= midScoreThreshold && requestedRate > lowTierRateFloor:
		approved = true
		correctedRate = max(correctedRate, lowTierRateFloor)
	}

	installment := MonthlyInstallment(principal, correctedRate, tenure)

	if approved && currentEMIs+installment > affordabilityRatio*monthlyIncome {
		approved = false
	}

	return Decision{
		Approved:      approved,
		CorrectedRate: correctedRate,
		Installment:   installment,
	}
}

// AffordableInstallmentCap is the ceiling on the sum of active installments
// for a given monthly income. Exceeding it (strictly) vetoes an approval.
func AffordableInstallmentCap(monthlyIncome Money) Money {
	return affordabilityRatio * monthlyIncome
}
