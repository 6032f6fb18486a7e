package risk

import (
	"math"
	"sort"
)

// VaRResult holds Value-at-Risk figures for one confidence level. Losses
// are expressed as positive numbers: VaR 0.05 means a 5% one-day loss.
type VaRResult struct {
	Confidence float64 `json:"confidence"`
	VaR        float64 `json:"var"`
	CVaR       float64 `json:"cvar"`
}

// HistoricalVaR computes VaR and CVaR from a daily return series by
// historical simulation: VaR is the (1-confidence) percentile of the
// sorted returns, CVaR the mean of the tail at or below it.
func HistoricalVaR(returns []float64, confidence float64) VaRResult {
	if len(returns) == 0 {
		return VaRResult{Confidence: confidence}
	}

	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)

	percentile := 1.0 - confidence
	idx := int(math.Floor(percentile * float64(len(sorted))))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}

	varValue := 0.0
	if sorted[idx] < 0 {
		varValue = -sorted[idx]
	}

	return VaRResult{
		Confidence: confidence,
		VaR:        varValue,
		CVaR:       tailLoss(sorted, idx),
	}
}

// tailLoss averages the sorted returns up to and including varIdx,
// expressed as a positive loss
func tailLoss(sorted []float64, varIdx int) float64 {
	if len(sorted) == 0 || varIdx < 0 {
		return 0
	}

	var sum float64
	count := 0
	for i := 0; i <= varIdx && i < len(sorted); i++ {
		sum += sorted[i]
		count++
	}
	if count == 0 {
		return 0
	}

	avg := sum / float64(count)
	if avg < 0 {
		return -avg
	}
	return 0
}

// ParametricVaR computes VaR under a normal assumption from the mean and
// standard deviation of daily returns. The mean term is dropped: at daily
// horizons it is negligible against the volatility term.
func ParametricVaR(stdDev, confidence float64) VaRResult {
	z := normInv(confidence)

	varValue := z * stdDev
	if varValue < 0 {
		varValue = 0
	}

	cvar := varValue
	if confidence < 1 {
		cvar = varValue + stdDev*normPDF(z)/(1-confidence)
	}

	return VaRResult{
		Confidence: confidence,
		VaR:        varValue,
		CVaR:       cvar,
	}
}

// normInv is the standard normal quantile function
// (Beasley-Springer-Moro approximation)
func normInv(p float64) float64 {
	if p <= 0 || p >= 1 {
		return 0
	}

	switch p {
	case 0.99:
		return 2.326
	case 0.95:
		return 1.645
	case 0.90:
		return 1.282
	case 0.975:
		return 1.96
	}

	a := []float64{
		-3.969683028665376e+01,
		2.209460984245205e+02,
		-2.759285104469687e+02,
		1.383577518672690e+02,
		-3.066479806614716e+01,
		2.506628277459239e+00,
	}
	b := []float64{
		-5.447609879822406e+01,
		1.615858368580409e+02,
		-1.556989798598866e+02,
		6.680131188771972e+01,
		-1.328068155288572e+01,
	}
	c := []float64{
		-7.784894002430293e-03,
		-3.223964580411365e-01,
		-2.400758277161838e+00,
		-2.549732539343734e+00,
		4.374664141464968e+00,
		2.938163982698783e+00,
	}
	d := []float64{
		7.784695709041462e-03,
		3.224671290700398e-01,
		2.445134137142996e+00,
		3.754408661907416e+00,
	}

	pLow := 0.02425
	pHigh := 1 - pLow

	var q, r float64

	switch {
	case p < pLow:
		q = math.Sqrt(-2 * math.Log(p))
		return (((((c[0]*q+c[1])*q+c[2])*q+c[3])*q+c[4])*q + c[5]) /
			((((d[0]*q+d[1])*q+d[2])*q+d[3])*q + 1)
	case p <= pHigh:
		q = p - 0.5
		r = q * q
		return (((((a[0]*r+a[1])*r+a[2])*r+a[3])*r+a[4])*r + a[5]) * q /
			(((((b[0]*r+b[1])*r+b[2])*r+b[3])*r+b[4])*r + 1)
	default:
		q = math.Sqrt(-2 * math.Log(1-p))
		return -(((((c[0]*q+c[1])*q+c[2])*q+c[3])*q+c[4])*q + c[5]) /
			((((d[0]*q+d[1])*q+d[2])*q+d[3])*q + 1)
	}
}

// normPDF is the standard normal density
func normPDF(x float64) float64 {
	return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
}
