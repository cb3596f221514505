package service

import (
	"github.com/shopspring/decimal"

	"examtrack/internal/models"
)

// Four-option multiple choice: four wrong answers cancel one correct one.
var penaltyDivisor = decimal.NewFromInt(4)

// scoreTolerance bounds how far a vendor-supplied net may drift from the
// recomputed value before it is flagged.
var scoreTolerance = decimal.RequireFromString("0.01")

// ComputeLessonScore turns raw counts into a scored lesson. The net is
// correct - wrong/4, exact decimal, rounded half-up to two places, and is
// deliberately not clamped at zero. A vendor-supplied net takes precedence
// verbatim (it may embed the vendor's own rounding rule); the derived
// value is still computed and the second return value reports whether the
// two diverge beyond tolerance.
func ComputeLessonScore(lessonName string, cells LessonCells) (models.LessonScore, bool) {
	derived := deriveNet(cells.Correct, cells.Wrong)

	score := models.LessonScore{
		LessonName: lessonName,
		Correct:    cells.Correct,
		Wrong:      cells.Wrong,
		Blank:      cells.Blank,
		Net:        derived,
	}
	if cells.Net == nil {
		return score, false
	}
	score.Net = *cells.Net
	mismatch := cells.Net.Sub(derived).Abs().GreaterThan(scoreTolerance)
	return score, mismatch
}

func deriveNet(correct, wrong int) decimal.Decimal {
	net := decimal.NewFromInt(int64(correct)).
		Sub(decimal.NewFromInt(int64(wrong)).Div(penaltyDivisor))
	// Round half away from zero to two places. wrong/4 is exact at two
	// decimals, so this only matters for vendor comparison symmetry.
	return net.Round(2)
}

// TotalNet sums lesson nets exactly; the result does not depend on lesson
// order.
func TotalNet(scores []models.LessonScore) decimal.Decimal {
	total := decimal.Zero
	for _, s := range scores {
		total = total.Add(s.Net)
	}
	return total
}
