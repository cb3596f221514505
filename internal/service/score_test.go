package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"examtrack/internal/models"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeLessonScoreDerived(t *testing.T) {
	cases := []struct {
		correct, wrong int
		want           string
	}{
		{20, 4, "19"},
		{10, 3, "9.25"},
		{30, 8, "28"},
		{25, 3, "24.25"},
		{0, 0, "0"},
		{0, 10, "-2.5"}, // negative net is valid and preserved
		{40, 0, "40"},
	}
	for _, c := range cases {
		score, mismatch := ComputeLessonScore("Türkçe", LessonCells{Correct: c.correct, Wrong: c.wrong})
		assert.True(t, dec(c.want).Equal(score.Net), "correct=%d wrong=%d: got %s", c.correct, c.wrong, score.Net)
		assert.False(t, mismatch)
	}
}

func TestComputeLessonScoreVendorNetWins(t *testing.T) {
	vendor := dec("18.9")
	score, mismatch := ComputeLessonScore("Türkçe", LessonCells{Correct: 20, Wrong: 4, Net: &vendor})
	assert.True(t, vendor.Equal(score.Net), "vendor net must be kept verbatim")
	assert.True(t, mismatch, "derived 19 vs vendor 18.9 exceeds tolerance")
}

func TestComputeLessonScoreVendorNetWithinTolerance(t *testing.T) {
	vendor := dec("19.00")
	score, mismatch := ComputeLessonScore("Türkçe", LessonCells{Correct: 20, Wrong: 4, Net: &vendor})
	assert.True(t, vendor.Equal(score.Net))
	assert.False(t, mismatch)

	close := dec("19.01")
	_, mismatch = ComputeLessonScore("Türkçe", LessonCells{Correct: 20, Wrong: 4, Net: &close})
	assert.False(t, mismatch, "0.01 drift is within tolerance")
}

func TestComputeLessonScoreKeepsBlank(t *testing.T) {
	blank := 16
	score, _ := ComputeLessonScore("Türkçe", LessonCells{Correct: 20, Wrong: 4, Blank: &blank})
	if assert.NotNil(t, score.Blank) {
		assert.Equal(t, 16, *score.Blank)
	}

	score, _ = ComputeLessonScore("Türkçe", LessonCells{Correct: 20, Wrong: 4})
	assert.Nil(t, score.Blank, "blank stays unknown when the sheet has no blank column")
}

func TestTotalNetOrderIndependent(t *testing.T) {
	scores := []models.LessonScore{
		{LessonName: "Türkçe", Net: dec("28")},
		{LessonName: "Temel Matematik", Net: dec("24.25")},
		{LessonName: "Fen Bilimleri", Net: dec("-0.5")},
	}
	want := dec("51.75")
	assert.True(t, want.Equal(TotalNet(scores)))

	reversed := []models.LessonScore{scores[2], scores[1], scores[0]}
	assert.True(t, want.Equal(TotalNet(reversed)))
}
