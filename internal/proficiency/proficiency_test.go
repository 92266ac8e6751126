package proficiency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_RuleTable(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
		want   Level
	}{
		{"all low", []float64{20, 25, 10}, Beginner},
		{"all high", []float64{80, 85, 95}, Advanced},
		{"two mid one high", []float64{45, 50, 90}, Intermediate},
		{"two mid one low", []float64{45, 50, 10}, Intermediate},
		{"two high one low", []float64{90, 75, 10}, Advanced},
		{"two high one mid", []float64{90, 75, 50}, Advanced},
		{"two low one high", []float64{10, 20, 95}, Beginner},
		{"two low one mid", []float64{10, 20, 50}, Beginner},
		{"one of each", []float64{10, 50, 90}, Intermediate},
		{"boundary 30 is mid", []float64{30, 30, 30}, Intermediate},
		{"boundary 70 is high", []float64{70, 70, 70}, Advanced},
		{"just under 30 is low", []float64{29.99, 29.99, 29.99}, Beginner},
		{"just under 70 is mid", []float64{69.99, 69.99, 69.99}, Intermediate},
		{"zeroes", []float64{0, 0, 0}, Beginner},
		{"perfect", []float64{100, 100, 100}, Advanced},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Classify(tt.scores)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_OrderIndependent(t *testing.T) {
	scores := []float64{10, 50, 90}
	perms := [][3]int{{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0}}

	for _, p := range perms {
		got, ok := Classify([]float64{scores[p[0]], scores[p[1]], scores[p[2]]})
		assert.True(t, ok)
		assert.Equal(t, Intermediate, got)
	}

	perms2 := [][3]float64{{90, 75, 10}, {10, 90, 75}, {75, 10, 90}}
	for _, s := range perms2 {
		got, _ := Classify(s[:])
		assert.Equal(t, Advanced, got)
	}
}

func TestClassify_InsufficientHistory(t *testing.T) {
	for _, scores := range [][]float64{nil, {}, {95}, {95, 90}} {
		_, ok := Classify(scores)
		assert.False(t, ok, "scores=%v", scores)
	}
}

func TestClassify_IgnoresScoresBeyondWindow(t *testing.T) {
	// 仅最近 3 条参与分类，第 4 条及以后忽略
	got, ok := Classify([]float64{80, 85, 95, 5, 5, 5})
	assert.True(t, ok)
	assert.Equal(t, Advanced, got)
}

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"beginner", "intermediate", "advanced"} {
		l, err := ParseLevel(s)
		assert.NoError(t, err)
		assert.Equal(t, s, l.String())
	}

	for _, s := range []string{"", "expert", "Novice", "BEGINNER", "competent"} {
		_, err := ParseLevel(s)
		assert.Error(t, err, "level=%q", s)
	}
}
