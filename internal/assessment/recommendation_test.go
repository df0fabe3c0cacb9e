package assessment_test

import (
	"testing"

	"github.com/Sameerk99/mental-health-hub/internal/assessment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestResolveCoversFullRange 验证分段连续且穷尽：
// 合法范围内的每个整数都解析出恰好一个非空等级，带 5 条建议。
func TestResolveCoversFullRange(t *testing.T) {
	for _, inst := range []assessment.Instrument{assessment.PHQ9, assessment.GAD7} {
		var prev string
		transitions := 0
		for score := 0; score <= inst.MaxScore(); score++ {
			tier := assessment.Resolve(inst, score)
			require.NotEmpty(t, tier.Severity, "instrument %s score %d", inst, score)
			require.Len(t, tier.Recommendations, 5, "instrument %s score %d", inst, score)
			if tier.Severity != prev {
				transitions++
				prev = tier.Severity
			}
		}
		// PHQ-9 有 5 个分段，GAD-7 有 4 个
		if inst == assessment.PHQ9 {
			assert.Equal(t, 5, transitions)
		} else {
			assert.Equal(t, 4, transitions)
		}
	}
}

func TestResolveBoundaries(t *testing.T) {
	cases := []struct {
		inst     assessment.Instrument
		score    int
		severity string
	}{
		{assessment.PHQ9, 0, "Minimal Depression"},
		{assessment.PHQ9, 4, "Minimal Depression"},
		{assessment.PHQ9, 5, "Mild Depression"},
		{assessment.PHQ9, 9, "Mild Depression"},
		{assessment.PHQ9, 10, "Moderate Depression"},
		{assessment.PHQ9, 14, "Moderate Depression"},
		{assessment.PHQ9, 15, "Moderately Severe Depression"},
		{assessment.PHQ9, 19, "Moderately Severe Depression"},
		{assessment.PHQ9, 20, "Severe Depression"},
		{assessment.PHQ9, 27, "Severe Depression"},
		{assessment.GAD7, 0, "Minimal Anxiety"},
		{assessment.GAD7, 4, "Minimal Anxiety"},
		{assessment.GAD7, 5, "Mild Anxiety"},
		{assessment.GAD7, 9, "Mild Anxiety"},
		{assessment.GAD7, 10, "Moderate Anxiety"},
		{assessment.GAD7, 14, "Moderate Anxiety"},
		{assessment.GAD7, 15, "Severe Anxiety"},
		{assessment.GAD7, 21, "Severe Anxiety"},
	}

	for _, tc := range cases {
		tier := assessment.Resolve(tc.inst, tc.score)
		assert.Equal(t, tc.severity, tier.Severity, "%s score %d", tc.inst, tc.score)
	}
}

// TestResolveIdempotent 验证解析是纯函数：相同输入两次调用内容完全一致。
func TestResolveIdempotent(t *testing.T) {
	first := assessment.Resolve(assessment.PHQ9, 12)
	second := assessment.Resolve(assessment.PHQ9, 12)
	assert.Equal(t, first, second)
}

// TestResolveClampsOutOfRange 验证越界分数按收敛后的边界值解析。
func TestResolveClampsOutOfRange(t *testing.T) {
	assert.Equal(t, "Minimal Depression", assessment.Resolve(assessment.PHQ9, -3).Severity)
	assert.Equal(t, "Severe Depression", assessment.Resolve(assessment.PHQ9, 1000).Severity)
	assert.Equal(t, "Severe Anxiety", assessment.Resolve(assessment.GAD7, 22).Severity)
}

// TestRecommendationOrder 建议按紧迫度排序，前 3 条会被聊天 grounding 取用。
func TestRecommendationOrder(t *testing.T) {
	tier := assessment.Resolve(assessment.PHQ9, 22)
	require.Len(t, tier.Recommendations, 5)
	assert.Contains(t, tier.Recommendations[0], "Immediate Care")
	assert.Contains(t, tier.Recommendations[4], "Safety Protocol")
}
