// Package assessment 实现了标准化量表的评分与推荐等级解析。
package assessment

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Instrument 表示一种标准化量表，固定为 PHQ-9 或 GAD-7 两种。
// 题目数量与最高分由量表类型决定，不做动态推导。
type Instrument string

const (
	// PHQ9 抑郁量表：9 题，每题 0-3 分，总分 0-27。
	PHQ9 Instrument = "phq9"
	// GAD7 焦虑量表：7 题，每题 0-3 分，总分 0-21。
	GAD7 Instrument = "gad7"
)

// ErrUnknownInstrument 表示量表类型不合法。
// 评分与解析本身是全函数，非法类型在进入它们之前就被拒绝。
var ErrUnknownInstrument = errors.New("unknown assessment type")

var phq9Questions = []string{
	"Little interest or pleasure in doing things?",
	"Feeling down, depressed, or hopeless?",
	"Trouble falling/staying asleep, or sleeping too much?",
	"Feeling tired or having little energy?",
	"Poor appetite or overeating?",
	"Feeling bad about yourself - worthlessness?",
	"Trouble concentrating on things?",
	"Moving/speaking slowly or being fidgety?",
	"Thoughts of self-harm or suicide?",
}

var gad7Questions = []string{
	"Feeling nervous, anxious, or on edge?",
	"Not being able to stop worrying?",
	"Worrying too much about different things?",
	"Trouble relaxing?",
	"Being so restless it's hard to sit still?",
	"Becoming easily annoyed/irritable?",
	"Feeling afraid of something awful happening?",
}

// ParseInstrument 解析量表类型字符串（不区分大小写）。
func ParseInstrument(s string) (Instrument, error) {
	switch Instrument(strings.ToLower(s)) {
	case PHQ9:
		return PHQ9, nil
	case GAD7:
		return GAD7, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownInstrument, s)
	}
}

// Questions 返回量表的题目列表。
func (i Instrument) Questions() []string {
	if i == PHQ9 {
		return phq9Questions
	}
	return gad7Questions
}

// ItemCount 返回量表的题目数量。
func (i Instrument) ItemCount() int {
	if i == PHQ9 {
		return 9
	}
	return 7
}

// MaxScore 返回量表的最高总分。
func (i Instrument) MaxScore() int {
	if i == PHQ9 {
		return 27
	}
	return 21
}

// Score 将原始答案汇总为总分。
// answers 的键为 "q1".."qN"。缺失的答案按 "0" 处理，
// 无法解析的值计 0 分，越界的值被收敛到 [0,3]，从不报错。
// 返回值必然落在 [0, MaxScore] 内。
func Score(instrument Instrument, answers map[string]string) int {
	total := 0
	for i := 1; i <= instrument.ItemCount(); i++ {
		raw, ok := answers[fmt.Sprintf("q%d", i)]
		if !ok {
			raw = "0"
		}
		value, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			value = 0
		}
		total += clamp(value, 0, 3)
	}
	return total
}

// ClampScore 将任意整数收敛到量表的合法分数范围 [0, MaxScore]。
// 即使存储或传入的分数越界，读取时也按收敛后的值处理。
func ClampScore(instrument Instrument, score int) int {
	return clamp(score, 0, instrument.MaxScore())
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
