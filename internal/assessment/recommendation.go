package assessment

// Tier 表示一个严重程度等级及其固定的建议列表。
// 建议按紧迫度/具体度从日常监测到危机方案排序，
// 顺序是契约的一部分：聊天的 prompt 构建只取前 3 条。
type Tier struct {
	Severity        string   `json:"severity"`
	Recommendations []string `json:"recommendations"`
}

// band 表示一个闭区间分数段与其对应的等级。
type band struct {
	min, max int
	tier     Tier
}

// PHQ-9 分段：[0,4] [5,9] [10,14] [15,19] [20,27]，覆盖全范围且不重叠。
var phq9Bands = []band{
	{0, 4, Tier{
		Severity: "Minimal Depression",
		Recommendations: []string{
			"Daily Practice: Maintain mood journaling with focus on positive experiences",
			"Behavioral Activation: Schedule 1 pleasurable activity daily (e.g., 15-min walk, creative hobby)",
			"Sleep Hygiene: Consistent sleep schedule (7-9 hours), no screens 1 hour before bed",
			"Social Connection: Weekly social activity with friends/family",
			"Monitoring: Retake PHQ-9 in 2 weeks or if symptoms worsen",
		},
	}},
	{5, 9, Tier{
		Severity: "Mild Depression",
		Recommendations: []string{
			"Structured Program: 6-week online CBT program (30 mins/day) focusing on cognitive restructuring",
			"Behavioral Activation: Graded task scheduling starting with small achievable goals",
			"Physical Activity: 150 mins/week moderate exercise (e.g., brisk walking, yoga)",
			"Social Prescription: Join local peer support group meeting weekly",
			"Professional Check-in: Consult GP for baseline health check within 2 weeks",
		},
	}},
	{10, 14, Tier{
		Severity: "Moderate Depression",
		Recommendations: []string{
			"Therapist Referral: Weekly CBT sessions for 8-12 weeks (45 mins/session)",
			"Medication Options: Discuss SSRI antidepressants with psychiatrist",
			"Safety Plan: Create crisis plan including emergency contacts",
			"Workplace Support: Request occupational health assessment",
			"Monitoring: Weekly PHQ-9 tracking with automatic alerts to designated contact",
		},
	}},
	{15, 19, Tier{
		Severity: "Moderately Severe Depression",
		Recommendations: []string{
			"Urgent Care: Same-day mental health team assessment",
			"Combination Therapy: SSRI medication + twice-weekly therapy sessions",
			"Daily Check-ins: Automated safety check system with crisis team",
			"Functional Support: Apply for temporary disability accommodations",
			"Crisis Plan: 24/7 access to crisis hotline and emergency contacts",
		},
	}},
	{20, 27, Tier{
		Severity: "Severe Depression",
		Recommendations: []string{
			"Immediate Care: Emergency psychiatric evaluation within 24 hours",
			"Intensive Treatment: Consider day program or inpatient care",
			"Medication Management: Daily monitoring of antidepressant regimen",
			"Social Support: Activate caregiver support network",
			"Safety Protocol: Remove access to potential self-harm means",
		},
	}},
}

// GAD-7 分段：[0,4] [5,9] [10,14] [15,21]。
var gad7Bands = []band{
	{0, 4, Tier{
		Severity: "Minimal Anxiety",
		Recommendations: []string{
			"Preventive Practice: Daily 10-min mindfulness breathing exercises",
			"Worry Management: Scheduled 15-min 'worry time' with journaling",
			"Stress Reduction: Progressive muscle relaxation before bed",
			"Lifestyle Balance: Maintain consistent work/leisure ratio",
			"Education: Complete online anxiety psychoeducation course",
		},
	}},
	{5, 9, Tier{
		Severity: "Mild Anxiety",
		Recommendations: []string{
			"CBT Tools: 8-week anxiety workbook with weekly exercises",
			"Exposure Therapy: Gradual hierarchy practice for top 3 fears",
			"Sleep Protocol: Implement strict caffeine curfew (none after 2pm)",
			"Physical Regulation: Daily diaphragmatic breathing (4-7-8 technique)",
			"Social Support: Bi-weekly anxiety management workshop",
		},
	}},
	{10, 14, Tier{
		Severity: "Moderate Anxiety",
		Recommendations: []string{
			"Specialist Referral: Weekly therapy (CBT or ACT) for 12 weeks",
			"Medication Options: Consider short-term anxiolytic use",
			"Workplace Adjustments: Flexible hours during treatment phase",
			"Sensory Regulation: Daily weighted blanket use (20 mins)",
			"Crisis Prevention: Install panic button app with GPS alerts",
		},
	}},
	{15, 21, Tier{
		Severity: "Severe Anxiety",
		Recommendations: []string{
			"Immediate Intervention: Daily therapist check-ins for 1 week",
			"Medication Plan: SSRI/SNRI trial with weekly psychiatrist reviews",
			"Functional Support: Temporary medical leave authorization",
			"Safety Measures: 24/7 crisis text line integration",
			"Intensive Program: 4-week anxiety disorder day treatment",
		},
	}},
}

// Resolve 将 (量表, 分数) 映射为推荐等级。
// 分数先被收敛到合法范围，因此解析是全函数：
// 范围内的每个整数恰好命中一个分段，不存在未知结果。
func Resolve(instrument Instrument, score int) Tier {
	score = ClampScore(instrument, score)
	bands := phq9Bands
	if instrument == GAD7 {
		bands = gad7Bands
	}
	for _, b := range bands {
		if score >= b.min && score <= b.max {
			return b.tier
		}
	}
	// 分段覆盖整个合法范围，收敛后的分数不可能走到这里。
	return bands[len(bands)-1].tier
}
