package safety

// Grade maps a 0-100 safety score to a letter: 90 and above is A, then B,
// C and D in steps of ten, anything below 60 is F.
func Grade(score float64) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

// RiskColor returns the display colour of a risk level.
func RiskColor(level RiskLevel) string {
	switch level {
	case RiskLow:
		return "#10b981"
	case RiskMedium:
		return "#f59e0b"
	case RiskHigh:
		return "#ef4444"
	default:
		return "#6b7280"
	}
}
