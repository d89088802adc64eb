package safety

import (
	"errors"
	"testing"
)

func TestGrade(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{100, "A"},
		{92, "A"},
		{90, "A"},
		{89.9, "B"},
		{80, "B"},
		{75, "C"},
		{70, "C"},
		{64.2, "D"},
		{60, "D"},
		{59.9, "F"},
		{30, "F"},
	}
	for _, tt := range tests {
		if got := Grade(tt.score); got != tt.want {
			t.Errorf("Grade(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestRiskColor(t *testing.T) {
	tests := []struct {
		level RiskLevel
		want  string
	}{
		{RiskLow, "#10b981"},
		{RiskMedium, "#f59e0b"},
		{RiskHigh, "#ef4444"},
		{"unknown", "#6b7280"},
		{"", "#6b7280"},
	}
	for _, tt := range tests {
		if got := RiskColor(tt.level); got != tt.want {
			t.Errorf("RiskColor(%q) = %s, want %s", tt.level, got, tt.want)
		}
	}
}

func TestNagpurStatistics(t *testing.T) {
	a := NagpurStatistics()
	if a.TotalAccidents != 327 || a.TotalBlackspots != 23 {
		t.Errorf("got %d accidents / %d blackspots, want 327 / 23", a.TotalAccidents, a.TotalBlackspots)
	}
	if len(a.Zones) != 9 {
		t.Errorf("zones = %d, want 9", len(a.Zones))
	}
	a.Zones["Pardi"] = 0
	if NagpurStatistics().Zones["Pardi"] != 48 {
		t.Error("zones map shared between calls")
	}
}

func TestReportValidate(t *testing.T) {
	tests := []struct {
		name    string
		report  Report
		wantErr bool
	}{
		{"low", Report{SafetyScore: 92, RiskLevel: RiskLow}, false},
		{"bounds", Report{SafetyScore: 0, RiskLevel: RiskHigh}, false},
		{"top", Report{SafetyScore: 100, RiskLevel: RiskMedium}, false},
		{"empty", Report{}, true},
		{"unknown level", Report{SafetyScore: 80, RiskLevel: "extreme"}, true},
		{"negative score", Report{SafetyScore: -1, RiskLevel: RiskLow}, true},
		{"score over 100", Report{SafetyScore: 100.5, RiskLevel: RiskLow}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.report.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrMalformedReport) {
				t.Errorf("Validate() = %v, want ErrMalformedReport", err)
			}
		})
	}
}

func TestReportClone(t *testing.T) {
	r := &Report{
		SafetyScore:      70,
		RiskLevel:        RiskMedium,
		HighRiskSegments: []Segment{{Location: "Pardi", RiskScore: 75}},
		Recommendations:  []string{"Drive slowly"},
	}
	c := r.Clone()
	c.HighRiskSegments[0].Location = "changed"
	c.Recommendations[0] = "changed"
	if r.HighRiskSegments[0].Location != "Pardi" || r.Recommendations[0] != "Drive slowly" {
		t.Error("clone shares slices with the original")
	}
}
