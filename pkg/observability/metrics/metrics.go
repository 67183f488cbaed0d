package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

var (
	assessmentsTotal    atomic.Int64
	assessmentsRejected atomic.Int64
	sideChannelFailures atomic.Int64
	unknownEnumWarnings atomic.Int64
	readmissionLow      atomic.Int64
	readmissionModerate atomic.Int64
	readmissionHigh     atomic.Int64
	readmissionOther    atomic.Int64
)

// Reset zeroes every process counter.
func Reset() {
	for _, c := range []*atomic.Int64{
		&assessmentsTotal, &assessmentsRejected, &sideChannelFailures, &unknownEnumWarnings,
		&readmissionLow, &readmissionModerate, &readmissionHigh, &readmissionOther,
	} {
		c.Store(0)
	}
}

// ObserveAssessment counts a completed assessment by readmission risk level.
func ObserveAssessment(riskLevel string) {
	assessmentsTotal.Add(1)
	switch riskLevel {
	case "low":
		readmissionLow.Add(1)
	case "moderate":
		readmissionModerate.Add(1)
	case "high":
		readmissionHigh.Add(1)
	default:
		readmissionOther.Add(1)
	}
}

func ObserveRejection() {
	assessmentsRejected.Add(1)
}

func ObserveSideChannelFailure() {
	sideChannelFailures.Add(1)
}

func ObserveUnknownEnums(n int) {
	unknownEnumWarnings.Add(int64(n))
}

// Snapshot is a point-in-time copy of the process counters.
type Snapshot struct {
	Assessments         int64
	Rejected            int64
	SideChannelFailures int64
	UnknownEnums        int64
	ByRiskLevel         map[string]int64
}

func Current() Snapshot {
	return Snapshot{
		Assessments:         assessmentsTotal.Load(),
		Rejected:            assessmentsRejected.Load(),
		SideChannelFailures: sideChannelFailures.Load(),
		UnknownEnums:        unknownEnumWarnings.Load(),
		ByRiskLevel: map[string]int64{
			"low":      readmissionLow.Load(),
			"moderate": readmissionModerate.Load(),
			"high":     readmissionHigh.Load(),
		},
	}
}

func WritePrometheus(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	fmt.Fprintf(w, "# HELP mobility_assessments_total Number of assessments completed by this process.\n")
	fmt.Fprintf(w, "# TYPE mobility_assessments_total counter\n")
	fmt.Fprintf(w, "mobility_assessments_total %d\n", assessmentsTotal.Load())

	fmt.Fprintf(w, "# HELP mobility_assessments_by_readmission_risk_total Completed assessments by 30-day readmission risk level.\n")
	fmt.Fprintf(w, "# TYPE mobility_assessments_by_readmission_risk_total counter\n")
	fmt.Fprintf(w, "mobility_assessments_by_readmission_risk_total{level=\"low\"} %d\n", readmissionLow.Load())
	fmt.Fprintf(w, "mobility_assessments_by_readmission_risk_total{level=\"moderate\"} %d\n", readmissionModerate.Load())
	fmt.Fprintf(w, "mobility_assessments_by_readmission_risk_total{level=\"high\"} %d\n", readmissionHigh.Load())

	fmt.Fprintf(w, "# HELP mobility_assessments_rejected_total Number of inputs rejected by validation.\n")
	fmt.Fprintf(w, "# TYPE mobility_assessments_rejected_total counter\n")
	fmt.Fprintf(w, "mobility_assessments_rejected_total %d\n", assessmentsRejected.Load())

	fmt.Fprintf(w, "# HELP mobility_unknown_enum_values_total Unrecognised enum values accepted in lenient mode.\n")
	fmt.Fprintf(w, "# TYPE mobility_unknown_enum_values_total counter\n")
	fmt.Fprintf(w, "mobility_unknown_enum_values_total %d\n", unknownEnumWarnings.Load())

	fmt.Fprintf(w, "# HELP mobility_side_channel_failures_total Failed audit, counter or event publication attempts.\n")
	fmt.Fprintf(w, "# TYPE mobility_side_channel_failures_total counter\n")
	fmt.Fprintf(w, "mobility_side_channel_failures_total %d\n", sideChannelFailures.Load())
}
