package usecase

import (
	"fmt"
	"strings"

	"github.com/Darksun1310/forensic-persona-linker/internal/domain"
)

// classLabels are the display names used in evaluation reports
var classLabels = [2]string{"No Match", "Match"}

// Evaluate compares predictions against true labels and summarises each class
func Evaluate(trueLabels, predicted []int) (*domain.EvaluationReport, error) {
	if len(trueLabels) != len(predicted) {
		return nil, fmt.Errorf("evaluate: %d labels but %d predictions", len(trueLabels), len(predicted))
	}

	// confusion[actual][predicted]
	var confusion [2][2]int
	correct := 0
	for i, actual := range trueLabels {
		p := predicted[i]
		if actual < 0 || actual > 1 || p < 0 || p > 1 {
			return nil, fmt.Errorf("evaluate: row %d has non-binary label", i)
		}
		confusion[actual][p]++
		if actual == p {
			correct++
		}
	}

	report := &domain.EvaluationReport{TestSize: len(trueLabels)}
	if len(trueLabels) > 0 {
		report.Accuracy = float64(correct) / float64(len(trueLabels))
	}
	for class := 0; class < 2; class++ {
		tp := confusion[class][class]
		fp := confusion[1-class][class]
		fn := confusion[class][1-class]
		precision := ratio(tp, tp+fp)
		recall := ratio(tp, tp+fn)
		f1 := 0.0
		if precision+recall > 0 {
			f1 = 2 * precision * recall / (precision + recall)
		}
		report.Classes = append(report.Classes, domain.ClassMetrics{
			Label:     classLabels[class],
			Precision: precision,
			Recall:    recall,
			F1:        f1,
			Support:   tp + fn,
		})
	}
	return report, nil
}

// FormatEvaluation renders a report as a fixed-width table for logs
func FormatEvaluation(report *domain.EvaluationReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%10s %9s %9s %9s %9s\n", "", "precision", "recall", "f1-score", "support")
	for _, c := range report.Classes {
		fmt.Fprintf(&b, "%10s %9.2f %9.2f %9.2f %9d\n", c.Label, c.Precision, c.Recall, c.F1, c.Support)
	}
	fmt.Fprintf(&b, "%10s %29.2f %9d", "accuracy", report.Accuracy, report.TestSize)
	return b.String()
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
