package metrics

import (
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	MetricsNamespace = "conformance"
)

var (
	Debug                bool = true
	validResults              = []string{"pass", "fail", "skip"}
	nonAlphanumericRegex      = regexp.MustCompile(`[^a-zA-Z ]+`)

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "errors_total",
		Help:      "Count of errors",
	}, []string{
		"error",
	})

	categoriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "categories_total",
		Help:      "Count of category invocations",
	}, []string{
		"run_id",
		"category",
		"result",
	})

	batchResults = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "batch_results",
		Help:      "Result of conformance batches",
	}, []string{
		"run_id",
		"result",
	})

	batchCategoryTotal = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "batch_category_total",
		Help:      "Total number of categories attempted in a batch",
	}, []string{
		"run_id",
	})

	batchCategoryPassed = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "batch_category_passed",
		Help:      "Number of passed categories in a batch",
	}, []string{
		"run_id",
	})

	batchCategoryFailed = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "batch_category_failed",
		Help:      "Number of failed categories in a batch",
	}, []string{
		"run_id",
	})

	batchDuration = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "batch_duration_seconds",
		Help:      "Duration of conformance batches",
	}, []string{
		"run_id",
	})
)

// errToLabel tries to make the error string a more valid Prometheus label
func errToLabel(err error) string {
	if err == nil {
		return "nil"
	}
	errClean := nonAlphanumericRegex.ReplaceAllString(err.Error(), "")
	errClean = strings.ReplaceAll(errClean, " ", "_")
	errClean = strings.ReplaceAll(errClean, "__", "_")
	return errClean
}

func RecordError(error string) {
	if Debug {
		slog.Debug("metric inc",
			"m", "errors_total",
			"error", error,
		)
	}
	errorsTotal.WithLabelValues(error).Inc()
}

// RecordErrorDetails concats the error message to the label
// and also tries to clean the label to be a valid Prometheus label
func RecordErrorDetails(label string, err error) {
	if err == nil {
		return
	}
	label = fmt.Sprintf("%s.%s", label, errToLabel(err))
	RecordError(label)
}

func RecordCategory(runID string, category string, result string) {
	if !isValidResult(result) {
		slog.Error("RecordCategory - invalid result", "result", result)
		return
	}
	if Debug {
		slog.Debug("metric inc",
			"m", "categories_total",
			"run_id", runID,
			"category", category,
			"result", result)
	}
	categoriesTotal.WithLabelValues(runID, category, result).Inc()
}

func RecordBatch(
	runID string,
	result string,
	total int,
	passed int,
	failed int,
	duration time.Duration,
) {
	batchResults.WithLabelValues(runID, result).Set(1)
	batchCategoryTotal.WithLabelValues(runID).Set(float64(total))
	batchCategoryPassed.WithLabelValues(runID).Set(float64(passed))
	batchCategoryFailed.WithLabelValues(runID).Set(float64(failed))
	batchDuration.WithLabelValues(runID).Set(duration.Seconds())
}

func isValidResult(result string) bool {
	return slices.Contains(validResults, result)
}
