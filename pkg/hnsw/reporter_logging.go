package hnsw

import (
	"time"

	"github.com/arborist-labs/hnswgraph/pkg/logging"
)

// LoggingReporter emits one structured log line per event via pkg/logging.
type LoggingReporter struct {
	log logging.Logger
}

// NewLoggingReporter wraps logger as an EventReporter. A nil logger falls
// back to logging.DefaultLogger().
func NewLoggingReporter(logger logging.Logger) *LoggingReporter {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &LoggingReporter{log: logger.With(logging.Field{Key: "component", Value: "hnsw"})}
}

func (r *LoggingReporter) OnItemsAdded(count int, elapsed time.Duration) {
	r.log.Info("items added",
		logging.Field{Key: "count", Value: count},
		logging.Field{Key: "elapsed_ms", Value: elapsed.Milliseconds()},
	)
}

func (r *LoggingReporter) OnSearchCompleted(k, ef int, elapsed time.Duration, retries int) {
	r.log.Debug("search completed",
		logging.Field{Key: "k", Value: k},
		logging.Field{Key: "ef", Value: ef},
		logging.Field{Key: "elapsed_us", Value: elapsed.Microseconds()},
		logging.Field{Key: "retries", Value: retries},
	)
}

func (r *LoggingReporter) OnGraphChangedRetry(attempt int) {
	r.log.Warn("graph changed during search, retrying",
		logging.Field{Key: "attempt", Value: attempt},
	)
}
