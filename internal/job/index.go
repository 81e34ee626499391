package job

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/tradeease/tradeease/pkg/caldate"
)

// DateIndex groups jobs by canonical date key.
type DateIndex map[string][]ScheduledJob

// IndexByDate groups jobs by their date key in a single pass. Jobs without a
// parseable date are logged and left out; the rest keep their input order
// within each bucket.
func IndexByDate(jobs []ScheduledJob, log zerolog.Logger) DateIndex {
	index := make(DateIndex)
	skipped := 0

	for _, j := range jobs {
		d, err := j.ScheduledDate()
		if err != nil {
			skipped++
			log.Warn().
				Str("job_id", j.ID).
				Str("date", j.Date).
				Err(err).
				Msg("skipping job with unparseable date")
			continue
		}
		key := d.Key()
		index[key] = append(index[key], j)
	}

	if skipped > 0 {
		log.Debug().
			Int("indexed", len(jobs)-skipped).
			Int("skipped", skipped).
			Msg("indexed jobs by date")
	}

	return index
}

// For returns the jobs scheduled on d.
func (idx DateIndex) For(d caldate.Date) []ScheduledJob {
	return idx[d.Key()]
}

// Count returns the number of jobs scheduled on d.
func (idx DateIndex) Count(d caldate.Date) int {
	return len(idx[d.Key()])
}

// Keys returns the indexed date keys in ascending order.
func (idx DateIndex) Keys() []string {
	keys := make([]string, 0, len(idx))
	for k := range idx {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Total returns the number of indexed jobs.
func (idx DateIndex) Total() int {
	n := 0
	for _, jobs := range idx {
		n += len(jobs)
	}
	return n
}
