/*
Package batch converts many parsed documents concurrently.

Conversion of a single document is pure and synchronous, so documents
are fanned out to independent workers with zero coordination: the only
shared state is the immutable Converter. Each document succeeds or
fails independently; there is no cross-document ordering guarantee
beyond the stable order of the returned outcomes.
*/
package batch

import (
	"context"
	"sync"

	"github.com/rohmanhakim/richtext-converter/internal/convert"
	"golang.org/x/net/html"
)

// Job is one parsed document to convert. ID is caller-defined
// (typically the source path) and is echoed back on the outcome.
type Job struct {
	ID   string
	Root *html.Node
}

// Outcome pairs a job with its conversion result. Converted is false
// when the batch was cancelled before or while the document was being
// converted; a cancelled document's output is never emitted.
type Outcome struct {
	ID        string
	Converted bool
	Result    convert.Result
}

// Run converts jobs with up to concurrency workers and returns one
// outcome per job, in job order.
func Run(ctx context.Context, conv convert.Converter, jobs []Job, concurrency int) []Outcome {
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > len(jobs) {
		concurrency = len(jobs)
	}

	outcomes := make([]Outcome, len(jobs))
	for i, job := range jobs {
		outcomes[i] = Outcome{ID: job.ID}
	}
	if len(jobs) == 0 {
		return outcomes
	}

	indices := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				result := conv.Convert(jobs[i].Root)
				// All-or-nothing: a conversion finishing after
				// cancellation is discarded, not emitted.
				if ctx.Err() != nil {
					return
				}
				outcomes[i].Converted = true
				outcomes[i].Result = result
			}
		}()
	}

	for i := range jobs {
		select {
		case <-ctx.Done():
			close(indices)
			wg.Wait()
			return outcomes
		case indices <- i:
		}
	}
	close(indices)
	wg.Wait()
	return outcomes
}
