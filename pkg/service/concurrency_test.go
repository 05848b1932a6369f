package service

import (
	"fmt"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/bastiangx/effserve/pkg/dataset"
	"github.com/charmbracelet/log"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

var testKeywords = []string{
	"Perovskite", "perovskite", "Perovskyte", "silicium", "Silicon",
	"Si:H (stab", "emerging", "xyzzy", "Organic", "CIGS",
}

// generation builds a dataset whose every record carries the same Group, so a
// reader can tell which snapshot answered it.
func generation(n int) []dataset.Record {
	records := sampleRecords()
	for i := range records {
		records[i].Group = fmt.Sprintf("gen-%d", n)
	}
	return records
}

func TestConcurrentQueriesDuringReload(t *testing.T) {
	configs := []struct {
		workers             int
		iterationsPerWorker int
	}{
		{workers: 2, iterationsPerWorker: 200},
		{workers: 8, iterationsPerWorker: 50},
	}

	for _, config := range configs {
		t.Run(fmt.Sprintf("workers_%d_iter_%d", config.workers, config.iterationsPerWorker), func(t *testing.T) {
			runConcurrentTest(t, config.workers, config.iterationsPerWorker)
		})
	}
}

func runConcurrentTest(t *testing.T, workers, iterationsPerWorker int) {
	svc := newService(t, Options{})
	svc.Reload(generation(0))

	runtime.GC()
	baselineGoroutines := runtime.NumGoroutine()

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	stop := make(chan struct{})

	reloaderDone := make(chan struct{})
	go func() {
		defer close(reloaderDone)
		for n := 1; ; n++ {
			select {
			case <-stop:
				return
			default:
				svc.Reload(generation(n))
				time.Sleep(time.Millisecond)
			}
		}
	}()

	for worker := 0; worker < workers; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for iter := 0; iter < iterationsPerWorker; iter++ {
				for _, kw := range testKeywords {
					if _, err := svc.Search(kw); err != nil {
						errs <- fmt.Errorf("search %q: %w", kw, err)
						return
					}

					// all points of one history come from a single snapshot
					points := svc.History(kw)
					for _, p := range points[min(1, len(points)):] {
						if p.Lab != points[0].Lab {
							errs <- fmt.Errorf("history %q mixed snapshots: %s and %s", kw, points[0].Lab, p.Lab)
							return
						}
					}
					_ = svc.Autocomplete(kw)
				}
			}
		}()
	}

	wg.Wait()
	close(stop)
	<-reloaderDone
	close(errs)

	for err := range errs {
		t.Error(err)
	}

	runtime.GC()
	goroutineDelta := runtime.NumGoroutine() - baselineGoroutines
	t.Logf("workers=%d iter_per_worker=%d goroutine_delta=%d", workers, iterationsPerWorker, goroutineDelta)
	if goroutineDelta > 2 {
		t.Errorf("goroutine leak detected: %d goroutines leaked", goroutineDelta)
	}
}
