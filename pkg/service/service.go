/*
Package service exposes the query operations of EffServe over the active dataset snapshot.

Every operation reads the current snapshot once when it starts and runs against
that snapshot until it returns, so a concurrent Reload never shows a caller a
half-built table.

	svc, _ := service.New(service.Options{})
	svc.Reload(records)

	resp, err := svc.Search("silicium")
	switch {
	case errors.Is(err, service.ErrDataUnavailable):
		// nothing loaded yet
	case err != nil:
		// recovered internal failure
	case !resp.Found:
		// no match
	}

Search reports failures as errors. History, Autocomplete and Suggestions never
fail: they degrade to an empty list.
*/
package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bastiangx/effserve/internal/logger"
	"github.com/bastiangx/effserve/pkg/dataset"
	"github.com/bastiangx/effserve/pkg/metrics"
	"github.com/bastiangx/effserve/pkg/search"
	"github.com/bastiangx/effserve/pkg/suggest"
	"github.com/bastiangx/effserve/pkg/terms"
	"github.com/charmbracelet/log"
)

var (
	// ErrDataUnavailable is returned by Search when no snapshot or an empty one is loaded.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrInternal wraps unexpected failures recovered while answering a query.
	ErrInternal = errors.New("internal processing error")
)

// Unknown replaces a missing efficiency or measurement date in SearchData.
const Unknown = "unknown"

// SearchData describes the best record of a search.
type SearchData struct {
	Efficiency string `json:"efficiency" msgpack:"efficiency"`
	UpdateDate string `json:"update_date" msgpack:"update_date"`
	Laboratory string `json:"laboratory" msgpack:"laboratory"`
	Technology string `json:"technology" msgpack:"technology"`
	Category   string `json:"category" msgpack:"category"`
}

// SearchResponse is the answer to a point query. Data is set only when Found.
type SearchResponse struct {
	Found   bool        `json:"found" msgpack:"found"`
	Keyword string      `json:"keyword" msgpack:"keyword"`
	Data    *SearchData `json:"data,omitempty" msgpack:"data,omitempty"`
	Message string      `json:"message,omitempty" msgpack:"message,omitempty"`
}

// ReloadResult reports the size of the snapshot installed by a reload.
type ReloadResult struct {
	TotalRecords int `json:"total_records" msgpack:"total_records"`
}

// Health describes the active snapshot.
type Health struct {
	Loaded   bool      `json:"loaded" msgpack:"loaded"`
	Records  int       `json:"records" msgpack:"records"`
	Version  uint64    `json:"version" msgpack:"version"`
	LoadedAt time.Time `json:"loaded_at" msgpack:"loaded_at"`
}

// Options configures a Service. The zero value uses the defaults of every component.
type Options struct {
	Search             search.Options
	Terms              map[string]string
	AutocompleteLimit  int
	AutocompleteMinLen int
	Metrics            *metrics.Metrics
	Logger             *log.Logger
}

// Service answers queries against the snapshot held in its store.
type Service struct {
	store     *dataset.Store
	resolver  *search.Resolver
	completer suggest.ICompleter
	metrics   *metrics.Metrics
	log       *log.Logger
}

// New creates a service with no data loaded.
func New(opts Options) (*Service, error) {
	if opts.Logger == nil {
		opts.Logger = logger.New("service")
	}
	if opts.Search.Logger == nil {
		opts.Search.Logger = opts.Logger.WithPrefix("search")
	}

	resolver, err := search.NewResolver(terms.New(opts.Terms), opts.Search)
	if err != nil {
		return nil, fmt.Errorf("failed to create resolver: %w", err)
	}

	return &Service{
		store:     dataset.NewStore(),
		resolver:  resolver,
		completer: suggest.NewCompleter(opts.AutocompleteLimit, opts.AutocompleteMinLen),
		metrics:   opts.Metrics,
		log:       opts.Logger,
	}, nil
}

// Search returns the best record for keyword.
func (s *Service) Search(keyword string) (resp SearchResponse, err error) {
	start := time.Now()
	outcome := metrics.OutcomeError
	defer func() {
		if p := recover(); p != nil {
			s.log.Errorf("Search for %q failed: %v", keyword, p)
			resp, err = SearchResponse{}, fmt.Errorf("%w: %v", ErrInternal, p)
			outcome = metrics.OutcomeError
		}
		s.metrics.ObserveQuery("search", outcome, time.Since(start))
	}()

	snap := s.store.Current()
	if snap.Empty() {
		outcome = metrics.OutcomeUnavailable
		return SearchResponse{}, ErrDataUnavailable
	}

	res := s.resolver.Resolve(snap, keyword)
	s.metrics.ObserveTier(res.Tier.String())

	best, ok := search.Best(res.Records)
	if !ok {
		outcome = metrics.OutcomeNotFound
		return SearchResponse{
			Found:   false,
			Keyword: keyword,
			Message: "Not found: " + keyword,
		}, nil
	}

	outcome = metrics.OutcomeFound
	s.log.Debugf("Search %q resolved to %q via %s", keyword, res.Term, res.Tier)
	return SearchResponse{
		Found:   true,
		Keyword: keyword,
		Data: &SearchData{
			Efficiency: formatEfficiency(best.Efficiency),
			UpdateDate: formatDate(best.MeasurementDate),
			Laboratory: best.Group,
			Technology: best.CellType,
			Category:   best.MaterialClass,
		},
	}, nil
}

// History returns the measurement history for keyword, oldest first.
// It never fails; errors are logged and yield an empty list.
func (s *Service) History(keyword string) []search.Point {
	start := time.Now()
	h := s.resolver.History(s.store.Current(), keyword)

	outcome := metrics.OutcomeOK
	if h.Err != nil {
		outcome = metrics.OutcomeError
		s.log.Errorf("History for %q degraded to empty: %v", keyword, h.Err)
	} else {
		s.metrics.ObserveTier(h.Tier.String())
	}
	s.metrics.ObserveQuery("history", outcome, time.Since(start))
	return h.Points
}

// Autocomplete returns the CellType labels containing query.
func (s *Service) Autocomplete(query string) (labels []string) {
	start := time.Now()
	outcome := metrics.OutcomeOK
	defer func() {
		if p := recover(); p != nil {
			s.log.Errorf("Autocomplete for %q failed: %v", query, p)
			labels, outcome = []string{}, metrics.OutcomeError
		}
		s.metrics.ObserveQuery("autocomplete", outcome, time.Since(start))
	}()
	return s.completer.Complete(s.store.Current(), query)
}

// Suggestions returns the fixed example technologies.
func (s *Service) Suggestions() []string {
	s.metrics.ObserveQuery("suggestions", metrics.OutcomeOK, 0)
	return s.completer.Suggestions()
}

// Reload replaces the active snapshot with records.
func (s *Service) Reload(records []dataset.Record) ReloadResult {
	snap := dataset.NewSnapshot(records)
	s.store.Swap(snap)
	s.resolver.Cache().Purge()
	s.metrics.ObserveReload(snap.Len(), nil)
	s.log.Infof("Loaded %d records (snapshot %d)", snap.Len(), snap.Version())
	return ReloadResult{TotalRecords: snap.Len()}
}

// ReloadFile loads a dataset file and installs it. On error the active
// snapshot is left untouched.
func (s *Service) ReloadFile(path string) (ReloadResult, error) {
	records, err := dataset.LoadFile(path)
	if err != nil {
		s.metrics.ObserveReload(0, err)
		return ReloadResult{}, err
	}
	return s.Reload(records), nil
}

// Health reports on the active snapshot.
func (s *Service) Health() Health {
	snap := s.store.Current()
	if snap == nil {
		return Health{}
	}
	return Health{
		Loaded:   !snap.Empty(),
		Records:  snap.Len(),
		Version:  snap.Version(),
		LoadedAt: snap.LoadedAt(),
	}
}

// Stats returns counters of the service components.
func (s *Service) Stats() map[string]int {
	stats := map[string]int{
		"records":        s.store.Current().Len(),
		"fuzzyThreshold": s.resolver.Threshold(),
	}
	for k, v := range s.resolver.Cache().Stats() {
		stats[k] = v
	}
	for k, v := range s.completer.Stats() {
		stats[k] = v
	}
	return stats
}

// formatEfficiency renders a percentage the way a float prints in a
// report: always at least one decimal, "20.0%" rather than "20%".
func formatEfficiency(eff *float64) string {
	if eff == nil {
		return Unknown
	}
	s := strconv.FormatFloat(*eff, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s + "%"
}

func formatDate(d *time.Time) string {
	if d == nil {
		return Unknown
	}
	return d.Format("2006-01-02")
}
