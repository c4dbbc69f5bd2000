package aggregator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kbukum/fanin/errors"
	"github.com/kbukum/fanin/fanin"
	"github.com/kbukum/fanin/httpclient"
	"github.com/kbukum/fanin/logger"
	"github.com/kbukum/fanin/observability"
	"github.com/kbukum/fanin/resilience"
	"github.com/kbukum/fanin/version"
)

// UserAgent identifies the aggregator to upstreams.
var UserAgent = version.UserAgent("fanin-aggregator")

// Response is what one upstream answered.
type Response struct {
	StatusCode int
	Body       json.RawMessage
	Attempts   int
}

// Result is the per-upstream entry of a Report.
type Result struct {
	Status     string            `json:"status"`
	HTTPStatus int               `json:"http_status,omitempty"`
	Body       json.RawMessage   `json:"body,omitempty"`
	Error      *errors.ErrorBody `json:"error,omitempty"`
	Attempts   int               `json:"attempts,omitempty"`
	DurationMS int64             `json:"duration_ms"`
}

// Result statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Report is the joined answer of one aggregation.
type Report struct {
	RunID   string            `json:"run_id"`
	Mode    string            `json:"mode"`
	Results map[string]Result `json:"results"`
}

// Service runs aggregations over the configured upstreams.
type Service struct {
	upstreams []Upstream
	clients   map[string]*httpclient.Client
	coord     *fanin.Coordinator[Response]
	log       *logger.Logger
}

var _ observability.HealthChecker = (*Service)(nil)

// NewService creates one HTTP client per upstream. Each client gets its own
// circuit breaker so one failing upstream never trips another.
func NewService(cfg Config, coord *fanin.Coordinator[Response], log *logger.Logger) (*Service, error) {
	if coord == nil {
		return nil, errors.InvalidInput("coordinator", "must not be nil")
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Service{
		upstreams: cfg.Upstreams,
		clients:   make(map[string]*httpclient.Client, len(cfg.Upstreams)),
		coord:     coord,
		log:       log.WithComponent("aggregator"),
	}
	for _, up := range cfg.Upstreams {
		retry := cfg.Retry
		breaker := cfg.Breaker
		breaker.OnStateChange = s.logBreaker
		client, err := httpclient.New(httpclient.Config{
			Name:           up.Name,
			Timeout:        cfg.RequestTimeout,
			MaxBodySize:    cfg.MaxBodySize,
			UserAgent:      UserAgent,
			Retry:          &retry,
			CircuitBreaker: &breaker,
		})
		if err != nil {
			return nil, fmt.Errorf("upstream %s: %w", up.Name, err)
		}
		s.clients[up.Name] = client
	}
	return s, nil
}

// Upstreams returns the configured upstreams in configuration order.
func (s *Service) Upstreams() []Upstream {
	return append([]Upstream(nil), s.upstreams...)
}

// Mode returns the completion mode of the aggregations.
func (s *Service) Mode() fanin.Mode { return s.coord.Mode() }

// Aggregate queries the named upstreams, or all of them when names is
// empty, and joins the answers. The report is returned even on error so
// callers can serve the run ID and any partial results.
func (s *Service) Aggregate(ctx context.Context, names ...string) (*Report, error) {
	selected, err := s.selectUpstreams(names)
	if err != nil {
		return nil, err
	}

	tasks := make([]fanin.Task[Response], len(selected))
	for i, up := range selected {
		client := s.clients[up.Name]
		tasks[i] = fanin.Func(up.Name, func(ctx context.Context) (Response, error) {
			return fetch(ctx, client, up.URL)
		})
	}

	run, err := s.coord.Start(ctx, tasks, nil)
	if err != nil {
		return nil, err
	}
	results, err := run.Wait()

	report := &Report{
		RunID:   run.ID(),
		Mode:    string(s.coord.Mode()),
		Results: make(map[string]Result, results.Len()),
	}
	for _, key := range results.Keys() {
		o, _ := results.Get(key)
		report.Results[key] = toResult(o)
	}
	return report, err
}

// CheckHealth reports each upstream from the state of its circuit breaker.
func (s *Service) CheckHealth(context.Context) []observability.Health {
	out := make([]observability.Health, 0, len(s.upstreams))
	for _, up := range s.upstreams {
		cb := s.clients[up.Name].Breaker()
		state := cb.State()
		h := observability.Health{
			Name:   up.Name,
			Status: healthStatus(state),
			Details: map[string]string{
				"circuit":  state.String(),
				"failures": fmt.Sprint(cb.Failures()),
			},
		}
		if state == resilience.StateOpen {
			h.Message = "circuit open"
		}
		out = append(out, h)
	}
	return out
}

func (s *Service) selectUpstreams(names []string) ([]Upstream, error) {
	if len(names) == 0 {
		return s.upstreams, nil
	}
	selected := make([]Upstream, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		if _, ok := s.clients[name]; !ok {
			return nil, errors.InvalidInput("upstream", fmt.Sprintf("unknown upstream %q", name))
		}
		for _, up := range s.upstreams {
			if up.Name == name {
				selected = append(selected, up)
			}
		}
	}
	return selected, nil
}

func (s *Service) logBreaker(name string, from, to resilience.State) {
	fields := logger.Fields(logger.FieldUpstream, name, "from", from.String(), "to", to.String())
	if to == resilience.StateOpen {
		s.log.Warn("circuit opened", fields)
		return
	}
	s.log.Info("circuit state changed", fields)
}

func fetch(ctx context.Context, client *httpclient.Client, url string) (Response, error) {
	resp, err := client.Get(ctx, url)
	if err != nil {
		return Response{}, err
	}
	return Response{
		StatusCode: resp.StatusCode,
		Body:       jsonBody(resp.Body),
		Attempts:   resp.Attempts,
	}, nil
}

// jsonBody keeps JSON bodies as they are and encodes anything else as a
// JSON string.
func jsonBody(b []byte) json.RawMessage {
	if len(b) == 0 {
		return nil
	}
	if json.Valid(b) {
		return json.RawMessage(b)
	}
	quoted, _ := json.Marshal(string(b))
	return quoted
}

func toResult(o fanin.Outcome[Response]) Result {
	r := Result{DurationMS: o.Duration.Round(time.Millisecond).Milliseconds()}
	if o.Err != nil {
		body := errors.Wrap(o.Err).ToResponse().Error
		r.Status = StatusFailed
		r.Error = &body
		return r
	}
	r.Status = StatusOK
	r.HTTPStatus = o.Value.StatusCode
	r.Body = o.Value.Body
	r.Attempts = o.Value.Attempts
	return r
}

func healthStatus(s resilience.State) observability.HealthStatus {
	switch s {
	case resilience.StateClosed:
		return observability.HealthStatusUp
	case resilience.StateHalfOpen:
		return observability.HealthStatusDegraded
	default:
		return observability.HealthStatusDown
	}
}
