package scenario

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinfix/clinfix/internal/domain/organism"
	"github.com/clinfix/clinfix/internal/domain/protocol"
	"github.com/clinfix/clinfix/internal/domain/terminology"
	"github.com/clinfix/clinfix/internal/domain/timeline"
)

// Service orchestrates scenario evaluation. It holds only the immutable
// catalog and protocol configuration, so a single instance serves concurrent
// batch workers.
type Service struct {
	catalog  *terminology.Catalog
	resolver *organism.Resolver
	cfg      protocol.Set
	log      zerolog.Logger
}

// NewService creates a scenario orchestrator over the given catalog.
func NewService(catalog *terminology.Catalog, cfg protocol.Set, log zerolog.Logger) *Service {
	return &Service{
		catalog:  catalog,
		resolver: organism.NewResolver(catalog),
		cfg:      cfg,
		log:      log,
	}
}

// Evaluate runs one scenario through its protocol's rule chain and returns
// the expected-outcome record. Validation failures are reported on the
// outcome, never silently defaulted.
func (svc *Service) Evaluate(s Scenario) Outcome {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	out := Outcome{ScenarioID: s.ID, Name: s.Name, Protocol: s.Protocol}

	if err := s.Validate(); err != nil {
		out.Error = err.Error()
		return out
	}

	tl := timeline.New(s.Admitted, s.Discharged, s.Events)
	switch s.Protocol {
	case protocol.Hypoglycemia:
		out.Hypoglycemia = svc.evaluateHypoglycemia(s, tl)
	case protocol.AUR:
		out.AUR = svc.evaluateAUR(s, tl)
	case protocol.HOB:
		out.HOB = svc.evaluateHOB(s, tl)
	case protocol.Sepsis:
		out.Sepsis = svc.evaluateSepsis(s, tl)
	}

	svc.log.Debug().
		Str("scenario_id", s.ID).
		Str("protocol", string(s.Protocol)).
		Int("events", tl.Len()).
		Msg("scenario evaluated")
	return out
}

// EvaluateBatch evaluates scenarios on a bounded worker pool. Outcomes keep
// the input order. A panic in one scenario marks that outcome fatal and
// leaves the rest of the batch untouched; evaluation is deterministic, so a
// panic indicates an engine defect rather than a data problem.
func (svc *Service) EvaluateBatch(ctx context.Context, scenarios []Scenario, workers int) []Outcome {
	if workers < 1 {
		workers = 1
	}
	outs := make([]Outcome, len(scenarios))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outs[i] = svc.evaluateIsolated(scenarios[i])
			}
		}()
	}

	sent := len(scenarios)
dispatch:
	for i := range scenarios {
		select {
		case jobs <- i:
		case <-ctx.Done():
			sent = i
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	for j := sent; j < len(scenarios); j++ {
		outs[j] = Outcome{
			ScenarioID: scenarios[j].ID,
			Name:       scenarios[j].Name,
			Protocol:   scenarios[j].Protocol,
			Error:      ctx.Err().Error(),
		}
	}
	return outs
}

func (svc *Service) evaluateIsolated(s Scenario) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			svc.log.Error().
				Str("scenario_id", s.ID).
				Interface("panic", r).
				Msg("scenario evaluation panicked")
			out = Outcome{
				ScenarioID: s.ID,
				Name:       s.Name,
				Protocol:   s.Protocol,
				Error:      fmt.Sprintf("internal invariant violation: %v", r),
				Fatal:      true,
			}
		}
	}()
	return svc.Evaluate(s)
}
