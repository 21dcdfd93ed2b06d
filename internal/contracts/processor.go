package contracts

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ksred/actus-api/internal/codec"
	"github.com/ksred/actus-api/internal/schedule"
)

// Processor drives schedule-due events for active contracts: on each tick
// it derives the contractual schedule and applies every event whose
// adjusted settlement date has been reached. Events flow through the same
// service path as external calls, so ordering and idempotency guarantees
// are identical.
type Processor struct {
	service      *Service
	processDelay time.Duration // Time between schedule processing attempts
}

func NewProcessor(service *Service, processDelay time.Duration) *Processor {
	return &Processor{
		service:      service,
		processDelay: processDelay,
	}
}

// Start begins the schedule processing loop
func (p *Processor) Start(ctx context.Context) {
	logger := log.With().Str("component", "schedule_processor").Logger()
	logger.Info().Msg("starting schedule processor")

	ticker := time.NewTicker(p.processDelay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("shutting down schedule processor")
			return
		case <-ticker.C:
			if err := p.processDueEvents(time.Now()); err != nil {
				logger.Error().Err(err).Msg("failed to process due events")
			}
		}
	}
}

func (p *Processor) processDueEvents(now time.Time) error {
	logger := log.With().Str("component", "schedule_processor").Logger()

	contracts, err := p.service.GetDB().GetActiveContracts()
	if err != nil {
		return err
	}

	logger.Debug().Int("active_count", len(contracts)).Msg("scanning active contracts")

	for _, contract := range contracts {
		if err := p.processContract(&contract, now); err != nil {
			logger.Error().
				Err(err).
				Str("contract_id", contract.ContractID).
				Msg("failed to process contract schedule")
			continue
		}
	}

	return nil
}

// processContract applies, in order, every schedule event whose adjusted
// settlement date has been reached. The engine is keyed by the unadjusted
// calendar date; the adjusted date only decides when the event becomes due.
func (p *Processor) processContract(contract *Contract, now time.Time) error {
	logger := log.With().
		Str("component", "schedule_processor").
		Str("contract_id", contract.ContractID).
		Logger()

	terms, err := codec.UnmarshalTerms(contract.TermsBlob)
	if err != nil {
		return err
	}
	gen, err := schedule.NewGenerator(terms)
	if err != nil {
		return err
	}

	for _, ev := range gen.Generate() {
		if ev.Day.Adjusted.After(now) {
			break
		}
		timestamp := ev.Day.Unadjusted.Unix()
		if timestamp < contract.StatusDate {
			continue
		}

		applied, err := p.service.GetDB().HasEvent(contract.ContractID, uint8(ev.Type), timestamp)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		result, err := p.service.ProcessEvent(contract.ContractID, uint8(ev.Type), timestamp, "")
		if err != nil {
			// A rejected schedule event is not fatal for the scan; the
			// contract stays as-is and the next tick retries.
			logger.Warn().
				Err(err).
				Str("event_type", ev.Type.String()).
				Int64("timestamp", timestamp).
				Msg("schedule event rejected")
			return nil
		}

		logger.Info().
			Str("event_id", result.EventID).
			Str("event_type", result.EventType).
			Int64("timestamp", result.Timestamp).
			Msg("schedule event applied")

		// Reload the denormalized state so later events in the same scan
		// see the advanced status date.
		refreshed, err := p.service.GetDB().GetContract(contract.ContractID)
		if err != nil {
			return err
		}
		*contract = *refreshed
		if contract.Status != StatusActive {
			return nil
		}
	}

	return nil
}
