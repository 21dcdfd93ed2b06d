package contracts

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/ksred/actus-api/internal/codec"
	"github.com/ksred/actus-api/internal/money"
	"github.com/ksred/actus-api/internal/schedule"
	"github.com/ksred/actus-api/internal/transition"
	"github.com/ksred/actus-api/internal/types"
	"github.com/ksred/actus-api/pkg/response"
)

const (
	StatusActive    = "ACTIVE"
	StatusMatured   = "MATURED"
	StatusDefaulted = "DEFAULTED"
)

// Service is the contract facade: it validates and stores terms, delegates
// events to the transition engine, and persists the resulting state. It
// performs no financial logic itself.
type Service struct {
	db *Database
}

// NewService creates a new contract service with the given database
// connection.
func NewService(gormDB *gorm.DB) *Service {
	return &Service{
		db: NewDatabase(gormDB),
	}
}

// InitContract validates the vocabulary codes, terms, and schedule
// configuration, then persists the terms blob together with the default
// state. Terms are immutable from here on.
func (s *Service) InitContract(req *InitContractRequest) (*types.ContractResponse, error) {
	contractType, err := types.ParseContractType(req.ContractType)
	if err != nil {
		return nil, err
	}
	contractRole, err := types.ParseContractRole(req.ContractRole)
	if err != nil {
		return nil, err
	}

	terms, err := codec.UnmarshalTerms(req.Terms)
	if err != nil {
		return nil, err
	}
	terms.ContractType = contractType
	terms.ContractRole = contractRole
	if req.SettlementCurrency != "" {
		terms.SettlementCurrency = req.SettlementCurrency
	}

	logger := log.With().
		Str("contract_id", terms.ContractID).
		Str("contract_type", contractType.String()).
		Str("service", "contracts").
		Logger()

	logger.Info().Msg("initializing contract")

	if err := transition.ValidateTerms(terms); err != nil {
		logger.Error().Err(err).Msg("terms validation failed")
		return nil, err
	}
	// Schedule configuration fails at init, never during event processing.
	if _, err := schedule.NewGenerator(terms); err != nil {
		logger.Error().Err(err).Msg("schedule validation failed")
		return nil, err
	}

	blob, err := codec.MarshalTerms(terms)
	if err != nil {
		return nil, err
	}
	state := types.InitialState(terms)

	contract := &Contract{
		ContractID:         terms.ContractID,
		ContractType:       contractType.String(),
		ContractRole:       contractRole.String(),
		SettlementCurrency: terms.SettlementCurrency,
		Status:             StatusActive,
		TermsBlob:          blob,
		NotionalPrincipal:  int64(state.NotionalPrincipal),
		AccruedInterest:    int64(state.AccruedInterest),
		StatusDate:         state.StatusDate,
		Performance:        string(state.Performance),
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}

	if err := s.db.CreateContract(contract); err != nil {
		logger.Error().Err(err).Msg("failed to persist contract")
		return nil, fmt.Errorf("failed to persist contract: %w", err)
	}

	logger.Info().
		Str("status", contract.Status).
		Int64("status_date", contract.StatusDate).
		Msg("contract initialized")

	return &types.ContractResponse{
		ContractID:   contract.ContractID,
		ContractType: contract.ContractType,
		ContractRole: contract.ContractRole,
		Status:       contract.Status,
		StatusDate:   contract.StatusDate,
		CreatedAt:    contract.CreatedAt.Unix(),
	}, nil
}

// ProcessEvent decodes the event code, applies the contract-type rule set,
// and persists the advanced state together with an event-log row carrying
// the settlement amount and the canonical state hash.
func (s *Service) ProcessEvent(contractID string, eventCode uint8, timestamp int64, idempotencyKey string) (*types.EventResponse, error) {
	eventType, err := types.ParseEventType(eventCode)
	if err != nil {
		return nil, err
	}

	logger := log.With().
		Str("contract_id", contractID).
		Str("event_type", eventType.String()).
		Int64("timestamp", timestamp).
		Str("service", "contracts").
		Logger()

	// Replays of the same idempotency key return the recorded event.
	if idempotencyKey != "" {
		record, err := s.db.GetIdempotencyRecord(idempotencyKey)
		if err == nil && record.ResourceID != "" && record.ExpiresAt.After(time.Now()) {
			logger.Debug().Str("event_id", record.ResourceID).Msg("returning idempotent event result")
			return s.eventResponse(record.ResourceID)
		}
	}

	contract, err := s.db.GetContract(contractID)
	if err != nil {
		logger.Error().Err(err).Msg("failed to fetch contract")
		return nil, err
	}

	terms, err := codec.UnmarshalTerms(contract.TermsBlob)
	if err != nil {
		return nil, err
	}
	state := contract.state()

	rules, err := transition.New(terms.ContractType)
	if err != nil {
		return nil, err
	}

	settlement, err := transition.Apply(rules, eventType, timestamp, &state, terms)
	if err != nil {
		logger.Warn().Err(err).Msg("event rejected")
		return nil, err
	}

	stateHash, err := codec.Hash(&state)
	if err != nil {
		return nil, err
	}

	contract.applyState(state)
	switch eventType {
	case types.EventMD:
		contract.Status = StatusMatured
	case types.EventCE:
		contract.Status = StatusDefaulted
	}
	contract.UpdatedAt = time.Now()

	event := &ContractEvent{
		EventID:    "EVT_" + uuid.New().String(),
		ContractID: contractID,
		EventType:  eventType.String(),
		EventCode:  eventCode,
		Timestamp:  timestamp,
		Settlement: unitsPtr(settlement),
		StateHash:  stateHash,
		CreatedAt:  time.Now(),
	}

	if err := s.db.SaveEventResult(contract, event, idempotencyKey); err != nil {
		logger.Error().Err(err).Msg("failed to persist event result")
		return nil, fmt.Errorf("failed to persist event result: %w", err)
	}

	logger.Info().
		Str("event_id", event.EventID).
		Str("state_hash", stateHash).
		Int64("notional_principal", contract.NotionalPrincipal).
		Int64("accrued_interest", contract.AccruedInterest).
		Msg("event processed")

	return &types.EventResponse{
		EventID:    event.EventID,
		ContractID: contractID,
		EventType:  event.EventType,
		Timestamp:  timestamp,
		Settlement: settlement,
		StateHash:  stateHash,
		State:      state,
	}, nil
}

// GetState returns a read-only snapshot of the contract state.
func (s *Service) GetState(contractID string) (*types.ContractState, error) {
	contract, err := s.db.GetContract(contractID)
	if err != nil {
		return nil, err
	}
	state := contract.state()
	return &state, nil
}

// GetSchedule recomputes the convention-adjusted event schedule from the
// stored terms.
func (s *Service) GetSchedule(contractID string) ([]types.ScheduleEntryResponse, error) {
	contract, err := s.db.GetContract(contractID)
	if err != nil {
		return nil, err
	}
	terms, err := codec.UnmarshalTerms(contract.TermsBlob)
	if err != nil {
		return nil, err
	}
	gen, err := schedule.NewGenerator(terms)
	if err != nil {
		return nil, err
	}

	events := gen.Generate()
	entries := make([]types.ScheduleEntryResponse, 0, len(events))
	for _, ev := range events {
		entries = append(entries, types.ScheduleEntryResponse{
			EventType:  ev.Type.String(),
			Unadjusted: ev.Day.Unadjusted.Unix(),
			Adjusted:   ev.Day.Adjusted.Unix(),
		})
	}
	return entries, nil
}

// GetEvents returns the contract's event log in timestamp order.
func (s *Service) GetEvents(contractID string) ([]ContractEvent, error) {
	if _, err := s.db.GetContract(contractID); err != nil {
		return nil, err
	}
	return s.db.GetContractEvents(contractID)
}

// GetDB exposes the database wrapper to the background processor.
func (s *Service) GetDB() *Database {
	return s.db
}

func (s *Service) eventResponse(eventID string) (*types.EventResponse, error) {
	event, err := s.db.GetEvent(eventID)
	if err != nil {
		return nil, err
	}
	contract, err := s.db.GetContract(event.ContractID)
	if err != nil {
		return nil, err
	}

	var settlement *money.Units
	if event.Settlement != nil {
		u := money.Units(*event.Settlement)
		settlement = &u
	}
	return &types.EventResponse{
		EventID:    event.EventID,
		ContractID: event.ContractID,
		EventType:  event.EventType,
		Timestamp:  event.Timestamp,
		Settlement: settlement,
		StateHash:  event.StateHash,
		State:      contract.state(),
	}, nil
}

// state reconstructs the engine state from the denormalized columns.
func (c *Contract) state() types.ContractState {
	return types.ContractState{
		NotionalPrincipal: money.Units(c.NotionalPrincipal),
		AccruedInterest:   money.Units(c.AccruedInterest),
		StatusDate:        c.StatusDate,
		Performance:       types.Performance(c.Performance),
	}
}

func (c *Contract) applyState(state types.ContractState) {
	c.NotionalPrincipal = int64(state.NotionalPrincipal)
	c.AccruedInterest = int64(state.AccruedInterest)
	c.StatusDate = state.StatusDate
	c.Performance = string(state.Performance)
}

func unitsPtr(u *money.Units) *int64 {
	if u == nil {
		return nil
	}
	v := int64(*u)
	return &v
}

// GinHandlers contains HTTP handlers for contract endpoints
type GinHandlers struct {
	service *Service
}

// NewGinHandlers creates a new set of HTTP handlers for contract endpoints
func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{
		service: service,
	}
}

// InitContractHandler handles POST requests to initialize contracts
// Requires a valid JWT token
// Request body carries the vocabulary codes and encoded terms
func (h *GinHandlers) InitContractHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req InitContractRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		contract, err := h.service.InitContract(&req)
		response.Handle(c, contract, err)
	}
}

// ProcessEventHandler handles POST requests to apply lifecycle events
// Requires internal authentication and an idempotency key
// URL parameter: contract_id
func (h *GinHandlers) ProcessEventHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		idempotencyKey := c.GetHeader("Idempotency-Key")
		if idempotencyKey == "" {
			response.BadRequest(c, "Idempotency-Key header is required")
			return
		}

		contractID := c.Param("contract_id")

		var req ProcessEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		event, err := h.service.ProcessEvent(contractID, req.EventType, req.Timestamp, idempotencyKey)
		response.Handle(c, event, err)
	}
}

// GetStateHandler handles GET requests for the contract state snapshot
// URL parameter: contract_id
func (h *GinHandlers) GetStateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		contractID := c.Param("contract_id")

		state, err := h.service.GetState(contractID)
		response.Handle(c, state, err)
	}
}

// GetScheduleHandler handles GET requests for the computed event schedule
// URL parameter: contract_id
func (h *GinHandlers) GetScheduleHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		contractID := c.Param("contract_id")

		entries, err := h.service.GetSchedule(contractID)
		response.Handle(c, entries, err)
	}
}

// GetEventsHandler handles GET requests for the contract event log
// URL parameter: contract_id
func (h *GinHandlers) GetEventsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		contractID := c.Param("contract_id")

		events, err := h.service.GetEvents(contractID)
		response.Handle(c, events, err)
	}
}
