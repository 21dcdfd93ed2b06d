package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ksred/actus-api/internal/auth"
	"github.com/ksred/actus-api/internal/money"
	"github.com/ksred/actus-api/internal/types"
)

const (
	numContracts  = 25
	numWorkers    = 5
	serverAddress = "http://localhost:8080"

	day  = int64(24 * 3600)
	year = int64(365 * 24 * 3600)
)

// init configures the logger for the simulation with pretty printing and timestamp
func init() {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
}

// routeStats tracks performance statistics for an API endpoint
type routeStats struct {
	name       string
	durations  []time.Duration
	totalCalls int
	failures   int
}

// addDuration records a new duration measurement for the route
func (rs *routeStats) addDuration(d time.Duration) {
	rs.durations = append(rs.durations, d)
	rs.totalCalls++
}

// calculate computes performance statistics from recorded durations
func (rs *routeStats) calculate() (min, max, mean, median, p95 time.Duration) {
	if len(rs.durations) == 0 {
		return 0, 0, 0, 0, 0
	}

	sort.Slice(rs.durations, func(i, j int) bool {
		return rs.durations[i] < rs.durations[j]
	})

	min = rs.durations[0]
	max = rs.durations[len(rs.durations)-1]

	var sum time.Duration
	for _, d := range rs.durations {
		sum += d
	}
	mean = sum / time.Duration(len(rs.durations))
	median = rs.durations[len(rs.durations)/2]

	p95idx := int(math.Ceil(float64(len(rs.durations))*0.95)) - 1
	p95 = rs.durations[p95idx]

	return
}

// simulationClient handles HTTP communication with the contract engine API
type simulationClient struct {
	baseURL   string
	authToken string
	client    *http.Client

	mu    sync.Mutex
	stats map[string]*routeStats
}

// newSimulationClient creates and initializes a new simulation client
func newSimulationClient() (*simulationClient, error) {
	client := &http.Client{
		Timeout: 10 * time.Second,
	}

	sc := &simulationClient{
		baseURL: serverAddress,
		client:  client,
		stats: map[string]*routeStats{
			"auth":  {name: "Authentication"},
			"init":  {name: "Init Contract"},
			"event": {name: "Process Event"},
			"state": {name: "Get State"},
		},
	}

	token, err := sc.authenticate()
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}
	sc.authToken = token

	return sc, nil
}

func (sc *simulationClient) record(route string, start time.Time, failed bool) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.stats[route].addDuration(time.Since(start))
	if failed {
		sc.stats[route].failures++
	}
}

// authenticate performs API authentication and returns a JWT token
func (sc *simulationClient) authenticate() (string, error) {
	start := time.Now()

	credentials := map[string]string{
		"api_key":    auth.TestAPIKey,
		"api_secret": auth.TestAPISecret,
	}

	body, err := json.Marshal(credentials)
	if err != nil {
		return "", err
	}

	resp, err := sc.client.Post(
		fmt.Sprintf("%s/api/v1/auth/token", sc.baseURL),
		"application/json",
		bytes.NewBuffer(body),
	)
	if err != nil {
		sc.record("auth", start, true)
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		sc.record("auth", start, true)
		return "", fmt.Errorf("authentication failed with status: %d", resp.StatusCode)
	}

	var result struct {
		Success bool `json:"success"`
		Data    struct {
			Token string `json:"jwt_token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		sc.record("auth", start, true)
		return "", err
	}

	sc.record("auth", start, false)
	return result.Data.Token, nil
}

func (sc *simulationClient) post(url string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", sc.authToken))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", uuid.New().String())

	resp, err := sc.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(raw))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w, body: %s", err, string(raw))
	}
	return nil
}

// initContract creates a new PAM contract and returns its ID
func (sc *simulationClient) initContract(terms *types.ContractTerms) (string, error) {
	start := time.Now()

	termsBytes, err := json.Marshal(terms)
	if err != nil {
		return "", err
	}

	payload := map[string]any{
		"contract_type":       uint8(terms.ContractType),
		"contract_role":       uint8(terms.ContractRole),
		"settlement_currency": terms.SettlementCurrency,
		"terms":               json.RawMessage(termsBytes),
	}

	var result struct {
		Success bool                   `json:"success"`
		Data    types.ContractResponse `json:"data"`
	}
	if err := sc.post(fmt.Sprintf("%s/api/v1/contracts", sc.baseURL), payload, &result); err != nil {
		sc.record("init", start, true)
		return "", err
	}

	sc.record("init", start, false)
	if result.Data.ContractID == "" {
		return "", fmt.Errorf("no contract ID in response")
	}
	return result.Data.ContractID, nil
}

// processEvent applies one lifecycle event and returns the settlement amount
func (sc *simulationClient) processEvent(contractID string, eventType types.EventType, timestamp int64) (*money.Units, error) {
	start := time.Now()

	payload := map[string]any{
		"event_type": uint8(eventType),
		"timestamp":  timestamp,
	}

	var result struct {
		Success bool                `json:"success"`
		Data    types.EventResponse `json:"data"`
	}
	url := fmt.Sprintf("%s/api/v1/internal/contracts/%s/events", sc.baseURL, contractID)
	if err := sc.post(url, payload, &result); err != nil {
		sc.record("event", start, true)
		return nil, err
	}

	sc.record("event", start, false)
	return result.Data.Settlement, nil
}

// getState fetches the contract state snapshot
func (sc *simulationClient) getState(contractID string) (*types.ContractState, error) {
	start := time.Now()

	req, err := http.NewRequest("GET",
		fmt.Sprintf("%s/api/v1/contracts/%s/state", sc.baseURL, contractID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", sc.authToken))

	resp, err := sc.client.Do(req)
	if err != nil {
		sc.record("state", start, true)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		sc.record("state", start, true)
		return nil, fmt.Errorf("get state failed with status: %d", resp.StatusCode)
	}

	var result struct {
		Success bool                `json:"success"`
		Data    types.ContractState `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		sc.record("state", start, true)
		return nil, err
	}

	sc.record("state", start, false)
	return &result.Data, nil
}

// runLifecycle drives one PAM contract through its full lifecycle:
// initial exchange, quarterly interest, repayment, maturity.
func (sc *simulationClient) runLifecycle(n int) error {
	ied := time.Now().UTC().Unix() - 400*day
	md := ied + year
	notional := money.Units(500_000)
	rate := money.Rate(50_000) // 5% per year

	terms := &types.ContractTerms{
		ContractID:          fmt.Sprintf("PAM-SIM-%03d-%s", n, uuid.New().String()[:8]),
		ContractType:        types.ContractTypePAM,
		ContractRole:        types.ContractRoleRPA,
		SettlementCurrency:  "USD",
		InitialExchangeDate: &ied,
		MaturityDate:        &md,
		StatusDate:          ied,
		NotionalPrincipal:   &notional,
		NominalInterestRate: &rate,
	}

	contractID, err := sc.initContract(terms)
	if err != nil {
		return fmt.Errorf("init failed: %w", err)
	}

	logger := log.With().Str("contract_id", contractID).Logger()

	disbursement, err := sc.processEvent(contractID, types.EventIED, ied)
	if err != nil {
		return fmt.Errorf("IED failed: %w", err)
	}
	logger.Info().Interface("disbursement", disbursement).Msg("initial exchange")

	for q := int64(1); q <= 3; q++ {
		interest, err := sc.processEvent(contractID, types.EventIP, ied+q*90*day)
		if err != nil {
			return fmt.Errorf("IP %d failed: %w", q, err)
		}
		logger.Info().Int64("quarter", q).Interface("interest", interest).Msg("interest settled")
	}

	final, err := sc.processEvent(contractID, types.EventMD, md)
	if err != nil {
		return fmt.Errorf("MD failed: %w", err)
	}
	logger.Info().Interface("final_settlement", final).Msg("contract matured")

	state, err := sc.getState(contractID)
	if err != nil {
		return fmt.Errorf("get state failed: %w", err)
	}
	if state.NotionalPrincipal != 0 || state.AccruedInterest != 0 {
		return fmt.Errorf("contract %s not zeroed at maturity: principal=%d interest=%d",
			contractID, state.NotionalPrincipal, state.AccruedInterest)
	}

	return nil
}

func main() {
	log.Info().
		Int("contracts", numContracts).
		Int("workers", numWorkers).
		Msg("starting contract lifecycle simulation")

	sc, err := newSimulationClient()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create simulation client")
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	var failures sync.Map

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := range jobs {
				if err := sc.runLifecycle(n); err != nil {
					log.Error().Err(err).Int("contract", n).Msg("lifecycle failed")
					failures.Store(n, err)
				}
			}
		}()
	}

	start := time.Now()
	for n := 0; n < numContracts; n++ {
		jobs <- n
	}
	close(jobs)
	wg.Wait()

	failed := 0
	failures.Range(func(_, _ any) bool {
		failed++
		return true
	})

	log.Info().
		Dur("elapsed", time.Since(start)).
		Int("succeeded", numContracts-failed).
		Int("failed", failed).
		Msg("simulation complete")

	fmt.Println("\nRoute performance:")
	for _, rs := range sc.stats {
		min, max, mean, median, p95 := rs.calculate()
		fmt.Printf("  %-16s calls=%-4d failures=%-3d min=%s max=%s mean=%s median=%s p95=%s\n",
			rs.name, rs.totalCalls, rs.failures, min, max, mean, median, p95)
	}
}
