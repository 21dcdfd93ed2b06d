// Package codec provides the deterministic boundary encoding for contract
// terms and state. Values are serialized to RFC 8785 canonical JSON so that
// identical logical values always produce identical bytes, which makes the
// stored blobs and event-log hashes replayable and comparable.
package codec

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/gowebpki/jcs"

	"github.com/ksred/actus-api/internal/errs"
	"github.com/ksred/actus-api/internal/types"
)

// Marshal encodes v to canonical JSON bytes.
func Marshal(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, errs.Validationf("encoding failed: %v", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return nil, errs.Validationf("canonicalization failed: %v", err)
	}
	return canonical, nil
}

// MarshalTerms encodes contract terms for storage and transport.
func MarshalTerms(terms *types.ContractTerms) ([]byte, error) {
	return Marshal(terms)
}

// UnmarshalTerms decodes contract terms from their boundary encoding.
func UnmarshalTerms(data []byte) (*types.ContractTerms, error) {
	var terms types.ContractTerms
	if err := json.Unmarshal(data, &terms); err != nil {
		return nil, errs.Validationf("malformed contract terms: %v", err)
	}
	return &terms, nil
}

// MarshalState encodes a state snapshot.
func MarshalState(state *types.ContractState) ([]byte, error) {
	return Marshal(state)
}

// UnmarshalState decodes a state snapshot.
func UnmarshalState(data []byte) (*types.ContractState, error) {
	var state types.ContractState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, errs.Validationf("malformed contract state: %v", err)
	}
	return &state, nil
}

// Hash returns the hex-encoded SHA-256 of the canonical encoding of v.
// Used to chain state snapshots into the event log for replay checks.
func Hash(v any) (string, error) {
	canonical, err := Marshal(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
