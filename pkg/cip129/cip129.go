// Package cip129 converts DRep and governance action identifiers between the
// encodings found in wallets, explorers and the indexer, and the canonical
// forms the provider queries with.
package cip129

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcutil/bech32"
)

const (
	hrpDRep       = "drep"
	hrpDRepScript = "drep_script"
	hrpGovAction  = "gov_action"
	hrpPool       = "pool"

	hashLen   = 28
	txHashLen = 32

	headerDRepKey    byte = 0x22
	headerDRepScript byte = 0x23
)

var ErrInvalidIdentifier = errors.New("invalid identifier")

// Credential is a DRep credential hash with its kind.
type Credential struct {
	Hash   []byte
	Script bool
}

func (c Credential) HashHex() string {
	return hex.EncodeToString(c.Hash)
}

// DRepID renders the credential as a CIP-129 drep1... identifier.
func (c Credential) DRepID() (string, error) {
	header := headerDRepKey
	if c.Script {
		header = headerDRepScript
	}
	return encode(hrpDRep, append([]byte{header}, c.Hash...))
}

// ParseDRep accepts CIP-129 bech32, CIP-105 bech32 (drep1 / drep_script1
// without header) and hex with or without the header byte. Bare 28-byte hex
// is taken as a key hash.
func ParseDRep(id string) (Credential, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Credential{}, fmt.Errorf("%w: empty DRep id", ErrInvalidIdentifier)
	}

	if strings.HasPrefix(strings.ToLower(id), hrpDRep) {
		hrp, data, err := decode(id)
		if err != nil {
			return Credential{}, err
		}
		switch {
		case hrp == hrpDRepScript && len(data) == hashLen:
			return Credential{Hash: data, Script: true}, nil
		case hrp == hrpDRep && len(data) == hashLen:
			return Credential{Hash: data}, nil
		case hrp == hrpDRep && len(data) == hashLen+1:
			return fromHeader(data)
		}
		return Credential{}, fmt.Errorf("%w: unexpected %s payload of %d bytes", ErrInvalidIdentifier, hrp, len(data))
	}

	raw, err := hex.DecodeString(id)
	if err != nil {
		return Credential{}, fmt.Errorf("%w: %q is neither bech32 nor hex", ErrInvalidIdentifier, id)
	}
	switch len(raw) {
	case hashLen:
		return Credential{Hash: raw}, nil
	case hashLen + 1:
		return fromHeader(raw)
	}
	return Credential{}, fmt.Errorf("%w: hex DRep id of %d bytes", ErrInvalidIdentifier, len(raw))
}

func fromHeader(data []byte) (Credential, error) {
	switch data[0] {
	case headerDRepKey:
		return Credential{Hash: data[1:]}, nil
	case headerDRepScript:
		return Credential{Hash: data[1:], Script: true}, nil
	}
	return Credential{}, fmt.Errorf("%w: DRep header byte 0x%02x", ErrInvalidIdentifier, data[0])
}

// NormalizeDRepID returns the CIP-129 form of id.
func NormalizeDRepID(id string) (string, error) {
	cred, err := ParseDRep(id)
	if err != nil {
		return "", err
	}
	return cred.DRepID()
}

// NormalizeDRepIDOrOriginal never fails: ids that cannot be parsed are
// returned unchanged so the lookup simply finds nothing.
func NormalizeDRepIDOrOriginal(id string) string {
	normalized, err := NormalizeDRepID(id)
	if err != nil {
		return id
	}
	return normalized
}

// PoolID renders a hex pool key hash as pool1...; input that is not a
// 28-byte hex hash is returned unchanged.
func PoolID(hashHex string) string {
	raw, err := hex.DecodeString(hashHex)
	if err != nil || len(raw) != hashLen {
		return hashHex
	}
	id, err := encode(hrpPool, raw)
	if err != nil {
		return hashHex
	}
	return id
}

// PoolHash accepts pool1... or hex and returns the hex key hash.
func PoolHash(id string) (string, error) {
	id = strings.TrimSpace(id)
	if strings.HasPrefix(strings.ToLower(id), hrpPool+"1") {
		hrp, data, err := decode(id)
		if err != nil {
			return "", err
		}
		if hrp != hrpPool || len(data) != hashLen {
			return "", fmt.Errorf("%w: pool id payload of %d bytes", ErrInvalidIdentifier, len(data))
		}
		return hex.EncodeToString(data), nil
	}
	raw, err := hex.DecodeString(id)
	if err != nil || len(raw) != hashLen {
		return "", fmt.Errorf("%w: pool id %q", ErrInvalidIdentifier, id)
	}
	return strings.ToLower(id), nil
}

// ActionRef identifies a governance action by its proposal transaction.
type ActionRef struct {
	TxHash string
	Index  uint32
}

func (a ActionRef) String() string {
	return a.TxHash + "#" + strconv.FormatUint(uint64(a.Index), 10)
}

// Bech32 renders the CIP-129 gov_action1... form. The index is appended
// big-endian in as few bytes as it needs, at least one.
func (a ActionRef) Bech32() (string, error) {
	tx, err := hex.DecodeString(a.TxHash)
	if err != nil || len(tx) != txHashLen {
		return "", fmt.Errorf("%w: tx hash %q", ErrInvalidIdentifier, a.TxHash)
	}
	idx := []byte{byte(a.Index)}
	for v := a.Index >> 8; v > 0; v >>= 8 {
		idx = append([]byte{byte(v)}, idx...)
	}
	return encode(hrpGovAction, append(tx, idx...))
}

// ParseAction accepts "txhash#index", "txhash:index" or gov_action1...
func ParseAction(id string) (ActionRef, error) {
	id = strings.TrimSpace(id)
	if strings.HasPrefix(strings.ToLower(id), hrpGovAction) {
		hrp, data, err := decode(id)
		if err != nil {
			return ActionRef{}, err
		}
		if hrp != hrpGovAction || len(data) <= txHashLen || len(data) > txHashLen+4 {
			return ActionRef{}, fmt.Errorf("%w: gov_action payload of %d bytes", ErrInvalidIdentifier, len(data))
		}
		var index uint32
		for _, b := range data[txHashLen:] {
			index = index<<8 | uint32(b)
		}
		return ActionRef{TxHash: hex.EncodeToString(data[:txHashLen]), Index: index}, nil
	}

	sep := strings.LastIndexAny(id, "#:")
	if sep < 0 {
		return ActionRef{}, fmt.Errorf("%w: %q has no action index", ErrInvalidIdentifier, id)
	}
	txHash := strings.ToLower(id[:sep])
	if raw, err := hex.DecodeString(txHash); err != nil || len(raw) != txHashLen {
		return ActionRef{}, fmt.Errorf("%w: tx hash %q", ErrInvalidIdentifier, id[:sep])
	}
	index, err := strconv.ParseUint(id[sep+1:], 10, 32)
	if err != nil {
		return ActionRef{}, fmt.Errorf("%w: action index %q", ErrInvalidIdentifier, id[sep+1:])
	}
	return ActionRef{TxHash: txHash, Index: uint32(index)}, nil
}

func decode(s string) (string, []byte, error) {
	hrp, words, err := bech32.Decode(s)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidIdentifier, err)
	}
	data, err := bech32.ConvertBits(words, 5, 8, false)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidIdentifier, err)
	}
	return hrp, data, nil
}

func encode(hrp string, data []byte) (string, error) {
	words, err := bech32.ConvertBits(data, 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.Encode(hrp, words)
}
