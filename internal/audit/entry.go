// Package audit keeps a hash-chained history of model invocations in SQLite.
//
// Each entry records who called which model, where, how long it took and
// whether it succeeded. Prompt and output text are never stored, only their
// lengths. Entries link to their predecessor's hash so edits to the database
// are detectable with Store.Verify.
package audit

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/majorcontext/sluice/internal/log"
)

// FirstSequence is the sequence number of the first entry in a history.
// Sequences are 1-indexed to distinguish "no previous entry" (seq=0) from the first entry.
const FirstSequence uint64 = 1

// Invocation holds the recorded facts about one model call.
type Invocation struct {
	ID          string `json:"id"`
	Source      string `json:"source"`
	ModelID     string `json:"model_id"`
	Region      string `json:"region"`
	PromptChars int    `json:"prompt_chars"`
	OutputChars int    `json:"output_chars"`
	DurationMs  int64  `json:"duration_ms"`
	OK          bool   `json:"ok"`
	Error       string `json:"error,omitempty"`
}

// Entry is a single hash-chained history record.
type Entry struct {
	Sequence   uint64     `json:"seq"`
	Timestamp  time.Time  `json:"ts"`
	PrevHash   string     `json:"prev"`
	Invocation Invocation `json:"invocation"`
	Hash       string     `json:"hash"`
}

// NewEntry creates a new entry with computed hash.
func NewEntry(seq uint64, prevHash string, inv Invocation) *Entry {
	return newEntryWithTimestamp(seq, prevHash, inv, time.Now().UTC())
}

// newEntryWithTimestamp creates an entry with a specific timestamp (for testing).
func newEntryWithTimestamp(seq uint64, prevHash string, inv Invocation, ts time.Time) *Entry {
	e := &Entry{
		Sequence:   seq,
		Timestamp:  ts,
		PrevHash:   prevHash,
		Invocation: inv,
	}
	e.Hash = e.computeHash()
	return e
}

// computeHash calculates SHA-256(seq || ts || prev || invocation JSON).
func (e *Entry) computeHash() string {
	h := sha256.New()

	seqBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(seqBytes, e.Sequence)
	h.Write(seqBytes)

	h.Write([]byte(e.Timestamp.Format(time.RFC3339Nano)))
	h.Write([]byte(e.PrevHash))

	// Invocation is a flat struct, so its JSON is stable across round-trips.
	data, err := json.Marshal(e.Invocation)
	if err != nil {
		log.Warn("failed to marshal invocation for hash", "seq", e.Sequence, "error", err)
		data = []byte("null")
	}
	h.Write(data)

	return hex.EncodeToString(h.Sum(nil))
}

// Verify checks if the entry's hash is valid.
func (e *Entry) Verify() bool {
	return e.Hash == e.computeHash()
}
