package graph

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sakshi-kadian/aurelius/pkg/ai"
	"github.com/sakshi-kadian/aurelius/pkg/common"
	"github.com/sakshi-kadian/aurelius/pkg/logger"
)

// ExtractionOutcome tags how an extraction attempt ended.
type ExtractionOutcome int

const (
	ExtractionOK ExtractionOutcome = iota
	ExtractionMalformed
	ExtractionBackendError
)

func (o ExtractionOutcome) String() string {
	switch o {
	case ExtractionOK:
		return "ok"
	case ExtractionMalformed:
		return "malformed"
	case ExtractionBackendError:
		return "backend_error"
	default:
		return "unknown"
	}
}

// ExtractionResult is the outcome of one extraction. Triplets is empty
// unless Outcome is ExtractionOK; Err carries the cause of a failure.
type ExtractionResult struct {
	Outcome  ExtractionOutcome
	Triplets []common.Triplet
	Err      error
}

var errNotAList = errors.New("response is not a list of triplets")

// wrapperKeys are object keys models commonly wrap the triplet list in.
var wrapperKeys = []string{"triplets", "facts", "relations", "data", "results"}

// tripletEnvelope is the structured-output schema sent to backends that
// support one. Backends in plain JSON mode may still return a bare array.
type tripletEnvelope struct {
	Triplets []common.Triplet `json:"triplets" jsonschema_description:"Facts stated in the text, empty when there are none"`
}

// TripletCache stores successful extractions. Implementations must be safe
// for concurrent use.
type TripletCache interface {
	Get(ctx context.Context, key string) ([]common.Triplet, bool, error)
	Set(ctx context.Context, key string, triplets []common.Triplet) error
}

// TripletExtractor asks a language model for the facts stated in a chunk
// and enforces the output contract on whatever comes back.
//
// A TripletExtractor should be created using NewTripletExtractor.
type TripletExtractor struct {
	client  ai.GraphAIClient
	repair  bool
	cache   TripletCache
	timeout time.Duration
	model   string
}

type ExtractorOption func(*TripletExtractor)

// WithRepair enables lenient parsing: double-encoded and syntactically
// broken JSON is repaired before the response is rejected.
func WithRepair(enabled bool) ExtractorOption {
	return func(e *TripletExtractor) {
		e.repair = enabled
	}
}

func WithCache(cache TripletCache) ExtractorOption {
	return func(e *TripletExtractor) {
		e.cache = cache
	}
}

// WithTimeout bounds a single backend call. Zero leaves the caller's
// deadline in charge.
func WithTimeout(d time.Duration) ExtractorOption {
	return func(e *TripletExtractor) {
		e.timeout = d
	}
}

// WithExtractionModel overrides the backend's default extraction model.
func WithExtractionModel(model string) ExtractorOption {
	return func(e *TripletExtractor) {
		e.model = model
	}
}

func NewTripletExtractor(client ai.GraphAIClient, opts ...ExtractorOption) *TripletExtractor {
	e := &TripletExtractor{client: client}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Extract returns the triplets stated in chunk. Every failure collapses to
// an empty list and is logged.
//
// Example:
//
//	triplets := extractor.Extract(ctx, "Elon Musk founded SpaceX in 2002.")
//	// [{Elon Musk FOUNDED SpaceX} {SpaceX FOUNDED_IN 2002}]
func (e *TripletExtractor) Extract(ctx context.Context, chunk string) []common.Triplet {
	res := e.ExtractResult(ctx, chunk)
	if res.Outcome != ExtractionOK {
		logger.Warn("[Extract] Extraction failed", "outcome", res.Outcome, "err", res.Err)
		return []common.Triplet{}
	}
	return res.Triplets
}

// ExtractResult is Extract with the failure kind kept.
func (e *TripletExtractor) ExtractResult(ctx context.Context, chunk string) ExtractionResult {
	if strings.TrimSpace(chunk) == "" {
		return ExtractionResult{Outcome: ExtractionOK, Triplets: []common.Triplet{}}
	}

	key := CacheKey(chunk)
	if e.cache != nil {
		cached, ok, err := e.cache.Get(ctx, key)
		if err != nil {
			logger.Warn("[Extract] Cache read failed", "err", err)
		} else if ok {
			return ExtractionResult{Outcome: ExtractionOK, Triplets: cached}
		}
	}

	callCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	opts := []ai.GenerateOption{
		ai.WithSystemPrompts(ai.TripletPrompt),
		ai.WithTemperature(0),
		ai.WithJSONSchema("triplets", "Facts extracted from the text", tripletEnvelope{}),
	}
	if e.model != "" {
		opts = append(opts, ai.WithModel(e.model))
	}

	content, err := e.client.GenerateCompletion(callCtx, fmt.Sprintf(ai.TripletUserPrompt, chunk), opts...)
	if err != nil {
		return ExtractionResult{
			Outcome:  ExtractionBackendError,
			Triplets: []common.Triplet{},
			Err:      fmt.Errorf("failed to generate triplets: %w", err),
		}
	}

	triplets, err := e.parse(content)
	if err != nil {
		return ExtractionResult{
			Outcome:  ExtractionMalformed,
			Triplets: []common.Triplet{},
			Err:      err,
		}
	}

	if e.cache != nil {
		if err := e.cache.Set(ctx, key, triplets); err != nil {
			logger.Warn("[Extract] Cache write failed", "err", err)
		}
	}

	return ExtractionResult{Outcome: ExtractionOK, Triplets: triplets}
}

// CacheKey identifies an extraction of chunk under the current prompt.
func CacheKey(chunk string) string {
	sum := sha256.Sum256([]byte(ai.TripletPromptVersion + "\x00" + chunk))
	return "triplets:" + hex.EncodeToString(sum[:])
}

func (e *TripletExtractor) parse(content string) ([]common.Triplet, error) {
	var raw json.RawMessage
	if e.repair {
		if err := ai.UnmarshalFlexible(content, &raw); err != nil {
			return nil, err
		}
	} else if err := ai.UnmarshalStrict(content, &raw); err != nil {
		return nil, err
	}

	v, err := decodeValue(raw)
	if err != nil {
		return nil, err
	}

	// A JSON string holding JSON is what some models send in JSON mode.
	if s, ok := v.(string); ok && e.repair {
		if err := ai.UnmarshalFlexible(s, &raw); err != nil {
			return nil, err
		}
		if v, err = decodeValue(raw); err != nil {
			return nil, err
		}
	}

	return coerceTriplets(unwrap(v))
}

func decodeValue(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	return v, nil
}

// unwrap digs the triplet list out of a wrapping object. Anything it cannot
// unwrap is returned unchanged.
func unwrap(v any) any {
	obj, ok := v.(map[string]any)
	if !ok {
		return v
	}
	for _, k := range wrapperKeys {
		if inner, ok := obj[k]; ok {
			if _, isList := inner.([]any); isList {
				return inner
			}
		}
	}
	if len(obj) == 1 {
		for _, inner := range obj {
			if _, isList := inner.([]any); isList {
				return inner
			}
		}
	}
	return v
}

func coerceTriplets(v any) ([]common.Triplet, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, errNotAList
	}

	triplets := make([]common.Triplet, 0, len(list))
	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		triplets = append(triplets, common.Triplet{
			Subject:   scalarString(obj["subject"]),
			Predicate: scalarString(obj["predicate"]),
			Object:    scalarString(obj["object"]),
		})
	}
	return triplets, nil
}

// scalarString renders a JSON scalar as text. Missing, null and nested
// values become "".
func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
