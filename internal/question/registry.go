// Package question holds the exercise kinds an assignment can contain.
//
// Every kind pairs a question payload (what the teacher authors) with a
// response payload (what the student sends back). Kinds register themselves
// in the default registry and are looked up by their type tag.
package question

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	govalidator "github.com/go-playground/validator/v10"
)

// Type is the tag stored in questions.question_type.
type Type string

const (
	Matching       Type = "MATCHING"
	Completion     Type = "COMPLETION"
	MultipleChoice Type = "MULTIPLE_CHOICE"
	TrueFalse      Type = "TRUE_FALSE"
	Ordering       Type = "ORDERING"
	ShortAnswer    Type = "SHORT_ANSWER"
	Drawing        Type = "DRAWING"
)

var (
	ErrUnknownType    = errors.New("unknown question type")
	ErrInvalidPayload = errors.New("invalid question payload")
)

// Kind is one registered exercise kind.
type Kind interface {
	Type() Type
	// ValidateQuestion checks an authored question payload.
	ValidateQuestion(data json.RawMessage) error
	// Prepare validates an authored payload and fills in server-assigned
	// fields. The result is what gets stored.
	Prepare(data json.RawMessage) (json.RawMessage, error)
	// ValidateResponse checks a student response against its question.
	ValidateResponse(questionData, responseData json.RawMessage) error
	// Grade returns nil when the kind cannot be checked automatically.
	Grade(questionData, responseData json.RawMessage) (*bool, error)
	// Redact returns the student-facing payload with answer keys removed.
	Redact(questionData json.RawMessage) (json.RawMessage, error)
}

// Registry maps type tags to kinds.
type Registry struct {
	mu    sync.RWMutex
	kinds map[Type]Kind
}

// NewRegistry creates a registry holding the given kinds.
func NewRegistry(kinds ...Kind) *Registry {
	r := &Registry{kinds: make(map[Type]Kind, len(kinds))}
	for _, k := range kinds {
		r.Register(k)
	}
	return r
}

// Register adds a kind. Registering the same tag twice panics.
func (r *Registry) Register(k Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.kinds[k.Type()]; dup {
		panic(fmt.Sprintf("question: kind %s registered twice", k.Type()))
	}
	r.kinds[k.Type()] = k
}

// Lookup returns the kind registered for t.
func (r *Registry) Lookup(t Type) (Kind, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.kinds[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	return k, nil
}

// Types lists the registered tags in lexical order.
func (r *Registry) Types() []Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]Type, 0, len(r.kinds))
	for t := range r.kinds {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Default holds every built-in kind.
var Default = NewRegistry()

// Lookup finds t in the default registry.
func Lookup(t Type) (Kind, error) {
	return Default.Lookup(t)
}

// IsKnown reports whether t is registered in the default registry.
func IsKnown(t string) bool {
	_, err := Default.Lookup(Type(t))
	return err == nil
}

// ─── Typed kinds ────────────────────────────────────────────────────

// validate checks the `validate` tags on payload structs.
var validate = govalidator.New()

// kind adapts a typed question/response pair to the Kind interface.
type kind[Q, R any] struct {
	typ     Type
	// prepare runs before checkQ on authored payloads only.
	prepare func(*Q) error
	checkQ  func(*Q) error
	checkR  func(*Q, *R) error
	grade   func(*Q, *R) *bool
	redact  func(*Q) any
}

func (k kind[Q, R]) Type() Type { return k.typ }

func (k kind[Q, R]) ValidateQuestion(data json.RawMessage) error {
	_, err := k.Prepare(data)
	return err
}

func (k kind[Q, R]) Prepare(data json.RawMessage) (json.RawMessage, error) {
	if k.prepare == nil {
		if _, err := k.question(data); err != nil {
			return nil, err
		}
		return data, nil
	}

	q := new(Q)
	if err := decode(data, q); err != nil {
		return nil, err
	}
	if err := k.prepare(q); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, k.typ, err)
	}
	if err := k.checkQuestion(q); err != nil {
		return nil, err
	}
	return json.Marshal(q)
}

func (k kind[Q, R]) ValidateResponse(questionData, responseData json.RawMessage) error {
	_, _, err := k.pair(questionData, responseData)
	return err
}

func (k kind[Q, R]) Grade(questionData, responseData json.RawMessage) (*bool, error) {
	q, r, err := k.pair(questionData, responseData)
	if err != nil {
		return nil, err
	}
	if k.grade == nil {
		return nil, nil
	}
	return k.grade(q, r), nil
}

func (k kind[Q, R]) Redact(questionData json.RawMessage) (json.RawMessage, error) {
	q, err := k.question(questionData)
	if err != nil {
		return nil, err
	}
	if k.redact == nil {
		return questionData, nil
	}
	return json.Marshal(k.redact(q))
}

func (k kind[Q, R]) question(data json.RawMessage) (*Q, error) {
	q := new(Q)
	if err := decode(data, q); err != nil {
		return nil, err
	}
	if err := k.checkQuestion(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (k kind[Q, R]) checkQuestion(q *Q) error {
	if k.checkQ == nil {
		return nil
	}
	if err := k.checkQ(q); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidPayload, k.typ, err)
	}
	return nil
}

func (k kind[Q, R]) pair(questionData, responseData json.RawMessage) (*Q, *R, error) {
	q, err := k.question(questionData)
	if err != nil {
		return nil, nil, err
	}
	r := new(R)
	if err := decode(responseData, r); err != nil {
		return nil, nil, err
	}
	if k.checkR != nil {
		if err := k.checkR(q, r); err != nil {
			return nil, nil, fmt.Errorf("%w: %s response: %v", ErrInvalidPayload, k.typ, err)
		}
	}
	return q, r, nil
}

func decode(data json.RawMessage, v any) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("%w: empty payload", ErrInvalidPayload)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}

// ─── Helpers shared by kinds ────────────────────────────────────────

func boolPtr(b bool) *bool { return &b }

// normalize collapses whitespace and, unless caseSensitive, lowercases s.
func normalize(s string, caseSensitive bool) string {
	s = strings.Join(strings.Fields(s), " ")
	if !caseSensitive {
		s = strings.ToLower(s)
	}
	return s
}

// uniqueIDs fails on the first empty or repeated id.
func uniqueIDs(ids []string) (map[string]struct{}, error) {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			return nil, errors.New("empty id")
		}
		if _, dup := set[id]; dup {
			return nil, fmt.Errorf("duplicate id %q", id)
		}
		set[id] = struct{}{}
	}
	return set, nil
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, s := range a {
		seen[s]++
	}
	for _, s := range b {
		seen[s]--
	}
	for _, n := range seen {
		if n != 0 {
			return false
		}
	}
	return true
}
