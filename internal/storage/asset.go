package storage

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"

	"github.com/pixil98/go-errors"
)

// CurrentVersion is the newest asset format this build reads.
const CurrentVersion = 1

var identifierPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

type ValidatingSpec interface {
	Validate() error
}

// Identifier names an asset. Identifiers are made of letters, digits,
// hyphens and underscores.
type Identifier string

func (id Identifier) String() string {
	return string(id)
}

// Asset is the on-disk envelope around one piece of world content: a
// resource node, an interactable or a quest.
type Asset[T ValidatingSpec] struct {
	Version    uint       `json:"version"`
	Identifier Identifier `json:"id"`
	Spec       T          `json:"spec"`
}

func (a *Asset[T]) Id() Identifier {
	return a.Identifier
}

func (a *Asset[T]) Validate() error {
	el := errors.NewErrorList()

	switch {
	case a.Version == 0:
		el.Add(fmt.Errorf("version must be set"))
	case a.Version > CurrentVersion:
		el.Add(fmt.Errorf("unsupported version %d (newest is %d)", a.Version, CurrentVersion))
	}

	if !identifierPattern.MatchString(a.Identifier.String()) {
		if a.Identifier == "" {
			el.Add(fmt.Errorf("id must be set"))
		} else {
			el.Add(fmt.Errorf("id %q must contain only letters, digits, hyphens and underscores", a.Identifier))
		}
	}

	if isNil(a.Spec) {
		el.Add(fmt.Errorf("spec must be set"))
	} else {
		el.Add(a.Spec.Validate())
	}

	return el.Err()
}

// Ref points from one asset to another by id, for example a quest to the
// npc that gives it. It marshals as the bare id and is bound to its target
// by Resolve once every store is loaded.
type Ref[T ValidatingSpec] struct {
	id  string
	val T
}

func NewRef[T ValidatingSpec](id string) Ref[T] {
	return Ref[T]{id: id}
}

func (r *Ref[T]) UnmarshalJSON(b []byte) error {
	return json.Unmarshal(b, &r.id)
}

func (r Ref[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.id)
}

func (r Ref[T]) Validate() error {
	if r.id == "" {
		return fmt.Errorf("%s identifier is required", kindName[T]())
	}
	return nil
}

func (r *Ref[T]) Resolve(st Storer[T]) error {
	val := st.Get(r.id)
	if isNil(val) {
		return fmt.Errorf("%s %q not found", kindName[T](), r.id)
	}
	r.val = val
	return nil
}

func (r Ref[T]) ID() string {
	return r.id
}

// Value returns the target, or the zero value before Resolve.
func (r Ref[T]) Value() T {
	return r.val
}

func kindName[T any]() string {
	t := reflect.TypeFor[T]()
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
