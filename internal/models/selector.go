package models

import "fmt"

type SelectorKind int

const (
	// SelectInferred targets the only running session, if there is exactly one.
	SelectInferred SelectorKind = iota
	SelectAll
	SelectByID
	SelectByName
)

// Selector says which sessions a stop request is aimed at.
type Selector struct {
	Kind  SelectorKind
	Value string
}

func Inferred() Selector { return Selector{Kind: SelectInferred} }

func All() Selector { return Selector{Kind: SelectAll} }

func ByID(id string) Selector { return Selector{Kind: SelectByID, Value: id} }

// ByName selects by job name; the session prefix is added when missing.
func ByName(name string) Selector {
	return Selector{Kind: SelectByName, Value: SessionName(name)}
}

func (s Selector) String() string {
	switch s.Kind {
	case SelectAll:
		return "all sessions"
	case SelectByID:
		return fmt.Sprintf("job id %q", s.Value)
	case SelectByName:
		return fmt.Sprintf("job name %q", s.Value)
	default:
		return "the running session"
	}
}
