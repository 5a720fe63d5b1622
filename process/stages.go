// Package process models the fixed production sequence a sari moves through
// and derives the live status views shown to operators.
package process

import (
	"fmt"
	"strings"
)

// Stage names
const (
	StageEntry        = "Entry"
	StageKora         = "Kora"
	StageWhite        = "White"
	StageSelfDyed     = "Self Dyed"
	StageContrastDyed = "Contrast Dyed"
)

var stages = [...]string{StageEntry, StageKora, StageWhite, StageSelfDyed, StageContrastDyed}

// Stages returns the canonical stage sequence in production order
func Stages() []string {
	out := make([]string, len(stages))
	copy(out, stages[:])
	return out
}

// FinalStage is the stage at which a sari counts as finished
func FinalStage() string {
	return stages[len(stages)-1]
}

// IndexOf returns the zero-based position of name in the stage sequence, or -1.
// Matching is exact and case-sensitive.
func IndexOf(name string) int {
	for i, s := range stages {
		if s == name {
			return i
		}
	}
	return -1
}

// IsStage reports whether name is one of the canonical stages
func IsStage(name string) bool {
	return IndexOf(name) >= 0
}

// Progress returns the completion percentage for a sari at the given stage.
// Unknown stages count as not started.
func Progress(name string) float64 {
	i := IndexOf(name)
	if i < 0 {
		return 0
	}
	return float64(i+1) / float64(len(stages)) * 100
}

// OrderByCase builds a SQL CASE expression ranking column by stage order:
// the five stages map to 1..5 and anything else to 6. column must be a
// trusted identifier, never user input.
func OrderByCase(column string) string {
	var b strings.Builder
	b.WriteString("CASE ")
	b.WriteString(column)
	for i, s := range stages {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", s, i+1)
	}
	fmt.Fprintf(&b, " ELSE %d END", len(stages)+1)
	return b.String()
}

// StagePrefix is the upper-cased first word of a stage name ("Self Dyed" -> "SELF").
// It prefixes synthetic current-code labels.
func StagePrefix(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(fields[0])
}

// SyntheticCode is the fallback label for a stage when the item master has none.
// Saris carry no code at Entry.
func SyntheticCode(stage, itemCode string) string {
	prefix := StagePrefix(stage)
	if prefix == "" || stage == StageEntry {
		return ""
	}
	return prefix + itemCode
}
