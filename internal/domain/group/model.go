package group

import (
	"errors"
	"fmt"
	"time"

	"meetup/internal/domain/label"
)

// Part wire values.
const (
	PartFirst  = "FIRST"
	PartSecond = "SECOND"
)

// DateLayout is the wire format of a group date.
const DateLayout = "2006-01-02"

// Parts maps part wire values to display labels. Wire lookups ignore case
// because the backend emits lower-case enum values in some payloads.
var Parts = label.New(
	label.Pair{Wire: PartFirst, Label: "1부"},
	label.Pair{Wire: PartSecond, Label: "2부"},
).FoldCase()

// Domain errors
var (
	ErrInvalidDate = errors.New("date must be YYYY-MM-DD")
	ErrUnknownPart = errors.New("part must be 1부 or 2부")
)

// Counts holds attending admin and member headcounts for one part.
type Counts struct {
	Admin  int `json:"admin"`
	Member int `json:"member"`
}

// Group is one dated meetup occasion.
type Group struct {
	ID         int64             `json:"id"`
	Date       string            `json:"date"`
	PartCounts map[string]Counts `json:"part_counts"`
}

// CountsFor returns the counts for a part, {0,0} when missing.
// Keys are matched case-insensitively against the canonical wire value.
// INVARIANT: Group fields are not mutated
func (g Group) CountsFor(part string) Counts {
	if c, ok := g.PartCounts[part]; ok {
		return c
	}
	canonical, _ := Parts.Wire(part)
	for k, c := range g.PartCounts {
		if w, ok := Parts.Wire(k); ok && w == canonical {
			return c
		}
	}
	return Counts{}
}

// IsOn reports whether the group date is the calendar date of now in now's location.
// INVARIANT: Group fields are not mutated
func (g Group) IsOn(now time.Time) bool {
	return g.Date == now.Format(DateLayout)
}

// Summary renders "date - 1부 운영진 A명 회원 M명, 2부 운영진 A명 회원 M명".
func (g Group) Summary() string {
	first := g.CountsFor(PartFirst)
	second := g.CountsFor(PartSecond)
	return fmt.Sprintf("%s - %s 운영진 %d명 회원 %d명, %s 운영진 %d명 회원 %d명",
		g.Date,
		Parts.LabelOr(PartFirst), first.Admin, first.Member,
		Parts.LabelOr(PartSecond), second.Admin, second.Member,
	)
}

// PartHeadline renders "1부 - 운영진 A명 회원 M명" for the home page.
func (g Group) PartHeadline(part string) string {
	c := g.CountsFor(part)
	return fmt.Sprintf("%s - 운영진 %d명 회원 %d명", Parts.LabelOr(part), c.Admin, c.Member)
}

// OrderedParts returns the part wire values in display order.
func OrderedParts() []string {
	pairs := Parts.Pairs()
	out := make([]string, len(pairs))
	for i, p := range pairs {
		out[i] = p.Wire
	}
	return out
}

// ParsePart accepts a label ("1부") or a wire value ("FIRST", "first").
// PRE: none
// POST: Returns the canonical wire value or ErrUnknownPart
func ParsePart(s string) (string, error) {
	w, ok := Parts.Wire(s)
	if !ok {
		return "", ErrUnknownPart
	}
	return w, nil
}

// ValidateDate checks the creation form date.
func ValidateDate(date string) error {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return ErrInvalidDate
	}
	return nil
}
