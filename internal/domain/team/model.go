package team

import (
	"encoding/json"
	"fmt"
	"strings"

	"meetup/internal/domain/group"
	"meetup/internal/domain/member"
)

// ColumnsPerRow is the width of the team grid.
const ColumnsPerRow = 2

// Member is one seat in a server-computed team.
type Member struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	IsLeader bool   `json:"is_leader"`
}

// Team is a server-computed grouping of attendees within one part.
type Team struct {
	ID      int64    `json:"id"`
	Part    string   `json:"part"`
	Members []Member `json:"members"`
}

// UnmarshalJSON accepts team_id as an alias of id and canonicalises the part.
func (t *Team) UnmarshalJSON(data []byte) error {
	type plain Team
	var aux struct {
		plain
		TeamID *int64 `json:"team_id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*t = Team(aux.plain)
	if t.ID == 0 && aux.TeamID != nil {
		t.ID = *aux.TeamID
	}
	if w, ok := group.Parts.Wire(t.Part); ok {
		t.Part = w
	}
	return nil
}

// HasPart reports whether any team belongs to part.
func HasPart(teams []Team, part string) bool {
	for _, t := range teams {
		if t.Part == part {
			return true
		}
	}
	return false
}

// Seat is a rendered member bubble.
type Seat struct {
	Username string
	Leader   bool
	Admin    bool
	Me       bool
}

// Classes returns the CSS classes of the bubble.
func (s Seat) Classes() string {
	c := []string{"bubble"}
	if s.Leader {
		c = append(c, "leader")
	}
	if s.Admin {
		c = append(c, "admin")
	}
	if s.Me {
		c = append(c, "me")
	}
	return strings.Join(c, " ")
}

// Card is one numbered team table.
type Card struct {
	Number    int
	Title     string
	Highlight bool
	Seats     []Seat
}

// Section is all teams of one part laid out in rows.
type Section struct {
	Part    string
	Heading string
	Rows    [][]Card
}

// Board is the rendered team assignment for a group.
type Board struct {
	Title    string
	Sections []Section
	Empty    bool
}

var sectionIcons = map[string]string{
	group.PartFirst:  "📘",
	group.PartSecond: "📙",
}

// BuildBoard partitions teams by part and lays each part out in rows of two.
// PRE: teams is in server order; myTeamID is nil when unknown
// POST: Teams are numbered 1..n per part in order; only the team with
// ID == *myTeamID is highlighted
// INVARIANT: teams is not mutated
func BuildBoard(date string, teams []Team, myTeamID *int64, viewerID int64) Board {
	if len(teams) == 0 {
		return Board{Empty: true}
	}

	parts := group.OrderedParts()
	byPart := make(map[string][]Team)
	for _, t := range teams {
		if _, seen := byPart[t.Part]; !seen && !contains(parts, t.Part) {
			parts = append(parts, t.Part)
		}
		byPart[t.Part] = append(byPart[t.Part], t)
	}

	board := Board{Title: fmt.Sprintf("🧩 %s 조 편성 결과", date)}
	for _, p := range parts {
		board.Sections = append(board.Sections, buildSection(p, byPart[p], myTeamID, viewerID))
	}
	return board
}

func buildSection(part string, teams []Team, myTeamID *int64, viewerID int64) Section {
	partLabel := group.Parts.LabelOr(part)
	icon, ok := sectionIcons[part]
	if !ok {
		icon = "📗"
	}
	sec := Section{Part: part, Heading: fmt.Sprintf("%s %s 조편성", icon, partLabel)}

	for i := 0; i < len(teams); i += ColumnsPerRow {
		end := i + ColumnsPerRow
		if end > len(teams) {
			end = len(teams)
		}
		row := make([]Card, 0, ColumnsPerRow)
		for j, t := range teams[i:end] {
			mine := myTeamID != nil && t.ID == *myTeamID
			title := fmt.Sprintf("%s %d조", partLabel, i+j+1)
			if mine {
				title += " ⭐"
			}
			card := Card{Number: i + j + 1, Title: title, Highlight: mine}
			for _, m := range t.Members {
				card.Seats = append(card.Seats, Seat{
					Username: m.Username,
					Leader:   m.IsLeader,
					Admin:    m.Role == member.RoleAdmin,
					Me:       viewerID != 0 && m.ID == viewerID,
				})
			}
			row = append(row, card)
		}
		sec.Rows = append(sec.Rows, row)
	}
	return sec
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
