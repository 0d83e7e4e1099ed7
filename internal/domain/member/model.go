package member

import (
	"encoding/json"
	"errors"
	"strings"

	"meetup/internal/domain/label"
)

// Role labels double as wire values.
const (
	RoleLeader = "모임장"
	RoleAdmin  = "운영진"
	RoleMember = "회원"
)

// Gender labels double as wire values.
const (
	GenderMale   = "남"
	GenderFemale = "여"
)

// EmptyPlaceholder is shown for absent optional fields.
const EmptyPlaceholder = "-"

// Roles maps role wire values to display labels. Wire and label are identical
// today; keeping the table lets a new server-side role render as its raw value.
var Roles = label.New(
	label.Pair{Wire: RoleMember, Label: RoleMember},
	label.Pair{Wire: RoleAdmin, Label: RoleAdmin},
	label.Pair{Wire: RoleLeader, Label: RoleLeader},
)

// Genders maps gender wire values to display labels.
var Genders = label.New(
	label.Pair{Wire: GenderMale, Label: GenderMale},
	label.Pair{Wire: GenderFemale, Label: GenderFemale},
)

// PrivilegedRoles may open the admin console.
var PrivilegedRoles = []string{RoleAdmin, RoleLeader}

// Domain errors
var (
	ErrMissingUsername = errors.New("username is required")
	ErrMissingPassword = errors.New("password is required")
	ErrInvalidEmail    = errors.New("email must contain '@'")
	ErrInvalidRole     = errors.New("role must be one of: 회원, 운영진, 모임장")
	ErrInvalidGender   = errors.New("gender must be one of: 남, 여")
	ErrInvalidUserID   = errors.New("user id must be positive")
)

// User is a meetup member as returned by the users detail endpoint.
type User struct {
	ID              int64   `json:"id"`
	Username        string  `json:"username"`
	Gender          string  `json:"gender"`
	Email           string  `json:"email"`
	Role            string  `json:"role"`
	Interests       *string `json:"interests"`
	AttendanceCount int     `json:"attendance_count"`
	LastAttended    *string `json:"last_attended"`
	CreatedAt       string  `json:"created_at"`
}

// Identity is the user record returned by a successful login.
type Identity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Gender   string `json:"gender"`
	Email    string `json:"email"`
}

// UnmarshalJSON accepts last_attended_date as an alias of last_attended.
func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	var aux struct {
		plain
		LastAttendedDate *string `json:"last_attended_date"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*u = User(aux.plain)
	if u.LastAttended == nil {
		u.LastAttended = aux.LastAttendedDate
	}
	return nil
}

// InterestsOrPlaceholder returns interests or "-" when absent.
// INVARIANT: User fields are not mutated
func (u User) InterestsOrPlaceholder() string {
	if u.Interests == nil || strings.TrimSpace(*u.Interests) == "" {
		return EmptyPlaceholder
	}
	return *u.Interests
}

// InterestsValue returns interests or the empty string.
func (u User) InterestsValue() string {
	if u.Interests == nil {
		return ""
	}
	return *u.Interests
}

// LastAttendedOrPlaceholder returns the last attended date or "-" when absent.
// INVARIANT: User fields are not mutated
func (u User) LastAttendedOrPlaceholder() string {
	if u.LastAttended == nil || *u.LastAttended == "" {
		return EmptyPlaceholder
	}
	return datePart(*u.LastAttended)
}

// CreatedDate returns the date portion of CreatedAt.
// INVARIANT: User fields are not mutated
func (u User) CreatedDate() string {
	return datePart(u.CreatedAt)
}

// RoleLabel returns the display label of the role.
func (u User) RoleLabel() string {
	return Roles.LabelOr(u.Role)
}

// IsPrivileged reports whether role grants admin console access.
func IsPrivileged(role string) bool {
	for _, r := range PrivilegedRoles {
		if r == role {
			return true
		}
	}
	return false
}

// RegisterInput carries the fields of the admin registration form.
type RegisterInput struct {
	Username  string
	Password  string
	Email     string
	Role      string
	Gender    string
	Interests string
}

// Validate checks required fields before the form is sent upstream.
// PRE: none
// POST: Returns nil if the input is sendable, a domain error otherwise
func (in RegisterInput) Validate() error {
	if strings.TrimSpace(in.Username) == "" {
		return ErrMissingUsername
	}
	if in.Password == "" {
		return ErrMissingPassword
	}
	if !strings.Contains(in.Email, "@") {
		return ErrInvalidEmail
	}
	if _, ok := Roles.Wire(in.Role); !ok {
		return ErrInvalidRole
	}
	if _, ok := Genders.Wire(in.Gender); !ok {
		return ErrInvalidGender
	}
	return nil
}

// UpdateInput carries the editable fields of the edit modal.
type UpdateInput struct {
	UserID    int64
	Email     string
	Interests string
	Gender    string
	Role      string
}

// Validate checks the edit form before it is sent upstream.
// PRE: none
// POST: Returns nil if the input is sendable, a domain error otherwise
func (in UpdateInput) Validate() error {
	if in.UserID <= 0 {
		return ErrInvalidUserID
	}
	if !strings.Contains(in.Email, "@") {
		return ErrInvalidEmail
	}
	if _, ok := Genders.Wire(in.Gender); !ok {
		return ErrInvalidGender
	}
	if in.Role != "" {
		if _, ok := Roles.Wire(in.Role); !ok {
			return ErrInvalidRole
		}
	}
	return nil
}

// FindByID returns the user with the given id from a list.
func FindByID(users []User, id int64) (User, bool) {
	for _, u := range users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}

func datePart(ts string) string {
	if len(ts) >= 10 {
		return ts[:10]
	}
	return ts
}
