package attendance

import (
	"errors"

	"meetup/internal/domain/label"
)

// Status wire values. An absent status means the user has not chosen.
const (
	StatusAttending = "참석"
	StatusAbsent    = "불참"
)

// Statuses maps status wire values to display labels.
var Statuses = label.New(
	label.Pair{Wire: StatusAttending, Label: StatusAttending},
	label.Pair{Wire: StatusAbsent, Label: StatusAbsent},
)

// ErrUnknownStatus is returned for a status outside 참석/불참.
var ErrUnknownStatus = errors.New("status must be 참석 or 불참")

// ParseStatus validates a requested status.
func ParseStatus(s string) (string, error) {
	w, ok := Statuses.Wire(s)
	if !ok {
		return "", ErrUnknownStatus
	}
	return w, nil
}

// State is the display state of one attendance indicator.
type State string

const (
	StateChecking  State = "checking"
	StateAttending State = "attending"
	StateAbsent    State = "not_attending"
	StateUnset     State = "unset"
	StateError     State = "error"
)

// FailureKind distinguishes how an indicator failed. Recovery is the same.
type FailureKind string

const (
	FailLoad      FailureKind = "load"
	FailRequest   FailureKind = "request"
	FailTransport FailureKind = "transport"
)

// Indicator is the per-group, per-part attendance status shown on the home page.
// Every page load starts at StateChecking.
type Indicator struct {
	State   State
	Failure FailureKind
}

// NewIndicator returns an indicator in the checking state.
func NewIndicator() Indicator {
	return Indicator{State: StateChecking}
}

// Resolve applies a successful status fetch.
// PRE: i is checking
// POST: State is attending, not-attending or unset; other states are unchanged
func (i Indicator) Resolve(status *string) Indicator {
	if i.State != StateChecking {
		return i
	}
	return Indicator{State: stateFor(status)}
}

// Applied reflects a successful set-attendance action of the given status.
// POST: State is attending or not-attending regardless of prior state
func (i Indicator) Applied(status string) Indicator {
	s := status
	return Indicator{State: stateFor(&s)}
}

// Fail moves the indicator to the error state from any state.
func (i Indicator) Fail(kind FailureKind) Indicator {
	return Indicator{State: StateError, Failure: kind}
}

// Message returns the fixed text shown next to the controls.
func (i Indicator) Message() string {
	switch i.State {
	case StateChecking:
		return "⏳ 상태 확인 중..."
	case StateAttending:
		return "✅ 참석 상태입니다."
	case StateAbsent:
		return "❌ 불참 상태입니다."
	case StateUnset:
		return "❓ 아직 선택하지 않음"
	}
	switch i.Failure {
	case FailRequest:
		return "⚠️ 요청 실패. 다시 시도해주세요."
	case FailTransport:
		return "🚫 네트워크 오류 발생"
	default:
		return "⚠️ 상태 로딩 실패"
	}
}

func stateFor(status *string) State {
	if status == nil {
		return StateUnset
	}
	switch *status {
	case StatusAttending:
		return StateAttending
	case StatusAbsent:
		return StateAbsent
	default:
		return StateUnset
	}
}
