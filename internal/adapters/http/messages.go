package web

import (
	"errors"

	"meetup/internal/adapters/meetupapi"
	"meetup/internal/application/orchestrators"
	"meetup/internal/application/projections"
	"meetup/internal/domain/attendance"
	"meetup/internal/domain/group"
	"meetup/internal/domain/member"
)

// Fixed user-facing texts.
const (
	msgLoginFailed     = "❌ 로그인 실패: 이메일 또는 비밀번호 오류"
	msgLoginNetwork    = "🚫 네트워크 오류가 발생했습니다."
	msgForbidden       = "접근 권한이 없습니다."
	msgUserAdded       = "✅ 유저가 추가되었습니다."
	msgUserEdited      = "수정 완료"
	msgGroupCreated    = "✅ 모임이 생성되었습니다."
	msgNetwork         = "❌ 네트워크 오류"
	msgNoGroups        = "생성된 모임이 없습니다."
	msgGroupsFailed    = "⚠️ 모임 목록 로딩 실패"
	msgUsersFailed     = "⚠️ 유저 목록 로딩 실패"
	msgTeamsFailed     = "⚠️ 조 편성 로딩 실패"
	msgNoTeams         = "아직 조가 편성되지 않았습니다."
	msgGroupNotFound   = "모임을 찾을 수 없습니다."
	msgUserNotFound    = "유저를 찾을 수 없습니다."
	msgRegisterConfirm = "이 유저를 추가하시겠습니까?"
)

// notices maps the ?notice= values of redirects to their banner text.
var notices = map[string]string{
	"forbidden": msgForbidden,
	"edited":    msgUserEdited,
}

// validationMessages maps local validation errors to their Korean text.
var validationMessages = []struct {
	err error
	msg string
}{
	{member.ErrMissingUsername, "이름을 입력해주세요."},
	{member.ErrMissingPassword, "비밀번호를 입력해주세요."},
	{member.ErrInvalidEmail, "이메일 형식이 올바르지 않습니다."},
	{member.ErrInvalidRole, "권한을 선택해주세요."},
	{member.ErrInvalidGender, "성별을 선택해주세요."},
	{member.ErrInvalidUserID, msgUserNotFound},
	{group.ErrInvalidDate, "날짜를 YYYY-MM-DD 형식으로 입력해주세요."},
	{group.ErrUnknownPart, "1부 또는 2부를 선택해주세요."},
	{attendance.ErrUnknownStatus, "참석 또는 불참을 선택해주세요."},
	{orchestrators.ErrNoGroupSelected, "먼저 모임을 선택해주세요."},
	{orchestrators.ErrInvalidTeamSize, "조당 인원 수를 올바르게 입력해주세요."},
	{orchestrators.ErrTargetChanged, "선택된 모임이 변경되었습니다. 다시 시도해주세요."},
	{orchestrators.ErrInvalidGroupID, msgGroupNotFound},
	{orchestrators.ErrGroupNotFound, msgGroupNotFound},
	{projections.ErrUserNotFound, msgUserNotFound},
}

// validationMessage returns the text of a local validation error.
func validationMessage(err error) (string, bool) {
	for _, v := range validationMessages {
		if errors.Is(err, v.err) {
			return v.msg, true
		}
	}
	return "", false
}

// isUpstream reports whether err came from the meetup API.
func isUpstream(err error) bool {
	return meetupapi.IsHTTP(err) || meetupapi.IsTransport(err)
}

// loginMessage maps a login failure.
func loginMessage(err error) string {
	if meetupapi.IsTransport(err) {
		return msgLoginNetwork
	}
	return msgLoginFailed
}

// failureMessage maps a form failure to "❌ <detail>", the fallback when the
// server gave no detail, or the network text on a transport failure.
func failureMessage(err error, fallback string) string {
	if msg, ok := validationMessage(err); ok {
		return "❌ " + msg
	}
	if meetupapi.IsTransport(err) {
		return msgNetwork
	}
	return "❌ " + meetupapi.DetailOr(err, fallback)
}

// editFailureMessage maps an edit failure to "실패: <detail>" or "실패: 오류".
func editFailureMessage(err error) string {
	if msg, ok := validationMessage(err); ok {
		return "실패: " + msg
	}
	return "실패: " + meetupapi.DetailOr(err, "오류")
}
