package email

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// InvitationSubject is the subject line of the welcome mail sent after an
// admin registers a user.
const InvitationSubject = "모임에 초대되었습니다"

// bodyRenderer escapes raw HTML in the markdown source.
var bodyRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// Invitation describes the welcome mail for a newly registered user.
type Invitation struct {
	To       string
	Username string
	Role     string
	LoginURL string
}

// markdown returns the mail body as markdown. User-supplied values are
// escaped so they cannot inject markup.
func (inv Invitation) markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s님, 환영합니다!\n\n", escapeMarkdown(inv.Username))
	fmt.Fprintf(&b, "운영진이 **%s** 권한으로 계정을 만들었습니다.\n", escapeMarkdown(inv.Role))
	fmt.Fprintf(&b, "이메일: %s\n\n", escapeMarkdown(inv.To))
	if inv.LoginURL != "" {
		fmt.Fprintf(&b, "[로그인하기](%s)\n\n", inv.LoginURL)
	}
	b.WriteString("비밀번호는 운영진에게 전달받은 것을 사용해주세요.\n")
	return b.String()
}

// Compose renders the invitation into a SendRequest.
// PRE: inv.To is a non-empty address
// POST: HTML holds the rendered markdown body; Text holds the markdown source
func (inv Invitation) Compose(from, replyTo string) (SendRequest, error) {
	md := inv.markdown()
	var buf bytes.Buffer
	if err := bodyRenderer.Convert([]byte(md), &buf); err != nil {
		return SendRequest{}, fmt.Errorf("render invitation: %w", err)
	}
	return SendRequest{
		To:       []string{inv.To},
		From:     from,
		Subject:  InvitationSubject,
		HTML:     buf.String(),
		Text:     md,
		ReplyTo:  replyTo,
		Category: CategoryInvitation,
	}, nil
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`,
	"(", `\(`, ")", `\)`, "#", `\#`, "`", "\\`", "<", "&lt;", ">", "&gt;",
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
