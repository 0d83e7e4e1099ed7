package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"meetup/internal/adapters/http/middleware"
	"meetup/internal/application/listutil"
	"meetup/internal/application/orchestrators"
	"meetup/internal/application/projections"
	"meetup/internal/domain/group"
	"meetup/internal/domain/label"
	"meetup/internal/domain/member"
	"meetup/internal/domain/session"
)

type registerForm struct {
	Username  string
	Email     string
	Role      string
	Gender    string
	Interests string
}

type adminPage struct {
	Greeting string
	Banner   string

	Users      projections.GetUserPageResult
	UsersError string

	Register        registerForm
	RegisterOpen    bool
	RegisterConfirm string
	UserMessage     string

	Groups       projections.GetAdminGroupsResult
	GroupsError  string
	GroupMessage string
	GroupDate    string

	ShufflePart    string
	TeamSize       string
	ShuffleMessage string

	Roles   []string
	Genders []string
	Parts   []label.Pair
}

type editUserPage struct {
	User    member.User
	Error   string
	Roles   []string
	Genders []string
}

type shuffleConfirmPage struct {
	Prompt   string
	GroupID  int64
	Part     string
	TeamSize int
	Date     string
}

// failureStatus is 400 for local validation errors and 502 for upstream failures.
func failureStatus(err error) int {
	if isUpstream(err) {
		return http.StatusBadGateway
	}
	return http.StatusBadRequest
}

func newAdminPage(sess session.Session) adminPage {
	return adminPage{
		Greeting:        fmt.Sprintf("👤 %s (%s)", sess.User.Username, sess.User.Role),
		RegisterConfirm: msgRegisterConfirm,
		Register:        registerForm{Role: member.RoleMember, Gender: member.GenderMale},
		ShufflePart:     group.PartFirst,
		Roles:           member.Roles.Labels(),
		Genders:         member.Genders.Labels(),
		Parts:           group.Parts.Pairs(),
	}
}

// renderAdmin loads the user page stored in the session and the group list,
// then renders the console.
func renderAdmin(w http.ResponseWriter, r *http.Request, status int, sess session.Session, page adminPage) {
	users, err := projections.QueryGetUserPage(r.Context(), projections.GetUserPageQuery{
		Page: sess.CurrentUserPage(),
	}, projections.GetUserPageDeps{API: app.API})
	if err != nil {
		slog.Warn("admin_users_failed", "error", err.Error())
		page.UsersError = msgUsersFailed
	}
	page.Users = users

	groups, err := projections.QueryGetAdminGroups(r.Context(), projections.GetAdminGroupsQuery{
		Selected: sess.Shuffle,
	}, projections.GetAdminGroupsDeps{API: app.API})
	if err != nil {
		slog.Warn("admin_groups_failed", "error", err.Error())
		page.GroupsError = msgGroupsFailed
	}
	page.Groups = groups

	renderTemplate(w, r, status, "admin.html", page)
}

// adminSession returns the session and its token; RequireRole guarantees both.
func adminSession(w http.ResponseWriter, r *http.Request) (session.Session, string, bool) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return session.Session{}, "", false
	}
	token, _ := middleware.TokenFromContext(r.Context())
	return sess, token, true
}

// handleAdmin handles GET /admin. ?page= moves the user list and is
// remembered in the session.
func handleAdmin(w http.ResponseWriter, r *http.Request) {
	sess, token, ok := adminSession(w, r)
	if !ok {
		return
	}
	if r.URL.Query().Has("page") {
		page := listutil.ParsePage(r.URL.Query(), sess.CurrentUserPage())
		updated, err := orchestrators.ExecuteRememberUserPage(r.Context(), token, sess, page,
			orchestrators.RememberUserPageDeps{Sessions: app.Sessions})
		if err != nil {
			internalError(w, err)
			return
		}
		sess = updated
	}

	page := newAdminPage(sess)
	page.Banner = notices[r.URL.Query().Get("notice")]
	renderAdmin(w, r, http.StatusOK, sess, page)
}

// handleRegisterUser handles POST /admin/users
func handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := adminSession(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	input := member.RegisterInput{
		Username:  r.FormValue("username"),
		Password:  r.FormValue("password"),
		Email:     r.FormValue("email"),
		Role:      r.FormValue("role"),
		Gender:    r.FormValue("gender"),
		Interests: r.FormValue("interests"),
	}

	page := newAdminPage(sess)
	page.RegisterOpen = true
	result, err := orchestrators.ExecuteRegisterUser(r.Context(), input, orchestrators.RegisterUserDeps{
		API:    app.API,
		Invite: app.Invite,
	})
	if err != nil {
		page.UserMessage = failureMessage(err, "에러 발생")
		page.Register = registerForm{
			Username:  input.Username,
			Email:     input.Email,
			Role:      input.Role,
			Gender:    input.Gender,
			Interests: input.Interests,
		}
		renderAdmin(w, r, failureStatus(err), sess, page)
		return
	}
	page.UserMessage = msgUserAdded
	if result.Invited {
		page.UserMessage += " 📧 초대 메일을 보냈습니다."
	}
	renderAdmin(w, r, http.StatusOK, sess, page)
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

// handleEditUserPage handles GET /admin/users/{id}/edit
func handleEditUserPage(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := adminSession(w, r); !ok {
		return
	}
	page := editUserPage{Roles: member.Roles.Labels(), Genders: member.Genders.Labels()}
	id, ok := pathID(r)
	if !ok {
		page.Error = "실패: " + msgUserNotFound
		renderTemplate(w, r, http.StatusNotFound, "edit_user.html", page)
		return
	}
	u, err := projections.QueryGetUser(r.Context(), projections.GetUserQuery{UserID: id},
		projections.GetUserPageDeps{API: app.API})
	if err != nil {
		page.Error = editFailureMessage(err)
		status := failureStatus(err)
		if errors.Is(err, projections.ErrUserNotFound) {
			status = http.StatusNotFound
		}
		renderTemplate(w, r, status, "edit_user.html", page)
		return
	}
	page.User = u
	renderTemplate(w, r, http.StatusOK, "edit_user.html", page)
}

// handleEditUser handles POST /admin/users/{id}/edit. Success returns to the
// remembered page of the user list.
func handleEditUser(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := adminSession(w, r); !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	id, _ := pathID(r)
	input := member.UpdateInput{
		UserID:    id,
		Email:     r.FormValue("email"),
		Interests: r.FormValue("interests"),
		Gender:    r.FormValue("gender"),
		Role:      r.FormValue("role"),
	}
	if _, err := orchestrators.ExecuteEditUser(r.Context(), input, orchestrators.EditUserDeps{API: app.API}); err != nil {
		interests := input.Interests
		page := editUserPage{
			User: member.User{
				ID:        id,
				Username:  r.FormValue("username"),
				Email:     input.Email,
				Gender:    input.Gender,
				Role:      input.Role,
				Interests: &interests,
			},
			Error:   editFailureMessage(err),
			Roles:   member.Roles.Labels(),
			Genders: member.Genders.Labels(),
		}
		renderTemplate(w, r, failureStatus(err), "edit_user.html", page)
		return
	}
	http.Redirect(w, r, "/admin?notice=edited", http.StatusSeeOther)
}

// handleCreateGroup handles POST /admin/groups
func handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := adminSession(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	input := orchestrators.CreateGroupInput{Date: r.FormValue("date")}
	page := newAdminPage(sess)
	if _, err := orchestrators.ExecuteCreateGroup(r.Context(), input, orchestrators.CreateGroupDeps{API: app.API}); err != nil {
		page.GroupMessage = failureMessage(err, "생성 실패")
		page.GroupDate = input.Date
		renderAdmin(w, r, failureStatus(err), sess, page)
		return
	}
	page.GroupMessage = msgGroupCreated
	renderAdmin(w, r, http.StatusOK, sess, page)
}

// handleSelectGroup handles POST /admin/groups/{id}/select
func handleSelectGroup(w http.ResponseWriter, r *http.Request) {
	sess, token, ok := adminSession(w, r)
	if !ok {
		return
	}
	id, _ := pathID(r)
	_, err := orchestrators.ExecuteSelectGroup(r.Context(), orchestrators.SelectGroupInput{
		Token:   token,
		Session: sess,
		GroupID: id,
	}, orchestrators.SelectGroupDeps{API: app.API, Sessions: app.Sessions})
	if err != nil {
		if !isUpstream(err) && !errors.Is(err, orchestrators.ErrGroupNotFound) {
			internalError(w, err)
			return
		}
		page := newAdminPage(sess)
		page.GroupMessage = failureMessage(err, msgGroupNotFound)
		renderAdmin(w, r, failureStatus(err), sess, page)
		return
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// handleShuffle handles POST /admin/shuffle. Without confirmed=1 it checks
// for existing teams and asks first, unless that check failed.
func handleShuffle(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := adminSession(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	input := orchestrators.ShuffleInput{
		Target:   sess.Shuffle,
		Part:     r.FormValue("part"),
		TeamSize: r.FormValue("team_size"),
	}
	page := newAdminPage(sess)
	page.TeamSize = strings.TrimSpace(input.TeamSize)
	if part, err := group.ParsePart(input.Part); err == nil {
		page.ShufflePart = part
	}

	var plan orchestrators.ShufflePlan
	var err error
	confirmed := r.FormValue("confirmed") == "1"
	if confirmed {
		groupID, _ := strconv.ParseInt(r.FormValue("group_id"), 10, 64)
		plan, err = orchestrators.ConfirmShuffle(input, groupID)
	} else {
		plan, err = orchestrators.PrepareShuffle(r.Context(), input, orchestrators.PrepareShuffleDeps{Teams: app.API})
	}
	if err != nil {
		page.ShuffleMessage, _ = validationMessage(err)
		renderAdmin(w, r, http.StatusBadRequest, sess, page)
		return
	}

	if !confirmed && !plan.SkipConfirm {
		renderTemplate(w, r, http.StatusOK, "shuffle_confirm.html", shuffleConfirmPage{
			Prompt:   plan.Prompt(),
			GroupID:  plan.GroupID,
			Part:     plan.Part,
			TeamSize: plan.TeamSize,
			Date:     plan.Date,
		})
		return
	}

	res, err := orchestrators.ExecuteShuffle(r.Context(), plan, orchestrators.ExecuteShuffleDeps{API: app.API})
	if err != nil {
		page.ShuffleMessage = failureMessage(err, "실패")
		renderAdmin(w, r, failureStatus(err), sess, page)
		return
	}
	page.ShuffleMessage = "✅ " + res.Message
	renderAdmin(w, r, http.StatusOK, sess, page)
}
