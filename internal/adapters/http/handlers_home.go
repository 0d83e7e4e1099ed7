package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"meetup/internal/adapters/http/middleware"
	"meetup/internal/application/orchestrators"
	"meetup/internal/application/projections"
	"meetup/internal/domain/attendance"
	"meetup/internal/domain/group"
	"meetup/internal/domain/session"
	"meetup/internal/domain/team"
)

// homePage is the data of home.html. Notice is the configured markdown
// banner; Banner is the text of a ?notice= redirect. ClockOffset is the zone
// offset in minutes the page clock ticks in.
type homePage struct {
	Greeting    string
	Privileged  bool
	Clock       string
	ClockOffset int
	Notice      string
	Banner      string
	Error       string
	GroupsError string
	NoGroups    string
	Groups      []projections.HomeGroup
}

// handleHome handles GET /
func handleHome(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	page := newHomePage(r, sess, overrideFromQuery(r.URL.Query()))
	page.Banner = notices[r.URL.Query().Get("notice")]
	renderTemplate(w, r, http.StatusOK, "home.html", page)
}

// Values of the ?result= parameter set by handleSetAttendance besides the
// applied status itself.
const (
	resultRequestFailed   = "request_failed"
	resultTransportFailed = "network_failed"
)

// attendanceRedirect returns the home URL carrying the outcome of a
// set-attendance click.
func attendanceRedirect(groupID int64, part, result string) string {
	q := url.Values{
		"group_id": {strconv.FormatInt(groupID, 10)},
		"part":     {part},
		"result":   {result},
	}
	return "/?" + q.Encode()
}

// overrideFromQuery rebuilds the indicator override of an attendanceRedirect
// URL. Anything malformed yields nil.
func overrideFromQuery(q url.Values) *projections.AttendanceOverride {
	groupID, err := strconv.ParseInt(q.Get("group_id"), 10, 64)
	if err != nil || groupID <= 0 {
		return nil
	}
	part, err := group.ParsePart(q.Get("part"))
	if err != nil {
		return nil
	}
	var ind attendance.Indicator
	switch result := q.Get("result"); result {
	case resultRequestFailed:
		ind = attendance.NewIndicator().Fail(attendance.FailRequest)
	case resultTransportFailed:
		ind = attendance.NewIndicator().Fail(attendance.FailTransport)
	default:
		status, err := attendance.ParseStatus(result)
		if err != nil {
			return nil
		}
		ind = attendance.NewIndicator().Applied(status)
	}
	return &projections.AttendanceOverride{GroupID: groupID, Part: part, Indicator: ind}
}

// handleSetAttendance handles POST /attendance. Validation errors re-render
// the page; every upstream outcome redirects home with the result in the query.
func handleSetAttendance(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	groupID, _ := strconv.ParseInt(r.FormValue("group_id"), 10, 64)
	input := orchestrators.SetAttendanceInput{
		GroupID: groupID,
		UserID:  sess.User.ID,
		Part:    r.FormValue("part"),
		Status:  r.FormValue("status"),
	}
	ind, err := orchestrators.ExecuteSetAttendance(r.Context(), input, orchestrators.SetAttendanceDeps{API: app.API})
	if err != nil && !isUpstream(err) {
		page := newHomePage(r, sess, nil)
		page.Error, _ = validationMessage(err)
		renderTemplate(w, r, http.StatusBadRequest, "home.html", page)
		return
	}
	part, _ := group.ParsePart(input.Part)
	result, _ := attendance.ParseStatus(input.Status)
	if err != nil {
		slog.Warn("set_attendance_failed", "group_id", groupID, "user_id", sess.User.ID, "error", err.Error())
		result = resultRequestFailed
		if ind.Failure == attendance.FailTransport {
			result = resultTransportFailed
		}
	}
	http.Redirect(w, r, attendanceRedirect(groupID, part, result), http.StatusSeeOther)
}

func newHomePage(r *http.Request, sess session.Session, override *projections.AttendanceOverride) homePage {
	page := homePage{
		Greeting:   fmt.Sprintf("👤 %s (%s)", sess.User.Username, sess.User.Role),
		Privileged: sess.IsPrivileged(),
		Notice:     app.Notice,
	}
	result, err := projections.QueryGetHome(r.Context(), projections.GetHomeQuery{
		UserID:   sess.User.ID,
		Now:      timeNow(),
		Location: app.Location,
		Override: override,
	}, projections.GetHomeDeps{Groups: app.API, Attendance: app.API})
	page.Clock = result.Clock
	_, offset := timeNow().In(app.Location).Zone()
	page.ClockOffset = offset / 60
	if err != nil {
		slog.Warn("home_groups_failed", "user_id", sess.User.ID, "error", err.Error())
		page.GroupsError = msgGroupsFailed
		return page
	}
	page.Groups = result.Groups
	if len(page.Groups) == 0 {
		page.NoGroups = msgNoGroups
	}
	return page
}

type teamsPage struct {
	GroupID int64
	Date    string
	Board   team.Board
	Error   string
	NoTeams string
}

// handleTeams handles GET /groups/{id}/teams. ?fragment=1 renders only the
// board for in-page expansion.
func handleTeams(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	groupID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || groupID <= 0 {
		http.NotFound(w, r)
		return
	}
	date := r.URL.Query().Get("date")
	if group.ValidateDate(date) != nil {
		date = ""
	}

	page := teamsPage{GroupID: groupID, Date: date}
	status := http.StatusOK
	board, err := projections.QueryGetTeamBoard(r.Context(), projections.GetTeamBoardQuery{
		GroupID: groupID,
		Date:    date,
		UserID:  sess.User.ID,
	}, projections.GetTeamBoardDeps{Teams: app.API, MyTeam: app.API})
	switch {
	case err != nil:
		slog.Warn("teams_failed", "group_id", groupID, "error", err.Error())
		page.Error = msgTeamsFailed
		status = http.StatusBadGateway
	case board.Empty:
		page.NoTeams = msgNoTeams
	default:
		page.Board = board
	}

	if r.URL.Query().Get("fragment") == "1" {
		renderFragment(w, r, status, "teams_page.html", "teams", page)
		return
	}
	renderTemplate(w, r, status, "teams_page.html", page)
}
