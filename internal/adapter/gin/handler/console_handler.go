package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-admin-console/internal/adapter/gin/views"
	domain "user-admin-console/internal/domain/user"
	"user-admin-console/internal/editform"
	"user-admin-console/internal/metrics"
	"user-admin-console/internal/query"
	"user-admin-console/internal/usecase/user"
	apperrors "user-admin-console/pkg/errors"
	"user-admin-console/pkg/logger"
)

// ErrMissingUserID is returned when the edit page is reached without a user ID.
// It means the route is misconfigured, so it renders as a server error.
var ErrMissingUserID = errors.New("no user id provided")

const listPath = "/users"

// ConsoleConfig bounds how long a page waits on the user store.
type ConsoleConfig struct {
	LoadWait      time.Duration // render budget for the user query
	SubmitWait    time.Duration // render budget for the update
	SubmissionTTL time.Duration // how long a parked load or submission can be polled
}

// pendingLoad is a user query that outlived the render budget of the page that
// started it. edits holds values posted while the record was still loading.
type pendingLoad struct {
	id      string
	edits   *editform.Values
	request *query.Request[domain.User]
}

// submission is an update that outlived the POST that started it.
type submission struct {
	user    domain.User
	values  editform.Values
	request *query.Request[string]
}

// ConsoleHandler serves the server-rendered user pages.
type ConsoleHandler struct {
	uc          user.Usecase
	log         *zap.Logger
	cfg         ConsoleConfig
	loads       *query.Group[string, domain.User]
	saves       *query.Group[user.PutUserRequest, string]
	pending     *query.Store[pendingLoad]
	submissions *query.Store[submission]
}

// NewConsoleHandler creates a ConsoleHandler.
func NewConsoleHandler(uc user.Usecase, log *zap.Logger, cfg ConsoleConfig) *ConsoleHandler {
	h := &ConsoleHandler{
		uc:          uc,
		log:         log,
		cfg:         cfg,
		pending:     query.NewStore[pendingLoad](cfg.SubmissionTTL),
		submissions: query.NewStore[submission](cfg.SubmissionTTL),
	}
	h.loads = query.NewGroup(h.loadUser)
	h.saves = query.NewGroup(h.putUser)
	return h
}

func (h *ConsoleHandler) loadUser(ctx context.Context, id string) (domain.User, error) {
	start := time.Now()
	resp, err := h.uc.GetUser(ctx, user.GetUserRequest{ID: id})
	if err != nil {
		metrics.ObserveRequest("query", "error", time.Since(start))
		return domain.User{}, err
	}
	metrics.ObserveRequest("query", "success", time.Since(start))
	return resp.User, nil
}

func (h *ConsoleHandler) putUser(ctx context.Context, in user.PutUserRequest) (string, error) {
	start := time.Now()
	resp, err := h.uc.PutUser(ctx, in)
	if err != nil {
		metrics.ObserveRequest("mutation", "error", time.Since(start))
		return "", err
	}
	metrics.ObserveRequest("mutation", "success", time.Since(start))
	return resp.ID, nil
}

// page carries what the shared layout renders.
type page struct {
	Title   string
	Toast   *Toast
	Refresh *refresh
}

type refresh struct {
	Seconds int
	URL     string
}

type editPage struct {
	page
	Action  string
	User    domain.User
	Values  editform.Values
	Errors  editform.Errors
	Phase   string // exposed as data-phase on the form
	Failure string
	Orgs    []editform.Choice
	Roles   []editform.Choice
}

type listPage struct {
	page
	Query       string
	SearchError string
	Users       []domain.User
	Pagination  *domain.Pagination
}

// editInput is the posted edit form. An unchecked box is absent, so Enabled
// defaults to false.
type editInput struct {
	Action    string `form:"action"`
	FirstName string `form:"firstName"`
	LastName  string `form:"lastName"`
	Enabled   bool   `form:"enabled"`
	Org       string `form:"org"`
	Role      string `form:"role"`
}

func (in editInput) values() editform.Values {
	return editform.Values{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Enabled:   in.Enabled,
		Org:       parseChoice(in.Org, domain.ParseOrg),
		Role:      parseChoice(in.Role, domain.ParseRole),
	}
}

// parseChoice normalizes a posted radio value. An unknown value is kept as posted
// so validation reports it.
func parseChoice[T ~string](raw string, parse func(string) (T, error)) T {
	v, err := parse(raw)
	if err != nil {
		return T(raw)
	}
	return v
}

func editPath(id string) string {
	return "/users/" + url.PathEscape(id) + "/edit"
}

// userID reads the route ID. A missing ID aborts with ErrMissingUserID for the
// error boundary to render.
func userID(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		_ = c.Error(ErrMissingUserID)
		c.Abort()
		return "", false
	}
	c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), id))
	return id, true
}

// ListUsers handles GET /users
func (h *ConsoleHandler) ListUsers(c *gin.Context) {
	page, limit := pageParams(c)
	search := c.Query("query")

	view := listPage{
		page:  h.basePage(c, "Users"),
		Query: search,
	}

	resp, err := h.uc.ListUsers(c.Request.Context(), user.ListUsersRequest{Query: search, Page: page, Limit: limit})
	if err != nil {
		if !apperrors.IsValidation(err) {
			_ = c.Error(err)
			c.Abort()
			return
		}
		view.SearchError = "Search only supports names and email addresses."
		c.HTML(http.StatusBadRequest, views.UsersList, view)
		return
	}

	view.Users = resp.Users
	view.Pagination = resp.Pagination
	c.HTML(http.StatusOK, views.UsersList, view)
}

// EditUser handles GET /users/:id/edit
func (h *ConsoleHandler) EditUser(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	if sid := c.Query("submission"); sid != "" {
		h.showSubmission(c, id, sid)
		return
	}
	if token := c.Query("load"); token != "" {
		h.resumeLoad(c, id, token)
		return
	}

	loaded, ok := h.load(c, id, nil)
	if !ok {
		return
	}

	h.renderForm(c, http.StatusOK, editform.New(loaded))
}

// SubmitUser handles POST /users/:id/edit
func (h *ConsoleHandler) SubmitUser(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	log := logger.WithContext(c.Request.Context(), h.log)

	var in editInput
	if err := c.ShouldBind(&in); err != nil {
		log.Warn("invalid edit form post", zap.Error(err))
		_ = c.Error(apperrors.NewValidationError("form", "the form could not be read"))
		c.Abort()
		return
	}

	if in.Action == "cancel" {
		setFlashToast(c, Toast{Category: "info", Title: "Changes discarded"})
		c.Redirect(http.StatusSeeOther, listPath)
		return
	}

	edits := in.values()
	loaded, ok := h.load(c, id, &edits)
	if !ok {
		return
	}

	form := editform.New(loaded)
	form.Edit(edits)
	payload, valid := form.Submit()
	if !valid {
		log.Info("edit form rejected", zap.Int("field_errors", len(form.Errors())))
		h.renderForm(c, http.StatusUnprocessableEntity, form)
		return
	}

	req := h.saves.Do(c.Request.Context(), user.PutUserRequest{
		ID:        payload.ID,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Email:     payload.Email,
		Enabled:   payload.Enabled,
		Org:       string(payload.Org),
		Role:      string(payload.Role),
	})

	res := req.WaitFor(c.Request.Context(), h.cfg.SubmitWait)
	switch res.Status {
	case query.Success:
		form.Succeed()
		h.saved(c, payload)
	case query.Error:
		form.Fail(res.Err)
		log.Warn("user update failed", zap.Error(res.Err))
		h.renderForm(c, apperrors.StatusOf(res.Err), form)
	default:
		sid := h.submissions.Put(submission{user: loaded, values: form.Values(), request: req})
		metrics.SetPendingSubmissions(h.submissions.Len())
		log.Info("user update still running", zap.String("submission", sid))
		c.Redirect(http.StatusSeeOther, editPath(id)+"?submission="+url.QueryEscape(sid))
	}
}

// load waits for the user record. It hands failures to the error boundary. A
// query still pending after the budget is parked with edits, and the loading page
// refreshes into resumeLoad so the running query is reused. ok is false when the
// response is already decided.
func (h *ConsoleHandler) load(c *gin.Context, id string, edits *editform.Values) (domain.User, bool) {
	req := h.loads.Do(c.Request.Context(), id)
	res := req.WaitFor(c.Request.Context(), h.cfg.LoadWait)

	switch res.Status {
	case query.Success:
		return res.Value, true
	case query.Error:
		_ = c.Error(res.Err)
		c.Abort()
	default:
		token := h.pending.Put(pendingLoad{id: id, edits: edits, request: req})
		h.renderLoading(c, id, token)
	}
	return domain.User{}, false
}

// resumeLoad continues a parked query. Once the record arrives the form is
// rendered, carrying any edits posted while it loaded. Nothing is written.
func (h *ConsoleHandler) resumeLoad(c *gin.Context, id, token string) {
	parked, ok := h.pending.Get(token)
	if !ok || parked.id != id {
		c.Redirect(http.StatusSeeOther, editPath(id))
		return
	}

	res := parked.request.WaitFor(c.Request.Context(), h.cfg.LoadWait)
	switch res.Status {
	case query.Success:
		h.pending.Delete(token)
		form := editform.New(res.Value)
		if parked.edits != nil {
			form.Edit(*parked.edits)
		}
		h.renderForm(c, http.StatusOK, form)
	case query.Error:
		h.pending.Delete(token)
		_ = c.Error(res.Err)
		c.Abort()
	default:
		h.renderLoading(c, id, token)
	}
}

func (h *ConsoleHandler) renderLoading(c *gin.Context, id, token string) {
	view := h.basePage(c, "Edit Form")
	view.Refresh = &refresh{Seconds: 1, URL: editPath(id) + "?load=" + url.QueryEscape(token)}
	c.HTML(http.StatusOK, views.Loading, view)
}

// showSubmission renders the state of a parked update.
func (h *ConsoleHandler) showSubmission(c *gin.Context, id, sid string) {
	sub, ok := h.submissions.Get(sid)
	if !ok || sub.user.ID != id {
		c.Redirect(http.StatusSeeOther, editPath(id))
		return
	}

	res := sub.request.Result()
	switch res.Status {
	case query.Pending:
		view := h.basePage(c, "Edit Form")
		view.Refresh = &refresh{Seconds: 1, URL: editPath(id) + "?submission=" + url.QueryEscape(sid)}
		c.HTML(http.StatusOK, views.Saving, view)
		return
	case query.Success:
		h.forget(sid)
		form := editform.New(sub.user)
		form.Edit(sub.values)
		payload, _ := form.Submit()
		form.Succeed()
		h.saved(c, payload)
	default:
		h.forget(sid)
		form := editform.New(sub.user)
		form.Edit(sub.values)
		form.Submit()
		form.Fail(res.Err)
		h.renderForm(c, apperrors.StatusOf(res.Err), form)
	}
}

func (h *ConsoleHandler) forget(sid string) {
	h.submissions.Delete(sid)
	metrics.SetPendingSubmissions(h.submissions.Len())
}

func (h *ConsoleHandler) saved(c *gin.Context, u domain.User) {
	logger.WithContext(c.Request.Context(), h.log).Info("user updated from console")
	setFlashToast(c, Toast{Category: "success", Title: "User saved", Description: u.FullName() + " was updated."})
	c.Redirect(http.StatusSeeOther, listPath)
}

func (h *ConsoleHandler) renderForm(c *gin.Context, status int, form *editform.Form) {
	values := form.Values()
	view := editPage{
		page:   h.basePage(c, "Edit Form"),
		Action: editPath(form.User().ID),
		User:   form.User(),
		Values: values,
		Errors: form.Errors(),
		Phase:  form.Phase().String(),
		Orgs:   editform.OrgChoices(values.Org),
		Roles:  editform.RoleChoices(values.Role),
	}
	if err := form.Failure(); err != nil {
		view.Failure = failureMessage(err)
	}
	c.HTML(status, views.UserEdit, view)
}

func (h *ConsoleHandler) basePage(c *gin.Context, title string) page {
	return page{Title: title, Toast: popFlashToast(c)}
}

// failureMessage describes a failed update without leaking server internals.
func failureMessage(err error) string {
	if apperrors.StatusOf(err) >= http.StatusInternalServerError {
		return "The server could not store the changes. Try again later."
	}
	return err.Error()
}
