package ginserver

import (
	"errors"
	"io"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"gardiens/internal/app/commands"
	"gardiens/internal/app/dto"
	sessionapp "gardiens/internal/app/handlers/sessions"
	"gardiens/internal/app/middleware"
	"gardiens/internal/app/policies"
	"gardiens/internal/app/queries"
)

// SessionHandler exposes the per-client session: navigation, criteria and snapshot.
type SessionHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type openSessionRequest struct {
	Status string `json:"status"`
}

type navigateRequest struct {
	Page string `json:"page"`
}

type criteriaRequest struct {
	Query     string   `json:"query"`
	CareTypes []string `json:"care_types"`
	Start     string   `json:"start"`
	End       string   `json:"end"`
}

type credentialRequest struct {
	Credential string `json:"credential"`
}

// Open starts a session for the bearer credential.
func (h SessionHandler) Open(c *gin.Context) {
	var req openSessionRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	credential := credentialOf(c)
	if credential == "" {
		writeError(c, policies.ErrUnauthorized)
		return
	}
	cmd := sessionapp.OpenCommand{Credential: credential, Status: req.Status}
	view, err := commands.Dispatch[sessionapp.OpenCommand, dto.SessionView](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Location", "/api/v1/sessions/"+view.ID)
	c.JSON(http.StatusCreated, view)
}

func (h SessionHandler) Get(c *gin.Context) {
	view, err := queries.Ask[sessionapp.GetQuery, dto.SessionView](c.Request.Context(), h.Queries, sessionapp.NewGetQuery(c.Param("id")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h SessionHandler) Close(c *gin.Context) {
	_, err := commands.Dispatch[sessionapp.CloseCommand, struct{}](c.Request.Context(), h.Commands, sessionapp.NewCloseCommand(c.Param("id")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h SessionHandler) Navigate(c *gin.Context) {
	var req navigateRequest
	if !bindJSON(c, &req) {
		return
	}
	h.dispatchView(c, sessionapp.NewNavigateCommand(c.Param("id"), req.Page))
}

func (h SessionHandler) Back(c *gin.Context) {
	h.dispatchView(c, sessionapp.NewBackCommand(c.Param("id")))
}

// Home clears the navigation history.
func (h SessionHandler) Home(c *gin.Context) {
	h.dispatchView(c, sessionapp.NewHomeCommand(c.Param("id")))
}

// UpdateCriteria replaces the search inputs and answers with the new results.
func (h SessionHandler) UpdateCriteria(c *gin.Context) {
	var req criteriaRequest
	if !bindJSON(c, &req) {
		return
	}
	cmd := sessionapp.NewUpdateCriteriaCommand(c.Param("id"), req.Query, req.CareTypes, req.Start, req.End)
	result, err := commands.Dispatch[sessionapp.UpdateCriteriaCommand, dto.SearchResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h SessionHandler) Results(c *gin.Context) {
	result, err := queries.Ask[sessionapp.ResultsQuery, dto.SearchResult](c.Request.Context(), h.Queries, sessionapp.NewResultsQuery(c.Param("id")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Refresh answers 200 when a new snapshot was applied and 202 when the request was absorbed.
func (h SessionHandler) Refresh(c *gin.Context) {
	cmd := sessionapp.RefreshCommand{SessionID: c.Param("id")}
	result, err := commands.Dispatch[sessionapp.RefreshCommand, dto.RefreshResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	status := http.StatusOK
	if result.Outcome != "refreshed" {
		status = http.StatusAccepted
	}
	c.JSON(status, result)
}

func (h SessionHandler) RotateCredential(c *gin.Context) {
	var req credentialRequest
	if !bindJSON(c, &req) {
		return
	}
	h.dispatchView(c, sessionapp.NewRotateCredentialCommand(c.Param("id"), req.Credential))
}

func (h SessionHandler) ToggleFavorite(c *gin.Context) {
	cmd := sessionapp.NewToggleFavoriteCommand(c.Param("id"), c.Param("listingID"))
	result, err := commands.Dispatch[sessionapp.ToggleFavoriteCommand, dto.FavoriteResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h SessionHandler) dispatchView(c *gin.Context, cmd commands.Command) {
	res, err := h.Commands.Dispatch(c.Request.Context(), cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	view, ok := res.(dto.SessionView)
	if !ok {
		writeError(c, commands.ErrResultType)
		return
	}
	c.JSON(http.StatusOK, view)
}

var _ SessionHTTP = SessionHandler{}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		writeError(c, middleware.Invalid(err))
		return false
	}
	return true
}

// bindOptionalJSON accepts an empty body.
func bindOptionalJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		writeError(c, middleware.Invalid(err))
		return false
	}
	return true
}
