package controller

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/FlorianRuen/repo-dashboard/config"
	"github.com/FlorianRuen/repo-dashboard/model"
	"github.com/FlorianRuen/repo-dashboard/service"
	"github.com/FlorianRuen/repo-dashboard/store"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type APIController interface {
	GetSession(c *gin.Context)
	Login(c *gin.Context)
	Logout(c *gin.Context)
	SetUsername(c *gin.Context)

	RefreshRepositories(c *gin.Context)
	GetRepositories(c *gin.Context)
	GetStats(c *gin.Context)

	GetFilters(c *gin.Context)
	UpdateFilters(c *gin.Context)
	ResetFilters(c *gin.Context)

	SelectRepository(c *gin.Context)
	GetSelected(c *gin.Context)
	GetContents(c *gin.Context)

	Events(c *gin.Context)
}

type apiController struct {
	dashboardService service.DashboardService
	config           config.Config
}

func NewAPIController(config config.Config, service service.DashboardService) APIController {
	return apiController{
		dashboardService: service,
		config:           config,
	}
}

type loginRequest struct {
	Token    string `json:"token" binding:"required"`
	Remember bool   `json:"remember"`
}

type usernameRequest struct {
	Username string `json:"username" binding:"required"`
}

type statsResponse struct {
	Total     int      `json:"total"`
	Visible   int      `json:"visible"`
	MaxStars  int      `json:"maxStars"`
	Languages []string `json:"languages"`
}

// abort write the API error with the status matching its code
func abort(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusFor(err), model.NewAPIError(err))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrSelectionChanged):
		return http.StatusConflict
	case errors.Is(err, model.ErrRateLimitReached):
		return http.StatusTooManyRequests
	case errors.Is(err, model.ErrFetch):
		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}

func (s apiController) state() *store.Store {
	return s.dashboardService.Store()
}

func (s apiController) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, s.state().Session())
}

func (s apiController) Login(c *gin.Context) {
	var request loginRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		abort(c, fmt.Errorf("%w: %w", model.ErrInvalidInput, err))
		return
	}

	if _, err := s.dashboardService.Login(c, request.Token, request.Remember); err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, s.state().Session())
}

func (s apiController) Logout(c *gin.Context) {
	if err := s.dashboardService.Logout(); err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, s.state().Session())
}

func (s apiController) SetUsername(c *gin.Context) {
	var request usernameRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		abort(c, fmt.Errorf("%w: %w", model.ErrInvalidInput, err))
		return
	}

	if err := s.dashboardService.SetUsername(request.Username); err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, s.state().Session())
}

// RefreshRepositories return the visible list after a refresh
// a failed fetch only keeps the previous list, missing session or username are reported
func (s apiController) RefreshRepositories(c *gin.Context) {
	if err := s.dashboardService.RefreshRepositories(c); err != nil {
		if !s.state().Session().Authenticated || errors.Is(err, model.ErrInvalidInput) {
			abort(c, err)
			return
		}

		log.WithError(err).Warning("repositories list not refreshed, previous list kept")
	}

	c.JSON(http.StatusOK, s.state().Visible())
}

// GetRepositories return the visible list
// criteria given in the query string are applied on top of the current ones, without being saved
func (s apiController) GetRepositories(c *gin.Context) {
	if len(c.Request.URL.Query()) == 0 {
		c.JSON(http.StatusOK, s.state().Visible())
		return
	}

	criteria, err := bindCriteria(c, s.state().Criteria(), c.ShouldBindQuery)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, store.Apply(s.state().Repositories(), criteria))
}

func (s apiController) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, statsResponse{
		Total:     len(s.state().Repositories()),
		Visible:   len(s.state().Visible()),
		MaxStars:  s.state().MaxStars(),
		Languages: s.state().Languages(),
	})
}

func (s apiController) GetFilters(c *gin.Context) {
	c.JSON(http.StatusOK, s.state().Criteria())
}

// UpdateFilters change the criteria given as JSON body or query string, the other ones are kept
func (s apiController) UpdateFilters(c *gin.Context) {
	bind := c.ShouldBindQuery
	if c.Request.ContentLength > 0 {
		bind = c.ShouldBindJSON
	}

	criteria, err := bindCriteria(c, s.state().Criteria(), bind)
	if err != nil {
		abort(c, err)
		return
	}

	s.state().SetCriteria(criteria)
	c.JSON(http.StatusOK, s.state().Criteria())
}

func (s apiController) ResetFilters(c *gin.Context) {
	s.state().SetCriteria(model.DefaultFilterCriteria())
	c.JSON(http.StatusOK, s.state().Criteria())
}

func bindCriteria(c *gin.Context, current model.FilterCriteria, bind func(obj any) error) (model.FilterCriteria, error) {
	if err := bind(&current); err != nil {
		return current, fmt.Errorf("%w: %w", model.ErrInvalidInput, err)
	}

	criteria := current.Normalize()
	if err := criteria.Validate(); err != nil {
		log.WithError(err).WithField("path", c.FullPath()).Debug("invalid filter criteria")
		return criteria, fmt.Errorf("%w: %w", model.ErrInvalidInput, err)
	}

	return criteria, nil
}

func (s apiController) SelectRepository(c *gin.Context) {
	detail, err := s.dashboardService.SelectRepository(c, c.Param("owner"), c.Param("repo"))
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

func (s apiController) GetSelected(c *gin.Context) {
	c.JSON(http.StatusOK, s.state().Detail())
}

func (s apiController) GetContents(c *gin.Context) {
	path := strings.Trim(c.Param("path"), "/")

	entries, err := s.dashboardService.OpenDirectory(c, c.Param("owner"), c.Param("repo"), path)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

// Events stream store changes as server-sent events
// a first "ready" event is sent once the subscription is active
func (s apiController) Events(c *gin.Context) {
	events, cancel := s.state().Subscribe()
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.SSEvent("ready", s.state().Session())
	c.Writer.Flush()

	c.Stream(func(_ io.Writer) bool {
		select {
		case event, ok := <-events:
			if !ok {
				return false
			}

			c.SSEvent(string(event.Type), event)
			return true

		case <-c.Request.Context().Done():
			return false
		}
	})

	log.Debug("events subscriber disconnected")
}
