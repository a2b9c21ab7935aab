// Package web hosts the Nike+ login flow and a small JSON API over the
// gateways.
package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	goerrors "github.com/goliatone/go-errors"
	"github.com/roessland/nikeplus/nike"
)

// Gateways is the part of *nike.GatewayFactory the server needs
type Gateways interface {
	Authentication() (*nike.AuthenticationGateway, error)
	Activity() (*nike.ActivityGateway, error)
	Aggregation() (*nike.AggregationGateway, error)
}

// Server is the HTTP server of `nikeplus serve`
type Server struct {
	router   *gin.Engine
	gateways Gateways
	logger   nike.Logger
}

// NewServer wires the routes on a fresh gin engine
func NewServer(gateways Gateways, logger nike.Logger) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	s := &Server{
		router:   router,
		gateways: gateways,
		logger:   logger,
	}
	s.setupRoutes()
	return s
}

// Handler returns the server as an http.Handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) setupRoutes() {
	s.router.GET("/login", s.handleLogin())
	s.router.GET("/callback", s.handleCallback())
	s.router.POST("/logout", s.handleLogout())

	api := s.router.Group("/api")
	api.Use(s.requireAuthorization())
	{
		api.GET("/activities", s.handleListActivities())
		api.POST("/activities", s.handleAddActivity())
		api.GET("/activities/:id", s.handleGetActivity())
		api.GET("/activities/:id/gps", s.handleGetActivityGPS())
		api.GET("/aggregate", s.handleAggregate())
	}

	s.router.GET("/status", s.handleStatus())
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "nikeplus"})
	})
}

func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth, err := s.gateways.Authentication()
		if err != nil {
			s.renderError(c, err)
			return
		}
		signal, err := auth.InitiateLogin(c.Request.Context())
		if err != nil {
			s.renderError(c, err)
			return
		}
		c.Redirect(signal.StatusCode, signal.Location)
	}
}

func (s *Server) handleCallback() gin.HandlerFunc {
	return func(c *gin.Context) {
		if reason := c.Query("error"); reason != "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":       reason,
				"description": c.Query("error_description"),
			})
			return
		}

		code := c.Query("code")
		if code == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing authorization code"})
			return
		}

		auth, err := s.gateways.Authentication()
		if err != nil {
			s.renderError(c, err)
			return
		}
		token, err := auth.AuthenticateUser(c.Request.Context(), code, c.Query("state"))
		if err != nil {
			s.renderError(c, err)
			return
		}

		response := gin.H{"status": "authorized"}
		if !token.EndOfLife.IsZero() {
			response["expires_at"] = token.EndOfLife.UTC().Format(time.RFC3339)
		}
		c.JSON(http.StatusOK, response)
	}
}

func (s *Server) handleLogout() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth, err := s.gateways.Authentication()
		if err != nil {
			s.renderError(c, err)
			return
		}
		if err := auth.ResetSession(c.Request.Context()); err != nil {
			s.renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "logged_out"})
	}
}

func (s *Server) handleStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth, err := s.gateways.Authentication()
		if err != nil {
			s.renderError(c, err)
			return
		}
		ok, err := auth.IsAuthorized(c.Request.Context())
		if err != nil {
			s.renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"authorized": ok})
	}
}

// requireAuthorization answers 401 with the login path while no token is stored
func (s *Server) requireAuthorization() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth, err := s.gateways.Authentication()
		if err != nil {
			s.renderError(c, err)
			c.Abort()
			return
		}
		ok, err := auth.IsAuthorized(c.Request.Context())
		if err != nil {
			s.renderError(c, err)
			c.Abort()
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "not logged in to Nike+",
				"login": "/login",
			})
			return
		}
		c.Next()
	}
}

func (s *Server) handleListActivities() gin.HandlerFunc {
	return func(c *gin.Context) {
		query, err := activityQuery(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		activities, err := s.gateways.Activity()
		if err != nil {
			s.renderError(c, err)
			return
		}

		var value any
		if experience := c.Query("experience"); experience != "" {
			value, err = activities.ActivitiesByExperience(c.Request.Context(), experience, query)
		} else {
			value, err = activities.Activities(c.Request.Context(), query)
		}
		if err != nil {
			s.renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, value)
	}
}

func activityQuery(c *gin.Context) (nike.ActivityQuery, error) {
	var query nike.ActivityQuery
	if raw := c.Query("count"); raw != "" {
		count, err := strconv.Atoi(raw)
		if err != nil || count < 0 {
			return query, errors.New("count must be a non-negative integer")
		}
		query.Count = count
	}
	for _, p := range []struct {
		name   string
		target *time.Time
	}{
		{"since", &query.StartDate},
		{"until", &query.EndDate},
	} {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return query, errors.New(p.name + " must be a YYYY-MM-DD date")
		}
		*p.target = parsed
	}
	return query, nil
}

func (s *Server) handleGetActivity() gin.HandlerFunc {
	return func(c *gin.Context) {
		activities, err := s.gateways.Activity()
		if err != nil {
			s.renderError(c, err)
			return
		}
		value, err := activities.Activity(c.Request.Context(), c.Param("id"))
		if err != nil {
			s.renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, value)
	}
}

func (s *Server) handleGetActivityGPS() gin.HandlerFunc {
	return func(c *gin.Context) {
		activities, err := s.gateways.Activity()
		if err != nil {
			s.renderError(c, err)
			return
		}
		value, err := activities.ActivityGPS(c.Request.Context(), c.Param("id"))
		if err != nil {
			s.renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, value)
	}
}

// addActivityRequest is the JSON body of POST /api/activities
type addActivityRequest struct {
	ActivityType string `json:"activityType" binding:"required"`
	DeviceType   string `json:"deviceType" binding:"required"`
	StartTime    int64  `json:"startTime" binding:"required"`
	TimeZoneName string `json:"timeZoneName" binding:"required"`
	Metrics      any    `json:"metrics"`
	DeviceName   string `json:"deviceName"`
}

func (s *Server) handleAddActivity() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addActivityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		activities, err := s.gateways.Activity()
		if err != nil {
			s.renderError(c, err)
			return
		}
		value, err := activities.AddActivity(c.Request.Context(), nike.NewActivity{
			ActivityType: req.ActivityType,
			DeviceType:   req.DeviceType,
			StartTime:    req.StartTime,
			TimeZoneName: req.TimeZoneName,
			Metrics:      req.Metrics,
			DeviceName:   req.DeviceName,
		})
		if err != nil {
			s.renderError(c, err)
			return
		}
		c.JSON(http.StatusCreated, value)
	}
}

func (s *Server) handleAggregate() gin.HandlerFunc {
	return func(c *gin.Context) {
		aggregation, err := s.gateways.Aggregation()
		if err != nil {
			s.renderError(c, err)
			return
		}
		value, err := aggregation.Aggregation(c.Request.Context())
		if err != nil {
			s.renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, value)
	}
}

// renderError writes a coded error as {code, text_code, message}
func (s *Server) renderError(c *gin.Context, err error) {
	var rich *goerrors.Error
	if !errors.As(err, &rich) {
		s.logger.Warn("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	status := statusFor(rich.Category)
	s.logger.Warn("request failed", "path", c.FullPath(), "code", rich.Code, "error", err)
	c.JSON(status, gin.H{
		"code":      rich.Code,
		"text_code": rich.TextCode,
		"message":   rich.Message,
	})
}

func statusFor(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return http.StatusBadRequest
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryExternal, goerrors.CategoryOperation:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
