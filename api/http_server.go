package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	sdklogging "github.com/Layr-Labs/eigensdk-go/logging"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AvaProtocol/avax-workflow/core/auth"
	"github.com/AvaProtocol/avax-workflow/core/taskengine"
	"github.com/AvaProtocol/avax-workflow/model"
	"github.com/AvaProtocol/avax-workflow/pkg/logger"
	"github.com/AvaProtocol/avax-workflow/version"
)

const defaultRunListLimit = 20

type HttpJsonResp[T any] struct {
	Data T `json:"data"`
}

type HttpErrorResp struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

type Config struct {
	BindAddress string
	// When empty the api is served without authentication
	JWTSecret []byte
	Gatherer  prometheus.Gatherer
}

// Server exposes the engine over http: run and validate workflow documents,
// browse run history and scrape metrics
type Server struct {
	engine *taskengine.Engine
	config Config
	logger sdklogging.Logger

	echo *echo.Echo
}

func NewServer(engine *taskengine.Engine, config Config, log sdklogging.Logger) *Server {
	s := &Server{
		engine: engine,
		config: config,
		logger: logger.EnsureLogger(log),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.GET("/up", func(c echo.Context) error {
		return c.String(http.StatusOK, "up")
	})

	e.GET("/version", func(c echo.Context) error {
		return c.JSON(http.StatusOK, &HttpJsonResp[map[string]string]{
			Data: map[string]string{"version": version.Get(), "revision": version.Commit()},
		})
	})

	if config.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(config.Gatherer, promhttp.HandlerOpts{})))
	}

	g := e.Group("/api")
	g.POST("/execute", s.executeWorkflow, s.requireRole(auth.AdminRole))
	g.POST("/validate", s.validateWorkflow, s.requireRole(auth.ReadonlyRole))
	g.GET("/runs", s.listRuns, s.requireRole(auth.ReadonlyRole))
	g.GET("/runs/:id", s.getRun, s.requireRole(auth.ReadonlyRole))

	s.echo = e
	return s
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start blocks until the server stops. A Shutdown call makes it return nil.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", "address", s.config.BindAddress)
	if err := s.echo.Start(s.config.BindAddress); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) requireRole(role auth.ApiRole) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if len(s.config.JWTSecret) == 0 {
				return next(c)
			}

			token, err := auth.BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, &HttpErrorResp{Error: err.Error()})
			}

			claims, err := auth.VerifyAPIKey(s.config.JWTSecret, token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, &HttpErrorResp{Error: err.Error()})
			}

			if !claims.HasRole(role) {
				return c.JSON(http.StatusForbidden, &HttpErrorResp{Error: auth.ErrorMissingRole.Error()})
			}

			return next(c)
		}
	}
}

func (s *Server) readWorkflow(c echo.Context) (*model.Workflow, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, err
	}
	return model.ParseWorkflow(body)
}

func (s *Server) executeWorkflow(c echo.Context) error {
	wf, err := s.readWorkflow(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, &HttpErrorResp{Error: err.Error()})
	}

	run, err := s.engine.TryExecute(c.Request().Context(), wf)
	if err != nil {
		if errors.Is(err, taskengine.ErrEngineBusy) {
			return c.JSON(http.StatusConflict, &HttpErrorResp{Error: err.Error()})
		}
		return err
	}

	return c.JSON(http.StatusOK, &HttpJsonResp[*model.RunOutcome]{Data: run})
}

func (s *Server) validateWorkflow(c echo.Context) error {
	wf, err := s.readWorkflow(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, &HttpErrorResp{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, &HttpJsonResp[[]taskengine.NodeValidation]{
		Data: taskengine.ValidateWorkflow(wf),
	})
}

func (s *Server) listRuns(c echo.Context) error {
	history := s.engine.History()
	if history == nil {
		return c.JSON(http.StatusServiceUnavailable, &HttpErrorResp{Error: taskengine.StorageUnavailableError})
	}

	limit := defaultRunListLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, &HttpErrorResp{Error: "limit must be a non negative integer"})
		}
		limit = n
	}

	runs, err := history.List(limit)
	if err != nil {
		s.logger.Error("cannot list runs", "error", err)
		return c.JSON(http.StatusInternalServerError, &HttpErrorResp{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, &HttpJsonResp[[]*model.RunOutcome]{Data: runs})
}

func (s *Server) getRun(c echo.Context) error {
	history := s.engine.History()
	if history == nil {
		return c.JSON(http.StatusServiceUnavailable, &HttpErrorResp{Error: taskengine.StorageUnavailableError})
	}

	run, err := history.Get(c.Param("id"))
	if err != nil {
		if strings.HasPrefix(err.Error(), taskengine.RunNotFoundError) {
			return c.JSON(http.StatusNotFound, &HttpErrorResp{Error: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, &HttpErrorResp{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, &HttpJsonResp[*model.RunOutcome]{Data: run})
}
