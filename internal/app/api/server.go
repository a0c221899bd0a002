// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/insolar/lockup/internal/app/lockup"
	"github.com/insolar/lockup/internal/app/lockup/runtime"
	"github.com/insolar/lockup/internal/events"
	"github.com/insolar/lockup/observability"
)

// PredecessorHeader names the account on whose behalf a method is invoked.
const PredecessorHeader = "X-Predecessor-Account-Id"

const (
	defaultEventsLimit = 100
	maxEventsLimit     = 1000
)

// Journal is the read side of the event log.
type Journal interface {
	Events(ctx context.Context, account lockup.AccountID, limit int) ([]events.Event, error)
}

type LockupServer struct {
	host    *runtime.Host
	journal Journal
	log     *logrus.Logger
}

// NewLockupServer serves the host. The journal is optional, events aren't served without it.
func NewLockupServer(host *runtime.Host, journal Journal, log *logrus.Logger) *LockupServer {
	return &LockupServer{host: host, journal: journal, log: log}
}

// NewEcho is an echo instance with panic recovery and request metrics.
func NewEcho(obs *observability.Observability) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(MetricsMiddleware(obs))
	return e
}

func RegisterHandlers(e *echo.Echo, s *LockupServer) {
	e.POST("/api/accounts/:account_id", s.Deploy)
	e.GET("/api/accounts/:account_id", s.View)
	e.GET("/api/accounts/:account_id/unvested", s.UnvestedBalance)
	e.GET("/api/accounts/:account_id/events", s.Events)
	e.POST("/api/accounts/:account_id/methods/:method", s.Invoke)
	e.GET("/api/methods", s.Methods)
	e.POST("/api/receipts/process", s.ProcessReceipts)
	e.GET("/api/receipts", s.PendingReceipts)
}

func (s *LockupServer) fail(ctx echo.Context, err error) error {
	status, msg := statusOf(err)
	log := s.log.WithFields(logrus.Fields{
		"path":   ctx.Path(),
		"status": status,
	}).WithError(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed")
	} else {
		log.Debug("request rejected")
	}
	return ctx.JSON(status, msg)
}

func accountID(ctx echo.Context) (lockup.AccountID, *ErrorMessage) {
	id := lockup.AccountID(ctx.Param("account_id"))
	if err := id.Validate(); err != nil {
		msg := NewSingleMessageError(err.Error())
		return "", &msg
	}
	return id, nil
}

func (s *LockupServer) Deploy(ctx echo.Context) error {
	id, errMsg := accountID(ctx)
	if errMsg != nil {
		return ctx.JSON(http.StatusBadRequest, errMsg)
	}
	body, err := readBody(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, NewSingleMessageError(err.Error()))
	}
	req := &DeployRequest{}
	if err := decode(body, req); err != nil {
		return ctx.JSON(http.StatusBadRequest, NewSingleMessageError(err.Error()))
	}
	args, err := req.InitArgs()
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, NewSingleMessageError(err.Error()))
	}
	res, err := s.host.Deploy(ctx.Request().Context(), id, req.Funder, req.Deposit, args)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (s *LockupServer) View(ctx echo.Context) error {
	id, errMsg := accountID(ctx)
	if errMsg != nil {
		return ctx.JSON(http.StatusBadRequest, errMsg)
	}
	v, err := s.host.View(ctx.Request().Context(), id)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, v)
}

// UnvestedBalance accepts an optional disclosure of a hashed schedule in the query:
// start, cliff and end timestamps and a base58 salt.
func (s *LockupServer) UnvestedBalance(ctx echo.Context) error {
	id, errMsg := accountID(ctx)
	if errMsg != nil {
		return ctx.JSON(http.StatusBadRequest, errMsg)
	}
	disclosure, err := disclosureFromQuery(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, NewSingleMessageError(err.Error()))
	}
	unvested, err := s.host.UnvestedBalance(ctx.Request().Context(), id, disclosure)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, BalanceResponse{Balance: unvested})
}

func (s *LockupServer) Invoke(ctx echo.Context) error {
	id, errMsg := accountID(ctx)
	if errMsg != nil {
		return ctx.JSON(http.StatusBadRequest, errMsg)
	}
	predecessor := lockup.AccountID(ctx.Request().Header.Get(PredecessorHeader))
	if err := predecessor.Validate(); err != nil {
		return ctx.JSON(http.StatusUnauthorized, NewSingleMessageError(PredecessorHeader+" is required"))
	}
	name := ctx.Param("method")
	method, ok := methods[name]
	if !ok {
		return ctx.JSON(http.StatusNotFound, NewSingleMessageError("unknown method "+name))
	}
	body, err := readBody(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, NewSingleMessageError(err.Error()))
	}
	op, err := method(body)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, NewSingleMessageError(err.Error()))
	}
	res, err := s.host.Invoke(ctx.Request().Context(), id, predecessor, name, op)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, res)
}

func (s *LockupServer) Methods(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, MethodNames())
}

func (s *LockupServer) Events(ctx echo.Context) error {
	id, errMsg := accountID(ctx)
	if errMsg != nil {
		return ctx.JSON(http.StatusBadRequest, errMsg)
	}
	if s.journal == nil {
		return ctx.JSON(http.StatusNotImplemented, NewSingleMessageError("event journal is disabled"))
	}
	limit := defaultEventsLimit
	if raw := ctx.QueryParam("limit"); raw != "" {
		l, err := strconv.Atoi(raw)
		if err != nil || l <= 0 || l > maxEventsLimit {
			return ctx.JSON(http.StatusBadRequest, NewSingleMessageError("`limit` should be in range [1, 1000]"))
		}
		limit = l
	}
	list, err := s.journal.Events(ctx.Request().Context(), id, limit)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, list)
}

func (s *LockupServer) ProcessReceipts(ctx echo.Context) error {
	processed, err := s.host.ProcessReceipts(ctx.Request().Context())
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, ReceiptsResponse{
		Processed: processed,
		Pending:   s.host.PendingReceipts(),
	})
}

func (s *LockupServer) PendingReceipts(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, ReceiptsResponse{Pending: s.host.PendingReceipts()})
}
