// Package api serves a read-only view of the agent over HTTP.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Sokpao/Agent-TAC/agent"
	"github.com/Sokpao/Agent-TAC/types"
)

type SnapshotSource interface {
	Snapshot() agent.Snapshot
}

type Status struct {
	GameID       int     `json:"game_id"`
	Running      bool    `json:"running"`
	ElapsedSec   float64 `json:"elapsed_sec"`
	RemainingSec float64 `json:"remaining_sec"`
}

type AuctionView struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	Day        int     `json:"day"`
	Allocation int     `json:"allocation"`
	Own        int     `json:"own"`
	Need       int     `json:"need"`
	Price      float64 `json:"price"`
}

type Server struct {
	echo   *echo.Echo
	source SnapshotSource
	logger *slog.Logger
}

func New(source SnapshotSource, logger *slog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{echo: e, source: source, logger: logger}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	g := s.echo.Group("/v1")
	g.GET("/status", s.status)
	g.GET("/allocation", s.allocation)
	g.GET("/allocation/:id", s.auction)
	g.GET("/actions", s.actions)
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start blocks serving addr until Shutdown.
func (s *Server) Start(addr string) error {
	s.logger.Info("status api listening", "addr", addr)
	err := s.echo.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) status(c echo.Context) error {
	snapshot := s.source.Snapshot()
	return c.JSON(http.StatusOK, Status{
		GameID:       snapshot.GameID,
		Running:      snapshot.Running,
		ElapsedSec:   snapshot.Elapsed.Seconds(),
		RemainingSec: snapshot.Remaining.Seconds(),
	})
}

func (s *Server) allocation(c echo.Context) error {
	filter := c.QueryParam("category")
	if filter != "" && !knownCategory(filter) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown category"})
	}

	views := []AuctionView{}
	for _, state := range s.source.Snapshot().Auctions {
		if filter != "" && state.Auction.Category.String() != filter {
			continue
		}
		views = append(views, view(state))
	}
	return c.JSON(http.StatusOK, views)
}

func (s *Server) auction(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid auction id"})
	}
	for _, state := range s.source.Snapshot().Auctions {
		if state.Auction.ID == id {
			return c.JSON(http.StatusOK, view(state))
		}
	}
	return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown auction"})
}

func (s *Server) actions(c echo.Context) error {
	return c.JSON(http.StatusOK, s.source.Snapshot().Actions)
}

func view(state agent.AuctionState) AuctionView {
	return AuctionView{
		ID:         state.Auction.ID,
		Name:       state.Auction.String(),
		Category:   state.Auction.Category.String(),
		Day:        state.Auction.Day,
		Allocation: state.Allocation,
		Own:        state.Own,
		Need:       state.Allocation - state.Own,
		Price:      state.Price,
	}
}

func knownCategory(name string) bool {
	for _, c := range []types.Category{types.CategoryFlight, types.CategoryHotel, types.CategoryEntertainment} {
		if c.String() == name {
			return true
		}
	}
	return false
}
