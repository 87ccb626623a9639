// Package api serves the dependency engine over HTTP. It exposes the
// loaded catalog and on-demand dependency reports.
package api

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/relic/internal/catalog"
	"github.com/samcharles93/relic/pkg/asset"
)

type Server struct {
	cat    *catalog.Memory
	walker *catalog.Walker
	game   asset.Game
}

func NewServer(cat *catalog.Memory, game asset.Game) *Server {
	return &Server{
		cat:    cat,
		walker: catalog.NewWalker(cat, game),
		game:   game,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/v1/assets", s.handleListAssets)
	e.GET("/v1/assets/:id", s.handleGetAsset)
	e.GET("/v1/assets/:id/dependencies", s.handleDependencies)
}

func (s *Server) handleListAssets(c *echo.Context) error {
	ids := s.cat.IDs()
	assets := make([]AssetSummary, 0, len(ids))
	for _, id := range ids {
		raw, err := s.cat.Resolve(id)
		if err != nil {
			continue
		}
		assets = append(assets, AssetSummary{
			ID:   id.String(),
			Type: string(raw.Type),
			Size: len(raw.Data),
		})
	}
	return writeJSON(c, http.StatusOK, AssetList{
		Game:   s.game.String(),
		Count:  len(assets),
		Assets: assets,
	})
}

func (s *Server) handleGetAsset(c *echo.Context) error {
	id, err := parseAssetID(c.Param("id"))
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	raw, err := s.cat.Resolve(id)
	if err != nil {
		return writeNotFound(c, err.Error())
	}
	return writeJSON(c, http.StatusOK, AssetSummary{
		ID:   id.String(),
		Type: string(raw.Type),
		Size: len(raw.Data),
	})
}

func (s *Server) handleDependencies(c *echo.Context) error {
	id, err := parseAssetID(c.Param("id"))
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	opts := catalog.WalkOptions{
		Recursive:   queryBool(c, "recursive"),
		NotExistOK:  queryBool(c, "not_exist_ok"),
		Container:   queryBool(c, "container"),
		PlayerActor: queryBool(c, "player_actor"),
	}

	raw, err := s.cat.Resolve(id)
	if err != nil {
		return writeNotFound(c, err.Error())
	}

	deps, err := s.walker.DependenciesFor(id, opts)
	if err != nil {
		if errors.Is(err, asset.ErrUnknownAsset) {
			return writeError(c, http.StatusUnprocessableEntity, "unresolved_reference", err.Error(), "", "")
		}
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error(), "", "")
	}

	records := make([]DependencyRecord, 0, len(deps))
	for _, d := range deps {
		records = append(records, DependencyRecord{Type: string(d.Type), ID: d.ID.String()})
	}
	return writeJSON(c, http.StatusOK, DependencyReport{
		ReportID: "report_" + uuid.NewString(),
		Asset: AssetSummary{
			ID:   id.String(),
			Type: string(raw.Type),
			Size: len(raw.Data),
		},
		Game:         s.game.String(),
		Recursive:    opts.Recursive,
		Container:    opts.Container,
		PlayerActor:  opts.PlayerActor,
		Count:        len(records),
		Dependencies: records,
	})
}
