package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"

	"github.com/labstack/echo/v4"

	"video_resolver/internal/model"
	"video_resolver/internal/resolver"
)

// YouTube video ids are 11 URL-safe base64 characters.
var videoIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

type resolveRequest struct {
	Groups []json.RawMessage `json:"groups"`
}

type resolveResponse struct {
	LatestVideo *model.ResolvedVideo `json:"latestVideo"`
	Groups      []json.RawMessage    `json:"groups"`
}

func handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLatest(c echo.Context) error {
	return c.JSON(http.StatusOK, s.resolver.Latest(c.Request().Context()))
}

func (s *Server) handleVideo(c echo.Context) error {
	id := c.Param("id")
	if !videoIDRe.MatchString(id) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid video id")
	}
	return c.JSON(http.StatusOK, s.resolver.Video(c.Request().Context(), id))
}

func (s *Server) handleResolve(c echo.Context) error {
	var req resolveRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	groups := make([][]model.Block, len(req.Groups))
	for i, raw := range req.Groups {
		blocks, err := model.DecodeBlocks(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("group %d: %v", i, err))
		}
		groups[i] = blocks
	}

	rc := s.resolver.Build(c.Request().Context(), groups)
	resolved := resolver.ApplyGroups(groups, rc)

	resp := resolveResponse{
		LatestVideo: rc.LatestVideo,
		Groups:      make([]json.RawMessage, len(resolved)),
	}
	for i, blocks := range resolved {
		out, err := model.EncodeBlocks(blocks)
		if err != nil {
			return fmt.Errorf("encode group %d: %w", i, err)
		}
		resp.Groups[i] = out
	}
	return c.JSON(http.StatusOK, resp)
}
