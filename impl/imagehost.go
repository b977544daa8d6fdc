// Package impl implements the REST surface of the image host. This file is
// lean to simplify handling any changes to the routes - each method simply
// calls a handler in 'handlers.go'.
package impl

import (
	"imagehost/impl/host"

	"github.com/labstack/echo/v4"
)

// ImageHostServer exposes the query layer and the refresh trigger over HTTP.
type ImageHostServer struct {
	host *host.Host
}

// NewImageHostServer creates an ImageHostServer serving the passed host.
func NewImageHostServer(h *host.Host) *ImageHostServer {
	return &ImageHostServer{host: h}
}

// RegisterHandlers wires the server's routes onto the passed echo instance.
// Writing to 'shutdownCh' requests a server stop.
func (s *ImageHostServer) RegisterHandlers(e *echo.Echo, shutdownCh chan bool) {
	e.GET("/health", s.Health)
	e.GET("/v1/remotes", s.GetRemotes)
	e.GET("/v1/images", s.GetImages)
	e.GET("/v1/images/:release", s.GetImage)
	e.GET("/v1/entries", s.GetEntries)
	e.POST("/cmd/refresh", s.CmdRefresh)
	e.GET("/cmd/stop", func(c echo.Context) error {
		shutdownCh <- true
		return nil
	})
}

// GET /health
func (s *ImageHostServer) Health(ctx echo.Context) error {
	return s.handleHealth(ctx)
}

// GET /v1/remotes
func (s *ImageHostServer) GetRemotes(ctx echo.Context) error {
	return s.handleGetRemotes(ctx)
}

// GET /v1/images?remote=&allow-unsupported=
func (s *ImageHostServer) GetImages(ctx echo.Context) error {
	return s.handleGetImages(ctx)
}

// GET /v1/images/{release}?remote=
func (s *ImageHostServer) GetImage(ctx echo.Context) error {
	return s.handleGetImage(ctx, ctx.Param("release"))
}

// GET /v1/entries
func (s *ImageHostServer) GetEntries(ctx echo.Context) error {
	return s.handleGetEntries(ctx)
}

// POST /cmd/refresh
func (s *ImageHostServer) CmdRefresh(ctx echo.Context) error {
	return s.handleCmdRefresh(ctx)
}
