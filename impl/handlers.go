package impl

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"imagehost/impl/host"
	"imagehost/impl/manifest"
	"imagehost/impl/metrics"

	log "github.com/sirupsen/logrus"

	"github.com/labstack/echo/v4"
)

// errMessage is the JSON body accompanying every non-2xx result.
type errMessage struct {
	Message string `json:"message"`
}

// GET /v1/images/{release}?remote=. Status mapping: 200 with the record on a
// hit, 404 if the release matches no record, 400 if the (release, remote)
// combination is unsupported, 502 if the remote has no manifest yet.
func (s *ImageHostServer) handleGetImage(ctx echo.Context, release string) error {
	metrics.IncApiEndpointHits()
	metrics.IncImageQueries()
	q := host.Query{Release: release, Remote: ctx.QueryParam("remote")}
	info, found, err := s.host.InfoFor(q)
	if err != nil {
		return errResult(ctx, err)
	}
	if !found {
		metrics.IncQueryMisses()
		return ctx.JSON(http.StatusNotFound, errMessage{Message: fmt.Sprintf("no image matching %q", release)})
	}
	return ctx.JSON(http.StatusOK, info)
}

// GET /v1/images?remote=&allow-unsupported=
func (s *ImageHostServer) handleGetImages(ctx echo.Context) error {
	metrics.IncApiEndpointHits()
	allowUnsupported, _ := strconv.ParseBool(ctx.QueryParam("allow-unsupported"))
	images, err := s.host.AllImagesFor(ctx.QueryParam("remote"), allowUnsupported)
	if err != nil {
		return errResult(ctx, err)
	}
	return ctx.JSON(http.StatusOK, images)
}

// GET /v1/entries
func (s *ImageHostServer) handleGetEntries(ctx echo.Context) error {
	metrics.IncApiEndpointHits()
	entries := []host.RemoteImage{}
	s.host.ForEachEntry(func(remote string, info manifest.ImageInfo) error {
		entries = append(entries, host.RemoteImage{Remote: remote, Info: info})
		return nil
	})
	return ctx.JSON(http.StatusOK, entries)
}

// GET /v1/remotes
func (s *ImageHostServer) handleGetRemotes(ctx echo.Context) error {
	metrics.IncApiEndpointHits()
	body := struct {
		Remotes []string `json:"remotes"`
	}{
		Remotes: s.host.SupportedRemotes(),
	}
	return ctx.JSON(http.StatusOK, body)
}

// POST /cmd/refresh. Runs a refresh cycle synchronously; a failed refresh
// still returns 200 because the failure is reported through the host's
// failure sink, not this endpoint.
func (s *ImageHostServer) handleCmdRefresh(ctx echo.Context) error {
	metrics.IncApiEndpointHits()
	log.Info("refresh requested over the command API")
	s.host.FetchManifests()
	return ctx.NoContent(http.StatusOK)
}

// GET /health
func (s *ImageHostServer) handleHealth(ctx echo.Context) error {
	return ctx.NoContent(http.StatusOK)
}

// errResult maps a query-layer error to a response status: an unknown remote
// (no manifest in the cache) is a gateway-ish condition, everything else from
// the support predicates is a client error.
func errResult(ctx echo.Context, err error) error {
	metrics.IncApiErrorResults()
	var unknown *host.RemoteUnknownError
	if errors.As(err, &unknown) {
		return ctx.JSON(http.StatusBadGateway, errMessage{Message: err.Error()})
	}
	return ctx.JSON(http.StatusBadRequest, errMessage{Message: err.Error()})
}
