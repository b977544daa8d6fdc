package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"imagehost/impl"
	"imagehost/impl/catalog"
	"imagehost/impl/cmdline"
	"imagehost/impl/config"
	"imagehost/impl/download"
	"imagehost/impl/globals"
	"imagehost/impl/host"
	"imagehost/impl/manifest"
	"imagehost/impl/metrics"
	"imagehost/impl/support"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

const startupBanner = `----------------------------------------------------------------------
Image Host: caching metadata host for VM disk images
Started: %s (port %d)
----------------------------------------------------------------------
`

// downloadTimeout bounds each metadata fetch to the image host.
const downloadTimeout = time.Minute

var (
	buildVer string
	buildDtm string
)

func main() {
	fromCmdline, cfg, err := cmdline.Parse()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if fromCmdline.Command == "" {
		// parser already printed help
		os.Exit(0)
	}
	if cfg.ConfigFile != "" {
		if err := config.Load(cfg.ConfigFile); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	config.Merge(fromCmdline, cfg)
	cfg = config.Get()

	globals.ConfigureLogging(cfg.LogLevel, cfg.LogFile)

	if fromCmdline.Command == "version" {
		fmt.Printf("imagehost version: %s build date: %s\n", buildVer, buildDtm)
		os.Exit(0)
	}

	cat := catalog.Default()
	if cfg.CatalogFile != "" {
		if cat, err = catalog.Load(cfg.CatalogFile); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	if fromCmdline.Command == "list" {
		if err := listImages(cfg.Arch, cat); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	serve(cfg, cat)
}

// serve runs the API server, the TTL refresher and - if a catalog file is
// configured - the catalog watcher, until a stop is requested.
func serve(cfg config.Configuration, cat catalog.Catalog) {
	ttl, err := cfg.TTL()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, startupBanner, time.Unix(0, time.Now().UnixNano()), cfg.Port)

	metrics.InitMetrics(int(cfg.MetricsPort))

	h := host.New(host.Opts{
		Arch:       cfg.Arch,
		Catalog:    cat,
		Downloader: download.NewHTTPDownloader(downloadTimeout),
		Support:    support.NewStatic(host.NoRemote),
		OnUpdateFailure: func(msg string) {
			log.Errorf("manifest update failure: %s", msg)
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go host.NewRefresher(h, ttl).Run(ctx)

	if cfg.CatalogFile != "" {
		go watchCatalog(ctx, cfg.CatalogFile, h)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(globals.GetEchoLoggingFunc())

	shutdownCh := make(chan bool)
	impl.NewImageHostServer(h).RegisterHandlers(e, shutdownCh)

	go func() {
		port := strconv.FormatInt(cfg.Port, 10)
		if err := e.Start(net.JoinHostPort("0.0.0.0", port)); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal("shutting down the server")
		}
	}()
	log.Info("server is running")
	<-shutdownCh
	log.Infof("received stop command - stopping")
	e.Server.Shutdown(context.Background())
	log.Infof("stopped")
}

// listImages builds the manifest once and prints the images - this
// implements using the server binary as a CLI rather than as a server.
func listImages(arch string, cat catalog.Catalog) error {
	var buildErr error
	h := host.New(host.Opts{
		Arch:       arch,
		Catalog:    cat,
		Downloader: download.NewHTTPDownloader(downloadTimeout),
		Support:    support.NewStatic(host.NoRemote),
		OnUpdateFailure: func(msg string) {
			buildErr = fmt.Errorf("unable to build the manifest: %s", msg)
		},
	})
	h.FetchManifests()
	if buildErr != nil {
		return buildErr
	}
	return h.ForEachEntry(func(remote string, info manifest.ImageInfo) error {
		name := remote
		if name == host.NoRemote {
			name = "(default)"
		}
		id := info.ID
		if len(id) > 14 {
			id = id[:14]
		}
		fmt.Printf("%-10s %-10s %-10s %-14s %s\n", name, info.Release, info.Version, id, info.ImageLocation)
		return nil
	})
}
