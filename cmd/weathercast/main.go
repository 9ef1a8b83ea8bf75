package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"weathercast/config"
	v1 "weathercast/internal/controllers/http/v1"
	"weathercast/internal/presenter"
	"weathercast/internal/repositories"
	"weathercast/internal/services/weather"
	"weathercast/internal/window"
	"weathercast/pkg/httpcache"
	"weathercast/pkg/httpclient"
	"weathercast/pkg/httpserver"
	"weathercast/pkg/observe"
)

// @title Weathercast API
// @version 1.0.0
// @description Current, hourly and daily temperatures for a city, geocoded and fetched from Open-Meteo.
// @description The same pipeline drives the Weathercast window served at /.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http

// @tag.name Forecast
// @tag.description City forecast operations
func main() {
	ctx, cancel := context.WithCancel(context.Background())

	cnf := config.NewConfig()

	writers := []io.Writer{os.Stdout}

	var hook *observe.SentryHook
	if cnf.SentryDSN != "" {
		h, err := observe.NewSentryHook(cnf.AppEnv, cnf.AppName, cnf.LogLevel == "debug", cnf.SentryDSN)
		if err != nil {
			fmt.Fprintln(os.Stderr, "sentry disabled:", err)
		} else {
			hook = h
			writers = append(writers, hook)
		}
	}

	l := observe.NewZapLogger(cnf.AppName, writers...).WithEnv(cnf.AppEnv)
	if err := l.SetLevel(cnf.LogLevel); err != nil {
		l.Warning("invalid log level, using debug", map[string]any{"level": cnf.LogLevel})
	}
	if hook != nil {
		hook.SetLogger(l)
	}

	cache, err := httpcache.Open(cnf.HTTP.CachePath, cnf.HTTP.CacheExpiry, nil)
	if err != nil {
		l.Fatal("cannot open http cache", map[string]any{"err": err, "path": cnf.HTTP.CachePath})
	}
	if purged, err := cache.Purge(); err != nil {
		l.Warning("cannot purge expired cache entries", map[string]any{"err": err})
	} else if purged > 0 {
		l.Info("purged expired cache entries", map[string]any{"count": purged})
	}
	if n, err := cache.Len(); err == nil {
		l.Debug("http cache ready", map[string]any{"path": cnf.HTTP.CachePath, "entries": n})
	}

	httpClient := httpclient.New(httpclient.Config{
		RetryMax:      cnf.HTTP.RetryMax,
		BackoffFactor: cnf.HTTP.BackoffFactor,
		RetryWaitMax:  cnf.HTTP.RetryWaitMax,
	}, cache, l)

	geocoder, err := repositories.InitGeocoder(cnf, l)
	if err != nil {
		l.Fatal("cannot init geocoder", map[string]any{"err": err})
	}
	repo := repositories.InitForecastRepository(cnf, httpClient, l)

	service := weather.NewWeatherService(geocoder, repo, cnf.Forecast.Days, l)

	win := window.New(window.Config{
		Title:        cnf.Window.Title,
		ChartHistory: cnf.Window.ChartHistory,
		Chart: presenter.ChartOptions{
			Width:  cnf.Window.ChartWidth,
			Height: cnf.Window.ChartHeight,
		},
	}, service, l)

	app := httpserver.InitFiberServer(cnf.AppName, l)

	v1.NewRouter(
		app,
		win,
		service,
		l,
	)

	go func() {
		if err := app.Listen(cnf.Addr()); err != nil {
			l.Fatal("cannot run the server", map[string]any{"err": err})
		}
	}()

	l.Info("application started successfully", map[string]any{
		"addr":     cnf.Addr(),
		"geocoder": geocoder.Name(),
		"version":  cnf.AppVersion,
	})

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer func() {
		l.Warning("stopping application services")
		signal.Stop(sigCh)
		close(sigCh)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		win.Close()
		_ = app.ShutdownWithContext(shutdownCtx)
		if err := cache.Close(); err != nil {
			l.Error(err)
		}
		if hook != nil {
			hook.Flush()
		}
		_ = l.Stop()
		cancel()
	}()

	select {
	case <-sigCh:
		fmt.Println("received shutdown signal")
	case <-ctx.Done():
		fmt.Println("context cancelled")
	}
}
