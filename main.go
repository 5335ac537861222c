package main

import (
	"context"
	"errors"
	"github.com/allape/camsnap/api"
	"github.com/allape/camsnap/config"
	"github.com/allape/camsnap/factory"
	"github.com/allape/gogger"
	"github.com/gin-gonic/gin"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

var l = gogger.New("main")

func fatal(v ...any) {
	l.Error().Println(v...)
	os.Exit(1)
}

func main() {
	conf, err := config.GetConfig()
	if err != nil {
		fatal("get config:", err)
	}

	c, err := factory.CodecFromConfig(conf)
	if err != nil {
		fatal("codec from config:", err)
	}

	cam, err := factory.CameraFromConfig(conf, c)
	if err != nil {
		fatal("camera from config:", err)
	}

	ind, err := factory.IndicatorFromConfig(conf)
	if err != nil {
		fatal("indicator from config:", err)
	}
	defer func() {
		if ind != nil {
			_ = ind.Close()
		}
	}()

	l.Info().Println("devices:", cam.ListDevices())

	gin.SetMode(gin.ReleaseMode)

	engine := api.New(cam, api.Options{
		Cors:   conf.HTTP.Cors,
		WSPath: conf.HTTP.WSPath,
		UI:     conf.HTTP.UI,
		Placeholder: api.PlaceholderOptions{
			Enabled: conf.Placeholder.Enabled,
			Width:   conf.Placeholder.Width,
			Height:  conf.Placeholder.Height,
			Quality: conf.Camera.Quality,
		},
		Indicator: ind,
	})

	server := &http.Server{
		Addr:    conf.HTTP.Addr,
		Handler: engine,
	}

	go func() {
		l.Info().Println("listening on", conf.HTTP.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("listen:", err)
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	l.Info().Println("started")
	sig := <-sigs
	l.Info().Println("exiting with", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		l.Warn().Println("shutdown:", err)
	}
}
