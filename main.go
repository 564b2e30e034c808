package main

import (
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"banquet/src-server/channel"
	"banquet/src-server/metric"
	"banquet/src-server/model"
	"banquet/src-server/notify"
	"banquet/src-server/route"
	"banquet/src-server/scheduler"
	"banquet/src-server/store"
	"banquet/src-server/utils"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func init() {
	if err := godotenv.Load(); err != nil {
		slog.Info(err.Error())
	}
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.RFC1123Z,
		}),
	))
}

func main() {
	as := utils.NewAppState()

	if err := model.CreateSchema(as.BunDB); err != nil {
		slog.Error("can't create database schema", "error", err)
		os.Exit(1)
	}

	guestStore := &store.GuestStore{DB: as.BunDB}
	notifier := &notify.Discord{
		Session:   as.DgSession,
		ChannelID: as.Config.GetDiscordNotifyChannelID(),
		Metrics:   as.MetricChans,
	}
	selfService := &channel.SelfService{
		Store:    guestStore,
		Notifier: notifier,
		Metrics:  as.MetricChans,
	}
	assisted := &channel.Assisted{
		Store:    guestStore,
		Notifier: notifier,
		Metrics:  as.MetricChans,
	}

	// attendance notifications degrade to log-only without a session
	if as.DgSession != nil {
		if err := as.DgSession.Open(); err != nil {
			slog.Error("can't open discord session", "error", err)
			os.Exit(1)
		}
		defer as.DgSession.Close()
	}

	go metric.Init(as)
	go scheduler.FollowUpNotify(as, guestStore, notifier)
	go scheduler.PendingDigest(as, guestStore, notifier)

	appCloseSignalChan := make(chan os.Signal, 1)

	// http server
	go func() {
		muxer := http.NewServeMux()
		muxer.Handle("GET /metrics", promhttp.Handler())
		route.Auth(muxer, as, guestStore)
		route.Guest(muxer, as, guestStore, selfService)
		route.Admin(muxer, as, guestStore, assisted)
		route.Meta(muxer, as)
		if err := http.ListenAndServe(":"+as.Config.GetPort(), muxer); err != nil {
			slog.Error("cannot start HTTP server", "error", err)
			appCloseSignalChan <- syscall.SIGTERM
		}
	}()

	slog.Info("app is now running, press Ctrl+C to exit",
		"port", as.Config.GetPort(),
		"rsvp_deadline", as.Config.GetRsvpDeadline().Format(time.RFC1123Z),
	)

	signal.Notify(appCloseSignalChan, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-appCloseSignalChan
	as.Shutdown()

	slog.Info("Gracefully shutting down...")
}
