package simulate_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/crease/internal/adapters/http/api"
	service "github.com/okian/crease/internal/app"
	"github.com/okian/crease/internal/simulate"
	"github.com/okian/crease/pkg/logger"
)

func TestRunAgainstService(t *testing.T) {
	Convey("Given a running crease server", t, func() {
		So(logger.Init(logger.WithOutput(io.Discard)), ShouldBeNil)
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		svc := service.New(service.WithWorkerCount(2))
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(context.Background()) }()

		mux := http.NewServeMux()
		api.NewServer(svc, svc).Register(ctx, mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		Convey("When a few short matches are simulated", func() {
			stats, err := simulate.Run(ctx, &simulate.Config{
				BaseURL: srv.URL,
				Matches: 3,
				Overs:   2,
				Workers: 2,
				Timeout: 5 * time.Second,
				Seed:    42,
				Replay:  0.2,
				Watch:   true,
			})

			Convey("Then every match finishes and adds up", func() {
				So(err, ShouldBeNil)
				So(stats.MatchesVerified.Load(), ShouldEqual, 3)
				So(stats.MatchesFailed.Load(), ShouldEqual, 0)
				So(stats.BallsSent.Load(), ShouldBeGreaterThan, 0)
				So(stats.FramesReceived.Load(), ShouldBeGreaterThan, 0)
				So(len(svc.Matches(ctx)), ShouldEqual, 3)
			})
		})

		Convey("When the server is unreachable", func() {
			_, err := simulate.Run(ctx, &simulate.Config{
				BaseURL: "http://127.0.0.1:1",
				Matches: 1,
				Overs:   1,
				Timeout: time.Second,
			})

			Convey("Then the health check fails", func() {
				So(errors.Is(err, simulate.ErrUnhealthy), ShouldBeTrue)
			})
		})
	})
}

func TestCommandFlags(t *testing.T) {
	Convey("Given the simulate command", t, func() {
		cmd := simulate.NewCommand()
		cmd.SetOut(io.Discard)
		cmd.SetErr(io.Discard)

		Convey("When --overs is not positive", func() {
			cmd.SetArgs([]string{"--overs", "0"})
			err := cmd.Execute()

			Convey("Then the command refuses to run", func() {
				So(errors.Is(err, simulate.ErrInvalidFlag), ShouldBeTrue)
			})
		})

		Convey("When --replay is out of range", func() {
			cmd.SetArgs([]string{"--replay", "1.5"})
			So(errors.Is(cmd.Execute(), simulate.ErrInvalidFlag), ShouldBeTrue)
		})
	})
}
