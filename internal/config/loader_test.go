package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/freeeve/repertoire/internal/config"
)

func TestConfigLoader(t *testing.T) {
	t.Cleanup(clearConfigEnvVars)

	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then the defaults are returned", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Depth, convey.ShouldEqual, 10)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8007")
			})
		})

		convey.Convey("When environment variables are set", func() {
			_ = os.Setenv("REPERTOIRE_DEPTH", "14")
			_ = os.Setenv("REPERTOIRE_FORMAT", "json")
			_ = os.Setenv("REPERTOIRE_LINE_WIDTH", "120")
			_ = os.Setenv("REPERTOIRE_OPPONENT", "Field")
			cfg, err := config.Load(ctx)

			convey.Convey("Then they override the defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Depth, convey.ShouldEqual, 14)
				convey.So(cfg.Format, convey.ShouldEqual, "json")
				convey.So(cfg.LineWidth, convey.ShouldEqual, 120)
				convey.So(cfg.Opponent, convey.ShouldEqual, "Field")
			})
		})

		convey.Convey("When a YAML file is named", func() {
			path := filepath.Join(t.TempDir(), "repertoire.yaml")
			body := "depth: 6\ncolor: black\nannotator: Club Prep\n"
			convey.So(os.WriteFile(path, []byte(body), 0644), convey.ShouldBeNil)
			_ = os.Setenv("REPERTOIRE_CONFIG", path)
			cfg, err := config.Load(ctx)

			convey.Convey("Then file values are applied over defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Depth, convey.ShouldEqual, 6)
				convey.So(cfg.Color, convey.ShouldEqual, "black")
				convey.So(cfg.Annotator, convey.ShouldEqual, "Club Prep")
				convey.So(cfg.Format, convey.ShouldEqual, "pgn")
			})
		})

		convey.Convey("When the env holds an invalid depth", func() {
			_ = os.Setenv("REPERTOIRE_DEPTH", "0")
			_, err := config.Load(ctx)

			convey.Convey("Then loading fails validation", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the named file is missing", func() {
			_ = os.Setenv("REPERTOIRE_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
			_, err := config.Load(ctx)

			convey.Convey("Then loading fails", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func clearConfigEnvVars() {
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "REPERTOIRE_") {
			_ = os.Unsetenv(strings.SplitN(kv, "=", 2)[0])
		}
	}
}
