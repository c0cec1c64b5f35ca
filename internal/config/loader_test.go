package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/okian/onthisday/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

var configEnvVars = []string{
	"ONTHISDAY_CONFIG",
	"ONTHISDAY_ENV_FILE",
	"ONTHISDAY_ADDR",
	"ONTHISDAY_LOG_LEVEL",
	"ONTHISDAY_OPENAI_API_KEY",
	"ONTHISDAY_MODEL",
	"ONTHISDAY_WORKER_COUNT",
	"ONTHISDAY_QUEUE_SIZE",
	"ONTHISDAY_SELECT_COUNT",
	"ONTHISDAY_TEMPERATURE",
	"OPENAI_API_KEY",
}

func clearConfigEnvVars() {
	for _, k := range configEnvVars {
		_ = os.Unsetenv(k)
	}
}

func TestNew(t *testing.T) {
	convey.Convey("Given the default config", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should carry the documented defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.Model, convey.ShouldEqual, "gpt-4o")
			convey.So(cfg.MaxTokens, convey.ShouldEqual, 2000)
			convey.So(cfg.Temperature, convey.ShouldEqual, 0.7)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.SelectCount, convey.ShouldEqual, 5)
			convey.So(cfg.DailySchedule, convey.ShouldEqual, "0 8 * * *")
			convey.So(cfg.RequestTimeout().Seconds(), convey.ShouldEqual, 60)
		})

		convey.Convey("Then it should be invalid without a credential", func() {
			convey.So(errors.Is(cfg.Validate(), config.ErrMissingCredential), convey.ShouldBeTrue)
		})
	})
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When no credential is available", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then loading should fail", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrMissingCredential), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When only OPENAI_API_KEY is set", func() {
			_ = os.Setenv("OPENAI_API_KEY", "sk-plain")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should be used as the credential", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.OpenAIAPIKey, convey.ShouldEqual, "sk-plain")
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			})
		})

		convey.Convey("When prefixed environment variables are set", func() {
			_ = os.Setenv("OPENAI_API_KEY", "sk-plain")
			_ = os.Setenv("ONTHISDAY_OPENAI_API_KEY", "sk-prefixed")
			_ = os.Setenv("ONTHISDAY_ADDR", ":8080")
			_ = os.Setenv("ONTHISDAY_WORKER_COUNT", "3")
			_ = os.Setenv("ONTHISDAY_QUEUE_SIZE", "10")
			_ = os.Setenv("ONTHISDAY_MODEL", "gpt-4o-mini")
			_ = os.Setenv("ONTHISDAY_TEMPERATURE", "0.2")

			cfg, err := config.Load(ctx)

			convey.Convey("Then they should override defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.OpenAIAPIKey, convey.ShouldEqual, "sk-prefixed")
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
				convey.So(cfg.QueueSize, convey.ShouldEqual, 10)
				convey.So(cfg.Model, convey.ShouldEqual, "gpt-4o-mini")
				convey.So(cfg.Temperature, convey.ShouldAlmostEqual, 0.2, 0.0001)
			})
		})

		convey.Convey("When loading a YAML file", func() {
			path := filepath.Join(t.TempDir(), "config.yaml")
			yaml := "addr: \":7070\"\nopenai_api_key: sk-file\nselect_count: 3\ndaily_schedule: \"\"\n"
			convey.So(os.WriteFile(path, []byte(yaml), 0o600), convey.ShouldBeNil)
			_ = os.Setenv("ONTHISDAY_CONFIG", path)
			_ = os.Setenv("ONTHISDAY_SELECT_COUNT", "7")

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values apply and env still wins", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.OpenAIAPIKey, convey.ShouldEqual, "sk-file")
				convey.So(cfg.SelectCount, convey.ShouldEqual, 7)
				convey.So(cfg.DailySchedule, convey.ShouldEqual, "")
			})
		})

		convey.Convey("When the YAML file does not exist", func() {
			_ = os.Setenv("ONTHISDAY_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

			_, err := config.Load(ctx)

			convey.Convey("Then a load error should be returned", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a .env file supplies the credential", func() {
			path := filepath.Join(t.TempDir(), "test.env")
			convey.So(os.WriteFile(path, []byte("ONTHISDAY_OPENAI_API_KEY=sk-dotenv\nONTHISDAY_LOG_LEVEL=debug\n"), 0o600), convey.ShouldBeNil)
			_ = os.Setenv("ONTHISDAY_ENV_FILE", path)
			_ = os.Setenv("ONTHISDAY_LOG_LEVEL", "warn")

			cfg, err := config.Load(ctx)

			convey.Convey("Then its values load without overriding the process environment", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.OpenAIAPIKey, convey.ShouldEqual, "sk-dotenv")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "warn")
			})
		})

		convey.Convey("When the worker count is not positive", func() {
			_ = os.Setenv("OPENAI_API_KEY", "sk-plain")
			_ = os.Setenv("ONTHISDAY_WORKER_COUNT", "0")

			_, err := config.Load(ctx)

			convey.Convey("Then validation should fail", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}
