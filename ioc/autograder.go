package ioc

import (
	"log"

	"github.com/spf13/viper"
	"github.com/to404hanga/online_judge_autograder/executor"
	"github.com/to404hanga/online_judge_autograder/executor/config"
	"github.com/to404hanga/online_judge_autograder/executor/service"
	"github.com/to404hanga/online_judge_autograder/gradescope"
	loggerv2 "github.com/to404hanga/pkg404/logger/v2"
)

func InitAutograderConfig() config.AutograderConfig {
	var cfg config.AutograderConfig
	if err := viper.UnmarshalKey(cfg.Key(), &cfg); err != nil {
		log.Panicf("unmarshal autograder config fail, err: %v", err)
	}
	if cfg.Language == "" {
		cfg.Language = config.LanguageR
	}
	if err := cfg.Validate(); err != nil {
		log.Panicf("invalid autograder config: %v", err)
	}
	return cfg
}

func InitRuntime(l loggerv2.Logger, cfg config.AutograderConfig) service.Runtime {
	var (
		rt  service.Runtime
		err error
	)
	switch cfg.Backend {
	case "", "local":
		rt, err = service.NewLocalRuntime(l, cfg.Language, cfg.RuntimePath)
	case "docker":
		rt, err = service.NewDockerRuntime(l, cfg.Language, cfg.ContainerPoolSize, cfg.MemoryLimitMB)
	default:
		log.Panicf("unknown runtime backend %q", cfg.Backend)
	}
	if err != nil {
		log.Panicf("init runtime fail, err: %v", err)
	}
	return rt
}

func InitRunner(l loggerv2.Logger, rt service.Runtime, cfg config.AutograderConfig) executor.Runner {
	r, err := executor.NewRRunner(l, rt, service.NewOtterExporter(), gradescope.Factory(cfg.GradescopeURL), cfg)
	if err != nil {
		log.Panicf("init runner fail, err: %v", err)
	}
	return r
}
