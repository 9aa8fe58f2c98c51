//go:build wireinject

package main

import (
	"github.com/google/wire"
	iocself "github.com/to404hanga/online_judge_autograder/cmd/worker/ioc"
	"github.com/to404hanga/online_judge_autograder/cmd/worker/service"
	"github.com/to404hanga/online_judge_autograder/event"
	"github.com/to404hanga/online_judge_autograder/ioc"
)

func BuildDependency() *service.GradingService {
	wire.Build(
		ioc.InitLogger,
		ioc.InitRedis,
		ioc.InitKafka,
		ioc.InitSyncProducer,
		event.NewSaramaProducer,
		ioc.InitAutograderConfig,
		ioc.InitRuntime,
		ioc.InitRunner,
		iocself.InitWorkerConfig,
		service.NewGradingService,
	)
	return nil
}
