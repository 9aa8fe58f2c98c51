//go:build wireinject

package main

import (
	"github.com/google/wire"
	iocself "github.com/to404hanga/online_judge_autograder/cmd/resultcollector/ioc"
	"github.com/to404hanga/online_judge_autograder/cmd/resultcollector/service"
	"github.com/to404hanga/online_judge_autograder/ioc"
)

func BuildDependency() *service.ResultCollectorService {
	wire.Build(
		ioc.InitLogger,
		ioc.InitDB,
		ioc.InitKafka,
		iocself.InitResultCollectorConsumerGroup,
		service.NewResultCollectorService,
	)
	return nil
}
