//go:build wireinject

package main

import (
	"github.com/google/wire"
	iocself "github.com/to404hanga/online_judge_autograder/cmd/master/ioc"
	"github.com/to404hanga/online_judge_autograder/cmd/master/service"
	"github.com/to404hanga/online_judge_autograder/ioc"
)

func BuildDependency() *service.BatchService {
	wire.Build(
		ioc.InitRedis,
		ioc.InitKafka,
		ioc.InitLogger,
		iocself.InitMasterConfig,
		iocself.InitBatchConsumerGroup,
		iocself.InitLRUCache,

		service.NewBatchService,
	)
	return nil
}
