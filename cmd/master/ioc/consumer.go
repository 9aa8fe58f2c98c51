package ioc

import (
	"github.com/IBM/sarama"
	"github.com/to404hanga/online_judge_autograder/cmd/master/service"
	"github.com/to404hanga/online_judge_autograder/ioc"
)

func InitBatchConsumerGroup(client sarama.Client) sarama.ConsumerGroup {
	return ioc.InitConsumerGroup(client, service.BatchGroupID)
}
