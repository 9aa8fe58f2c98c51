package ioc

import (
	"log"

	"github.com/spf13/viper"
	"github.com/to404hanga/online_judge_autograder/cmd/worker/config"
)

func InitWorkerConfig() config.WorkerConfig {
	var cfg config.WorkerConfig
	err := viper.UnmarshalKey(cfg.Key(), &cfg)
	if err != nil {
		log.Panicf("unmarshal worker config failed, err: %v", err)
	}
	if cfg.TemplateDir == "" {
		log.Panicf("worker config has no templateDir")
	}
	return cfg
}
