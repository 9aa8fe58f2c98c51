package ioc

import (
	"log"

	"github.com/spf13/viper"
	"github.com/to404hanga/online_judge_autograder/cmd/master/config"
	"github.com/to404hanga/pkg404/cachex/lru"
)

func InitMasterConfig() config.MasterConfig {
	var cfg config.MasterConfig
	if err := viper.UnmarshalKey(cfg.Key(), &cfg); err != nil {
		log.Panicf("unmarshal master config failed, err: %v", err)
	}
	if cfg.LRUSize <= 0 {
		cfg.LRUSize = 64
	}
	return cfg
}

func InitLRUCache(cfg config.MasterConfig) *lru.Cache {
	cache, err := lru.NewSimpleLRU(cfg.LRUSize)
	if err != nil {
		log.Panicf("init lru failed, err: %v", err)
	}
	return cache
}
