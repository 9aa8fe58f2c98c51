package config

import (
	loggerv2 "github.com/to404hanga/pkg404/logger/v2"
)

type LoggerConfig struct {
	Development    bool                `yaml:"development"`
	Type           loggerv2.OutputType `yaml:"type"`           // stdout, file, or both
	LogFilePath    string              `yaml:"logFilePath"`    // used when Type writes to a file
	AutoCreateFile bool                `yaml:"autoCreateFile"` // create the file and its directories
}

func (LoggerConfig) Key() string {
	return "log"
}

type DBConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	DBName      string `yaml:"database"`
	TablePrefix string `yaml:"tablePrefix"`
	// pool
	MaxOpenConns    int `yaml:"maxOpenConns"`
	MaxIdleConns    int `yaml:"maxIdleConns"`
	ConnMaxLifetime int `yaml:"connMaxLifetime"` // minutes
	ConnMaxIdleTime int `yaml:"connMaxIdleTime"` // minutes
	// AutoMigrate creates the grading tables on startup.
	AutoMigrate bool `yaml:"autoMigrate"`
}

func (DBConfig) Key() string {
	return "db"
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	DB       int    `yaml:"db"`
	Password string `yaml:"password"`
}

func (RedisConfig) Key() string {
	return "redis"
}

type KafkaConfig struct {
	Brokers  []string `yaml:"brokers"`
	ClientID string   `yaml:"clientID"`
}

func (KafkaConfig) Key() string {
	return "kafka"
}

type MetricsConfig struct {
	Addr string `yaml:"addr"` // e.g. :2112; empty disables the endpoint
}

func (MetricsConfig) Key() string {
	return "metrics"
}
