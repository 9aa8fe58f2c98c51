package config

type MasterConfig struct {
	LRUSize      int   `yaml:"lruSize"`      // cached metadata registries
	StreamMaxLen int64 `yaml:"streamMaxLen"` // approximate cap of the task stream, 0 = unbounded
}

func (MasterConfig) Key() string {
	return "master"
}
