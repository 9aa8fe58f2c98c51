package config

type WorkerConfig struct {
	// TemplateDir holds the autograder files copied into every workspace.
	TemplateDir string `yaml:"templateDir"`
	// WorkDir is where per-task workspaces are created; empty means os.TempDir.
	WorkDir                  string `yaml:"workDir"`
	KeepWorkspace            bool   `yaml:"keepWorkspace"`
	XAutoClaimTimeoutMinutes int    `yaml:"xAutoClaimTimeoutMinutes"`
}

func (WorkerConfig) Key() string {
	return "worker"
}
