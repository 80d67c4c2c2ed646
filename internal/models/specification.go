package models

type RestartPolicy string

const (
	// 从不重启，退出后保持terminated状态
	RestartNever RestartPolicy = "never"
	// 仅在非0退出码时重启
	RestartOnFailure RestartPolicy = "on-failure"
	// 无论退出码如何都重启
	RestartAlways RestartPolicy = "always"
)

/**
 * Service configuration
 * @property {string} name - Service name, unique within the deployment
 * @property {string} command - Executable to launch
 * @property {[]string} args - Command arguments
 * @property {string} working_dir - Working directory for the invocation
 * @property {string} restart - Restart policy: never/on-failure/always
 * @property {bool} fatal - Unexpected exit drains the whole supervisor
 */
type ServiceSpecification struct {
	Name       string        `mapstructure:"name" json:"name"`
	Command    string        `mapstructure:"command" json:"command"`
	Args       []string      `mapstructure:"args" json:"args,omitempty"`
	WorkingDir string        `mapstructure:"working_dir" json:"working_dir,omitempty"`
	Restart    RestartPolicy `mapstructure:"restart" json:"restart,omitempty"`
	Fatal      bool          `mapstructure:"fatal" json:"fatal,omitempty"`
}

/**
 * Staging directive: one-directional, non-destructive directory sync
 * @property {string} source_dir - Absolute path populated by the provisioner
 * @property {string} dest_dir - Absolute path, created when absent
 */
type SyncRule struct {
	SourceDir string `mapstructure:"source_dir" json:"source_dir"`
	DestDir   string `mapstructure:"dest_dir" json:"dest_dir"`
}

/**
 * Deployment definition (deploy-spec.json)
 * @property {string} configuration - Configuration format version
 * @property {string} version - Deployment version
 * @property {[]SyncRule} sync_rules - Staging directives, applied in order
 * @property {[]ServiceSpecification} services - Supervised services, started in order
 */
type DeploymentSpecification struct {
	Configuration string                 `mapstructure:"configuration" json:"configuration"`
	Version       string                 `mapstructure:"version" json:"version"`
	SyncRules     []SyncRule             `mapstructure:"sync_rules" json:"sync_rules"`
	Services      []ServiceSpecification `mapstructure:"services" json:"services"`
}

// Policy 返回规范化的重启策略，空值按never处理
func (s *ServiceSpecification) Policy() RestartPolicy {
	switch s.Restart {
	case RestartAlways, RestartOnFailure, RestartNever:
		return s.Restart
	default:
		return RestartNever
	}
}
