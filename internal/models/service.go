package models

type ServiceDetail struct {
	Name      string               `json:"name"`
	Pid       int                  `json:"pid"`
	Status    RunStatus            `json:"status"`
	ExitCode  int                  `json:"exitCode"`
	Restarts  int                  `json:"restarts"`
	StartTime string               `json:"startTime"`
	Spec      ServiceSpecification `json:"spec"`
	Process   ProcessDetail        `json:"process,omitempty"`
}
