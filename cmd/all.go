package cmd

import (
	_ "stagekeeper/cmd/root"
	_ "stagekeeper/cmd/run"
	_ "stagekeeper/cmd/service"
	_ "stagekeeper/cmd/stage"
)
