package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/calehh/fund-app/app"
)

// GitCommit is set by the linker.
var GitCommit string

const (
	VersionMajor = 0
	VersionMinor = 1
	VersionPatch = 0
)

var Version = fmt.Sprintf("%d.%d.%d", VersionMajor, VersionMinor, VersionPatch)

// versionString reports the binary version together with the ABCI app
// version, which changes only when state transitions do.
func versionString(gitCommit string) string {
	vsn := Version
	if len(gitCommit) >= 8 {
		vsn += "-" + gitCommit[:8]
	}
	return fmt.Sprintf("fund %s (app version %d)", vsn, app.AppVersion)
}

var versionCmd = &cobra.Command{
	Use:     "version",
	Short:   "Print the node and app versions",
	Aliases: []string{"V"},
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(versionString(GitCommit))
	},
}
