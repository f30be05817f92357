package cmd

import (
	"github.com/spf13/cobra"
)

var RootCmd = &cobra.Command{
	Use:   "aqua",
	Short: "neighborhood water cooperative backend",
	Long:  `aqua tracks the members of a shared water delivery, their monthly payments and the reminders sent to whoever still owes.`,
}

func init() {
	RootCmd.AddCommand(serverCommand())
	RootCmd.AddCommand(migrateCommand())
}
