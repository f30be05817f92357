package cmd

import (
	"aqua/relay/relay"
	"aqua/web"

	"github.com/spf13/cobra"
)

func serverCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long:  `This command starts the web server for the application.`,
		Run: func(cmd *cobra.Command, args []string) {
			isDev := cmd.Flags().Lookup("dev").Value.String() == "true"
			port := cmd.Flags().Lookup("port").Value.String()
			dbMode := cmd.Flags().Lookup("db").Value.String()
			relayMode := cmd.Flags().Lookup("relay").Value.String()

			web.Serve(web.ServiceConfig{
				IsDev:     isDev,
				Port:      port,
				DBMode:    dbMode,
				RelayMode: relay.Mode(relayMode),
			})
		},
	}

	cmd.Flags().Bool("dev", true, "Run in development mode")
	cmd.Flags().String("port", "8080", "Port to run the web server on")
	cmd.Flags().String("db", "postgres", "Database backend (postgres, memory)")
	cmd.Flags().String("relay", "go_chan", "Reminder relay mode (go_chan, rabbitmq, gcp_pub_sub, whatsapp_ws)")

	return cmd
}
