package cmd

import (
	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/market"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(syncCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Listen for marketplace and collection events and apply them to the offer database",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		controller, err := market.NewController(conf)
		if err != nil {
			return
		}

		err = controller.Start()
		if err != nil {
			return
		}

		<-ctx.Done()

		controller.StopWait()
		return
	},
}
