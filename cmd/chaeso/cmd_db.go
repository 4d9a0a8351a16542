package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chaeso/delivery-api/internal/infrastructure/db/mongo"
	"github.com/chaeso/delivery-api/internal/infrastructure/db/postgres"
)

var (
	superuserCPF      string
	superuserPassword string
)

// chaeso migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the relational schema and the audit-trail indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := boot(ctx, true, false)
		if err != nil {
			return err
		}
		defer a.close()

		if err := postgres.Migrate(ctx, a.db); err != nil {
			return err
		}
		a.log.Info().Msg("relational schema migrated")

		if err := mongo.NewOrderEventRepository(a.mdb).EnsureIndexes(ctx); err != nil {
			return err
		}
		a.log.Info().Msg("order event indexes ensured")
		return nil
	},
}

// chaeso createsuperuser --cpf 00000000000 --password secret
var createSuperuserCmd = &cobra.Command{
	Use:   "createsuperuser",
	Short: "Create a staff identity",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireArg("cpf", superuserCPF); err != nil {
			return err
		}
		if err := requireArg("password", superuserPassword); err != nil {
			return err
		}

		ctx := cmd.Context()
		a, err := boot(ctx, false, false)
		if err != nil {
			return err
		}
		defer a.close()

		user, err := a.authService().CreateSuperuser(ctx, superuserCPF, superuserPassword)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created staff identity %d (cpf %s)\n", user.ID, user.CPF)
		return nil
	},
}

func init() {
	createSuperuserCmd.Flags().StringVar(&superuserCPF, "cpf", "", "CPF used as the login name")
	createSuperuserCmd.Flags().StringVar(&superuserPassword, "password", "", "initial password")
}
