package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teecraft/storefront/internal/app"
)

var seedOpts app.SeedOptions

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo catalog and optionally an admin account",
	Long: `Inserts the demo catalog (every color and size variant of each product)
when the products table is empty. With --admin-email the account is created
if needed and given the admin role.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if seedOpts.AdminEmail != "" && seedOpts.AdminPassword == "" {
			return fmt.Errorf("--admin-password is required with --admin-email")
		}
		c := cfg
		c.AutoMigrate = true
		a, err := app.New(log, c)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.Seed(cmd.Context(), seedOpts)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d products, %d variants\n", res.Products, res.Variants)
		if res.Admin != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "admin: %s\n", res.Admin)
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedOpts.AdminEmail, "admin-email", "", "Email of the admin account to create or promote")
	seedCmd.Flags().StringVar(&seedOpts.AdminPassword, "admin-password", "", "Password for a newly created admin account")
	seedCmd.Flags().IntVar(&seedOpts.VariantStock, "stock", 25, "Stock for each seeded variant")
}
