package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"storefront/internal/domain"

	"github.com/spf13/cobra"
)

var restaurantsCmd = &cobra.Command{
	Use:   "restaurants",
	Short: "List restaurants",
	RunE: func(cmd *cobra.Command, args []string) error {
		restaurants, err := current.catalog.Restaurants(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tADDRESS")
		for _, r := range restaurants {
			fmt.Fprintf(w, "%d\t%s\t%s\n", r.ID, r.Name, r.Address)
		}
		return w.Flush()
	},
}

var menusCmd = &cobra.Command{
	Use:   "menus <restaurant-id>",
	Short: "List the menus of one restaurant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		restaurantID, err := parseID(args[0])
		if err != nil {
			return err
		}
		menus, err := current.catalog.Menus(cmd.Context(), restaurantID)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPRICE\tAVAILABLE")
		for _, m := range menus {
			fmt.Fprintf(w, "%d\t%s\t%s\t%t\n", m.ID, m.Name, domain.FormatRupiah(m.Price), m.IsAvailable)
		}
		return w.Flush()
	},
}

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Show order history",
	RunE: func(cmd *cobra.Command, args []string) error {
		orders, err := current.catalog.OrderHistory(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tCODE\tSTATUS\tPAYMENT\tTOTAL")
		for _, o := range orders {
			payment := "-"
			if o.Payment != nil {
				payment = string(o.Payment.PaymentStatus)
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", o.ID, o.OrderCode, o.Status, payment, domain.FormatRupiah(o.TotalPrice))
		}
		return w.Flush()
	},
}

func parseID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
