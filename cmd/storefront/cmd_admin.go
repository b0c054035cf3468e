package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var rejectNotes string

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Payment verification for admins",
}

var adminPaymentsCmd = &cobra.Command{
	Use:   "payments",
	Short: "List payments waiting for verification",
	RunE: func(cmd *cobra.Command, args []string) error {
		payments, err := current.admin.Pending(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tORDER\tMETHOD\tSTATUS\tPROOF")
		for _, p := range payments {
			fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n", p.ID, p.OrderID, p.PaymentMethod, p.PaymentStatus, p.ProofImage)
		}
		return w.Flush()
	},
}

var adminVerifyCmd = &cobra.Command{
	Use:   "verify <payment-id>",
	Short: "Mark a payment as completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := current.admin.Verify(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Payment #%d verified\n", id)
		return nil
	},
}

var adminRejectCmd = &cobra.Command{
	Use:   "reject <payment-id>",
	Short: "Reject a payment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := current.admin.Reject(cmd.Context(), id, rejectNotes); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Payment #%d rejected\n", id)
		return nil
	},
}

func init() {
	adminRejectCmd.Flags().StringVar(&rejectNotes, "notes", "", "reason shown to the customer")
	adminCmd.AddCommand(adminPaymentsCmd, adminVerifyCmd, adminRejectCmd)
}
