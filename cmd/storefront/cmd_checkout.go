package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"storefront/internal/domain"
	"storefront/internal/service"

	"github.com/spf13/cobra"
)

var (
	checkoutNotes string

	payMethod       string
	payProof        string
	payNotes        string
	payQROut        string
	payInstructions bool
)

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Turn every non-empty cart into an order",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := current.cart.Load(cmd.Context()); err != nil {
			return err
		}
		orderID, err := current.cart.Checkout(cmd.Context(), checkoutNotes)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Order #%d placed\n", orderID)
		return nil
	},
}

// storefront pay: the payment confirmation page for one order.
var payCmd = &cobra.Command{
	Use:   "pay <order-id>",
	Short: "Show payment instructions and upload the proof of payment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		orderID, err := parseID(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		flow := current.newFlow(orderID)
		if err := flow.Load(cmd.Context()); err != nil {
			return err
		}
		if err := flow.SelectMethod(domain.PaymentMethod(payMethod)); err != nil {
			return err
		}

		instructions, err := flow.Instructions()
		if err != nil {
			return err
		}
		if err := printInstructions(out, flow.View(), instructions); err != nil {
			return err
		}
		if payInstructions {
			return nil
		}

		if payProof == "" {
			return service.ErrProofRequired
		}
		file, err := os.Open(payProof)
		if err != nil {
			return fmt.Errorf("open proof: %w", err)
		}
		defer file.Close()
		if err := flow.AttachProofReader(filepath.Base(payProof), file); err != nil {
			return err
		}
		if err := flow.SetNotes(payNotes); err != nil {
			return err
		}

		if err := flow.Submit(cmd.Context()); err != nil {
			return err
		}
		modal := flow.Modal()
		fmt.Fprintf(out, "Payment confirmation for %s sent. The restaurant will verify it shortly.\n", modal.OrderCode)
		fmt.Fprintf(out, "Track it with: storefront orders (%s)\n", modal.HistoryLink)
		return nil
	},
}

func printInstructions(out io.Writer, view service.FlowView, instructions service.PaymentInstructions) error {
	if view.Order != nil {
		fmt.Fprintf(out, "Order %s: %s (%s)\n", view.Order.OrderCode, domain.FormatRupiah(view.Order.TotalPrice), view.Order.Status)
	}
	fmt.Fprintln(out, instructions.Title)
	for i, step := range instructions.Steps {
		fmt.Fprintf(out, "  %d. %s\n", i+1, step)
	}
	if len(instructions.QRCodePNG) > 0 && payQROut != "" {
		if err := os.WriteFile(payQROut, instructions.QRCodePNG, 0o644); err != nil {
			return fmt.Errorf("write qr code: %w", err)
		}
		fmt.Fprintf(out, "QR code written to %s\n", payQROut)
	}
	return nil
}

func init() {
	checkoutCmd.Flags().StringVar(&checkoutNotes, "notes", "", "notes for the order")

	payCmd.Flags().StringVar(&payMethod, "method", string(domain.PaymentQRIS), "qris or bank_transfer")
	payCmd.Flags().StringVar(&payProof, "proof", "", "proof of payment image (max 5MB)")
	payCmd.Flags().StringVar(&payNotes, "notes", "", "notes for the restaurant")
	payCmd.Flags().StringVar(&payQROut, "qr-out", "", "write the QRIS code PNG to this file")
	payCmd.Flags().BoolVar(&payInstructions, "instructions-only", false, "only show how to pay")
}
