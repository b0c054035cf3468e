package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"storefront/internal/domain"
	"storefront/internal/service"

	"github.com/spf13/cobra"
)

var (
	addRestaurantID int
	addQuantity     int
	addNotes        string
	clearYes        bool
)

// storefront cart: show every non-empty cart grouped by restaurant.
var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Show and change your carts",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := current.cart.Load(cmd.Context()); err != nil {
			return err
		}
		return printCart(cmd.OutOrStdout(), current.cart.Snapshot())
	},
}

var cartAddCmd = &cobra.Command{
	Use:   "add <menu-id>",
	Short: "Add a menu item to the cart of its restaurant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		menuID, err := parseID(args[0])
		if err != nil {
			return err
		}
		err = current.cart.AddItem(cmd.Context(), domain.AddItemInput{
			MenuID:       menuID,
			RestaurantID: addRestaurantID,
			Quantity:     addQuantity,
			Notes:        addNotes,
		})
		if err != nil {
			return err
		}
		return printCart(cmd.OutOrStdout(), current.cart.Snapshot())
	},
}

var cartQtyCmd = &cobra.Command{
	Use:   "qty <item-id> <quantity>",
	Short: "Change the quantity of a cart item (values below 1 are ignored)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		itemID, err := parseID(args[0])
		if err != nil {
			return err
		}
		quantity, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid quantity %q", args[1])
		}
		if err := current.cart.Load(cmd.Context()); err != nil {
			return err
		}
		if err := current.cart.UpdateQuantity(cmd.Context(), itemID, quantity); err != nil {
			return err
		}
		return printCart(cmd.OutOrStdout(), current.cart.Snapshot())
	},
}

var cartNotesCmd = &cobra.Command{
	Use:   "notes <item-id> [text]",
	Short: "Set or clear the notes of a cart item",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		itemID, err := parseID(args[0])
		if err != nil {
			return err
		}
		text := ""
		if len(args) == 2 {
			text = args[1]
		}
		if err := current.cart.UpdateNotes(cmd.Context(), itemID, text); err != nil {
			return err
		}
		return printCart(cmd.OutOrStdout(), current.cart.Snapshot())
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <item-id>",
	Short: "Remove an item from its cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		itemID, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := current.cart.RemoveItem(cmd.Context(), itemID); err != nil {
			return err
		}
		return printCart(cmd.OutOrStdout(), current.cart.Snapshot())
	},
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty every cart after confirmation",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := current.cart.Load(cmd.Context()); err != nil {
			return err
		}
		current.cart.RequestClearAll()
		if !clearYes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Remove every item from every cart?") {
			current.cart.CancelClearAll()
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing removed")
			return nil
		}
		if err := current.cart.ConfirmClearAll(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "All carts cleared")
		return nil
	},
}

func init() {
	cartAddCmd.Flags().IntVar(&addRestaurantID, "restaurant", 0, "restaurant id of the menu")
	cartAddCmd.Flags().IntVar(&addQuantity, "qty", 1, "quantity")
	cartAddCmd.Flags().StringVar(&addNotes, "notes", "", "notes for the kitchen (max 200 characters)")
	cartAddCmd.MarkFlagRequired("restaurant")
	cartClearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "skip the confirmation prompt")

	cartCmd.AddCommand(cartAddCmd, cartQtyCmd, cartNotesCmd, cartRemoveCmd, cartClearCmd)
}

func printCart(out io.Writer, snapshot service.CartSnapshot) error {
	if len(snapshot.Carts) == 0 {
		fmt.Fprintln(out, "Your cart is empty")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	for _, cart := range snapshot.Carts {
		name := cart.RestaurantName()
		if name == "" {
			name = "Restaurant #" + strconv.Itoa(cart.RestaurantID)
		}
		fmt.Fprintf(w, "%s\t\t\t\t\n", name)
		for _, item := range cart.Items {
			menu := item.Menu.Name
			if menu == "" {
				menu = "Menu #" + strconv.Itoa(item.MenuID)
			}
			fmt.Fprintf(w, "  #%d\t%s\tx%d\t%s\t%s\n", item.ID, menu, item.Quantity, domain.FormatRupiah(item.Subtotal()), item.NotesText())
		}
		fmt.Fprintf(w, "  \tsubtotal\t%d\t%s\t\n", cart.ItemCount(), domain.FormatRupiah(cart.Total()))
	}
	fmt.Fprintf(w, "TOTAL\t\t%d\t%s\t\n", snapshot.TotalItemCount, domain.FormatRupiah(snapshot.TotalPrice))
	return w.Flush()
}

func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	line, _ := bufio.NewReader(in).ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
