package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/harrylevesque/campusclinic/internal/models"
	"github.com/harrylevesque/campusclinic/internal/nav"
	"github.com/harrylevesque/campusclinic/internal/render"
	"github.com/harrylevesque/campusclinic/internal/screen"
)

func (a *app) stockCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "stock",
		Aliases: []string{"inventory"},
		Short:   "Medicine, supplies and equipment inventory",
	}

	var low, expiring bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List stock items by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l := screen.Stock(a.client)
			if err := l.Refresh(cmd.Context()); err != nil {
				return err
			}
			now := a.now()
			var items []models.StockItem
			switch {
			case low && expiring:
				return userError("Use either --low or --expiring, not both.")
			case low:
				items = l.LowStock(a.cfg.Display.LowStockThreshold)
			case expiring:
				items = l.Expiring(now, a.cfg.GetExpiryWindow())
			default:
				items = l.Items()
			}
			return a.printer.Emit(items, func() (string, error) { return stockTable(items, now), nil })
		},
	}
	list.Flags().BoolVar(&low, "low", false, "only items at or below display.low_stock_threshold")
	list.Flags().BoolVar(&expiring, "expiring", false, "only items expiring within display.expiry_window, expired included")

	var in models.StockItem
	var category, expires string
	addFlags := func(c *cobra.Command) {
		c.Flags().StringVar(&in.Name, "name", "", "item name")
		c.Flags().StringVar(&category, "category", "", "medicine, supplies or equipment")
		c.Flags().IntVar(&in.Quantity, "quantity", 0, "units on hand")
		c.Flags().StringVar(&in.Unit, "unit", "", "unit, e.g. boxes")
		c.Flags().StringVar(&expires, "expires", "", "expiration date, YYYY-MM-DD")
	}
	apply := func(cmd *cobra.Command, item *models.StockItem) error {
		if changed(cmd, "name") {
			item.Name = in.Name
		}
		if changed(cmd, "category") {
			item.Category = models.StockCategory(category)
		}
		if changed(cmd, "quantity") {
			item.Quantity = in.Quantity
		}
		if changed(cmd, "unit") {
			item.Unit = in.Unit
		}
		if changed(cmd, "expires") {
			d, err := parseDate("expires", expires)
			if err != nil {
				return err
			}
			item.ExpirationDate = d
		}
		return nil
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Add a stock item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var item models.StockItem
			if err := apply(cmd, &item); err != nil {
				return err
			}
			item, err := a.client.Stock.Create(cmd.Context(), item)
			if err != nil {
				return err
			}
			return a.printer.Emit(item, func() (string, error) {
				return fmt.Sprintf("Added %s (%d %s) as item %s.", item.Name, item.Quantity, item.Unit, item.ID), nil
			})
		},
	}
	addFlags(create)

	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a stock item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := a.client.Stock.Get(cmd.Context(), idArg(args))
			if err != nil {
				return err
			}
			if err := apply(cmd, &item); err != nil {
				return err
			}
			item, err = a.client.Stock.Update(cmd.Context(), item.ID, item)
			if err != nil {
				return err
			}
			return a.printer.Emit(item, func() (string, error) {
				return fmt.Sprintf("Updated %s.", item.Name), nil
			})
		},
	}
	addFlags(update)

	adjust := &cobra.Command{
		Use:   "adjust <id> <delta>",
		Short: "Add or remove units, e.g. adjust 4 +10 or adjust 4 -2",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			delta, err := strconv.Atoi(args[1])
			if err != nil {
				return userError(fmt.Sprintf("%q is not a whole number.", args[1]))
			}
			l := screen.Stock(a.client)
			if err := l.Refresh(cmd.Context()); err != nil {
				return err
			}
			id := idArg(args)
			item, err := l.Submit(cmd.Context(), func(ctx context.Context) (models.StockItem, error) {
				return a.client.Stock.Adjust(ctx, id, delta)
			})
			if err != nil {
				return err
			}
			threshold := a.cfg.Display.LowStockThreshold
			return a.printer.Emit(item, func() (string, error) {
				msg := fmt.Sprintf("%s now has %d %s.", item.Name, item.Quantity, item.Unit)
				if item.Quantity <= threshold {
					msg += fmt.Sprintf("\n%s %d items at or below %d.", render.Badge("low"), len(l.LowStock(threshold)), threshold)
				}
				return msg, nil
			})
		},
	}
	// Negative deltas are arguments, not flags.
	adjust.Flags().SetInterspersed(false)

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a stock item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.Stock.Delete(cmd.Context(), idArg(args)); err != nil {
				return err
			}
			a.printer.Line("Deleted stock item %s.", args[0])
			return nil
		},
	}

	cmd.AddCommand(
		gate(list, nav.Stock, nav.Read),
		gate(create, nav.Stock, nav.Manage),
		gate(update, nav.Stock, nav.Manage),
		gate(adjust, nav.Stock, nav.Manage),
		gate(del, nav.Stock, nav.Manage),
	)
	return cmd
}
