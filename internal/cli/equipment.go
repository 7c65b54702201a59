package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/duynhne/loaner-service/internal/core/domain"
)

func (a *app) equipmentCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "equipment",
		Aliases: []string{"eq"},
		Short:   "List and manage equipment",
	}
	cmd.AddCommand(
		a.equipmentListCommand(),
		a.equipmentGetCommand(),
		a.equipmentCreateCommand(),
		a.equipmentUpdateCommand(),
		a.equipmentDeleteCommand(),
	)
	return cmd
}

func (a *app) equipmentListCommand() *cobra.Command {
	var filter domain.EquipmentFilter
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List equipment",
		Args:  cobra.NoArgs,
		RunE: a.guard(areaProtected, func(cmd *cobra.Command, args []string) error {
			filter.Status = domain.EquipmentStatus(status)
			items, err := a.client.ListEquipment(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return a.render(cmd, items, equipmentTable(items))
		}),
	}
	cmd.Flags().StringVar(&filter.Category, "category", "", "only this category")
	cmd.Flags().StringVar(&status, "status", "", "only this status (available, reserved, out, maintenance)")
	return cmd
}

func (a *app) equipmentGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one item",
		Args:  cobra.ExactArgs(1),
		RunE: a.guard(areaProtected, func(cmd *cobra.Command, args []string) error {
			item, err := a.client.GetEquipment(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.render(cmd, item, equipmentTable([]domain.Equipment{*item}))
		}),
	}
}

func (a *app) equipmentCreateCommand() *cobra.Command {
	var req domain.CreateEquipmentRequest
	var condition, status string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add an item",
		Args:  cobra.NoArgs,
		RunE: a.guard(areaStaff, func(cmd *cobra.Command, args []string) error {
			req.Condition = domain.EquipmentCondition(condition)
			req.Status = domain.EquipmentStatus(status)
			item, err := a.client.CreateEquipment(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.render(cmd, item, equipmentTable([]domain.Equipment{*item}))
		}),
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "item name")
	cmd.Flags().StringVar(&req.Category, "category", "", "item category")
	cmd.Flags().StringVar(&req.Serial, "serial", "", "serial number")
	cmd.Flags().StringVar(&condition, "condition", "", "New, Good, Fair or Poor (default Good)")
	cmd.Flags().StringVar(&status, "status", "", "initial status (default available)")
	cmd.Flags().StringVar(&req.Location, "location", "", "storage location")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func (a *app) equipmentUpdateCommand() *cobra.Command {
	var name, category, serial, condition, status, location string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of an item",
		Args:  cobra.ExactArgs(1),
		RunE: a.guard(areaStaff, func(cmd *cobra.Command, args []string) error {
			var req domain.UpdateEquipmentRequest
			flags := cmd.Flags()
			if flags.Changed("name") {
				req.Name = &name
			}
			if flags.Changed("category") {
				req.Category = &category
			}
			if flags.Changed("serial") {
				req.Serial = &serial
			}
			if flags.Changed("condition") {
				c := domain.EquipmentCondition(condition)
				req.Condition = &c
			}
			if flags.Changed("status") {
				s := domain.EquipmentStatus(status)
				req.Status = &s
			}
			if flags.Changed("location") {
				req.Location = &location
			}

			item, err := a.client.UpdateEquipment(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			return a.render(cmd, item, equipmentTable([]domain.Equipment{*item}))
		}),
	}
	cmd.Flags().StringVar(&name, "name", "", "item name")
	cmd.Flags().StringVar(&category, "category", "", "item category")
	cmd.Flags().StringVar(&serial, "serial", "", "serial number")
	cmd.Flags().StringVar(&condition, "condition", "", "New, Good, Fair or Poor")
	cmd.Flags().StringVar(&status, "status", "", "available, reserved, out or maintenance")
	cmd.Flags().StringVar(&location, "location", "", "storage location")
	return cmd
}

func (a *app) equipmentDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove an item and its bookings",
		Args:  cobra.ExactArgs(1),
		RunE: a.guard(areaAdmin, func(cmd *cobra.Command, args []string) error {
			if err := a.client.DeleteEquipment(cmd.Context(), args[0]); err != nil {
				return err
			}
			return a.render(cmd, map[string]string{"deleted": args[0]}, func(w *tabwriter.Writer) {
				fmt.Fprintf(w, "Deleted equipment %s\n", args[0])
			})
		}),
	}
}
