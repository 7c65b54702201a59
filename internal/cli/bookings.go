package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/duynhne/loaner-service/internal/booking"
	"github.com/duynhne/loaner-service/internal/client"
)

func (a *app) bookingsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "bookings",
		Aliases: []string{"bk"},
		Short:   "Request and process bookings",
	}
	cmd.AddCommand(a.bookingsListCommand(), a.bookingsRequestCommand())
	for _, action := range booking.Actions {
		cmd.AddCommand(a.bookingsTransitionCommand(action))
	}
	return cmd
}

func (a *app) bookingsListCommand() *cobra.Command {
	var filter booking.Filter
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bookings, newest first",
		Long: `List bookings, newest first. Denied and returned bookings are hidden
unless --all or an explicit --status is given. Students only see their own.`,
		Args: cobra.NoArgs,
		RunE: a.guard(areaProtected, func(cmd *cobra.Command, args []string) error {
			if status != "" {
				s, err := booking.ParseStatus(status)
				if err != nil {
					return err
				}
				filter.Status = s
			}
			bookings, err := a.client.ListBookings(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return a.render(cmd, bookings, bookingsTable(bookings))
		}),
	}
	cmd.Flags().StringVar(&filter.EquipmentID, "equipment", "", "only bookings of this equipment id")
	cmd.Flags().StringVar(&status, "status", "", "only this status (pending, approved, denied, checked_out, returned)")
	cmd.Flags().BoolVar(&filter.IncludeInactive, "all", false, "include denied and returned bookings")
	return cmd
}

func (a *app) bookingsRequestCommand() *cobra.Command {
	var start, end string
	var req client.BookingRequest

	cmd := &cobra.Command{
		Use:   "request <equipment-id>",
		Short: "Request a booking",
		Example: `  loanerctl bookings request 3f2c... --start 2025-05-01 --end 2025-05-03
  loanerctl bookings request 3f2c... --start 2025-05-01T09:00:00Z --end 2025-05-01T17:00:00Z --notes "lab"`,
		Args: cobra.ExactArgs(1),
		RunE: a.guard(areaProtected, func(cmd *cobra.Command, args []string) error {
			var err error
			if req.Start, err = parseDate("--start", start); err != nil {
				return err
			}
			if req.End, err = parseDate("--end", end); err != nil {
				return err
			}
			b, err := a.client.RequestBooking(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			return a.render(cmd, b, bookingsTable([]booking.Booking{*b}))
		}),
	}
	cmd.Flags().StringVar(&start, "start", "", "first day, YYYY-MM-DD or RFC 3339")
	cmd.Flags().StringVar(&end, "end", "", "last day, YYYY-MM-DD or RFC 3339")
	cmd.Flags().StringVar(&req.Notes, "notes", "", "free-form notes")
	cmd.Flags().StringVar(&req.UserID, "user", "", "book on behalf of this user id (staff and admin)")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func (a *app) bookingsTransitionCommand(action booking.Action) *cobra.Command {
	return &cobra.Command{
		Use:   string(action) + " <equipment-id> <booking-id>",
		Short: fmt.Sprintf("Apply %q to a booking (staff)", action),
		Args:  cobra.ExactArgs(2),
		RunE: a.guard(areaStaff, func(cmd *cobra.Command, args []string) error {
			current, err := a.findBooking(cmd, args[0], args[1])
			if err != nil {
				return err
			}
			next, err := a.client.TransitionBooking(cmd.Context(), *current, action)
			if err != nil {
				return err
			}
			return a.render(cmd, next, bookingsTable([]booking.Booking{*next}))
		}),
	}
}

// findBooking loads the current state of a booking so the transition can
// be checked locally.
func (a *app) findBooking(cmd *cobra.Command, equipmentID, bookingID string) (*booking.Booking, error) {
	bookings, err := a.client.ListBookings(cmd.Context(), booking.Filter{EquipmentID: equipmentID, IncludeInactive: true})
	if err != nil {
		return nil, err
	}
	for _, b := range bookings {
		if b.ID == bookingID {
			return &b, nil
		}
	}
	return nil, fmt.Errorf("booking %s of equipment %s: %w", bookingID, equipmentID, client.ErrNotFound)
}

func parseDate(flag, value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s %q: want YYYY-MM-DD or RFC 3339", flag, value)
	}
	return t, nil
}
