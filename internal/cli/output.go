package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/duynhne/loaner-service/internal/booking"
	"github.com/duynhne/loaner-service/internal/core/domain"
)

// render prints v as JSON with -o json, otherwise calls table.
func (a *app) render(cmd *cobra.Command, v any, table func(w *tabwriter.Writer)) error {
	if a.output == "json" {
		enc := json.NewEncoder(out(cmd))
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	w := tabwriter.NewWriter(out(cmd), 0, 4, 2, ' ', 0)
	table(w)
	return w.Flush()
}

func equipmentTable(items []domain.Equipment) func(*tabwriter.Writer) {
	return func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tSERIAL\tCONDITION\tSTATUS\tLOCATION")
		for _, e := range items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				e.ID, e.Name, e.Category, dash(e.Serial), e.Condition, e.Status, dash(e.Location))
		}
	}
}

func usersTable(users []domain.User) func(*tabwriter.Writer) {
	return func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "ID\tNAME\tEMAIL\tPHONE\tROLE\tJOINED")
		for _, u := range users {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				u.ID, u.Name, u.Email, dash(u.Phone), u.Role, day(u.DateJoined))
		}
	}
}

func bookingsTable(bookings []booking.Booking) func(*tabwriter.Writer) {
	return func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "ID\tEQUIPMENT\tUSER\tSTART\tEND\tSTATUS\tNEXT\tNOTES")
		for _, b := range bookings {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				b.ID, b.EquipmentID, b.UserID, day(b.StartDate), day(b.EndDate), b.Status,
				nextActions(b.Status), dash(b.Notes))
		}
	}
}

func nextActions(s booking.Status) string {
	actions := s.AvailableActions()
	if len(actions) == 0 {
		return "-"
	}
	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = string(a)
	}
	return strings.Join(names, ",")
}

func day(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.DateOnly)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
