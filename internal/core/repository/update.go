package repository

import (
	"fmt"
	"strings"
)

// setClause accumulates "col = $n" assignments for partial updates.
type setClause struct {
	sets []string
	args []any
}

func (s *setClause) add(column string, value any) {
	s.args = append(s.args, value)
	s.sets = append(s.sets, fmt.Sprintf("%s = $%d", column, len(s.args)))
}

// statement renders "UPDATE table SET ... WHERE id = $n RETURNING returning".
func (s *setClause) statement(table, id, returning string) (string, []any) {
	args := append(s.args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d RETURNING %s",
		table, strings.Join(s.sets, ", "), len(args), returning)
	return query, args
}
