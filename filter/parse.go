package filter

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/arloliu/tdb/item"
)

// ErrSyntax is returned for a malformed filter expression.
var ErrSyntax = errors.New("filter: syntax error")

// Resolver maps a field name and value string to an item.
type Resolver func(field, value string) (item.Item, error)

// Parse compiles an expression of the form
//
//	browser=chrome | browser=firefox & country!=us
//
// into a Filter. '&' separates clauses and binds looser than '|', which
// separates the literals of one clause. An empty expression yields an
// empty filter.
func Parse(expr string, resolve Resolver) (Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Filter{}, nil
	}

	var clauses []Clause
	for _, clauseExpr := range strings.Split(expr, "&") {
		var clause Clause
		for _, litExpr := range strings.Split(clauseExpr, "|") {
			lit, err := parseLiteral(strings.TrimSpace(litExpr), resolve)
			if err != nil {
				return nil, err
			}
			clause = append(clause, lit)
		}
		clauses = append(clauses, clause)
	}

	return New(clauses...), nil
}

func parseLiteral(s string, resolve Resolver) (Literal, error) {
	neg := false
	field, value, ok := strings.Cut(s, "!=")
	if ok {
		neg = true
	} else if field, value, ok = strings.Cut(s, "="); !ok {
		return Literal{}, errors.Wrapf(ErrSyntax, "literal %q has no '=' or '!='", s)
	}

	field = strings.TrimSpace(field)
	if field == "" {
		return Literal{}, errors.Wrapf(ErrSyntax, "literal %q has no field", s)
	}

	it, err := resolve(field, strings.TrimSpace(value))
	if err != nil {
		return Literal{}, errors.Wrapf(err, "literal %q", s)
	}

	return Literal{Item: it, Negative: neg}, nil
}
