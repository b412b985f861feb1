// Package query translates URL query parameters into a MongoDB retrieval
// expression: filter criteria, sort order, field projection and a page window.
// Every collection hands the shaper an allow-list of filterable fields; keys
// outside that list are rejected instead of being passed through to the
// driver.
package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Kind is the declared type of a filterable field. Values are parsed
// accordingly before they reach the driver.
type Kind int

const (
	String Kind = iota
	Number
	Bool
	// ObjectID values arrive as hex strings and are compared as driver ids.
	ObjectID
)

const (
	// DefaultLimit is the page size when none is requested.
	DefaultLimit = 13
	// MaxLimit caps requested page sizes; larger values are clamped, not
	// rejected, matching the fail-open pagination contract.
	MaxLimit = 100
)

// Parameter names that never become filter criteria.
var reserved = map[string]struct{}{
	"page":   {},
	"sort":   {},
	"limit":  {},
	"fields": {},
}

// comparison operators accepted inside bracket keys, e.g. price[gte]=500.
var operators = map[string]string{
	"gte": "$gte",
	"gt":  "$gt",
	"lte": "$lte",
	"lt":  "$lt",
}

var (
	ErrUnknownField  = errors.New("unknown filter field")
	ErrBadOperator   = errors.New("unsupported filter operator")
	ErrBadValue      = errors.New("invalid filter value")
	ErrBadSortField  = errors.New("unknown sort field")
	ErrBadProjection = errors.New("unknown projection field")
)

// IsShapeError reports whether err is one of the shaper's rejection
// sentinels, i.e. the client sent a malformed query expression.
func IsShapeError(err error) bool {
	return errors.Is(err, ErrUnknownField) ||
		errors.Is(err, ErrBadOperator) ||
		errors.Is(err, ErrBadValue) ||
		errors.Is(err, ErrBadSortField) ||
		errors.Is(err, ErrBadProjection)
}

// Shaper accumulates a pending retrieval expression. Stages mutate the shaper
// and return it for chaining; the first error sticks and is reported by Err.
// The expression is read once, by the repository that executes it.
type Shaper struct {
	fields     map[string]Kind
	filter     bson.M
	sort       bson.D
	projection bson.M
	page       int64
	limit      int64
	err        error
}

// NewShaper creates a shaper for a collection whose filterable fields are
// declared in the allow-list.
func NewShaper(fields map[string]Kind) *Shaper {
	return &Shaper{
		fields: fields,
		filter: bson.M{},
		page:   1,
		limit:  DefaultLimit,
	}
}

// Apply runs all four stages in the conventional order over raw query
// parameters (as produced by fiber's c.Queries()).
func (s *Shaper) Apply(params map[string]string) *Shaper {
	return s.
		Filter(params).
		Sort(params["sort"]).
		Project(params["fields"]).
		Paginate(params["page"], params["limit"])
}

// Filter turns every non-reserved parameter into an equality or range
// constraint on a same-named field. Range operators arrive as bracket keys
// (duration[gte]=5) and are rewritten to the driver's operator syntax.
func (s *Shaper) Filter(params map[string]string) *Shaper {
	if s.err != nil {
		return s
	}
	for key, raw := range params {
		field, op := splitKey(key)
		if _, skip := reserved[field]; skip {
			continue
		}
		kind, ok := s.fields[field]
		if !ok {
			s.err = fmt.Errorf("%w: %s", ErrUnknownField, field)
			return s
		}

		mongoOp := ""
		if op != "" {
			if mongoOp, ok = operators[op]; !ok {
				s.err = fmt.Errorf("%w: %s[%s]", ErrBadOperator, field, op)
				return s
			}
		}

		value, err := parseValue(kind, raw)
		if err != nil {
			s.err = fmt.Errorf("%w: %s=%s", ErrBadValue, field, raw)
			return s
		}

		if op == "" {
			s.filter[field] = value
			continue
		}
		rangeExpr, ok := s.filter[field].(bson.M)
		if !ok {
			rangeExpr = bson.M{}
			s.filter[field] = rangeExpr
		}
		rangeExpr[mongoOp] = value
	}
	return s
}

// Sort parses a comma-separated field list, minus prefix meaning descending.
// Absent input falls back to newest-first.
func (s *Shaper) Sort(expr string) *Shaper {
	if s.err != nil {
		return s
	}
	if expr == "" {
		s.sort = bson.D{{Key: "created_at", Value: -1}}
		return s
	}
	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		dir := 1
		if strings.HasPrefix(part, "-") {
			dir = -1
			part = part[1:]
		}
		if !s.known(part) {
			s.err = fmt.Errorf("%w: %s", ErrBadSortField, part)
			return s
		}
		s.sort = append(s.sort, bson.E{Key: part, Value: dir})
	}
	if len(s.sort) == 0 {
		s.sort = bson.D{{Key: "created_at", Value: -1}}
	}
	return s
}

// Project parses a comma-separated allow-list of fields to return. Absent
// input means all fields (model structs already hide sensitive fields from
// serialization, and there is no version marker to strip).
func (s *Shaper) Project(expr string) *Shaper {
	if s.err != nil || expr == "" {
		return s
	}
	projection := bson.M{}
	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !s.known(part) {
			s.err = fmt.Errorf("%w: %s", ErrBadProjection, part)
			return s
		}
		projection[part] = 1
	}
	if len(projection) > 0 {
		s.projection = projection
	}
	return s
}

// Paginate computes the page window. Malformed numbers fail open to the
// defaults rather than erroring; a page past the end of the collection is the
// caller's empty result, not our problem.
func (s *Shaper) Paginate(pageStr, limitStr string) *Shaper {
	if s.err != nil {
		return s
	}
	if page, err := strconv.ParseInt(pageStr, 10, 64); err == nil && page >= 1 {
		s.page = page
	}
	if limit, err := strconv.ParseInt(limitStr, 10, 64); err == nil && limit >= 1 {
		s.limit = min(limit, MaxLimit)
	}
	return s
}

// Err reports the first stage error, if any.
func (s *Shaper) Err() error {
	return s.err
}

// Criteria returns the accumulated filter document.
func (s *Shaper) Criteria() bson.M {
	return s.filter
}

// FindOptions builds the driver options for the accumulated sort, projection
// and page window.
func (s *Shaper) FindOptions() *options.FindOptionsBuilder {
	sort := s.sort
	if len(sort) == 0 {
		sort = bson.D{{Key: "created_at", Value: -1}}
	}
	opts := options.Find().
		SetSort(sort).
		SetSkip(s.Skip()).
		SetLimit(s.limit)
	if s.projection != nil {
		opts.SetProjection(s.projection)
	}
	return opts
}

// Skip returns the zero-based offset of the requested page.
func (s *Shaper) Skip() int64 {
	return (s.page - 1) * s.limit
}

// Page returns the effective page number.
func (s *Shaper) Page() int64 {
	return s.page
}

// Limit returns the effective page size.
func (s *Shaper) Limit() int64 {
	return s.limit
}

// known reports whether a field may appear in sort/projection expressions:
// the filter allow-list plus the bookkeeping timestamps every model carries.
func (s *Shaper) known(field string) bool {
	if _, ok := s.fields[field]; ok {
		return true
	}
	return field == "created_at" || field == "updated_at"
}

// splitKey decomposes "price[gte]" into ("price", "gte"); a plain key has an
// empty operator.
func splitKey(key string) (string, string) {
	open := strings.IndexByte(key, '[')
	if open < 0 || !strings.HasSuffix(key, "]") {
		return key, ""
	}
	return key[:open], key[open+1 : len(key)-1]
}

func parseValue(kind Kind, raw string) (any, error) {
	switch kind {
	case Number:
		return strconv.ParseFloat(raw, 64)
	case Bool:
		return strconv.ParseBool(raw)
	case ObjectID:
		return bson.ObjectIDFromHex(raw)
	default:
		return raw, nil
	}
}
