// Package search turns a free-text query into the disjunctive filter shared by
// every listing endpoint: exact id, case-insensitive substring on the primary
// text fields, and short-code suffix on the id.
package search

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxSuffixLength is the longest query that is also matched as an id suffix.
const MaxSuffixLength = 12

// Filter is the parsed form of a search query. The zero value matches everything.
type Filter struct {
	Term   string
	Fields []string
	ID     *primitive.ObjectID
	Suffix bool
}

// Normalize trims q and strips one leading '#', the prefix clients put in front of short codes.
func Normalize(q string) string {
	q = strings.TrimSpace(q)
	q = strings.TrimPrefix(q, "#")
	return strings.TrimSpace(q)
}

// Build parses q against the given primary text fields.
func Build(q string, fields ...string) Filter {
	term := Normalize(q)
	if term == "" {
		return Filter{}
	}
	f := Filter{
		Term:   term,
		Fields: fields,
		Suffix: utf8.RuneCountInString(term) <= MaxSuffixLength,
	}
	if oid, err := primitive.ObjectIDFromHex(term); err == nil {
		f.ID = &oid
	}
	return f
}

// Empty reports whether the filter matches every record.
func (f Filter) Empty() bool {
	return f.Term == ""
}

// BSON renders the filter as a MongoDB query document.
func (f Filter) BSON() bson.M {
	if f.Empty() {
		return bson.M{}
	}
	return bson.M{"$or": f.clauses()}
}

// And narrows base (e.g. an ownership clause) by the filter.
func (f Filter) And(base bson.M) bson.M {
	out := bson.M{}
	for k, v := range base {
		out[k] = v
	}
	if !f.Empty() {
		out["$or"] = f.clauses()
	}
	return out
}

func (f Filter) clauses() bson.A {
	quoted := regexp.QuoteMeta(f.Term)
	ors := bson.A{}
	if f.ID != nil {
		ors = append(ors, bson.M{"_id": *f.ID})
	}
	for _, field := range f.Fields {
		ors = append(ors, bson.M{field: primitive.Regex{Pattern: quoted, Options: "i"}})
	}
	if f.Suffix {
		ors = append(ors, bson.M{"$expr": bson.M{
			"$regexMatch": bson.M{
				"input":   bson.M{"$toString": "$_id"},
				"regex":   quoted + "$",
				"options": "i",
			},
		}})
	}
	return ors
}

// Match evaluates the filter in memory. values are the record's primary
// field values, in the same order as Fields.
func (f Filter) Match(id primitive.ObjectID, values ...string) bool {
	if f.Empty() {
		return true
	}
	if f.ID != nil && *f.ID == id {
		return true
	}
	term := strings.ToLower(f.Term)
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), term) {
			return true
		}
	}
	return f.Suffix && strings.HasSuffix(id.Hex(), term)
}
