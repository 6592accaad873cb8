package search

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"":           "",
		"   ":        "",
		"#abc123":    "abc123",
		"  #abc123 ": "abc123",
		"##abc":      "#abc",
		"# neem":     "neem",
		"Neem":       "Neem",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), "Normalize(%q)", in)
	}
}

func TestBuild_EmptyMatchesAll(t *testing.T) {
	f := Build("  # ", "species")
	assert.True(t, f.Empty())
	assert.Equal(t, bson.M{}, f.BSON())
	assert.True(t, f.Match(primitive.NewObjectID(), "anything"))
}

func TestBuild_ObjectIDQuery(t *testing.T) {
	oid := primitive.NewObjectID()
	f := Build(oid.Hex(), "species")

	require.NotNil(t, f.ID)
	assert.Equal(t, oid, *f.ID)
	// 24 chars is longer than the short-code window
	assert.False(t, f.Suffix)
	assert.True(t, f.Match(oid, "unrelated"))
	assert.False(t, f.Match(primitive.NewObjectID(), "unrelated"))
}

func TestBuild_ShortCodeSuffix(t *testing.T) {
	oid := primitive.NewObjectID()
	code := oid.Hex()[18:]
	f := Build("#"+code, "batchId")

	assert.Nil(t, f.ID)
	assert.True(t, f.Suffix)
	assert.True(t, f.Match(oid, "B-001"))

	upper := Build(strings.ToUpper(code), "batchId")
	assert.True(t, upper.Match(oid, "B-001"), "suffix match is case-insensitive")
}

func TestBuild_LongQuerySkipsSuffix(t *testing.T) {
	oid := primitive.NewObjectID()
	thirteen := oid.Hex()[11:]
	require.Len(t, thirteen, 13)

	f := Build(thirteen, "batchId")
	assert.False(t, f.Suffix)
	assert.False(t, f.Match(oid, "B-001"))

	twelve := Build(oid.Hex()[12:], "batchId")
	assert.True(t, twelve.Suffix)
	assert.True(t, twelve.Match(oid, "B-001"))
}

func TestMatch_SubstringAcrossFields(t *testing.T) {
	f := Build("RAO", "email", "name")
	oid := primitive.NewObjectID()

	assert.True(t, f.Match(oid, "x@example.com", "Priya Rao"))
	assert.True(t, f.Match(oid, "rao@example.com", "Priya"))
	assert.False(t, f.Match(oid, "x@example.com", "Priya"))
}

func TestBSON_Clauses(t *testing.T) {
	oid := primitive.NewObjectID()

	got := Build("ne.m", "species").BSON()
	want := bson.M{"$or": bson.A{
		bson.M{"species": primitive.Regex{Pattern: `ne\.m`, Options: "i"}},
		bson.M{"$expr": bson.M{"$regexMatch": bson.M{
			"input":   bson.M{"$toString": "$_id"},
			"regex":   `ne\.m$`,
			"options": "i",
		}}},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("BSON() mismatch (-want +got):\n%s", diff)
	}

	got = Build(oid.Hex(), "species").BSON()
	want = bson.M{"$or": bson.A{
		bson.M{"_id": oid},
		bson.M{"species": primitive.Regex{Pattern: oid.Hex(), Options: "i"}},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("BSON() mismatch (-want +got):\n%s", diff)
	}
}

func TestAnd_KeepsBaseClause(t *testing.T) {
	base := bson.M{"technicianId": "tech-1"}

	assert.Equal(t, base, Build("", "batchId").And(base))

	narrowed := Build("B-7", "batchId").And(base)
	assert.Equal(t, "tech-1", narrowed["technicianId"])
	assert.Contains(t, narrowed, "$or")
	assert.NotContains(t, base, "$or", "base must not be mutated")
}
