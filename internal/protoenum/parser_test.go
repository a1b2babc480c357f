package protoenum

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const sampleProto = `syntax = "proto3";
package POGOProtos.Rpc;

enum HoloPokemonType {
	POKEMON_TYPE_NONE = 0;
	POKEMON_TYPE_NORMAL = 1;
	POKEMON_TYPE_FIRE = 10; // hot
}

message QuestRewardProto {
	enum Type {
		UNSET = 0;
		EXPERIENCE = 1;
		ITEM = 2;
		STARDUST = 3;
	}
	Type type = 1;
}

message PokemonDisplayProto {
	enum Costume {
		option allow_alias = true;
		UNSET = 0;
		HOLIDAY_2016 = 1;
		ANNIVERSARY = 2;
		ANNIVERSARY_ALIAS = 2;
	}
	enum Type {
		NOT_A_QUEST_TYPE = 7;
	}
}
`

func TestParse_TopLevelEnum(t *testing.T) {
	e, err := Parse(sampleProto, "HoloPokemonType", "")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		"POKEMON_TYPE_NONE":   0,
		"POKEMON_TYPE_NORMAL": 1,
		"POKEMON_TYPE_FIRE":   10,
	}, e.Names())
	assert.Equal(t, []Member{
		{Name: "POKEMON_TYPE_NONE", Value: 0},
		{Name: "POKEMON_TYPE_NORMAL", Value: 1},
		{Name: "POKEMON_TYPE_FIRE", Value: 10},
	}, e.Members())
}

func TestParse_CaseInsensitiveEnumName(t *testing.T) {
	e, err := Parse(sampleProto, "holopokemontype", "")
	require.NoError(t, err)
	assert.Equal(t, 3, e.Len())
}

func TestParse_ScopedToMessage(t *testing.T) {
	e, err := Parse(sampleProto, "Type", "QuestRewardProto")
	require.NoError(t, err)
	assert.Equal(t, 3, e.Get("STARDUST"))
	_, ok := e.Value("NOT_A_QUEST_TYPE")
	assert.False(t, ok)

	other, err := Parse(sampleProto, "Type", "PokemonDisplayProto")
	require.NoError(t, err)
	assert.Equal(t, 7, other.Get("NOT_A_QUEST_TYPE"))
}

func TestParse_MissingMessageIsEmpty(t *testing.T) {
	e, err := Parse(sampleProto, "Type", "NoSuchMessage")
	require.NoError(t, err)
	assert.True(t, e.Empty())
}

func TestParse_MissingEnumIsEmpty(t *testing.T) {
	e, err := Parse(sampleProto, "NoSuchEnum", "")
	require.NoError(t, err)
	assert.True(t, e.Empty())
	assert.Equal(t, 0, e.Get("ANYTHING"))
}

func TestParse_AliasFirstNameWinsInReverse(t *testing.T) {
	rev, err := ParseReverse(sampleProto, "Costume", "PokemonDisplayProto")
	require.NoError(t, err)
	assert.Equal(t, "ANNIVERSARY", rev[2])
	assert.Equal(t, "UNSET", rev[0])
}

func TestParse_MalformedLine(t *testing.T) {
	text := "enum Broken {\n\tGOOD = 1;\n\tBAD 2;\n}\n"
	_, err := Parse(text, "Broken", "")
	require.Error(t, err)
	var lineErr *LineError
	require.True(t, errors.As(err, &lineErr))
	assert.Equal(t, "Broken", lineErr.Enum)
	assert.Equal(t, "BAD 2", lineErr.Text)
	assert.Equal(t, 3, lineErr.Line)
}

func TestParse_OneLineMalformedStatement(t *testing.T) {
	_, err := Parse("enum Foo { A = 1; B 2; C = 3; }", "Foo", "")
	var lineErr *LineError
	require.ErrorAs(t, err, &lineErr)
	assert.Equal(t, "B 2", lineErr.Text)
	assert.Equal(t, 1, lineErr.Line)
}

func TestParse_StatementsAcrossLines(t *testing.T) {
	text := "enum Foo {\n  A = 1; B = 2; // two on a line\n  C =\n    3;\n  D = 4\n}"
	e, err := Parse(text, "Foo", "")
	require.NoError(t, err)
	assert.Equal(t, []Member{{"A", 1}, {"B", 2}, {"C", 3}, {"D", 4}}, e.Members())
}

func TestParse_NonIntegerValue(t *testing.T) {
	text := "enum Broken { A = one; }"
	_, err := Parse(text, "Broken", "")
	var lineErr *LineError
	require.ErrorAs(t, err, &lineErr)
	assert.Error(t, lineErr.Unwrap())
}

func TestParse_FieldOptionsIgnored(t *testing.T) {
	text := "enum Flags {\n  OLD = 1 [deprecated = true];\n  NEW = 0x2;\n}"
	e, err := Parse(text, "Flags", "")
	require.NoError(t, err)
	assert.Equal(t, 1, e.Get("OLD"))
	assert.Equal(t, 2, e.Get("NEW"))
}

func TestEnum_Match(t *testing.T) {
	e, err := Parse(sampleProto, "HoloPokemonType", "")
	require.NoError(t, err)

	byName, ok := e.Match("pokemon_type_fire")
	require.True(t, ok)
	byValue, ok := e.Match(10)
	require.True(t, ok)
	byFloat, ok := e.Match(float64(10))
	require.True(t, ok)
	byMember, ok := e.Match(Member{Value: 10})
	require.True(t, ok)

	assert.Equal(t, byName, byValue)
	assert.Equal(t, byName, byFloat)
	assert.Equal(t, byName, byMember)

	_, ok = e.Match("POKEMON_TYPE_WATER")
	assert.False(t, ok)
}

func TestEnum_MemberUnknownValueKeepsValue(t *testing.T) {
	e, err := Parse(sampleProto, "HoloPokemonType", "")
	require.NoError(t, err)
	m := e.Member(99)
	assert.Equal(t, 99, m.Value)
	assert.Equal(t, "99", m.String())
}

// TestParse_RoundTrip verifies that any well-formed enum embedded in arbitrary
// surrounding text parses back to exactly its entries, in both directions.
func TestParse_RoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 20).Draw(rt, "entries")
		names := rapid.SliceOfNDistinct(
			rapid.StringMatching(`[A-Z][A-Z0-9_]{0,12}`), n, n, rapid.ID[string],
		).Draw(rt, "names")
		values := rapid.SliceOfNDistinct(rapid.IntRange(-1000, 100000), n, n, rapid.ID[int]).Draw(rt, "values")
		prefix := rapid.StringMatching(`[a-z ;=\n]{0,40}`).Draw(rt, "prefix")
		suffix := rapid.StringMatching(`[a-z ;=\n]{0,40}`).Draw(rt, "suffix")

		var b strings.Builder
		b.WriteString(prefix)
		b.WriteString("\nenum Foo {\n")
		want := make(map[string]int, n)
		wantRev := make(map[int]string, n)
		for i := range names {
			fmt.Fprintf(&b, "\t%s = %d;\n", names[i], values[i])
			want[names[i]] = values[i]
			wantRev[values[i]] = names[i]
		}
		b.WriteString("}\n")
		b.WriteString(suffix)

		e, err := Parse(b.String(), "Foo", "")
		require.NoError(rt, err)
		assert.Equal(rt, want, e.Names())
		assert.Equal(rt, wantRev, e.Values())
	})
}

func TestParse_SimpleRoundTrip(t *testing.T) {
	text := "some preamble\nenum Foo { A = 1; B = 2; }\ntrailing"
	e, err := Parse(text, "Foo", "")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"A": 1, "B": 2}, e.Names())
	assert.Equal(t, map[int]string{1: "A", 2: "B"}, e.Values())
}
