package flatten

import (
	"encoding/json"
	"testing"

	"github.com/matryer/is"
)

func TestScalarOnlyObjectYieldsSingleRootRow(t *testing.T) {
	is := is.New(t)

	tables := Flatten(decode(t, `{"name":"the clan","trophies":1234,"open":true}`))

	is.Equal(len(tables), 1)

	root := tables["root"]
	is.Equal(root.Len(), 1)

	row := root.Rows()[0]
	is.Equal(row["name"], "the clan")
	is.Equal(row["trophies"], float64(1234))
	is.Equal(row["open"], true)
}

func TestArrayFieldBecomesItsOwnTable(t *testing.T) {
	is := is.New(t)

	tables := Flatten(decode(t, `{
		"name": "the clan",
		"memberList": [
			{"name": "alfa", "trophies": 5000},
			{"name": "beta", "trophies": 4500},
			{"name": "gamma", "trophies": 4000}
		]
	}`))

	is.Equal(len(tables), 2)

	members := tables["root.memberList"]
	is.Equal(members.Len(), 3)

	root := tables["root"]
	is.Equal(root.Len(), 1)
	is.Equal(root.Rows()[0]["name"], "the clan")
	_, hasMembers := root.Rows()[0]["memberList"]
	is.True(!hasMembers) // nested field must not leak into the parent row
}

func TestRowOrderFollowsArrayOrder(t *testing.T) {
	is := is.New(t)

	tables := Flatten(decode(t, `{"items":[{"n":"first"},{"n":"second"},{"n":"third"}]}`))

	rows := tables["root.items"].Rows()
	is.Equal(rows[0]["n"], "first")
	is.Equal(rows[1]["n"], "second")
	is.Equal(rows[2]["n"], "third")
}

func TestDeepNestingProducesDotJoinedTableNames(t *testing.T) {
	is := is.New(t)

	tables := Flatten(decode(t, `{"a":{"b":{"c":{"value":42}}}}`))

	is.Equal(len(tables), 1)

	nested, ok := tables["root.a.b.c"]
	is.True(ok) // table name should match the exact nesting path
	is.Equal(nested.Rows()[0]["value"], float64(42))
}

func TestObjectWithoutScalarFieldsProducesNoOwnRow(t *testing.T) {
	is := is.New(t)

	tables := Flatten(decode(t, `{"wrapper":{"inner":{"value":1}}}`))

	is.Equal(len(tables), 1)

	_, ok := tables["root"]
	is.True(!ok)
	_, ok = tables["root.wrapper"]
	is.True(!ok)
}

func TestTopLevelScalarIsDropped(t *testing.T) {
	is := is.New(t)

	tables := Flatten(decode(t, `42`))

	is.Equal(len(tables), 0)
}

func TestTopLevelArrayFillsRootTable(t *testing.T) {
	is := is.New(t)

	tables := Flatten(decode(t, `[{"n":1},{"n":2}]`))

	is.Equal(len(tables), 1)
	is.Equal(tables["root"].Len(), 2)
}

func TestRowsInOneBucketMayHaveDifferentFields(t *testing.T) {
	is := is.New(t)

	tables := Flatten(decode(t, `{"items":[{"a":1},{"b":2}]}`))

	items := tables["root.items"]
	is.Equal(items.Len(), 2)
	is.Equal(items.Columns(), []string{"a", "b"})
}

func TestFlatteningIsDeterministic(t *testing.T) {
	is := is.New(t)

	const doc = `{"z":{"v":1},"a":{"v":2},"items":[{"x":"y"}],"scalar":"s"}`

	first := Flatten(decode(t, doc))
	second := Flatten(decode(t, doc))

	is.Equal(len(first), len(second))
	for name, dataset := range first {
		other, ok := second[name]
		is.True(ok)
		is.Equal(dataset.Columns(), other.Columns())
		is.Equal(dataset.Rows(), other.Rows())
	}
}

func decode(t *testing.T, body string) any {
	t.Helper()

	var doc any
	err := json.Unmarshal([]byte(body), &doc)
	if err != nil {
		t.Fatalf("failed to decode test document: %v", err)
	}

	return doc
}
