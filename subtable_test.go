package tightdb

import (
	"testing"
)

func TestSubtable(t *testing.T) {
	g := setup(t)
	employees := must(g.AddTable("employees", employeeSpec))
	must(employees.Add("John", "Doe", 10000, true, nil, birthdate, [][]any{{"home", "123"}}))
	must(employees.Add("Johny", "B. Good", 20000, false, nil, birthdate, [][]any{{"mobile", "456"}, {"work", "789"}}))
	must(employees.Add("Nikolche", "Mihajlovski", 30000, true, nil, birthdate, nil))

	employee := must(employees.Get(0))
	phones := must(employee.Subtable("phones"))
	deepEqual(t, must(phones.Size()), 1)

	must(phones.Add("mobile", "111"))
	deepEqual(t, must(phones.Size()), 2)

	must(phones.Add("mobile", "222"))
	deepEqual(t, must(phones.Size()), 3)

	must(phones.Insert(1, "home", "333"))
	deepEqual(t, must(phones.Size()), 4)

	deepEqual(t, must(phones.Where().EqualTo("type", "mobile").Count()), 2)
	deepEqual(t, must(phones.Where().EqualTo("type", "home").Count()), 2)
	deepEqual(t, must(phones.Where().EqualTo("number", "111").Count()), 1)
	deepEqual(t, must(phones.Where().EqualTo("number", "123").Count()), 1)
	deepEqual(t, must(phones.Where().EqualTo("number", "xxx").Count()), 0)

	q := phones.Where().
		EqualTo("number", "111").
		NotEqualTo("number", "wrong").
		EqualTo("type", "mobile").
		NotEqualTo("type", "wrong")
	deepEqual(t, must(q.Count()), 1)

	view := must(q.FindAll())
	deepEqual(t, must(view.Size()), 1)
	phone := must(view.Get(0))
	deepEqual(t, must(phone.GetString("type")), "mobile")
	deepEqual(t, must(phone.GetString("number")), "111")

	first := must(q.FindFirst())
	deepEqual(t, must(first.Index()), 2)
	isnil(t, must(q.FindNext()))

	deepEqual(t, must(q.Clear()), 1)
	deepEqual(t, must(phones.Size()), 3)
	deepEqual(t, phone.IsValid(), false)

	// a second handle to the same cell sees the same rows
	alias := must(must(employees.Get(0)).Subtable("phones"))
	deepEqual(t, must(alias.Size()), 3)

	noerr(t, phones.Clear())
	deepEqual(t, must(phones.Size()), 0)
	deepEqual(t, must(alias.Size()), 0)

	// removing an unrelated sibling keeps the handle valid
	noerr(t, employees.Remove(2))
	deepEqual(t, phones.IsValid(), true)
	deepEqual(t, employee.IsValid(), true)

	noerr(t, employees.Clear())
	deepEqual(t, phones.IsValid(), false)
	deepEqual(t, alias.IsValid(), false)
	deepEqual(t, employee.IsValid(), false)
	deepEqual(t, employees.IsValid(), true)
	deepEqual(t, g.LiveTables(), 1)

	_, err := phones.Size()
	isErr(t, err, ErrInvalidHandle)
	_, err = employee.Get("firstName")
	isErr(t, err, ErrInvalidHandle)
	_, err = phones.Add("home", "000")
	isErr(t, err, ErrInvalidHandle)
}

func TestSubtable_IndependentCells(t *testing.T) {
	g := New(Options{})
	employees := must(g.AddTable("employees", employeeSpec))
	a := must(employees.Add("A", "A", 1, false, nil, birthdate, [][]any{{"home", "1"}}))
	b := must(employees.Add("B", "B", 2, false, nil, birthdate, [][]any{{"home", "2"}, {"work", "3"}}))

	pa := must(a.Subtable("phones"))
	pb := must(b.Subtable("phones"))
	must(pa.Add("mobile", "4"))
	noerr(t, pb.RemoveLast())

	deepEqual(t, must(pa.Size()), 2)
	deepEqual(t, must(pb.Size()), 1)
	deepEqual(t, pa.Name(), "employees.phones")
	deepEqual(t, pa.IsRoot(), false)
}

func TestSubtable_RemoveOwningRowFreesNested(t *testing.T) {
	teamSpec := DefineSpec(func(b *SpecBuilder) {
		b.String("name")
		b.Subtable("members", employeeSpec)
	})
	g := New(Options{})
	teams := must(g.AddTable("teams", teamSpec))
	must(teams.Add("core", [][]any{
		{"John", "Doe", 1, false, nil, birthdate, [][]any{{"home", "1"}}},
		{"Jane", "Doe", 2, true, nil, birthdate, [][]any{{"work", "2"}}},
	}))
	team := must(teams.Add("ops", nil))
	members := must(must(teams.Get(0)).Subtable("members"))
	nested := must(must(members.Get(1)).Subtable("phones"))
	deepEqual(t, nested.Name(), "teams.members.phones")
	deepEqual(t, g.LiveTables(), 5)

	s := must(teams.Stats())
	deepEqual(t, s, TableStats{Rows: 2, Subtables: 4, NestedRows: 4, MaxDepth: 2})

	noerr(t, teams.Remove(0))
	deepEqual(t, members.IsValid(), false)
	deepEqual(t, nested.IsValid(), false)
	deepEqual(t, team.IsValid(), true)
	deepEqual(t, must(team.Index()), 0)
	deepEqual(t, g.LiveTables(), 2)
}

func TestSubtable_SetRejected(t *testing.T) {
	g := New(Options{})
	employees := must(g.AddTable("employees", employeeSpec))
	row := must(employees.Add("John", "Doe", 1, false, nil, birthdate, nil))
	isErr(t, row.Set("phones", [][]any{{"home", "1"}}), ErrSchemaMismatch)
	_, err := row.Subtable("firstName")
	isErr(t, err, ErrSchemaMismatch)

	_, err = employees.Add("Bad", "Row", 1, false, nil, birthdate, [][]any{{"home"}})
	isErr(t, err, ErrSchemaMismatch)
	deepEqual(t, must(employees.Size()), 1)
	deepEqual(t, g.LiveTables(), 2)
}
