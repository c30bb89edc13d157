package tightdb

import (
	"testing"
)

func TestTable_InsertRemoveShiftsRows(t *testing.T) {
	g := New(Options{})
	phones := must(g.AddTable("phones", phoneSpec))
	a := must(phones.Add("home", "1"))
	c := must(phones.Add("work", "3"))
	b := must(phones.Insert(1, "mobile", "2"))

	deepEqual(t, must(a.Index()), 0)
	deepEqual(t, must(b.Index()), 1)
	deepEqual(t, must(c.Index()), 2)

	noerr(t, phones.Remove(0))
	deepEqual(t, a.IsValid(), false)
	deepEqual(t, must(b.Index()), 0)
	deepEqual(t, must(c.Index()), 1)
	deepEqual(t, must(c.GetString("number")), "3")

	noerr(t, phones.RemoveLast())
	deepEqual(t, c.IsValid(), false)
	deepEqual(t, must(phones.Size()), 1)
	deepEqual(t, must(phones.IsEmpty()), false)
}

func TestTable_Bounds(t *testing.T) {
	g := New(Options{})
	phones := must(g.AddTable("phones", phoneSpec))

	_, err := phones.Get(0)
	isErr(t, err, ErrOutOfRange)
	_, err = phones.Insert(1, "home", "1")
	isErr(t, err, ErrOutOfRange)
	_, err = phones.Insert(-1, "home", "1")
	isErr(t, err, ErrOutOfRange)
	isErr(t, phones.Remove(0), ErrOutOfRange)
	isErr(t, phones.RemoveLast(), ErrOutOfRange)

	must(phones.Insert(0, "home", "1"))
	_, err = phones.Get(1)
	isErr(t, err, ErrOutOfRange)
	_, err = phones.Get(-1)
	isErr(t, err, ErrOutOfRange)
}

func TestTable_SchemaMismatch(t *testing.T) {
	g := New(Options{})
	employees := must(g.AddTable("employees", employeeSpec))

	_, err := employees.Add("John", "Doe")
	isErr(t, err, ErrSchemaMismatch)
	_, err = employees.Add("John", "Doe", "lots", true, nil, birthdate, nil)
	isErr(t, err, ErrSchemaMismatch)
	_, err = employees.Add(nil, "Doe", 1, true, nil, birthdate, nil)
	isErr(t, err, ErrSchemaMismatch)
	deepEqual(t, must(employees.Size()), 0)

	row := must(employees.Add("John", "Doe", int32(1), true, []byte{1}, birthdate, nil))
	isErr(t, employees.Set(0, "salary", "x"), ErrSchemaMismatch)
	isErr(t, employees.Set(0, "nope", 1), ErrColumnNotFound)
	noerr(t, employees.Set(0, "salary", uint8(7)))
	deepEqual(t, must(row.GetInt("salary")), int64(7))
}

func TestTable_ClearKeepsHandle(t *testing.T) {
	g := New(Options{})
	phones := must(g.AddTable("phones", phoneSpec))
	row := must(phones.Add("home", "1"))
	view := must(phones.Where().EqualTo("type", "home").FindAll())

	noerr(t, phones.Clear())
	deepEqual(t, phones.IsValid(), true)
	deepEqual(t, must(phones.IsEmpty()), true)
	deepEqual(t, row.IsValid(), false)
	deepEqual(t, view.IsValid(), false)

	must(phones.Add("work", "2"))
	deepEqual(t, row.IsValid(), false)
	deepEqual(t, must(phones.Size()), 1)
}

func TestTable_String(t *testing.T) {
	g := New(Options{})
	phones := must(g.AddTable("phones", phoneSpec))
	deepEqual(t, phones.String(), "phones")
	deepEqual(t, phones.Where().EqualTo("type", "home").Or().GreaterThan("number", "5").String(),
		"phones where type == home or number > 5")
	noerr(t, g.RemoveTable("phones"))
	deepEqual(t, phones.String(), "phones<invalid>")
}
