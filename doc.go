/*
Package tightdb implements an embedded, in-memory tabular store with nested
tables.

We implement:

1. Tables, ordered rows over a fixed column Spec. A column may itself hold a
table (a subtable), independent per row.

2. Queries, composable filters that count, find, aggregate, materialize
matches into Views, or remove them.

3. Handles (Table, Row, View) that stay usable while their storage exists and
report ErrInvalidHandle once it is gone.

4. Persistence of a whole Group to a Bolt file.

# Technical Details

**Arena.**
Every table, root or nested, lives in a slot of the group's arena. Handles
hold a slot number and the slot's generation. Freeing a slot bumps its
generation, so invalidation of any number of handles is O(1) and checking
validity never touches the handles themselves.

**Row keys.**
Each row gets a key from a per-table counter that is never reused. Row
handles and views store keys; a key→position map translates them back to
positions. Removing a row deletes its key, so handles to it fail instead of
silently reading a neighbour.

**Ownership.**
A subtable cell stores the slot of its child table. Removing a row (directly,
through a query, a view, or by clearing the table) frees the child slots of
that row recursively. Sibling rows and their subtables are not touched.

## Binary encoding

A committed group is stored in two Bolt buckets.

**meta**: format version (uvarint), group UUID (16 bytes), and the msgpack
list of root table names in creation order.

**tables**: one value per root table. Value header, then msgpack of the
table spec and rows (subtable rows inline), then the xxhash64 checksum of the
msgpack data.

**Value header**:
1. Flags (uvarint).
2. Format version (uvarint).
3. Data size (uvarint).
*/
package tightdb
