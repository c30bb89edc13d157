package cli

import (
	"fmt"

	"github.com/andreyvit/tightdb"
	"gopkg.in/yaml.v3"
)

// SchemaFile is the YAML layout accepted by `tightdb create`:
//
//	tables:
//	  - name: employees
//	    columns:
//	      - {name: firstName, type: string}
//	      - name: phones
//	        type: table
//	        columns:
//	          - {name: type, type: string}
//	          - {name: number, type: string}
type SchemaFile struct {
	Tables []TableDef `yaml:"tables"`
}

type TableDef struct {
	Name    string      `yaml:"name"`
	Columns []ColumnDef `yaml:"columns"`
}

type ColumnDef struct {
	Name     string      `yaml:"name"`
	Type     string      `yaml:"type"`
	Nullable bool        `yaml:"nullable,omitempty"`
	Columns  []ColumnDef `yaml:"columns,omitempty"`
}

func ParseSchema(data []byte) (*SchemaFile, error) {
	var sf SchemaFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	if len(sf.Tables) == 0 {
		return nil, fmt.Errorf("schema: no tables defined")
	}
	for _, td := range sf.Tables {
		if td.Name == "" {
			return nil, fmt.Errorf("schema: table without a name")
		}
	}
	return &sf, nil
}

// Spec converts the definition into a tightdb spec.
func (td *TableDef) Spec() (*tightdb.Spec, error) {
	spec, err := buildSpec(td.Columns)
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", td.Name, err)
	}
	return spec, nil
}

func buildSpec(defs []ColumnDef) (*tightdb.Spec, error) {
	cols := make([]tightdb.Column, len(defs))
	for i, cd := range defs {
		ct, err := tightdb.ParseColumnType(cd.Type)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", cd.Name, err)
		}
		cols[i] = tightdb.Column{Name: cd.Name, Type: ct, Nullable: cd.Nullable}
		if ct == tightdb.TypeTable {
			sub, err := buildSpec(cd.Columns)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", cd.Name, err)
			}
			cols[i].Subtable = sub
		}
	}
	return tightdb.NewSpec(cols...)
}
