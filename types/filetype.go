package types

// NameRule derives a display-string field from an id field: Field = text(record[Key] + Offset).
type NameRule struct {
	Field  string
	Key    string
	Offset int64
}

// DefaultNames is what most entity files use: the name string id lives in name_id_1.
var DefaultNames = []NameRule{{Field: "name", Key: "name_id_1"}}

// FileType binds a schema to one known data file and its known-good reference values.
type FileType struct {
	Filename         string
	Location         string // directory under the game dir, normally GDATA
	Description      string
	Schema           *Schema
	ExpectedHeader   Header
	ExpectedChecksum string // md5 hex of the file as shipped
	Names            []NameRule
}
