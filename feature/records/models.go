package records

// recordRow is the 'registry_records' table, one row per registry type.
type recordRow struct {
	TypeName  string `gorm:"column:type_name;primaryKey;size:128"`
	GroupName string `gorm:"column:group_name;size:255"`
}

// TableName overrides the table name.
func (recordRow) TableName() string {
	return "registry_records"
}

// entryRow is the 'registry_entries' table holding the flat entry map.
type entryRow struct {
	TypeName  string `gorm:"column:type_name;primaryKey;size:128"`
	RecordKey string `gorm:"column:record_key;primaryKey;size:32"`
	Value     string `gorm:"column:value;type:text"`
}

// TableName overrides the table name.
func (entryRow) TableName() string {
	return "registry_entries"
}

// labelRow is the 'registry_labels' table holding the ordered label table.
type labelRow struct {
	TypeName      string `gorm:"column:type_name;primaryKey;size:128"`
	Name          string `gorm:"column:name;primaryKey;size:255"`
	StartingIndex int    `gorm:"column:starting_index"`
	Position      int    `gorm:"column:position"`
}

// TableName overrides the table name.
func (labelRow) TableName() string {
	return "registry_labels"
}

// schema lists the columns VerifySchema expects per table.
var schema = map[string][]string{
	"registry_records": {"type_name", "group_name"},
	"registry_entries": {"type_name", "record_key", "value"},
	"registry_labels":  {"type_name", "name", "starting_index", "position"},
}
