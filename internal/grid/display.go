package grid

import "strings"

// TablePrefix is the namespace the backend puts in front of table ids.
const TablePrefix = "admin_panel_db/"

// DisplayTitle turns a table id into a heading:
// "admin_panel_db/student_data" becomes "STUDENT DATA".
func DisplayTitle(id string) string {
	name := strings.TrimPrefix(id, TablePrefix)
	return strings.ToUpper(strings.Replace(name, "_", " ", 1))
}

// ColumnLabel turns a column name into a header label. Only the first
// underscore is replaced.
func ColumnLabel(column string) string {
	return strings.Replace(column, "_", " ", 1)
}
