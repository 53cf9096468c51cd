package introspect

import (
	"errors"
	"fmt"
)

// errTableNotFound is returned when a table listed by the catalog yields no
// metadata, typically because it was dropped after enumeration.
var errTableNotFound = errors.New("table not found in catalog")

// ConnectionError reports that the database could not be opened: the path
// does not exist, the file is not a database, or the server refused the
// connection.
type ConnectionError struct {
	DSN string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to open database %s: %v", redactDSN(e.DSN), e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// MetadataQueryError reports a failed catalog query. Table is empty when the
// table enumeration itself failed.
type MetadataQueryError struct {
	Table     string
	Operation string
	Err       error
}

func (e *MetadataQueryError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("failed to get %s: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("failed to get %s for table %s: %v", e.Operation, e.Table, e.Err)
}

func (e *MetadataQueryError) Unwrap() error {
	return e.Err
}
