package testsupport

import (
	"fmt"
	"net/url"
)

// SQLiteMemoryDSN returns a shared-cache in-memory sqlite DSN private to name,
// so parallel tests do not see each other's tables.
func SQLiteMemoryDSN(name string) string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", url.PathEscape(name))
}
