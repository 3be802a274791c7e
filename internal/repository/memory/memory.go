// Package memory provides in-process implementations of the repository
// interfaces. They back the service when no POSTGRES_DSN is configured and
// the test suites. Not-found conditions surface as pgx.ErrNoRows so error
// mapping stays uniform with the postgres repositories.
package memory

import "time"

func now() time.Time {
	return time.Now().UTC()
}
