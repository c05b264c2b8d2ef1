package repository

import (
	"database/sql"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// GenerateReferenceCode produces a short human readable reference like
// "PH-48219" for proposals and contracts. Uniqueness is enforced by the
// table constraint, callers retry on conflict.
func GenerateReferenceCode(prefix string) string {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	number := rng.Intn(90000) + 10000

	return fmt.Sprintf("%s-%d", strings.ToUpper(prefix), number)
}

// NextEstimateVersion returns the version number the next saved estimate
// for a project should carry.
func NextEstimateVersion(db *sql.DB, projectID int) (int, error) {
	var current sql.NullInt64
	err := db.QueryRow(`SELECT MAX(version) FROM estimates WHERE project_id = $1`, projectID).Scan(&current)
	if err != nil {
		return 0, fmt.Errorf("failed to read estimate versions: %v", err)
	}
	return int(current.Int64) + 1, nil
}
