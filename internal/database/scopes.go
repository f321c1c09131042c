package database

import (
	"strings"

	"gorm.io/gorm"

	"github.com/yukikurage/learning-admin-api/internal/utils"
)

// likeEscape is portable across sqlite, postgres and mysql (unlike backslash).
const likeEscape = "!"

// Paginate applies pagination to a GORM query
func Paginate(page, limit int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page < 1 || limit < 1 {
			return db
		}
		p := utils.NormalizePagination(page, limit, limit)
		return db.Offset(p.Offset).Limit(p.Limit)
	}
}

// Search restricts a query to rows where any of columns contains term,
// ignoring case. An empty term leaves the query untouched.
func Search(term string, columns ...string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		term = strings.TrimSpace(term)
		if term == "" || len(columns) == 0 {
			return db
		}
		pattern := "%" + EscapeLike(strings.ToLower(term)) + "%"

		clauses := make([]string, len(columns))
		args := make([]interface{}, len(columns))
		for i, col := range columns {
			clauses[i] = "LOWER(" + col + ") LIKE ? ESCAPE '" + likeEscape + "'"
			args[i] = pattern
		}
		return db.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
}

// EscapeLike neutralises LIKE wildcards in s.
func EscapeLike(s string) string {
	r := strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")
	return r.Replace(s)
}
