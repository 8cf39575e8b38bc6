package repository

import (
	"os"
	"regexp"
	"testing"

	"github.com/stemsi/classwork-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Rows written outside the service must get the same defaults the service applies.
func TestAssignmentColumnDefaultsMatchModel(t *testing.T) {
	ddl, err := os.ReadFile("../../migrations/000002_assignments.up.sql")
	require.NoError(t, err)

	columnDefault := func(column string) string {
		re := regexp.MustCompile(`(?m)^\s*` + column + `\s+\S+\s+NOT NULL DEFAULT '(\w+)'`)
		m := re.FindSubmatch(ddl)
		require.NotNil(t, m, "no default for %s", column)
		return string(m[1])
	}

	assert.Equal(t, string(model.DifficultyMedium), columnDefault("difficulty"))
	assert.Equal(t, string(model.AssignmentStatusDraft), columnDefault("status"))
}
