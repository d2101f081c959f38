package model

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

// Seq is unique per session, not globally: two sessions must both be able to
// start their transcript at seq 1.
func TestTurnSeqUniquenessIsScopedToSession(t *testing.T) {
	s, err := schema.Parse(&Turn{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	var idx *schema.Index
	for _, i := range s.ParseIndexes() {
		if i.Name == "idx_turns_session_seq" {
			idx = i
		}
	}
	require.NotNil(t, idx)
	assert.Equal(t, "UNIQUE", idx.Class)

	cols := make([]string, len(idx.Fields))
	for i, f := range idx.Fields {
		cols[i] = f.DBName
	}
	assert.Equal(t, []string{"session_id", "seq"}, cols)
}
