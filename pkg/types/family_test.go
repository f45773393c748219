package types

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentLogCapsAtFiveNewestFirst(t *testing.T) {
	var log CommentLog
	for i := 1; i <= 10; i++ {
		log = log.Prepend(CommentEntry{Tag: "✏️", Text: fmt.Sprintf("entry %d", i)})
	}

	require.Len(t, log, CommentLogCap)
	assert.Equal(t, "entry 10", log[0].Text)
	assert.Equal(t, "entry 6", log[CommentLogCap-1].Text)
}

func TestAppendCommentPrepends(t *testing.T) {
	record := &FamilyRecord{}
	record.AppendComment("📥", "first")
	record.AppendComment("✅", "second")

	require.Len(t, record.CommentLog, 2)
	assert.Equal(t, "second", record.CommentLog[0].Text)
	assert.Equal(t, "✅", record.CommentLog[0].Tag)
	assert.False(t, record.CommentLog[0].At.IsZero())
}

func TestFamilyStatusValid(t *testing.T) {
	assert.True(t, FamilyStatusValidated.Valid())
	assert.False(t, FamilyStatus("BOGUS").Valid())
}
