package mailbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	s, err := Parse(" Inbox ")
	require.NoError(t, err)
	assert.Equal(t, Inbox, s)

	_, err = Parse("outbox")
	assert.ErrorIs(t, err, ErrUnknownSection)
}

func TestQueryMapping(t *testing.T) {
	assert.Equal(t, "in:inbox", Inbox.Query())
	assert.Equal(t, "is:starred", Starred.Query())
	assert.Equal(t, "in:trash", Trash.Query())
	assert.Empty(t, Metrics.Query())
	assert.Empty(t, All.Query())
}

func TestEverySectionHasAQueryEntry(t *testing.T) {
	for _, s := range Sections {
		assert.True(t, s.Valid(), s)
	}
}

func TestPageSize(t *testing.T) {
	assert.Equal(t, int64(20), Inbox.PageSize())
	assert.Equal(t, int64(100), Metrics.PageSize())
	assert.Equal(t, int64(100), All.PageSize())
	assert.Greater(t, All.PageSize(), Sent.PageSize())
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Starred", Starred.Title())
}
