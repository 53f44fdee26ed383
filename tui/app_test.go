package tui

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bassamadnan/lumimail/fetch"
	"github.com/bassamadnan/lumimail/gmail"
	"github.com/bassamadnan/lumimail/mailbox"
)

type memoryPrefs struct{ section mailbox.Section }

func (p *memoryPrefs) LastSection() mailbox.Section { return p.section }

func (p *memoryPrefs) SetLastSection(s mailbox.Section) error {
	p.section = s
	return nil
}

func TestNewAppStartsOnLastSection(t *testing.T) {
	a := NewApp(context.Background(), &fakeMailbox{}, &memoryPrefs{section: mailbox.Starred}, nil)

	assert.Equal(t, mailbox.Starred, a.section)
	assert.True(t, a.previewPane.IsShowingWelcome())
	assert.Contains(t, a.statusBar.GetText(true), "Initializing")

	for _, s := range a.sectionList.sections {
		assert.NotEqual(t, mailbox.Metrics, s)
	}
}

func TestApplyResultPages(t *testing.T) {
	a := NewApp(context.Background(), &fakeMailbox{}, &memoryPrefs{section: mailbox.Inbox}, nil)

	first := corpus()
	a.applyResult(mailbox.Inbox, "", first, nil)
	assert.Len(t, a.emailListView.Emails(), 2)
	assert.Equal(t, "more", a.nextPageToken)
	assert.False(t, a.previewPane.IsShowingWelcome())
	assert.Contains(t, a.statusBar.GetText(true), "Inbox: 2 emails (cached)")

	second := &fetch.Result{Emails: []gmail.Email{{ID: "c", Subject: "Older"}}}
	a.applyResult(mailbox.Inbox, "more", second, nil)
	assert.Len(t, a.emailListView.Emails(), 3)
	assert.Equal(t, "c", a.emailListView.Emails()[2].ID)
	assert.Empty(t, a.nextPageToken)

	a.applyResult(mailbox.Sent, "", &fetch.Result{Degraded: true, FromCache: true}, nil)
	assert.Equal(t, mailbox.Sent, a.section)
	assert.Empty(t, a.emailListView.Emails())
	assert.True(t, a.previewPane.IsShowingWelcome())
	assert.Contains(t, a.statusBar.GetText(true), "offline, cached")
}

func TestApplyResultError(t *testing.T) {
	a := NewApp(context.Background(), &fakeMailbox{}, &memoryPrefs{section: mailbox.Inbox}, nil)
	a.applyResult(mailbox.Inbox, "", corpus(), nil)

	a.loading = true
	a.applyResult(mailbox.Trash, "", nil, errors.New("gmail down"))
	assert.False(t, a.loading)
	assert.Equal(t, mailbox.Inbox, a.section, "a failed load keeps the current section")
	assert.Len(t, a.emailListView.Emails(), 2)
	assert.Contains(t, a.statusBar.GetText(true), "gmail down")
}
