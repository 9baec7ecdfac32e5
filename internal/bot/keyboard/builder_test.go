package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chanport/channels-bot/internal/domain"
)

func testGroups(n int) []domain.Group {
	groups := make([]domain.Group, 0, n)
	for i := 0; i < n; i++ {
		groups = append(groups, domain.Group{
			Name: string(rune('A' + i)),
			Link: "https://t.me/" + string(rune('a'+i)),
		})
	}
	return groups
}

func TestChannelGrid_TwoColumns(t *testing.T) {
	kb := NewBuilder(nil)

	markup := kb.ChannelGrid(testGroups(5), "make_payment", "refresh")

	// Three channel rows (2+2+1) plus the two action rows.
	require.Len(t, markup.InlineKeyboard, 5)

	assert.Len(t, markup.InlineKeyboard[0], 2)
	assert.Len(t, markup.InlineKeyboard[1], 2)
	assert.Len(t, markup.InlineKeyboard[2], 1)

	assert.Equal(t, "A", markup.InlineKeyboard[0][0].Text)
	assert.Equal(t, "https://t.me/a", markup.InlineKeyboard[0][0].URL)
	assert.Equal(t, "E", markup.InlineKeyboard[2][0].Text)

	paymentRow := markup.InlineKeyboard[3]
	require.Len(t, paymentRow, 1)
	assert.Equal(t, LabelMakePayment, paymentRow[0].Text)
	assert.Equal(t, "make_payment", paymentRow[0].Data)

	refreshRow := markup.InlineKeyboard[4]
	require.Len(t, refreshRow, 1)
	assert.Equal(t, LabelRefresh, refreshRow[0].Text)
	assert.Equal(t, "refresh", refreshRow[0].Data)
}

func TestChannelGrid_Empty(t *testing.T) {
	kb := NewBuilder(nil)

	markup := kb.ChannelGrid(nil, "make_payment", "refresh")

	// Only the action rows remain.
	require.Len(t, markup.InlineKeyboard, 2)
	assert.Equal(t, LabelMakePayment, markup.InlineKeyboard[0][0].Text)
	assert.Equal(t, LabelRefresh, markup.InlineKeyboard[1][0].Text)
}

func TestAdminMenu_Layout(t *testing.T) {
	kb := NewBuilder(nil)

	markup := kb.AdminMenu()

	require.Len(t, markup.ReplyKeyboard, 4)
	for _, row := range markup.ReplyKeyboard {
		assert.Len(t, row, 2)
	}

	assert.Equal(t, LabelAddGroup, markup.ReplyKeyboard[0][0].Text)
	assert.Equal(t, LabelExit, markup.ReplyKeyboard[3][1].Text)
	assert.True(t, markup.ResizeKeyboard)
}

func TestRemoveGroupMenu_AppendsBackRow(t *testing.T) {
	kb := NewBuilder(nil)

	markup := kb.RemoveGroupMenu(testGroups(3))

	// Two group rows (2+1) plus the back row.
	require.Len(t, markup.ReplyKeyboard, 3)
	assert.Len(t, markup.ReplyKeyboard[0], 2)
	assert.Len(t, markup.ReplyKeyboard[1], 1)

	backRow := markup.ReplyKeyboard[2]
	require.Len(t, backRow, 1)
	assert.Equal(t, LabelBackToMenu, backRow[0].Text)
	assert.True(t, markup.OneTimeKeyboard)
}

func TestRemoveMenu(t *testing.T) {
	kb := NewBuilder(nil)

	assert.True(t, kb.RemoveMenu().RemoveKeyboard)
}
