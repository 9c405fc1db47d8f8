package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidStatus(t *testing.T) {
	for _, s := range []TicketStatus{
		TicketStatusNew, TicketStatusProcessed, TicketStatusInProgress,
		TicketStatusScam, TicketStatusPaid, TicketStatusClosed,
	} {
		assert.True(t, ValidStatus(s), string(s))
	}
	assert.False(t, ValidStatus(""))
	assert.False(t, ValidStatus("archived"))
	assert.False(t, ValidStatus("NEW"))
}
