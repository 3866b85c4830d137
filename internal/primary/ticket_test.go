package primary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siantika/dispenserd/internal/domain"
	"github.com/siantika/dispenserd/internal/ean"
)

func TestBuildTicketNumberMatchesS1Literal(t *testing.T) {
	// S1: ticket_number begins "89902" + "0000011" + checksum digit.
	num, err := buildTicketNumber(2, 11)
	require.NoError(t, err)
	assert.Equal(t, "899020000011", num[:12])
	assert.Len(t, num, 13)
	assert.True(t, ean.Validate(num))
}

func TestBuildTicketNumberRejectsOversizedServiceID(t *testing.T) {
	_, err := buildTicketNumber(100, 1)
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrCodeInvalidTicketNumber))
}

func TestBuildTicketNumberRejectsOversizedSequence(t *testing.T) {
	_, err := buildTicketNumber(1, 10_000_000)
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrCodeInvalidTicketNumber))
}

func TestTicketSequenceRoundTripsBuildTicketNumber(t *testing.T) {
	num, err := buildTicketNumber(5, 42)
	require.NoError(t, err)
	seq, err := ticketSequence(num)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), seq)
}
