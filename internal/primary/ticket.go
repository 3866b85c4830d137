package primary

import (
	"fmt"

	"github.com/siantika/dispenserd/internal/domain"
	"github.com/siantika/dispenserd/internal/ean"
)

const ticketPrefix = "899"

// buildTicketNumber assembles the EAN-13 ticket number from the fixed
// "899" prefix, a zero-padded 2-digit service id, and a zero-padded
// 7-digit sequence, per §4.1. Width overflow on either field fails with
// InvalidTicketNumber.
func buildTicketNumber(serviceID int, sequence uint64) (string, error) {
	if serviceID < 0 || serviceID > 99 {
		return "", domain.New("primary.buildTicketNumber", domain.ErrCodeInvalidTicketNumber,
			fmt.Sprintf("service id %d overflows 2-digit width", serviceID))
	}
	if sequence > 9_999_999 {
		return "", domain.New("primary.buildTicketNumber", domain.ErrCodeInvalidTicketNumber,
			fmt.Sprintf("sequence %d overflows 7-digit width", sequence))
	}
	first12 := fmt.Sprintf("%s%02d%07d", ticketPrefix, serviceID, sequence)
	return ean.Encode(first12)
}
