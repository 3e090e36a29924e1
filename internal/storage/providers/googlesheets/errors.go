package googlesheets

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"

	"github.com/mrlokans/mazo/internal/apperr"
	"github.com/mrlokans/mazo/internal/storage"
)

// translate maps a Sheets API failure onto the apperr taxonomy.
func translate(op, table string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Upstream(op, err, true)
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch {
		case gerr.Code == http.StatusTooManyRequests:
			return apperr.RateLimited(op, err)
		case gerr.Code >= http.StatusInternalServerError:
			return apperr.Upstream(op, err, true)
		case gerr.Code == http.StatusBadRequest && strings.Contains(gerr.Message, "Unable to parse range"):
			return fmt.Errorf("%s %s: %w", op, table, storage.ErrTableNotFound)
		default:
			return apperr.Upstream(op, err, false)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperr.Upstream(op, err, true)
	}
	return apperr.Upstream(op, err, false)
}

func isDuplicateSheet(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusBadRequest && strings.Contains(gerr.Message, "already exists")
}
