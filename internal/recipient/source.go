// Package recipient resolves which device tokens a notification
// targets. The service core only sees the Source interface; the
// directory of users and devices behind it is an external concern.
package recipient

import "context"

// Source produces the device tokens of a target country in pages.
// A page shorter than pageSize (including empty) signals the end of
// the recipient set.
type Source interface {
	ListTokens(ctx context.Context, countryID int64, pageSize, page int) ([]string, error)
}
