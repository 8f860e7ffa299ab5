package middleware

import tele "gopkg.in/telebot.v4"

// AdminOptions name the single admin. OnReject answers everyone else; when
// nil the update is dropped silently.
type AdminOptions struct {
	AdminID  int64
	OnReject tele.HandlerFunc
}

// AdminOnlyMiddleware lets only the admin through. An AdminID of zero locks
// the handler for everybody.
func AdminOnlyMiddleware(opts AdminOptions) tele.MiddlewareFunc {
	reject := opts.OnReject
	if reject == nil {
		reject = func(tele.Context) error { return nil }
	}
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if u := c.Sender(); opts.AdminID == 0 || u == nil || u.ID != opts.AdminID {
				return reject(c)
			}
			return next(c)
		}
	}
}
