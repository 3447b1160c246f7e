package middleware

import tele "gopkg.in/telebot.v4"

// OperatorOptions defines how operator-only checks should behave.
type OperatorOptions struct {
	// Operators is the immutable set of privileged user IDs.
	Operators []int64
	// OnReject, when set, runs for rejected callers. The default is to stay
	// silent so the command surface is not disclosed to regular users.
	OnReject tele.HandlerFunc
}

// Allowed reports whether id belongs to the operator set.
func (o OperatorOptions) Allowed(id int64) bool {
	for _, op := range o.Operators {
		if op == id {
			return true
		}
	}
	return false
}

// OperatorOnlyMiddleware ensures that only configured operators can invoke
// downstream handlers. Everyone else is ignored without a reply.
func OperatorOnlyMiddleware(opts OperatorOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil || !opts.Allowed(sender.ID) {
				if opts.OnReject != nil {
					return opts.OnReject(c)
				}
				return nil
			}
			return next(c)
		}
	}
}
