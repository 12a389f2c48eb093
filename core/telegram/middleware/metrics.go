package middleware

import (
	tele "gopkg.in/telebot.v4"
)

// metricsContext wraps tele.Context to count replies and sent documents.
type metricsContext struct{ tele.Context }

func (m metricsContext) incMessages(doc bool) {
	n := 0
	if v := m.Get("messages"); v != nil {
		if nv, ok := v.(int); ok {
			n = nv
		}
	}
	m.Set("messages", n+1)
	if doc {
		m.Set("doc", true)
	}
}

func sendsDocument(what interface{}) bool {
	_, ok := what.(*tele.Document)
	return ok
}

// Send proxies tele.Context.Send while updating message counters.
func (m metricsContext) Send(what interface{}, opts ...interface{}) error {
	err := m.Context.Send(what, opts...)
	if err == nil {
		m.incMessages(sendsDocument(what))
	}
	return err
}

// Reply proxies tele.Context.Reply while updating message counters.
func (m metricsContext) Reply(what interface{}, opts ...interface{}) error {
	err := m.Context.Reply(what, opts...)
	if err == nil {
		m.incMessages(sendsDocument(what))
	}
	return err
}

// MessageMetricsMiddleware instruments context to track reply counts and document sends.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		c.Set("messages", 0)
		c.Set("doc", false)
		return next(metricsContext{Context: c})
	}
}

// GetCounters reads reply count and document flag from context.
func GetCounters(c tele.Context) (int, bool) {
	msgs := 0
	if v := c.Get("messages"); v != nil {
		if n, ok := v.(int); ok {
			msgs = n
		}
	}
	doc := false
	if v := c.Get("doc"); v != nil {
		if b, ok := v.(bool); ok {
			doc = b
		}
	}
	return msgs, doc
}
