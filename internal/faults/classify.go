package faults

import "strings"

// Fixed codes and messages for faults that do not report their own.
const (
	CodeServerError = 500
	CodeAuthFailed  = 2001
	CodeOverload    = 1001
	MsgServerError  = "server error"
	MsgAuthFailed   = "auth failed"
	MsgOverload     = "system overload"
	MsgTypeMismatch = "field type mismatch"
)

// Classified is the normalized, client-visible form of a fault. It is
// serialized verbatim into error response bodies.
type Classified struct {
	Code int    `json:"errorCode" example:"4210"`
	Msg  string `json:"errorMsg" example:"invalid token"`
}

// ErrorCodeResolver supplies deployment-specific codes for the two
// policy-sensitive fault families.
type ErrorCodeResolver interface {
	OnAuthFail() Classified
	OnOverload() Classified
}

// StaticResolver is an ErrorCodeResolver returning fixed values.
type StaticResolver struct {
	AuthFail Classified
	Overload Classified
}

func (r StaticResolver) OnAuthFail() Classified { return r.AuthFail }
func (r StaticResolver) OnOverload() Classified { return r.Overload }

// Classifier maps faults to Classified values. The zero value is usable and
// behaves as if no resolver were configured.
type Classifier struct {
	Resolver ErrorCodeResolver
}

// NewClassifier returns a Classifier using resolver, which may be nil.
func NewClassifier(resolver ErrorCodeResolver) *Classifier {
	return &Classifier{Resolver: resolver}
}

// rule is one entry of the ordered classification chain. classify receives
// the outermost fault found by outermost, never a plain wrapper.
type rule struct {
	name     string
	classify func(c *Classifier, f error) (Classified, bool)
}

// protocolRule matches a ProtocolError of kind k.
func protocolRule(k Kind, msg func(pe *ProtocolError) Classified) rule {
	return rule{
		name: k.String(),
		classify: func(_ *Classifier, f error) (Classified, bool) {
			if pe, ok := f.(*ProtocolError); ok && pe.Kind == k {
				return msg(pe), true
			}
			return Classified{}, false
		},
	}
}

func fixed(code int, msg string) func(*ProtocolError) Classified {
	return func(*ProtocolError) Classified { return Classified{Code: code, Msg: msg} }
}

func raw(code int) func(*ProtocolError) Classified {
	return func(pe *ProtocolError) Classified { return Classified{Code: code, Msg: pe.Error()} }
}

// chain is evaluated top to bottom; the first rule that matches wins.
// Domain faults come after every protocol kind and before the policy
// faults, so reordering entries changes client-visible results.
var chain = []rule{
	protocolRule(KindConversionNotSupported, fixed(500, MsgServerError)),
	protocolRule(KindMediaTypeNotAcceptable, raw(406)),
	protocolRule(KindMediaTypeNotSupported, raw(415)),
	protocolRule(KindMessageNotReadable, raw(400)),
	protocolRule(KindMessageNotWritable, fixed(500, MsgServerError)),
	protocolRule(KindMethodNotSupported, raw(405)),
	protocolRule(KindMissingParameter, func(pe *ProtocolError) Classified {
		return Classified{Code: 400, Msg: "field " + quotedField(pe.Error()) + " is required"}
	}),
	protocolRule(KindNoHandler, raw(404)),
	protocolRule(KindTypeMismatch, fixed(400, MsgTypeMismatch)),
	{
		name: "server",
		classify: func(_ *Classifier, f error) (Classified, bool) {
			if se, ok := f.(*ServerError); ok {
				return Classified{Code: se.Code, Msg: se.Msg}, true
			}
			return Classified{}, false
		},
	},
	{
		name: "client",
		classify: func(_ *Classifier, f error) (Classified, bool) {
			if ce, ok := f.(*ClientError); ok {
				return Classified{Code: ce.Code, Msg: ce.Msg}, true
			}
			return Classified{}, false
		},
	},
	{
		name: "auth",
		classify: func(c *Classifier, f error) (Classified, bool) {
			if _, ok := f.(*AuthFailedError); !ok {
				return Classified{}, false
			}
			if c.Resolver != nil {
				return c.Resolver.OnAuthFail(), true
			}
			return Classified{Code: CodeAuthFailed, Msg: MsgAuthFailed}, true
		},
	},
	{
		name: "overload",
		classify: func(c *Classifier, f error) (Classified, bool) {
			if _, ok := f.(*OverloadError); !ok {
				return Classified{}, false
			}
			if c.Resolver != nil {
				return c.Resolver.OnOverload(), true
			}
			return Classified{Code: CodeOverload, Msg: MsgOverload}, true
		},
	},
}

// Classify returns the Classified form of err. It never panics; nil and
// unknown errors map to (500, "server error").
func (c *Classifier) Classify(err error) Classified {
	if c == nil {
		c = &Classifier{}
	}
	if f := outermost(err); f != nil {
		for _, r := range chain {
			if out, ok := r.classify(c, f); ok {
				return out
			}
		}
	}
	return Classified{Code: CodeServerError, Msg: MsgServerError}
}

// Rule returns the name of the chain entry that matches err, or
// "unclassified". Used as a low-cardinality metrics label.
func (c *Classifier) Rule(err error) string {
	if c == nil {
		c = &Classifier{}
	}
	if f := outermost(err); f != nil {
		for _, r := range chain {
			if _, ok := r.classify(c, f); ok {
				return r.name
			}
		}
	}
	return "unclassified"
}

// outermost unwraps err until it meets a value of one of the fault families
// and returns it. Faults wrapped inside another fault are never inspected:
// a ServerError caused by an unreadable body is still a ServerError. Joined
// errors are searched depth-first in order. nil means no fault was found.
func outermost(err error) error {
	for err != nil {
		switch err.(type) {
		case *ProtocolError, *ServerError, *ClientError, *AuthFailedError, *OverloadError:
			return err
		}
		switch u := err.(type) {
		case interface{ Unwrap() error }:
			err = u.Unwrap()
		case interface{ Unwrap() []error }:
			for _, e := range u.Unwrap() {
				if f := outermost(e); f != nil {
					return f
				}
			}
			return nil
		default:
			return nil
		}
	}
	return nil
}

// quotedField returns the text between the first and the last single quote
// of msg. When msg has fewer than two quotes the whole message is returned.
func quotedField(msg string) string {
	first := strings.IndexByte(msg, '\'')
	last := strings.LastIndexByte(msg, '\'')
	if first < 0 || last <= first {
		return msg
	}
	return msg[first+1 : last]
}
