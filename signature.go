package memocache

// Param declares one parameter of a wrapped function: its name and, when
// present, its default value. Construct with Required or Optional.
type Param struct {
	Name       string
	Default    any
	HasDefault bool
}

// Required declares a parameter that every call must supply.
func Required(name string) Param { return Param{Name: name} }

// Optional declares a parameter filled with def when a call omits it.
func Optional(name string, def any) Param {
	return Param{Name: name, Default: def, HasDefault: true}
}

// NamedArg passes an argument by parameter name instead of by position.
// Use the Named helper at call sites:
//
//	m.Call(ctx, 1, memocache.Named("limit", 50))
//
// Positional arguments must precede named ones.
type NamedArg struct {
	Name  string
	Value any
}

// Named wraps a value as a named argument.
func Named(name string, v any) NamedArg { return NamedArg{Name: name, Value: v} }

// Call is one invocation split into its positional and named parts.
type Call struct {
	Pos   []any
	Named map[string]any // nil when no named arguments were given
}

// NewCall splits a raw argument list into positional values and NamedArgs.
// A positional argument after a named one is a *BindingError, as is the
// same name given twice.
func NewCall(args ...any) (Call, error) {
	var c Call
	for _, a := range args {
		na, ok := a.(NamedArg)
		if !ok {
			if c.Named != nil {
				return Call{}, &BindingError{Reason: "positional argument after named argument"}
			}
			c.Pos = append(c.Pos, a)
			continue
		}
		if c.Named == nil {
			c.Named = make(map[string]any)
		}
		if _, dup := c.Named[na.Name]; dup {
			return Call{}, &BindingError{Param: na.Name, Reason: "named argument given twice"}
		}
		c.Named[na.Name] = na.Value
	}
	return c, nil
}

// Signature captures a wrapped function's identity prefix and declared
// parameter list, fixed at wrap time. Go reflection cannot recover
// parameter names, so the list is declared in the wrap options; Bind then
// does the positional/named/default resolution the language itself does
// not.
type Signature struct {
	prefix string
	params []Param
	index  map[string]int
	scope  int // parameter excluded from derived keys; -1 when none
}

// NewSignature builds a Signature for the given identity prefix and
// parameter list. Parameter names must be non-empty and unique.
func NewSignature(prefix string, params ...Param) (*Signature, error) {
	s := &Signature{
		prefix: prefix,
		params: params,
		index:  make(map[string]int, len(params)),
		scope:  -1,
	}
	for i, p := range params {
		if p.Name == "" {
			return nil, &BindingError{Callable: prefix, Reason: "parameter with empty name"}
		}
		if _, dup := s.index[p.Name]; dup {
			return nil, &BindingError{Callable: prefix, Param: p.Name, Reason: "parameter declared twice"}
		}
		s.index[p.Name] = i
	}
	return s, nil
}

// Prefix returns the identity prefix, including the trailing colon.
func (s *Signature) Prefix() string { return s.prefix }

// Params returns the declared parameter list in order. Callers must not
// mutate it.
func (s *Signature) Params() []Param { return s.params }

// ScopeIndex returns the position of the scope parameter, or -1 when the
// signature has none.
func (s *Signature) ScopeIndex() int { return s.scope }

// markScope records which parameter holds the scope object. When name is
// not declared the first parameter is assumed, matching the method-receiver
// convention.
func (s *Signature) markScope(name string) {
	if i, ok := s.index[name]; ok {
		s.scope = i
		return
	}
	s.scope = 0
}

// Bind resolves a call into the argument vector: one value per declared
// parameter, in declared order, defaults applied. The result is
// byte-for-byte independent of whether arguments were passed positionally
// or by name.
//
// When the call is purely positional and supplies exactly one value per
// parameter, the positional slice is returned as-is; the slow path is only
// needed for named arguments or omitted defaults.
func (s *Signature) Bind(call Call) ([]any, error) {
	if call.Named == nil && len(call.Pos) == len(s.params) {
		return call.Pos, nil
	}
	if len(call.Pos) > len(s.params) {
		return nil, &BindingError{
			Callable: s.prefix,
			Reason:   "too many positional arguments",
		}
	}

	vector := make([]any, len(s.params))
	set := make([]bool, len(s.params))
	for i, v := range call.Pos {
		vector[i] = v
		set[i] = true
	}
	for name, v := range call.Named {
		i, ok := s.index[name]
		if !ok {
			return nil, &BindingError{Callable: s.prefix, Param: name, Reason: "unknown parameter"}
		}
		if set[i] {
			return nil, &BindingError{Callable: s.prefix, Param: name, Reason: "given both positionally and by name"}
		}
		vector[i] = v
		set[i] = true
	}
	for i, p := range s.params {
		if set[i] {
			continue
		}
		if !p.HasDefault {
			return nil, &BindingError{Callable: s.prefix, Param: p.Name, Reason: "missing required argument"}
		}
		vector[i] = p.Default
	}
	return vector, nil
}
