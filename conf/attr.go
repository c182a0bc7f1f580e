package conf

import "log/slog"

// Attr returns the attribute name.
//
// For a name that is not reserved and is present in the mapping, this is
// the mapping's value, the same slot [Node.Get] reads. Reserved names, and
// names absent from the mapping, are read from the attribute store.
func (n *Node) Attr(name string) (any, error) {
	if !IsReserved(name) {
		if v, ok := n.values[name]; ok {
			return v, nil
		}
	}

	if v, ok := n.meta[name]; ok {
		return v, nil
	}

	return nil, ErrAttributeNotFound.
		Wrapf("%q", name).
		With(slog.String("name", name))
}

// HasAttr reports whether [Node.Attr] would find name.
func (n *Node) HasAttr(name string) bool {
	_, err := n.Attr(name)

	return err == nil
}

// SetAttr assigns the attribute name. Reserved names go to the attribute
// store; every other name is assigned with [Node.Set].
func (n *Node) SetAttr(name string, value any) error {
	if IsReserved(name) {
		n.SetMeta(name, value)

		return nil
	}

	return n.Set(name, value)
}

// DelAttr removes the attribute name from wherever [Node.Attr] would have
// found it.
func (n *Node) DelAttr(name string) error {
	if !IsReserved(name) {
		if _, ok := n.values[name]; ok {
			n.remove(name)

			return nil
		}
	}

	return n.DelMeta(name)
}

// Meta returns name from the attribute store, bypassing the mapping.
func (n *Node) Meta(name string) (any, bool) {
	v, ok := n.meta[name]

	return v, ok
}

// SetMeta stores name in the attribute store. Names that are also mapping
// keys are hidden from [Node.Attr] unless reserved, so this is logged.
func (n *Node) SetMeta(name string, value any) {
	if _, ok := n.values[name]; ok && !IsReserved(name) {
		n.opts.logger.Warn("attribute shadowed by mapping key",
			slog.String("name", name))
	}

	n.meta[name] = value
}

// DelMeta removes name from the attribute store.
func (n *Node) DelMeta(name string) error {
	if _, ok := n.meta[name]; !ok {
		return ErrAttributeNotFound.
			Wrapf("%q", name).
			With(slog.String("name", name))
	}

	delete(n.meta, name)

	return nil
}
