// Package conf provides an interpolating configuration store.
//
// A [Node] is an ordered mapping from string keys to values. Nested nodes
// are addressed with dotted keys, and every entry is reachable both by key
// ([Node.Get], [Node.Set]) and by attribute name ([Node.Attr],
// [Node.SetAttr]) through the same slot:
//
//	n := conf.New()
//	_ = n.Set("db.host", "localhost")
//	_ = n.Set("db.port", 5432)
//	_ = n.Set("db.url", "postgres://${.host}:${.port}")
//
// # Placeholders
//
// String values may reference other keys with "${name}". A name starting
// with "." is resolved next to the key holding it, and names may be built
// from other placeholders, as in "${hosts.${env}}". [Node.Interpolate]
// resolves every placeholder in dependency order:
//
//	_ = n.Interpolate()
//	url, _ := n.Value("db.url") // "postgres://localhost:5432"
//
// A value consisting of exactly one placeholder takes the referenced value
// with its type, so "${db.port}" becomes the int 5432 rather than a string.
// Self references, reference cycles, and references to missing keys fail
// with [ErrSelfReference], [ErrCircularReference], and
// [ErrUnresolvedReference].
//
// # Variables
//
// A [Variable] is a validated cell that can be stored under several keys.
// Assigning to any of those keys updates the cell rather than the slot:
//
//	v := conf.NewVariable(1, conf.TypeOf[int]())
//	_ = n.Set("x", v)
//	_ = n.Set("y", v)
//	_ = n.Set("x", 2) // y is now 2
//
// # Schemas
//
// A node bound to a struct type with [WithSchema] converts the values
// assigned to each field's key to the field's type. Struct fields become
// child nodes bound to the field's type.
//
//	type Server struct {
//		Host string `conf:"host"`
//		Port int    `conf:"port"`
//	}
//
//	n := conf.New(conf.WithSchemaOf[Server]())
//	_ = n.Set("port", "8080") // stored as int 8080
//
// # Set algebra
//
// [Node.Merge], [Node.Intersect], and [Node.Difference] combine nodes with
// other mappings. The package-level [Merge], [Intersect], [Difference], and
// [Interpolate] are fast paths: each returns an [Outcome] that is either
// handled or a fallback, meaning the input needs the general implementation
// the Node methods chain to.
package conf
