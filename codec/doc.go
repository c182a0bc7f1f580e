// Package codec reads and writes configuration trees as YAML or JSON.
//
// Decoding keeps the key order of the source document, so a decoded
// [conf.Node] lists its entries, and encodes them again, in the order
// they were written. Nested mappings become child nodes, and a YAML
// stream holding several documents is merged into one tree with later
// documents taking precedence.
package codec
