package girt

// Ref is an opaque reference to native memory (an object pointer or a boxed
// record). Ref 0 is reserved and always invalid. The binding layer never
// dereferences a Ref; it only threads it between the metadata provider, the
// compound registry, and host proxies.
type Ref uintptr

// IsValid reports whether the reference is non-zero.
func (r Ref) IsValid() bool {
	return r != 0
}
