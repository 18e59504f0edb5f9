// Copyright (c) 2025 Neomantra Corp

package avro

///////////////////////////////////////////////////////////////////////////////

// SchemasMatch reports whether a reader with readerSchema can consume data
// written with writerSchema.  The check compares names and type tags, not
// deep structure; nested mismatches surface as read errors when the
// decoder's recursion reaches them.
func SchemasMatch(writerSchema Schema, readerSchema Schema) bool {
	wKind, rKind := writerSchema.Kind(), readerSchema.Kind()

	// Union resolution happens at read time, on either side.
	if wKind == KindUnion || rKind == KindUnion {
		return true
	}

	switch wKind {
	case KindNull, KindBoolean, KindBytes, KindString:
		return wKind == rKind
	case KindInt:
		return rKind == KindInt || rKind == KindLong || rKind == KindFloat || rKind == KindDouble
	case KindLong:
		return rKind == KindLong || rKind == KindFloat || rKind == KindDouble
	case KindFloat:
		return rKind == KindFloat || rKind == KindDouble
	case KindDouble:
		return rKind == KindDouble
	case KindArray:
		if rKind != KindArray {
			return false
		}
		w, r := writerSchema.(*ArraySchema), readerSchema.(*ArraySchema)
		return w.elem.Attribute("type") == r.elem.Attribute("type")
	case KindMap:
		if rKind != KindMap {
			return false
		}
		w, r := writerSchema.(*MapSchema), readerSchema.(*MapSchema)
		return w.values.Attribute("type") == r.values.Attribute("type")
	case KindEnum:
		return rKind == KindEnum && writerSchema.Fullname() == readerSchema.Fullname()
	case KindFixed:
		if rKind != KindFixed || writerSchema.Fullname() != readerSchema.Fullname() {
			return false
		}
		w, r := writerSchema.(*FixedSchema), readerSchema.(*FixedSchema)
		return w.size == r.size
	case KindRecord, KindError:
		return rKind == wKind && writerSchema.Fullname() == readerSchema.Fullname()
	case KindRequest:
		return rKind == KindRequest
	}
	return false
}
