// Package typetag defines the closed type-tag enum of the introspected type
// system and the static registry mapping each tag to its storage kind,
// conversion primitives and backing type identity.
package typetag

type Tag uint8

const (
	TagVoid Tag = iota
	TagBoolean
	TagInt8
	TagUint8
	TagInt16
	TagUint16
	TagInt32
	TagUint32
	TagInt64
	TagUint64
	TagFloat
	TagDouble
	TagUnichar
	TagUTF8
	TagFilename
	TagInterface
	TagArray
	TagList
	TagSList
	TagHash
	TagError
)

var tagNames = [...]string{
	TagVoid:      "void",
	TagBoolean:   "boolean",
	TagInt8:      "int8",
	TagUint8:     "uint8",
	TagInt16:     "int16",
	TagUint16:    "uint16",
	TagInt32:     "int32",
	TagUint32:    "uint32",
	TagInt64:     "int64",
	TagUint64:    "uint64",
	TagFloat:     "float",
	TagDouble:    "double",
	TagUnichar:   "unichar",
	TagUTF8:      "utf8",
	TagFilename:  "filename",
	TagInterface: "interface",
	TagArray:     "array",
	TagList:      "list",
	TagSList:     "slist",
	TagHash:      "hash",
	TagError:     "error",
}

func (t Tag) String() string {
	if int(t) < len(tagNames) {
		return tagNames[t]
	}
	return "unknown"
}

// IsBasic reports whether the tag has simple scalar or string storage.
func (t Tag) IsBasic() bool {
	return t <= TagFilename
}

// Storage is the canonical Go representation used for a tag's native storage.
type Storage uint8

const (
	StorageNone Storage = iota
	StorageBool
	StorageInt    // int64
	StorageUint   // uint64
	StorageFloat  // float64
	StorageString // string
	StoragePointer
)

var storageNames = [...]string{
	StorageNone:    "none",
	StorageBool:    "bool",
	StorageInt:     "int",
	StorageUint:    "uint",
	StorageFloat:   "float",
	StorageString:  "string",
	StoragePointer: "pointer",
}

func (s Storage) String() string {
	if int(s) < len(storageNames) {
		return storageNames[s]
	}
	return "unknown"
}
