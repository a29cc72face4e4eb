package layout

// FieldKind identifies the shape of a field inside a uniform block schema.
type FieldKind int

const (
	// FieldKindScalar is a single 4-byte value (f32, i32 or u32).
	FieldKindScalar FieldKind = iota
	// FieldKindVec3 is a 3-component float vector. It occupies the footprint of a 4-component vector.
	FieldKindVec3
	// FieldKindVec3Packed is a 3-component float vector whose unused fourth component carries a named scalar.
	FieldKindVec3Packed
	// FieldKindVec4 is a 4-component float vector.
	FieldKindVec4
	// FieldKindMat4 is a column-major 4x4 float matrix.
	FieldKindMat4
	// FieldKindArray is a fixed-length array of a single element field.
	FieldKindArray
	// FieldKindRecord is a nested record of member fields.
	FieldKindRecord
)

// String returns the WGSL-flavored name of the field kind, used in error messages.
func (k FieldKind) String() string {
	switch k {
	case FieldKindScalar:
		return "scalar"
	case FieldKindVec3:
		return "vec3"
	case FieldKindVec3Packed:
		return "vec3+scalar"
	case FieldKindVec4:
		return "vec4"
	case FieldKindMat4:
		return "mat4x4"
	case FieldKindArray:
		return "array"
	case FieldKindRecord:
		return "record"
	default:
		return "unknown"
	}
}

// Field describes one named entry of a block schema. Use the constructor helpers
// (Scalar, Vec3, Vec3Packed, Vec4, Mat4, Array, Record) rather than filling it directly.
type Field struct {
	// Name is the field name used in slot paths.
	Name string
	// Kind is the shape of the field.
	Kind FieldKind
	// PackedName names the scalar stored in the fourth component of a FieldKindVec3Packed field.
	PackedName string
	// Len is the element count of a FieldKindArray field.
	Len int
	// Elem is the element field of a FieldKindArray field. Its Name is ignored.
	Elem *Field
	// Members are the fields of a FieldKindRecord field, in declaration order.
	Members []Field
}

// Schema is an ordered list of fields making up one uniform block.
type Schema struct {
	// Name is the block name, used in error messages and debug labels.
	Name string
	// Fields are the top-level block fields in declaration order.
	Fields []Field
}

// Scalar declares a 4-byte scalar field.
func Scalar(name string) Field {
	return Field{Name: name, Kind: FieldKindScalar}
}

// Vec3 declares a 3-component vector field.
func Vec3(name string) Field {
	return Field{Name: name, Kind: FieldKindVec3}
}

// Vec3Packed declares a 3-component vector field whose fourth component stores the scalar
// packedName, e.g. Vec3Packed("specular", "shininess") places shininess at specular+12.
//
// Parameters:
//   - name: the vector field name
//   - packedName: the scalar field name stored in the fourth component
//
// Returns:
//   - Field: the packed vector field
func Vec3Packed(name, packedName string) Field {
	return Field{Name: name, Kind: FieldKindVec3Packed, PackedName: packedName}
}

// Vec4 declares a 4-component vector field.
func Vec4(name string) Field {
	return Field{Name: name, Kind: FieldKindVec4}
}

// Mat4 declares a 4x4 matrix field.
func Mat4(name string) Field {
	return Field{Name: name, Kind: FieldKindMat4}
}

// Array declares a fixed-length array field. The element's name is not used.
//
// Parameters:
//   - name: the array field name
//   - length: the fixed element count, the block's capacity for this array
//   - elem: the element field
//
// Returns:
//   - Field: the array field
func Array(name string, length int, elem Field) Field {
	return Field{Name: name, Kind: FieldKindArray, Len: length, Elem: &elem}
}

// Record declares a nested record field.
//
// Parameters:
//   - name: the record field name
//   - members: the record members in declaration order
//
// Returns:
//   - Field: the record field
func Record(name string, members ...Field) Field {
	return Field{Name: name, Kind: FieldKindRecord, Members: members}
}
