package registry

// NewBuiltins returns a frozen Registry seeded with the primitive types plus
// the small set of host structs the reference VM (internal/vm) natively
// understands: Object, Exception and its standard subtypes, String, List,
// Map, Stream and Iterator. A host embedding the compiler for its own
// domain (scoring, field transforms) is expected to layer its own whitelist
// file on top via Load; this is the baseline a script always has available.
func NewBuiltins() *Registry {
	r := New()
	must := func(err error) {
		if err != nil {
			panic(err) // programmer error in the builtin table itself
		}
	}

	// Structs first (spec.md §6 ordering: all structs before any member).
	must(r.DefineStruct("Object", ""))
	must(r.DefineStruct("String", "Object"))
	must(r.DefineStruct("Exception", "Object"))
	for _, name := range []string{"RuntimeException", "IllegalArgumentException", "IllegalStateException",
		"ArithmeticException", "IndexOutOfBoundsException", "ClassCastException", "NullPointerException"} {
		parent := "RuntimeException"
		if name == "RuntimeException" {
			parent = "Exception"
		}
		must(r.DefineStruct(name, parent))
	}
	must(r.DefineStruct("Iterator", "Object"))
	must(r.DefineStruct("Stream", "Object"))
	must(r.DefineStruct("List", "Object"))
	must(r.DefineStruct("Map", "Object"))
	must(r.DefineStruct("HashMap", "Map"))

	str := r.LookupType("String")

	must(r.DefineMethod("String", &Method{Name: "length", Return: r.intType, HandleTag: "invokevirtual"}))
	must(r.DefineMethod("String", &Method{Name: "equals", Params: []*Type{r.objectType}, Return: r.boolType, HandleTag: "invokevirtual"}))

	for _, name := range []string{"Exception", "RuntimeException", "IllegalArgumentException", "IllegalStateException",
		"ArithmeticException", "IndexOutOfBoundsException", "ClassCastException", "NullPointerException"} {
		must(r.DefineCtor(name, &Method{HandleTag: "newinvokespecial"}))
		must(r.DefineCtor(name, &Method{Params: []*Type{str}, HandleTag: "newinvokespecial"}))
		must(r.DefineField(name, &Field{Name: "message", Type: str}))
		must(r.DefineMethod(name, &Method{Name: "getMessage", Return: str, HandleTag: "invokevirtual"}))
	}

	must(r.DefineMethod("Iterator", &Method{Name: "hasNext", Return: r.boolType, HandleTag: "invokevirtual"}))
	must(r.DefineMethod("Iterator", &Method{Name: "next", Return: r.defType, HandleTag: "invokevirtual"}))

	must(r.DefineMethod("Stream", &Method{Name: "sum", Return: r.intType, HandleTag: "invokevirtual"}))
	must(r.DefineMethod("Stream", &Method{Name: "map", Params: []*Type{r.defType}, Return: r.LookupType("Stream"), HandleTag: "invokevirtual"}))
	must(r.DefineMethod("Stream", &Method{Name: "mapToInt", Params: []*Type{r.defType}, Return: r.LookupType("Stream"), HandleTag: "invokevirtual"}))

	must(r.DefineMethod("List", &Method{Name: "size", Return: r.intType, HandleTag: "invokevirtual"}))
	must(r.DefineMethod("List", &Method{Name: "get", Params: []*Type{r.intType}, Return: r.defType, HandleTag: "invokevirtual"}))
	must(r.DefineMethod("List", &Method{Name: "add", Params: []*Type{r.defType}, Return: r.boolType, HandleTag: "invokevirtual"}))
	must(r.DefineMethod("List", &Method{Name: "iterator", Return: r.LookupType("Iterator"), HandleTag: "invokevirtual"}))
	must(r.DefineMethod("List", &Method{Name: "stream", Return: r.LookupType("Stream"), HandleTag: "invokevirtual"}))

	must(r.DefineCtor("Map", &Method{HandleTag: "newinvokespecial"}))
	must(r.DefineCtor("HashMap", &Method{HandleTag: "newinvokespecial"}))
	must(r.DefineMethod("Map", &Method{Name: "get", Params: []*Type{r.defType}, Return: r.defType, HandleTag: "invokevirtual"}))
	must(r.DefineMethod("Map", &Method{Name: "put", Params: []*Type{r.defType, r.defType}, Return: r.defType, HandleTag: "invokevirtual"}))
	must(r.DefineMethod("Map", &Method{Name: "size", Return: r.intType, HandleTag: "invokevirtual"}))

	// String/numeric box conversions a scoring script routinely needs.
	must(r.DefineCast(&Transform{From: r.intType, To: str,
		Bridge: &Method{Name: "toString", Return: str, Owner: r.structs["Object"]}}))
	must(r.DefineCast(&Transform{From: str, To: r.intType, Explicit: true,
		Bridge: &Method{Name: "parseInt", Return: r.intType, Owner: r.structs["Object"]}}))

	must(r.Freeze())
	return r
}
